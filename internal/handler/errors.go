package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/listen-stream/music-svc/internal/access"
	"github.com/listen-stream/music-svc/internal/domain"
	apperrors "github.com/listen-stream/music-svc/pkg/errors"
	"github.com/listen-stream/music-svc/pkg/httputil"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// mapError 将 domain 错误转换为带 HTTP 状态码的应用错误
func mapError(err error) *apperrors.Error {
	switch {
	// 404
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, domain.ErrSongNotFound):
		return apperrors.ErrSongNotFound
	case errors.Is(err, domain.ErrPlaylistNotFound):
		return apperrors.ErrPlaylistNotFound

	// 400
	case errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.ErrInvalidCredentials
	case errors.Is(err, domain.ErrMissingFile):
		return apperrors.ErrMissingFile
	case errors.Is(err, domain.ErrInvalidGender),
		errors.Is(err, domain.ErrInvalidSongName),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidPlaylistName),
		errors.Is(err, domain.ErrPlaylistNameTooLong):
		return apperrors.ErrValidationFailed.WithMessage(err.Error())

	// 403
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.ErrConflict
	case errors.Is(err, access.ErrForbidden):
		return apperrors.ErrForbidden

	// 429
	case errors.Is(err, domain.ErrTooManyAttempts):
		return apperrors.ErrTooManyRequests.WithMessage("Too many failed sign-in attempts, try again later")

	// 502
	case errors.Is(err, domain.ErrMediaNotConfigured):
		return apperrors.ErrUploadFailed.WithMessage("Media storage is not configured").WithError(err)
	case errors.Is(err, domain.ErrUploadFailed):
		return apperrors.ErrUploadFailed.WithError(err)

	default:
		return apperrors.ErrInternal.WithError(err)
	}
}

// handleError 统一处理错误响应
func handleError(c *gin.Context, err error) {
	appErr := mapError(err)
	var throttled *domain.ThrottledError
	if errors.As(err, &throttled) && throttled.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int((throttled.RetryAfter+time.Second-1)/time.Second)))
	}
	if appErr.HTTPStatus >= 500 {
		logger.WithContext(c.Request.Context()).Error("request failed",
			logger.String("path", c.FullPath()),
			logger.Error(err),
		)
	}
	httputil.ErrorResponse(c, appErr)
}

// handleForbiddenAs 与 handleError 相同，但越权时使用指定提示
func handleForbiddenAs(c *gin.Context, err error, message string) {
	if errors.Is(err, access.ErrForbidden) {
		httputil.ErrorResponse(c, apperrors.ErrForbidden.WithMessage(message))
		return
	}
	handleError(c, err)
}

// handleBindError 请求体校验失败
func handleBindError(c *gin.Context, err error) {
	httputil.ErrorResponse(c, apperrors.ErrValidationFailed.WithMessage(bindMessage(err)))
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "min":
		return fmt.Sprintf("%q length must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
