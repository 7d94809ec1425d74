package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/repository"
	"github.com/listen-stream/music-svc/pkg/crypto"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// TokenIssuer 签发访问令牌
type TokenIssuer interface {
	GenerateToken(userID, name string, isAdmin bool) (string, error)
}

// LoginThrottle 登录失败计数
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RetryAfter(ctx context.Context, email string) (time.Duration, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService 登录服务
type AuthService struct {
	userRepo repository.UserRepository
	hasher   crypto.Hasher
	tokens   TokenIssuer
	throttle LoginThrottle // 可为 nil
	log      logger.Logger
}

// NewAuthService 创建登录服务
func NewAuthService(userRepo repository.UserRepository, hasher crypto.Hasher, tokens TokenIssuer, throttle LoginThrottle, log logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		log:      log,
	}
}

// Login 校验邮箱密码并签发令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = domain.NormalizeEmail(email)
	log := s.log.WithContext(ctx)

	// 计数后端不可用时放行
	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, email)
		if err != nil {
			log.Warn("login throttle unavailable", logger.Error(err))
		} else if blocked {
			wait, err := s.throttle.RetryAfter(ctx, email)
			if err != nil {
				log.Warn("login throttle unavailable", logger.Error(err))
			}
			log.Warn("sign-in blocked",
				logger.String("email", crypto.MaskEmail(email)),
				logger.Duration("retry_after", wait),
			)
			return "", &domain.ThrottledError{RetryAfter: wait}
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Name, user.IsAdmin)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			log.Warn("failed to reset login throttle", logger.Error(err))
		}
	}

	log.Info("user signed in", logger.String("user_id", user.ID))
	return token, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	s.log.WithContext(ctx).Info("sign-in rejected", logger.String("email", crypto.MaskEmail(email)))
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.WithContext(ctx).Warn("failed to record login failure", logger.Error(err))
	}
}
