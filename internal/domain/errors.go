package domain

import (
	"errors"
	"time"
)

var (
	// 用户相关错误
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many failed sign-in attempts")
	ErrInvalidGender      = errors.New("invalid gender")

	// 歌曲相关错误
	ErrSongNotFound    = errors.New("song not found")
	ErrInvalidSongName = errors.New("invalid song name")
	ErrInvalidDuration = errors.New("invalid duration")

	// 上传相关错误
	ErrMissingFile        = errors.New("song file is required")
	ErrMediaNotConfigured = errors.New("media storage is not configured")
	ErrUploadFailed       = errors.New("media upload failed")

	// 歌单相关错误
	ErrPlaylistNotFound    = errors.New("playlist not found")
	ErrInvalidPlaylistName = errors.New("invalid playlist name")
	ErrPlaylistNameTooLong = errors.New("playlist name too long")
)

// ThrottledError 登录被限流，RetryAfter 为距窗口重置的时间，未知时为 0
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string { return ErrTooManyAttempts.Error() }

func (e *ThrottledError) Unwrap() error { return ErrTooManyAttempts }
