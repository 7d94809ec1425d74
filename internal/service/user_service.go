package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/listen-stream/music-svc/internal/access"
	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/repository"
	"github.com/listen-stream/music-svc/pkg/crypto"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// RegisterInput 注册参数
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Gender   string
	Month    string
	Date     string
	Year     string
}

// UserService 用户服务
type UserService struct {
	userRepo repository.UserRepository
	hasher   crypto.Hasher
	log      logger.Logger
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository, hasher crypto.Hasher, log logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		log:      log,
	}
}

// Register 注册普通用户
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, false)
}

// CreateAdmin 创建管理员账号（命令行使用）
func (s *UserService) CreateAdmin(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, true)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, isAdmin bool) (*domain.User, error) {
	if in.Gender != "" {
		if err := domain.ValidateGender(in.Gender); err != nil {
			return nil, err
		}
	}

	email := domain.NormalizeEmail(in.Email)
	_, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:         uuid.New().String(),
		Name:       in.Name,
		Email:      email,
		Password:   hash,
		Gender:     in.Gender,
		Month:      in.Month,
		Date:       in.Date,
		Year:       in.Year,
		IsAdmin:    isAdmin,
		Playlists:  []string{},
		LikedSongs: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// 唯一索引兜底并发注册
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("user registered",
		logger.String("user_id", user.ID),
		logger.Bool("is_admin", isAdmin),
	)
	return user, nil
}

// List 列出全部用户（仅管理员）
func (s *UserService) List(ctx context.Context, caller access.Identity) ([]*domain.User, error) {
	if err := access.Check(caller, access.Admin()); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

// Get 获取用户资料
func (s *UserService) Get(ctx context.Context, caller access.Identity, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(caller, access.Authenticated()); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile 更新用户资料
//
// 任何已登录用户都可以修改任意用户的资料，这里只记录告警，不做拦截。
func (s *UserService) UpdateProfile(ctx context.Context, caller access.Identity, id string, profile domain.Profile) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(caller, access.Authenticated()); err != nil {
		return nil, err
	}
	if !access.SelfOrAdmin(id).Allows(caller) {
		s.log.WithContext(ctx).Warn("profile updated by another user",
			logger.String("target_user_id", id),
			logger.String("caller_id", caller.UserID),
		)
	}

	if err := user.ApplyProfile(profile); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete 删除用户（仅管理员）
func (s *UserService) Delete(ctx context.Context, caller access.Identity, id string) error {
	if err := access.Check(caller, access.Admin()); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithContext(ctx).Info("user deleted",
		logger.String("user_id", id),
		logger.String("admin_id", caller.UserID),
	)
	return nil
}
