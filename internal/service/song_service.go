package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/listen-stream/music-svc/internal/access"
	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/media"
	"github.com/listen-stream/music-svc/internal/repository"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// SongService 歌曲服务
type SongService struct {
	songRepo repository.SongRepository
	userRepo repository.UserRepository
	uploader media.Uploader // 未配置媒体托管时为 nil
	folder   string
	log      logger.Logger
}

// NewSongService 创建歌曲服务
func NewSongService(songRepo repository.SongRepository, userRepo repository.UserRepository, uploader media.Uploader, folder string, log logger.Logger) *SongService {
	return &SongService{
		songRepo: songRepo,
		userRepo: userRepo,
		uploader: uploader,
		folder:   folder,
		log:      log,
	}
}

// Create 直接创建歌曲记录（仅管理员）
func (s *SongService) Create(ctx context.Context, caller access.Identity, in domain.SongInput) (*domain.Song, error) {
	if err := access.Check(caller, access.Admin()); err != nil {
		return nil, err
	}
	return s.create(ctx, in, "")
}

// Upload 上传音频文件并创建歌曲（仅管理员）
//
// filePath 是已落盘的临时文件，由调用方负责清理。
func (s *SongService) Upload(ctx context.Context, caller access.Identity, in domain.SongInput, filePath string) (*domain.Song, error) {
	if err := access.Check(caller, access.Admin()); err != nil {
		return nil, err
	}
	if filePath == "" {
		return nil, domain.ErrMissingFile
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, domain.ErrMediaNotConfigured
	}

	res, err := s.uploader.Upload(ctx, filePath, s.folder)
	if err != nil {
		s.log.WithContext(ctx).Error("media upload failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	in.SongFile = res.URL
	song, err := s.create(ctx, in, res.PublicID)
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("song uploaded",
		logger.String("song_id", song.ID),
		logger.String("media_id", res.PublicID),
	)
	return song, nil
}

func (s *SongService) create(ctx context.Context, in domain.SongInput, mediaID string) (*domain.Song, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	song := &domain.Song{
		ID:        uuid.New().String(),
		MediaID:   mediaID,
		CreatedAt: now,
	}
	song.Apply(in)
	song.UpdatedAt = now

	if err := s.songRepo.Create(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

// Get 获取单首歌曲
func (s *SongService) Get(ctx context.Context, id string) (*domain.Song, error) {
	return s.songRepo.GetByID(ctx, id)
}

// List 列出全部歌曲
func (s *SongService) List(ctx context.Context) ([]*domain.Song, error) {
	return s.songRepo.List(ctx)
}

// Update 部分更新歌曲（仅管理员），未提交的字段保持原值
func (s *SongService) Update(ctx context.Context, caller access.Identity, id string, patch domain.SongPatch) (*domain.Song, error) {
	if err := access.Check(caller, access.Admin()); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	song, err := s.songRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	song.ApplyPatch(patch)

	if err := s.songRepo.Update(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

// Delete 删除歌曲（仅管理员），歌单和喜欢列表中的引用保留
func (s *SongService) Delete(ctx context.Context, caller access.Identity, id string) error {
	if err := access.Check(caller, access.Admin()); err != nil {
		return err
	}
	return s.songRepo.Delete(ctx, id)
}

// ToggleLike 切换喜欢状态，返回切换后是否为喜欢
func (s *SongService) ToggleLike(ctx context.Context, caller access.Identity, songID string) (bool, error) {
	if err := access.Check(caller, access.Authenticated()); err != nil {
		return false, err
	}
	if _, err := s.songRepo.GetByID(ctx, songID); err != nil {
		return false, err
	}

	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return false, err
	}

	liked := user.ToggleLike(songID)
	if err := s.userRepo.UpdateLikedSongs(ctx, user.ID, user.LikedSongs); err != nil {
		return false, err
	}
	return liked, nil
}

// LikedSongs 返回调用者喜欢的歌曲，已删除的歌曲会被跳过
func (s *SongService) LikedSongs(ctx context.Context, caller access.Identity) ([]*domain.Song, error) {
	if err := access.Check(caller, access.Authenticated()); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.songRepo.ListByIDs(ctx, user.LikedSongs)
}
