package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/listen-stream/music-svc/internal/access"
	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/repository"
	"github.com/listen-stream/music-svc/pkg/logger"
)

// PlaylistDetail 歌单及其歌曲
type PlaylistDetail struct {
	Playlist *domain.Playlist `json:"playlist"`
	Songs    []*domain.Song   `json:"songs"`
}

// PlaylistService 歌单服务
type PlaylistService struct {
	playlistRepo repository.PlaylistRepository
	songRepo     repository.SongRepository
	userRepo     repository.UserRepository
	log          logger.Logger
}

// NewPlaylistService 创建歌单服务
func NewPlaylistService(
	playlistRepo repository.PlaylistRepository,
	songRepo repository.SongRepository,
	userRepo repository.UserRepository,
	log logger.Logger,
) *PlaylistService {
	return &PlaylistService{
		playlistRepo: playlistRepo,
		songRepo:     songRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

// Create 创建歌单，所有者为调用者
func (s *PlaylistService) Create(ctx context.Context, caller access.Identity, in domain.PlaylistInput) (*domain.Playlist, error) {
	if err := access.Check(caller, access.Authenticated()); err != nil {
		return nil, err
	}
	if err := domain.ValidatePlaylistName(in.Name); err != nil {
		return nil, err
	}

	now := time.Now()
	playlist := &domain.Playlist{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Desc:      in.Desc,
		Img:       in.Img,
		UserID:    caller.UserID,
		Songs:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("playlist created",
		logger.String("playlist_id", playlist.ID),
		logger.String("owner_id", playlist.UserID),
	)
	return playlist, nil
}

// List 列出全部歌单
func (s *PlaylistService) List(ctx context.Context) ([]*domain.Playlist, error) {
	return s.playlistRepo.List(ctx)
}

// Favourites 返回调用者自己的歌单
func (s *PlaylistService) Favourites(ctx context.Context, caller access.Identity) ([]*domain.Playlist, error) {
	if err := access.Check(caller, access.Authenticated()); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.playlistRepo.ListByIDs(ctx, user.Playlists)
}

// Get 获取歌单及其歌曲
func (s *PlaylistService) Get(ctx context.Context, id string) (*PlaylistDetail, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	songs, err := s.songRepo.ListByIDs(ctx, playlist.Songs)
	if err != nil {
		return nil, err
	}
	return &PlaylistDetail{Playlist: playlist, Songs: songs}, nil
}

// Edit 修改歌单元数据（仅所有者）
func (s *PlaylistService) Edit(ctx context.Context, caller access.Identity, id string, in domain.PlaylistInput) (*domain.Playlist, error) {
	playlist, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePlaylistName(in.Name); err != nil {
		return nil, err
	}

	playlist.SetMetadata(in)
	if err := s.playlistRepo.UpdateMetadata(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// AddSong 添加歌曲到歌单（仅所有者），重复添加不产生变化
func (s *PlaylistService) AddSong(ctx context.Context, caller access.Identity, playlistID, songID string) (*domain.Playlist, error) {
	playlist, err := s.owned(ctx, caller, playlistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.songRepo.GetByID(ctx, songID); err != nil {
		return nil, err
	}

	if !playlist.AddSong(songID) {
		return playlist, nil
	}
	if err := s.playlistRepo.UpdateSongs(ctx, playlist.ID, playlist.Songs); err != nil {
		return nil, err
	}
	return playlist, nil
}

// RemoveSong 从歌单移除歌曲（仅所有者），歌曲不在歌单中时不产生变化
func (s *PlaylistService) RemoveSong(ctx context.Context, caller access.Identity, playlistID, songID string) (*domain.Playlist, error) {
	playlist, err := s.owned(ctx, caller, playlistID)
	if err != nil {
		return nil, err
	}

	if !playlist.RemoveSong(songID) {
		return playlist, nil
	}
	if err := s.playlistRepo.UpdateSongs(ctx, playlist.ID, playlist.Songs); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Delete 删除歌单（仅所有者），同时从所有者的歌单列表中移除
func (s *PlaylistService) Delete(ctx context.Context, caller access.Identity, id string) error {
	playlist, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.playlistRepo.Delete(ctx, playlist); err != nil {
		return err
	}

	s.log.WithContext(ctx).Info("playlist deleted",
		logger.String("playlist_id", playlist.ID),
		logger.String("owner_id", playlist.UserID),
	)
	return nil
}

// owned 先查歌单（不存在返回 404），再校验所有权
func (s *PlaylistService) owned(ctx context.Context, caller access.Identity, id string) (*domain.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(caller, access.Owner(playlist)); err != nil {
		return nil, err
	}
	return playlist, nil
}
