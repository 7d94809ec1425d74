// Package handler 实现音乐服务的 HTTP 接口
package handler

import (
	"context"

	"github.com/listen-stream/music-svc/internal/access"
	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/service"
)

// UserService 用户服务接口
type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	List(ctx context.Context, caller access.Identity) ([]*domain.User, error)
	Get(ctx context.Context, caller access.Identity, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller access.Identity, id string, profile domain.Profile) (*domain.User, error)
	Delete(ctx context.Context, caller access.Identity, id string) error
}

// AuthService 登录服务接口
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// SongService 歌曲服务接口
type SongService interface {
	Create(ctx context.Context, caller access.Identity, in domain.SongInput) (*domain.Song, error)
	Upload(ctx context.Context, caller access.Identity, in domain.SongInput, filePath string) (*domain.Song, error)
	Get(ctx context.Context, id string) (*domain.Song, error)
	List(ctx context.Context) ([]*domain.Song, error)
	Update(ctx context.Context, caller access.Identity, id string, patch domain.SongPatch) (*domain.Song, error)
	Delete(ctx context.Context, caller access.Identity, id string) error
	ToggleLike(ctx context.Context, caller access.Identity, songID string) (bool, error)
	LikedSongs(ctx context.Context, caller access.Identity) ([]*domain.Song, error)
}

// PlaylistService 歌单服务接口
type PlaylistService interface {
	Create(ctx context.Context, caller access.Identity, in domain.PlaylistInput) (*domain.Playlist, error)
	List(ctx context.Context) ([]*domain.Playlist, error)
	Favourites(ctx context.Context, caller access.Identity) ([]*domain.Playlist, error)
	Get(ctx context.Context, id string) (*service.PlaylistDetail, error)
	Edit(ctx context.Context, caller access.Identity, id string, in domain.PlaylistInput) (*domain.Playlist, error)
	AddSong(ctx context.Context, caller access.Identity, playlistID, songID string) (*domain.Playlist, error)
	RemoveSong(ctx context.Context, caller access.Identity, playlistID, songID string) (*domain.Playlist, error)
	Delete(ctx context.Context, caller access.Identity, id string) error
}

// SearchService 搜索服务接口
type SearchService interface {
	Search(ctx context.Context, keyword string) (*domain.SearchResult, error)
}

var (
	_ UserService     = (*service.UserService)(nil)
	_ AuthService     = (*service.AuthService)(nil)
	_ SongService     = (*service.SongService)(nil)
	_ PlaylistService = (*service.PlaylistService)(nil)
	_ SearchService   = (*service.SearchService)(nil)
)
