// Package repository 持久化层：用户、歌曲、歌单存储于 PostgreSQL。
//
// 列表字段（users.playlists、users.liked_songs、playlists.songs）以 TEXT[]
// 整体读出、修改、写回，没有版本号或行锁：同一记录上的并发修改会丢失其中
// 一次更新。歌单创建与删除涉及两条记录，在同一事务内完成。
package repository

import (
	"context"
	"embed"

	"github.com/listen-stream/music-svc/internal/domain"
)

// Migrations 内嵌的数据库迁移文件
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsPath Migrations 中迁移文件所在目录
const MigrationsPath = "migrations"

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户，邮箱重复返回 domain.ErrEmailTaken
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// UpdateProfile 仅写入资料字段
	UpdateProfile(ctx context.Context, user *domain.User) error
	// UpdateLikedSongs 整体覆盖喜欢列表
	UpdateLikedSongs(ctx context.Context, id string, likedSongs []string) error
	Delete(ctx context.Context, id string) error
}

// SongRepository 歌曲仓储接口
type SongRepository interface {
	Create(ctx context.Context, song *domain.Song) error
	GetByID(ctx context.Context, id string) (*domain.Song, error)
	List(ctx context.Context) ([]*domain.Song, error)
	// ListByIDs 按 ids 顺序返回存在的歌曲
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Song, error)
	Update(ctx context.Context, song *domain.Song) error
	Delete(ctx context.Context, id string) error
	SearchByName(ctx context.Context, keyword string, limit int) ([]*domain.Song, error)
}

// PlaylistRepository 歌单仓储接口
type PlaylistRepository interface {
	// Create 写入歌单并追加到所有者的 playlists（同一事务）
	Create(ctx context.Context, playlist *domain.Playlist) error
	GetByID(ctx context.Context, id string) (*domain.Playlist, error)
	List(ctx context.Context) ([]*domain.Playlist, error)
	// ListByIDs 按 ids 顺序返回存在的歌单
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Playlist, error)
	UpdateMetadata(ctx context.Context, playlist *domain.Playlist) error
	// UpdateSongs 整体覆盖歌曲列表
	UpdateSongs(ctx context.Context, id string, songs []string) error
	// Delete 删除歌单并从所有者的 playlists 移除（同一事务）
	Delete(ctx context.Context, playlist *domain.Playlist) error
	SearchByName(ctx context.Context, keyword string, limit int) ([]*domain.Playlist, error)
}
