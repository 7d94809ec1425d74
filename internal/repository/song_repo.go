package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/listen-stream/music-svc/internal/domain"
)

const songColumns = `id, name, artist, song, img, duration, song_file, media_id, created_at, updated_at`

// SongRepositoryImpl 歌曲仓储实现
type SongRepositoryImpl struct {
	db DBTX
}

// NewSongRepository 创建歌曲仓储
func NewSongRepository(db DBTX) SongRepository {
	return &SongRepositoryImpl{db: db}
}

// Create 创建歌曲
func (r *SongRepositoryImpl) Create(ctx context.Context, song *domain.Song) error {
	query := `
		INSERT INTO songs (id, name, artist, song, img, duration, song_file, media_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		song.ID,
		song.Name,
		song.Artist,
		song.Song,
		song.Img,
		song.Duration,
		song.SongFile,
		song.MediaID,
		song.CreatedAt,
		song.UpdatedAt,
	)
	return err
}

// GetByID 根据ID获取歌曲
func (r *SongRepositoryImpl) GetByID(ctx context.Context, id string) (*domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = $1`
	song, err := scanSong(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSongNotFound
	}
	return song, err
}

// List 获取全部歌曲
func (r *SongRepositoryImpl) List(ctx context.Context) ([]*domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs ORDER BY created_at`
	return r.query(ctx, query)
}

// ListByIDs 按给定顺序获取歌曲，已删除的歌曲被跳过
func (r *SongRepositoryImpl) ListByIDs(ctx context.Context, ids []string) ([]*domain.Song, error) {
	if len(ids) == 0 {
		return []*domain.Song{}, nil
	}
	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE id = ANY($1::text[])
		ORDER BY array_position($1::text[], id)
	`
	return r.query(ctx, query, ids)
}

// Update 更新歌曲
func (r *SongRepositoryImpl) Update(ctx context.Context, song *domain.Song) error {
	query := `
		UPDATE songs
		SET name = $2, artist = $3, song = $4, img = $5, duration = $6, song_file = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		song.ID,
		song.Name,
		song.Artist,
		song.Song,
		song.Img,
		song.Duration,
		song.SongFile,
		song.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSongNotFound
	}
	return nil
}

// Delete 删除歌曲；歌单与喜欢列表中的引用保留，读取时跳过
func (r *SongRepositoryImpl) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSongNotFound
	}
	return nil
}

// SearchByName 按名称不区分大小写子串匹配
func (r *SongRepositoryImpl) SearchByName(ctx context.Context, keyword string, limit int) ([]*domain.Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY created_at
		LIMIT $2
	`
	return r.query(ctx, query, likePattern(keyword), limit)
}

func (r *SongRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]*domain.Song, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := make([]*domain.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

func scanSong(row pgx.Row) (*domain.Song, error) {
	var song domain.Song
	err := row.Scan(
		&song.ID,
		&song.Name,
		&song.Artist,
		&song.Song,
		&song.Img,
		&song.Duration,
		&song.SongFile,
		&song.MediaID,
		&song.CreatedAt,
		&song.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &song, nil
}
