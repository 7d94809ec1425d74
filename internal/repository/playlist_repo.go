package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/listen-stream/music-svc/internal/domain"
)

const playlistColumns = `id, name, description, img, user_id, songs, created_at, updated_at`

// PlaylistRepositoryImpl 歌单仓储实现
type PlaylistRepositoryImpl struct {
	db DBTX
	tx Transaction
}

// NewPlaylistRepository 创建歌单仓储
func NewPlaylistRepository(db DBTX) PlaylistRepository {
	return &PlaylistRepositoryImpl{db: db, tx: NewTransaction(db)}
}

// Create 创建歌单并把ID追加到所有者的 playlists
func (r *PlaylistRepositoryImpl) Create(ctx context.Context, playlist *domain.Playlist) error {
	return r.tx.ExecTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO playlists (id, name, description, img, user_id, songs, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		if _, err := tx.Exec(ctx, query,
			playlist.ID,
			playlist.Name,
			playlist.Desc,
			playlist.Img,
			playlist.UserID,
			emptyIfNil(playlist.Songs),
			playlist.CreatedAt,
			playlist.UpdatedAt,
		); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE users SET playlists = array_append(playlists, $2), updated_at = NOW() WHERE id = $1`,
			playlist.UserID, playlist.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

// GetByID 根据ID获取歌单
func (r *PlaylistRepositoryImpl) GetByID(ctx context.Context, id string) (*domain.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = $1`
	playlist, err := scanPlaylist(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlaylistNotFound
	}
	return playlist, err
}

// List 获取全部歌单
func (r *PlaylistRepositoryImpl) List(ctx context.Context) ([]*domain.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists ORDER BY created_at`
	return r.query(ctx, query)
}

// ListByIDs 按给定顺序获取歌单
func (r *PlaylistRepositoryImpl) ListByIDs(ctx context.Context, ids []string) ([]*domain.Playlist, error) {
	if len(ids) == 0 {
		return []*domain.Playlist{}, nil
	}
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE id = ANY($1::text[])
		ORDER BY array_position($1::text[], id)
	`
	return r.query(ctx, query, ids)
}

// UpdateMetadata 更新名称、描述、封面；user_id 从不更新
func (r *PlaylistRepositoryImpl) UpdateMetadata(ctx context.Context, playlist *domain.Playlist) error {
	query := `UPDATE playlists SET name = $2, description = $3, img = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		playlist.ID,
		playlist.Name,
		playlist.Desc,
		playlist.Img,
		playlist.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlaylistNotFound
	}
	return nil
}

// UpdateSongs 覆盖歌曲列表
func (r *PlaylistRepositoryImpl) UpdateSongs(ctx context.Context, id string, songs []string) error {
	query := `UPDATE playlists SET songs = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, emptyIfNil(songs))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlaylistNotFound
	}
	return nil
}

// Delete 从所有者的 playlists 移除引用并删除歌单
func (r *PlaylistRepositoryImpl) Delete(ctx context.Context, playlist *domain.Playlist) error {
	return r.tx.ExecTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE users SET playlists = array_remove(playlists, $2), updated_at = NOW() WHERE id = $1`,
			playlist.UserID, playlist.ID,
		); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, playlist.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrPlaylistNotFound
		}
		return nil
	})
}

// SearchByName 按名称不区分大小写子串匹配
func (r *PlaylistRepositoryImpl) SearchByName(ctx context.Context, keyword string, limit int) ([]*domain.Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE name ILIKE $1 ESCAPE '\'
		ORDER BY created_at
		LIMIT $2
	`
	return r.query(ctx, query, likePattern(keyword), limit)
}

func (r *PlaylistRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]*domain.Playlist, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := make([]*domain.Playlist, 0)
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	return playlists, rows.Err()
}

func scanPlaylist(row pgx.Row) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := row.Scan(
		&playlist.ID,
		&playlist.Name,
		&playlist.Desc,
		&playlist.Img,
		&playlist.UserID,
		&playlist.Songs,
		&playlist.CreatedAt,
		&playlist.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}
