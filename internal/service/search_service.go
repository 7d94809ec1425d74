package service

import (
	"context"

	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/repository"
)

// SearchService 搜索服务
type SearchService struct {
	songRepo     repository.SongRepository
	playlistRepo repository.PlaylistRepository
}

// NewSearchService 创建搜索服务
func NewSearchService(songRepo repository.SongRepository, playlistRepo repository.PlaylistRepository) *SearchService {
	return &SearchService{songRepo: songRepo, playlistRepo: playlistRepo}
}

// Search 按名称子串（不区分大小写）搜索歌曲和歌单，各取前 SearchLimit 条。
// 仅当关键字为空串时返回 nil，空白字符也参与匹配。
func (s *SearchService) Search(ctx context.Context, keyword string) (*domain.SearchResult, error) {
	if keyword == "" {
		return nil, nil
	}

	songs, err := s.songRepo.SearchByName(ctx, keyword, domain.SearchLimit)
	if err != nil {
		return nil, err
	}
	playlists, err := s.playlistRepo.SearchByName(ctx, keyword, domain.SearchLimit)
	if err != nil {
		return nil, err
	}

	return &domain.SearchResult{Songs: songs, Playlists: playlists}, nil
}
