package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/listen-stream/music-svc/internal/access"
	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/service"
	"github.com/listen-stream/music-svc/pkg/jwt"
	"github.com/listen-stream/music-svc/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockUserService 模拟用户服务
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, caller access.Identity) ([]*domain.User, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, caller access.Identity, id string) (*domain.User, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, caller access.Identity, id string, profile domain.Profile) (*domain.User, error) {
	args := m.Called(ctx, caller, id, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, caller access.Identity, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

// MockAuthService 模拟登录服务
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

// MockSongService 模拟歌曲服务
type MockSongService struct {
	mock.Mock
}

func (m *MockSongService) Create(ctx context.Context, caller access.Identity, in domain.SongInput) (*domain.Song, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockSongService) Upload(ctx context.Context, caller access.Identity, in domain.SongInput, filePath string) (*domain.Song, error) {
	args := m.Called(ctx, caller, in, filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockSongService) Get(ctx context.Context, id string) (*domain.Song, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockSongService) List(ctx context.Context) ([]*domain.Song, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Song), args.Error(1)
}

func (m *MockSongService) Update(ctx context.Context, caller access.Identity, id string, patch domain.SongPatch) (*domain.Song, error) {
	args := m.Called(ctx, caller, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockSongService) Delete(ctx context.Context, caller access.Identity, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockSongService) ToggleLike(ctx context.Context, caller access.Identity, songID string) (bool, error) {
	args := m.Called(ctx, caller, songID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSongService) LikedSongs(ctx context.Context, caller access.Identity) ([]*domain.Song, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Song), args.Error(1)
}

// MockPlaylistService 模拟歌单服务
type MockPlaylistService struct {
	mock.Mock
}

func (m *MockPlaylistService) Create(ctx context.Context, caller access.Identity, in domain.PlaylistInput) (*domain.Playlist, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistService) List(ctx context.Context) ([]*domain.Playlist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistService) Favourites(ctx context.Context, caller access.Identity) ([]*domain.Playlist, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistService) Get(ctx context.Context, id string) (*service.PlaylistDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlaylistDetail), args.Error(1)
}

func (m *MockPlaylistService) Edit(ctx context.Context, caller access.Identity, id string, in domain.PlaylistInput) (*domain.Playlist, error) {
	args := m.Called(ctx, caller, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistService) AddSong(ctx context.Context, caller access.Identity, playlistID, songID string) (*domain.Playlist, error) {
	args := m.Called(ctx, caller, playlistID, songID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistService) RemoveSong(ctx context.Context, caller access.Identity, playlistID, songID string) (*domain.Playlist, error) {
	args := m.Called(ctx, caller, playlistID, songID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistService) Delete(ctx context.Context, caller access.Identity, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

// MockSearchService 模拟搜索服务
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, keyword string) (*domain.SearchResult, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResult), args.Error(1)
}

const testSecret = "0123456789abcdef0123456789abcdef"

const (
	playlistID = "6f1c2a34-0d5e-4b7a-9c1e-2f3a4b5c6d7e"
	songID     = "0b9d8c7e-6f5a-4e3d-8c2b-1a0f9e8d7c6b"
	userID     = "3c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f"
)

type testServer struct {
	router    *gin.Engine
	tokens    *jwt.Manager
	users     *MockUserService
	auth      *MockAuthService
	songs     *MockSongService
	playlists *MockPlaylistService
	search    *MockSearchService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := jwt.NewManager(&jwt.Config{Secret: testSecret})
	require.NoError(t, err)

	s := &testServer{
		tokens:    tokens,
		users:     new(MockUserService),
		auth:      new(MockAuthService),
		songs:     new(MockSongService),
		playlists: new(MockPlaylistService),
		search:    new(MockSearchService),
	}
	s.router = NewRouter(&Handlers{
		Users:     NewUserHandler(s.users),
		Auth:      NewAuthHandler(s.auth),
		Songs:     NewSongHandler(s.songs, t.TempDir(), 1<<20, nil),
		Playlists: NewPlaylistHandler(s.playlists),
		Search:    NewSearchHandler(s.search),
	}, RouterOptions{
		ServiceName: "music-svc-test",
		Tokens:      tokens,
		Log:         logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard}),
	})
	return s
}

func (s *testServer) token(t *testing.T, id access.Identity) string {
	t.Helper()
	token, err := s.tokens.GenerateToken(id.UserID, id.Name, id.IsAdmin)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, body string, as *access.Identity) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		req.Header.Set("x-auth-token", s.token(t, *as))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

var (
	alice = access.Identity{UserID: "user-alice", Name: "alice"}
	bob   = access.Identity{UserID: "user-bob", Name: "bob"}
	admin = access.Identity{UserID: "user-admin", Name: "admin", IsAdmin: true}
)
