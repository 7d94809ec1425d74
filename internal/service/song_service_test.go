package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/listen-stream/music-svc/internal/access"
	"github.com/listen-stream/music-svc/internal/domain"
	"github.com/listen-stream/music-svc/internal/media"
)

func newSongService(uploader media.Uploader) (*SongService, *MockSongRepository, *MockUserRepository) {
	songRepo := new(MockSongRepository)
	userRepo := new(MockUserRepository)
	return NewSongService(songRepo, userRepo, uploader, "Songs", testLogger()), songRepo, userRepo
}

func TestSongService_Create(t *testing.T) {
	svc, songRepo, _ := newSongService(nil)

	songRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Song")).Return(nil)

	in := domain.SongInput{Name: "Holiday", Artist: "Green Day", Duration: 232, SongFile: "https://cdn/x.mp3"}

	_, err := svc.Create(context.Background(), alice, in)
	assert.ErrorIs(t, err, access.ErrForbidden)

	song, err := svc.Create(context.Background(), admin, in)
	require.NoError(t, err)
	assert.NotEmpty(t, song.ID)
	assert.Equal(t, "Holiday", song.Name)
	assert.Equal(t, "https://cdn/x.mp3", song.SongFile)
	assert.False(t, song.CreatedAt.IsZero())

	_, err = svc.Create(context.Background(), admin, domain.SongInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidSongName)

	songRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestSongService_Upload(t *testing.T) {
	uploader := new(MockUploader)
	svc, songRepo, _ := newSongService(uploader)

	uploader.On("Upload", mock.Anything, "/tmp/uploads/a.mp3", "Songs").
		Return(&media.Result{URL: "https://res.cloudinary.com/demo/a.mp3", PublicID: "Songs/a"}, nil)
	songRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Song")).Return(nil)

	song, err := svc.Upload(context.Background(), admin, domain.SongInput{Name: "Holiday"}, "/tmp/uploads/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/a.mp3", song.SongFile)
	assert.Equal(t, "Songs/a", song.MediaID)

	uploader.AssertExpectations(t)
	songRepo.AssertExpectations(t)
}

func TestSongService_UploadFailures(t *testing.T) {
	t.Run("not admin", func(t *testing.T) {
		uploader := new(MockUploader)
		svc, _, _ := newSongService(uploader)

		_, err := svc.Upload(context.Background(), alice, domain.SongInput{Name: "x"}, "/tmp/a.mp3")
		assert.ErrorIs(t, err, access.ErrForbidden)
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing file", func(t *testing.T) {
		svc, _, _ := newSongService(new(MockUploader))

		_, err := svc.Upload(context.Background(), admin, domain.SongInput{Name: "x"}, "")
		assert.ErrorIs(t, err, domain.ErrMissingFile)
	})

	t.Run("media not configured", func(t *testing.T) {
		svc, _, _ := newSongService(nil)

		_, err := svc.Upload(context.Background(), admin, domain.SongInput{Name: "x"}, "/tmp/a.mp3")
		assert.ErrorIs(t, err, domain.ErrMediaNotConfigured)
	})

	t.Run("media host error", func(t *testing.T) {
		uploader := new(MockUploader)
		svc, songRepo, _ := newSongService(uploader)

		uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		_, err := svc.Upload(context.Background(), admin, domain.SongInput{Name: "x"}, "/tmp/a.mp3")
		assert.ErrorIs(t, err, domain.ErrUploadFailed)
		songRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSongService_Update(t *testing.T) {
	svc, songRepo, _ := newSongService(nil)

	existing := &domain.Song{ID: "song-1", Name: "Holiday", Artist: "Green Day", Img: "cover.png",
		Duration: 232, SongFile: "https://cdn/old.mp3"}
	songRepo.On("GetByID", mock.Anything, "song-1").Return(existing, nil)
	songRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrSongNotFound)
	songRepo.On("Update", mock.Anything, existing).Return(nil)

	name := "Holiday (Live)"
	song, err := svc.Update(context.Background(), admin, "song-1", domain.SongPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Holiday (Live)", song.Name)
	assert.Equal(t, "Green Day", song.Artist)
	assert.Equal(t, "cover.png", song.Img)
	assert.Equal(t, 232, song.Duration)
	assert.Equal(t, "https://cdn/old.mp3", song.SongFile)

	_, err = svc.Update(context.Background(), admin, "missing", domain.SongPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrSongNotFound)

	_, err = svc.Update(context.Background(), bob, "song-1", domain.SongPatch{Name: &name})
	assert.ErrorIs(t, err, access.ErrForbidden)

	blank := " "
	_, err = svc.Update(context.Background(), admin, "song-1", domain.SongPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidSongName)
	songRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestSongService_Delete(t *testing.T) {
	svc, songRepo, _ := newSongService(nil)

	songRepo.On("Delete", mock.Anything, "song-1").Return(nil)
	songRepo.On("Delete", mock.Anything, "missing").Return(domain.ErrSongNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), alice, "song-1"), access.ErrForbidden)
	assert.NoError(t, svc.Delete(context.Background(), admin, "song-1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, "missing"), domain.ErrSongNotFound)
}

func TestSongService_ToggleLikeTwiceRestoresState(t *testing.T) {
	svc, songRepo, userRepo := newSongService(nil)

	user := &domain.User{ID: "user-alice", LikedSongs: []string{}}
	songRepo.On("GetByID", mock.Anything, "song-1").Return(&domain.Song{ID: "song-1"}, nil)
	userRepo.On("GetByID", mock.Anything, "user-alice").Return(user, nil)
	userRepo.On("UpdateLikedSongs", mock.Anything, "user-alice", []string{"song-1"}).Return(nil).Once()
	userRepo.On("UpdateLikedSongs", mock.Anything, "user-alice", mock.MatchedBy(func(ids []string) bool {
		return len(ids) == 0
	})).Return(nil).Once()

	liked, err := svc.ToggleLike(context.Background(), alice, "song-1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []string{"song-1"}, user.LikedSongs)

	liked, err = svc.ToggleLike(context.Background(), alice, "song-1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, user.LikedSongs)

	userRepo.AssertExpectations(t)
}

func TestSongService_ToggleLikeMissingSong(t *testing.T) {
	svc, songRepo, userRepo := newSongService(nil)

	songRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrSongNotFound)

	_, err := svc.ToggleLike(context.Background(), alice, "missing")
	assert.ErrorIs(t, err, domain.ErrSongNotFound)
	userRepo.AssertNotCalled(t, "UpdateLikedSongs", mock.Anything, mock.Anything, mock.Anything)
}

func TestSongService_LikedSongs(t *testing.T) {
	svc, songRepo, userRepo := newSongService(nil)

	userRepo.On("GetByID", mock.Anything, "user-alice").
		Return(&domain.User{ID: "user-alice", LikedSongs: []string{"song-2", "song-1"}}, nil)
	songRepo.On("ListByIDs", mock.Anything, []string{"song-2", "song-1"}).
		Return([]*domain.Song{{ID: "song-2"}, {ID: "song-1"}}, nil)

	songs, err := svc.LikedSongs(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "song-2", songs[0].ID)
}
