package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/listen-stream/music-svc/internal/domain"
)

func TestSongHandler_Create(t *testing.T) {
	s := newTestServer(t)
	in := domain.SongInput{Name: "Holiday", Artist: "Green Day", Duration: 232, SongFile: "https://cdn/x.mp3"}
	s.songs.On("Create", mock.Anything, admin, in).Return(&domain.Song{ID: songID, Name: "Holiday"}, nil)

	body := `{"name":"Holiday","artist":"Green Day","duration":232,"songFile":"https://cdn/x.mp3"}`

	w := s.do(t, http.MethodPost, "/api/songs", body, &alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You don't have access to this content!", decode(t, w.Body.Bytes())["message"])

	w = s.do(t, http.MethodPost, "/api/songs", body, &admin)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Song created successfully", decode(t, w.Body.Bytes())["message"])

	w = s.do(t, http.MethodPost, "/api/songs", `{"artist":"nobody","duration":-1}`, &admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.songs.AssertNumberOfCalls(t, "Create", 1)
}

func multipartUpload(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("name", "Holiday"))
	require.NoError(t, mw.WriteField("artist", "Green Day"))
	require.NoError(t, mw.WriteField("duration", "232"))
	if withFile {
		part, err := mw.CreateFormFile("songFile", "holiday.mp3")
		require.NoError(t, err)
		_, err = part.Write([]byte("ID3 fake audio"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestSongHandler_Upload(t *testing.T) {
	s := newTestServer(t)

	var spooled string
	s.songs.On("Upload", mock.Anything, admin, domain.SongInput{Name: "Holiday", Artist: "Green Day", Duration: 232},
		mock.MatchedBy(func(path string) bool {
			// 转发时临时文件存在
			_, err := os.Stat(path)
			spooled = path
			return err == nil
		})).
		Return(&domain.Song{ID: songID, SongFile: "https://res.cloudinary.com/demo/holiday.mp3"}, nil)

	body, contentType := multipartUpload(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/songs/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-auth-token", s.token(t, admin))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Song uploaded successfully", decode(t, w.Body.Bytes())["message"])
	s.songs.AssertExpectations(t)

	// 响应后临时文件已删除
	require.NotEmpty(t, spooled)
	_, err := os.Stat(spooled)
	assert.True(t, os.IsNotExist(err))
}

func TestSongHandler_UploadMissingFile(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/songs/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-auth-token", s.token(t, admin))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Song file is required", decode(t, w.Body.Bytes())["message"])
	s.songs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSongHandler_UploadMediaFailure(t *testing.T) {
	s := newTestServer(t)
	s.songs.On("Upload", mock.Anything, admin, mock.Anything, mock.Anything).
		Return(nil, errors.Join(domain.ErrUploadFailed, errors.New("timeout")))

	body, contentType := multipartUpload(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/songs/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-auth-token", s.token(t, admin))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSongHandler_ListAndGet(t *testing.T) {
	s := newTestServer(t)
	s.songs.On("List", mock.Anything).Return([]*domain.Song{{ID: songID}}, nil)
	s.songs.On("Get", mock.Anything, songID).Return(nil, domain.ErrSongNotFound)

	w := s.do(t, http.MethodGet, "/api/songs", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w.Body.Bytes())["data"], 1)

	w = s.do(t, http.MethodGet, "/api/songs/"+songID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSongHandler_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	s.songs.On("Update", mock.Anything, admin, songID, mock.MatchedBy(func(p domain.SongPatch) bool {
		return p.Name != nil && *p.Name == "New" && p.Artist == nil && p.Duration == nil
	})).Return(&domain.Song{ID: songID, Name: "New"}, nil)
	s.songs.On("Delete", mock.Anything, admin, songID).Return(nil)

	w := s.do(t, http.MethodPut, "/api/songs/"+songID, `{"name":"New"}`, &admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Updated song successfully", decode(t, w.Body.Bytes())["message"])

	w = s.do(t, http.MethodDelete, "/api/songs/"+songID, "", &admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Song deleted sucessfully", decode(t, w.Body.Bytes())["message"])

	w = s.do(t, http.MethodDelete, "/api/songs/"+songID, "", &bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSongHandler_UpdateWithoutName(t *testing.T) {
	s := newTestServer(t)
	s.songs.On("Update", mock.Anything, admin, songID, mock.MatchedBy(func(p domain.SongPatch) bool {
		return p.Name == nil && p.Artist != nil && *p.Artist == "The Offspring"
	})).Return(&domain.Song{ID: songID, Name: "Self Esteem", Artist: "The Offspring"}, nil)

	w := s.do(t, http.MethodPut, "/api/songs/"+songID, `{"artist":"The Offspring"}`, &admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/songs/"+songID, `{"duration":-5}`, &admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.songs.AssertNumberOfCalls(t, "Update", 1)
}

func TestSongHandler_ToggleLike(t *testing.T) {
	s := newTestServer(t)
	s.songs.On("ToggleLike", mock.Anything, alice, songID).Return(true, nil).Once()
	s.songs.On("ToggleLike", mock.Anything, alice, songID).Return(false, nil).Once()

	w := s.do(t, http.MethodPut, "/api/songs/like/"+songID, "", &alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Added to your liked songs", decode(t, w.Body.Bytes())["message"])

	w = s.do(t, http.MethodPut, "/api/songs/like/"+songID, "", &alice)
	assert.Equal(t, "Removed from your liked songs", decode(t, w.Body.Bytes())["message"])

	w = s.do(t, http.MethodPut, "/api/songs/like/"+songID, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSongHandler_LikedSongs(t *testing.T) {
	s := newTestServer(t)
	s.songs.On("LikedSongs", mock.Anything, alice).Return([]*domain.Song{{ID: songID}}, nil)

	w := s.do(t, http.MethodGet, "/api/songs/like", "", &alice)
	assert.Equal(t, http.StatusOK, w.Code)
	s.songs.AssertExpectations(t)
}
