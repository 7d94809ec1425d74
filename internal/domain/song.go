package domain

import (
	"strings"
	"time"
)

// Song 歌曲实体
type Song struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Artist    string    `json:"artist"`
	Song      string    `json:"song"` // 展示用标题，可与 Name 不同
	Img       string    `json:"img"`
	Duration  int       `json:"duration"` // 秒
	SongFile  string    `json:"songFile"`
	MediaID   string    `json:"mediaId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SongInput 创建/更新歌曲的字段
type SongInput struct {
	Name     string
	Artist   string
	Song     string
	Img      string
	Duration int
	SongFile string
}

// Validate 验证歌曲数据
func (in SongInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidSongName
	}
	if in.Duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Apply 以输入覆盖歌曲字段
func (s *Song) Apply(in SongInput) {
	s.Name = in.Name
	s.Artist = in.Artist
	s.Song = in.Song
	s.Img = in.Img
	s.Duration = in.Duration
	if in.SongFile != "" {
		s.SongFile = in.SongFile
	}
	s.UpdatedAt = time.Now()
}

// SongPatch 部分更新，nil 字段保持原值
type SongPatch struct {
	Name     *string
	Artist   *string
	Song     *string
	Img      *string
	Duration *int
	SongFile *string
}

// Validate 只校验提交了的字段
func (p SongPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidSongName
	}
	if p.Duration != nil && *p.Duration < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// ApplyPatch 合并提交了的字段
func (s *Song) ApplyPatch(p SongPatch) {
	setIf(&s.Name, p.Name)
	setIf(&s.Artist, p.Artist)
	setIf(&s.Song, p.Song)
	setIf(&s.Img, p.Img)
	setIf(&s.SongFile, p.SongFile)
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	s.UpdatedAt = time.Now()
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
