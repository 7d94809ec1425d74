package domain

import (
	"strings"
	"time"
)

// MaxPlaylistNameLength 歌单名称最大长度
const MaxPlaylistNameLength = 100

// Playlist 歌单实体，UserID 为创建者且创建后不可变更
type Playlist struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Desc      string    `json:"desc"`
	Img       string    `json:"img"`
	UserID    string    `json:"user"`
	Songs     []string  `json:"songs"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlaylistInput 歌单元数据
type PlaylistInput struct {
	Name string
	Desc string
	Img  string
}

// ValidatePlaylistName 验证歌单名称
func ValidatePlaylistName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidPlaylistName
	}
	if len(name) > MaxPlaylistNameLength {
		return ErrPlaylistNameTooLong
	}
	return nil
}

// OwnerID 返回歌单所有者
func (p *Playlist) OwnerID() string {
	return p.UserID
}

// SetMetadata 更新名称、描述、封面
func (p *Playlist) SetMetadata(in PlaylistInput) {
	p.Name = in.Name
	p.Desc = in.Desc
	p.Img = in.Img
	p.UpdatedAt = time.Now()
}

// HasSong 歌曲是否已在歌单中
func (p *Playlist) HasSong(songID string) bool {
	return indexOf(p.Songs, songID) >= 0
}

// AddSong 追加歌曲，已存在时不变，返回是否有修改
func (p *Playlist) AddSong(songID string) bool {
	if p.HasSong(songID) {
		return false
	}
	p.Songs = append(p.Songs, songID)
	p.UpdatedAt = time.Now()
	return true
}

// RemoveSong 移除第一次出现的歌曲，不存在时不变，返回是否有修改
func (p *Playlist) RemoveSong(songID string) bool {
	i := indexOf(p.Songs, songID)
	if i < 0 {
		return false
	}
	p.Songs = removeAt(p.Songs, i)
	p.UpdatedAt = time.Now()
	return true
}
