package domain

import (
	"strings"
	"time"
)

// 性别取值
const (
	GenderMale      = "male"
	GenderFemale    = "female"
	GenderNonBinary = "non-binary"
)

// User 用户实体
type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Password   string    `json:"-"` // argon2id 哈希，永不返回客户端
	Gender     string    `json:"gender"`
	Month      string    `json:"month"`
	Date       string    `json:"date"`
	Year       string    `json:"year"`
	IsAdmin    bool      `json:"isAdmin"`
	Playlists  []string  `json:"playlists"`
	LikedSongs []string  `json:"likedSongs"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile 可由用户自行修改的资料字段
type Profile struct {
	Name   string
	Gender string
	Month  string
	Date   string
	Year   string
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateGender 验证性别
func ValidateGender(gender string) error {
	switch gender {
	case GenderMale, GenderFemale, GenderNonBinary:
		return nil
	default:
		return ErrInvalidGender
	}
}

// ApplyProfile 覆盖非空的资料字段
func (u *User) ApplyProfile(p Profile) error {
	if p.Gender != "" {
		if err := ValidateGender(p.Gender); err != nil {
			return err
		}
		u.Gender = p.Gender
	}
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Month != "" {
		u.Month = p.Month
	}
	if p.Date != "" {
		u.Date = p.Date
	}
	if p.Year != "" {
		u.Year = p.Year
	}
	u.UpdatedAt = time.Now()
	return nil
}

// HasLikedSong 是否已喜欢该歌曲
func (u *User) HasLikedSong(songID string) bool {
	return indexOf(u.LikedSongs, songID) >= 0
}

// ToggleLike 切换喜欢状态，返回切换后是否为喜欢
func (u *User) ToggleLike(songID string) bool {
	if i := indexOf(u.LikedSongs, songID); i >= 0 {
		u.LikedSongs = removeAt(u.LikedSongs, i)
		return false
	}
	u.LikedSongs = append(u.LikedSongs, songID)
	return true
}

// AddPlaylist 记录歌单反向引用
func (u *User) AddPlaylist(playlistID string) {
	if indexOf(u.Playlists, playlistID) < 0 {
		u.Playlists = append(u.Playlists, playlistID)
	}
}

// RemovePlaylist 移除歌单反向引用
func (u *User) RemovePlaylist(playlistID string) {
	if i := indexOf(u.Playlists, playlistID); i >= 0 {
		u.Playlists = removeAt(u.Playlists, i)
	}
}
