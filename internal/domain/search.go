package domain

// SearchLimit 每类搜索结果的最大数量
const SearchLimit = 10

// SearchResult 搜索结果
type SearchResult struct {
	Songs     []*Song     `json:"songs"`
	Playlists []*Playlist `json:"playlists"`
}
