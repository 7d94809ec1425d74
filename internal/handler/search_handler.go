package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SearchHandler 搜索处理器
type SearchHandler struct {
	search SearchService
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(search SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search 按关键字搜索歌曲和歌单。关键字为空时返回 {}
func (h *SearchHandler) Search(c *gin.Context) {
	result, err := h.search.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		handleError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, result)
}
