package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsHub/internal/storage"
)

type Server struct {
	store *storage.Store
}

func NewServer(store *storage.Store) *Server {
	return &Server{store: store}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/articles", s.listArticles)
		v1.GET("/articles/recent", s.recentArticles)
		v1.GET("/article/:slug", s.getArticle)
		v1.GET("/sources/stats", s.sourceStats)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listArticles 分页文章列表，page 从 1 开始，默认每页 10 条
func (s *Server) listArticles(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(storage.DefaultPageSize)))
	if err != nil || perPage <= 0 {
		perPage = storage.DefaultPageSize
	}

	listing, err := s.store.ListArticles(page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    listing,
	})
}

// recentArticle 响应体：列表页的轻量卡片视图
type recentArticle struct {
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	SourceURL       string    `json:"sourceUrl"`
	SourceName      string    `json:"sourceName"`
	PublicationDate time.Time `json:"publicationDate"`
	ShortSummary    string    `json:"shortSummary"`
}

// recentArticles 最新 n 篇的轻量视图，摘要截断到 150 字符
func (s *Server) recentArticles(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "5"))
	if err != nil || count <= 0 {
		count = 5
	}

	items, err := s.store.RecentArticles(count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	out := make([]recentArticle, 0, len(items))
	for _, a := range items {
		out = append(out, recentArticle{
			Title:           a.Title,
			Slug:            a.Slug,
			SourceURL:       a.SourceURL,
			SourceName:      a.SourceName,
			PublicationDate: a.PublicationDate,
			ShortSummary:    a.ShortSummary(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    out,
	})
}

// getArticle 按 slug 取单篇文章
func (s *Server) getArticle(c *gin.Context) {
	slug := c.Param("slug")

	a, err := s.store.FindBySlug(slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "article not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    a,
	})
}

// sourceStats 各来源的文章数与来源总数
func (s *Server) sourceStats(c *gin.Context) {
	stats, err := s.store.SourceStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data": gin.H{
			"sources":     stats,
			"sourceCount": len(stats),
		},
	})
}
