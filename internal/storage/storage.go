package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 默认的文章列表容器，首次启动时自动建出，全部文章都挂在它下面
const (
	DefaultListTitle = "Latest News"
	DefaultListIntro = "Stay updated with the latest technology news from top sources."
	DefaultListSlug  = "news"
)

// 列表页每页条数与缓存时长
const (
	DefaultPageSize = 10
	listCacheTTL    = 5 * time.Minute
)

var (
	// ErrDuplicate 唯一键冲突：并发写入撞上同一指纹或 slug，调用方按 skip 处理
	ErrDuplicate = errors.New("storage: duplicate article")
	// ErrNoListingPage 列表容器缺失，属于初始化问题，调用方应终止本轮
	ErrNoListingPage = errors.New("storage: listing page not found")
)

// ListingPage 文章列表容器，全站只有一个
type ListingPage struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:255" json:"title"`
	Intro string `gorm:"type:text" json:"intro"`
	Slug  string `gorm:"size:64;uniqueIndex" json:"slug"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Article 持久化的文章记录。
// content_hash 上的唯一索引是去重的最终防线：两轮采集并发撞到
// 同一指纹时由数据库裁决，输掉的一方按已存在处理
type Article struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	Title           string            `gorm:"size:512" json:"title"`
	Summary         string            `gorm:"size:500" json:"summary"`
	SourceURL       string            `gorm:"size:1024" json:"sourceUrl"`
	SourceName      string            `gorm:"size:100;index" json:"sourceName"`
	PublicationDate time.Time         `gorm:"type:date;index" json:"publicationDate"`
	ContentHash     string            `gorm:"size:64;uniqueIndex" json:"contentHash"`
	Slug            string            `gorm:"size:64;uniqueIndex" json:"slug"`
	ListingPageID   uint              `gorm:"index" json:"listingPageId"`
	ExtraData       datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	ScrapedAt time.Time `gorm:"autoCreateTime;index" json:"scrapedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShortSummary 返回截断到 150 字符的摘要，列表与侧边栏展示用
func (a *Article) ShortSummary() string {
	rs := []rune(a.Summary)
	if len(rs) <= 150 {
		return a.Summary
	}
	return string(rs[:150]) + "..."
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	// TranslateError 把驱动层的唯一键冲突统一映射为 gorm.ErrDuplicatedKey，
	// 写入路径靠它识别并发竞争
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&ListingPage{}, &Article{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB 按 rune 数截断字符串，确保不超过数据库字段长度（例如 varchar(500)）。
// 这是对上游截断逻辑的双保险，防止异常长文本导致入库失败
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// EnsureListingPage 确保列表容器存在，没有任何容器时用默认标题和简介建一个
func (s *Store) EnsureListingPage() (*ListingPage, error) {
	page := &ListingPage{}
	err := s.DB.Order("id ASC").First(page).Error
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	page = &ListingPage{
		Title: DefaultListTitle,
		Intro: DefaultListIntro,
		Slug:  DefaultListSlug,
	}
	if err := s.DB.Create(page).Error; err != nil {
		return nil, fmt.Errorf("create listing page: %w", err)
	}
	log.Printf("created listing page %q", page.Title)
	return page, nil
}

// ListingPage 返回当前的列表容器；不存在时返回 ErrNoListingPage，不会隐式创建
func (s *Store) ListingPage() (*ListingPage, error) {
	page := &ListingPage{}
	err := s.DB.Order("id ASC").First(page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoListingPage
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FindByHash 按内容指纹查找文章，未命中返回 (nil, nil)
func (s *Store) FindByHash(hash string) (*Article, error) {
	a := &Article{}
	err := s.DB.Where("content_hash = ?", hash).First(a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindBySlug 按 slug 查找文章，未命中返回 (nil, nil)
func (s *Store) FindBySlug(slug string) (*Article, error) {
	a := &Article{}
	err := s.DB.Where("slug = ?", slug).First(a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateArticle 在列表容器下新建文章；唯一键冲突返回 ErrDuplicate
func (s *Store) CreateArticle(page *ListingPage, a *Article) error {
	a.ListingPageID = page.ID
	a.Title = truncateRunesDB(toValidUTF8(a.Title), 512)
	a.Summary = truncateRunesDB(toValidUTF8(a.Summary), 500)

	if err := s.DB.Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateArticle 覆写既有文章的可变字段；指纹和 slug 保持不变，updated_at 由 gorm 刷新
func (s *Store) UpdateArticle(a *Article) error {
	return s.DB.Model(a).Updates(map[string]any{
		"title":            truncateRunesDB(toValidUTF8(a.Title), 512),
		"summary":          truncateRunesDB(toValidUTF8(a.Summary), 500),
		"source_name":      a.SourceName,
		"publication_date": a.PublicationDate,
	}).Error
}

// Listing 一页文章与分页信息
type Listing struct {
	Items      []Article `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	TotalPages int       `json:"totalPages"`
}

// clampPageRequest 规范分页入参：perPage 限定在 1 到 100，非法值回落到默认，page 至少为 1
func clampPageRequest(page, perPage int) (int, int) {
	if perPage <= 0 || perPage > 100 {
		perPage = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return page, perPage
}

// resolvePage 由总条数算出总页数并收拢越界页码：空表也有第 1 页，超出范围落到最后一页
func resolvePage(page, perPage int, total int64) (int, int) {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}

// ListArticles 分页返回文章，发布日期倒序、同日期按抓取时间倒序。
// page 小于 1 按第 1 页处理，越界落到最后一页；整个 Listing 按规范化后的
// 入参做键缓存 5 分钟，命中时不产生任何数据库查询
func (s *Store) ListArticles(page, perPage int) (*Listing, error) {
	page, perPage = clampPageRequest(page, perPage)

	ctx := context.Background()
	cacheKey := fmt.Sprintf("articles:list:%d:%d", page, perPage)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached Listing
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	// 缓存未命中才落库：先取总数，再把页码收拢到有效范围
	var total int64
	if err := s.DB.Model(&Article{}).Count(&total).Error; err != nil {
		return nil, err
	}
	effPage, totalPages := resolvePage(page, perPage, total)

	var items []Article
	err := s.DB.
		Order("publication_date DESC").
		Order("scraped_at DESC").
		Limit(perPage).
		Offset((effPage - 1) * perPage).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	listing := &Listing{
		Items:      items,
		Total:      total,
		Page:       effPage,
		PerPage:    perPage,
		TotalPages: totalPages,
	}

	if s.Redis != nil && len(items) > 0 {
		if bs, err := json.Marshal(listing); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}

	return listing, nil
}

// RecentArticles 返回最新的 n 篇文章，侧边栏等小组件用
func (s *Store) RecentArticles(n int) ([]Article, error) {
	if n <= 0 || n > 50 {
		n = 5
	}
	var items []Article
	err := s.DB.
		Order("publication_date DESC").
		Order("scraped_at DESC").
		Limit(n).
		Find(&items).Error
	return items, err
}

// SourceStat 单个来源的文章数
type SourceStat struct {
	SourceName string `json:"sourceName"`
	Count      int64  `json:"count"`
}

// SourceStats 返回各来源的文章数，按数量倒序
func (s *Store) SourceStats() ([]SourceStat, error) {
	var rows []SourceStat
	err := s.DB.Raw(
		`SELECT source_name, COUNT(*) AS count FROM articles GROUP BY source_name ORDER BY count DESC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// 运行锁 TTL：正常一轮采集远小于它，进程崩溃后锁也能自然过期
const runLockTTL = 10 * time.Minute

// AcquireRunLock 获取采集运行锁，同名流水线同一时刻只允许一轮。
// Redis 不可用时返回错误，调用方可降级为无锁运行，唯一索引仍然兜底
func (s *Store) AcquireRunLock(ctx context.Context, name string) (bool, error) {
	if s.Redis == nil {
		return true, nil
	}
	return s.Redis.SetNX(ctx, name, time.Now().Format(time.RFC3339), runLockTTL).Result()
}

// ReleaseRunLock 释放采集运行锁
func (s *Store) ReleaseRunLock(ctx context.Context, name string) {
	if s.Redis == nil {
		return
	}
	_ = s.Redis.Del(ctx, name).Err()
}
