package scraper

import (
	"context"
	"log"
	"time"
)

// 源标识：命令行与调度配置都用它指定要采集哪一路
const (
	SourceAggregator = "aggregator"
	SourceForum      = "forum"
	SourceAll        = "all"
)

// RawArticle 统一解析后的文章结构，入库前的中间形态
type RawArticle struct {
	Title           string
	Summary         string
	SourceURL       string
	SourceName      string
	PublicationDate time.Time
	RawData         map[string]any
}

// Extractor 抽象每一个内容源：从原始字节解析出文章列表
type Extractor interface {
	// ID 返回源标识（aggregator / forum）
	ID() string
	// SourceName 返回固定的来源展示名
	SourceName() string
	// Endpoint 返回该源的抓取地址
	Endpoint() string
	// Extract 从原始字节解析最多 max 条记录；单条解析失败跳过，不中断整批
	Extract(raw []byte, max int) ([]RawArticle, error)
}

// Scraper 持有共享的 HTTP 抓取器与全部已注册的源
type Scraper struct {
	fetcher    *Fetcher
	extractors []Extractor
}

func New() *Scraper {
	return &Scraper{
		fetcher:    NewFetcher(),
		extractors: []Extractor{&HackerNews{}, &Reddit{}},
	}
}

// Extractors 返回指定源的解析器集合；SourceAll 返回全部，顺序固定 aggregator 在前
func (s *Scraper) Extractors(source string) []Extractor {
	if source == SourceAll || source == "" {
		return s.extractors
	}
	out := make([]Extractor, 0, 1)
	for _, ex := range s.extractors {
		if ex.ID() == source {
			out = append(out, ex)
		}
	}
	return out
}

// Collect 抓取并解析单个源。抓取失败或整页解析失败只记日志并返回空集，
// 让其余源继续跑完，单源故障不拖垮整轮采集
func (s *Scraper) Collect(ctx context.Context, ex Extractor, max int) []RawArticle {
	raw, err := s.fetcher.Fetch(ctx, ex.Endpoint())
	if err != nil {
		log.Printf("%s: fetch failed: %v", ex.ID(), err)
		return nil
	}

	items, err := ex.Extract(raw, max)
	if err != nil {
		log.Printf("%s: extract failed: %v", ex.ID(), err)
		return nil
	}
	return items
}
