package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/LJTian/NewsHub/internal/processor"
)

const (
	hnBaseURL    = "https://news.ycombinator.com/"
	hnSourceName = "Hacker News"
)

// HackerNews 解析 Hacker News 首页（aggregator 源）。
// 首页没有正式 API，但 DOM 结构多年稳定：每条故事一行 tr.athing，
// 标题在 span.titleline 下的第一个 a
type HackerNews struct{}

func (h *HackerNews) ID() string         { return SourceAggregator }
func (h *HackerNews) SourceName() string { return hnSourceName }
func (h *HackerNews) Endpoint() string   { return hnBaseURL }

func (h *HackerNews) Extract(raw []byte, max int) ([]RawArticle, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("hackernews: parse html: %w", err)
	}

	now := time.Now()
	articles := make([]RawArticle, 0, max)

	// 先按 max 截断行数再逐行解析，坏行也占一个名额
	doc.Find("tr.athing").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= max {
			return false
		}
		a, err := h.parseStoryRow(i, row, now)
		if err != nil {
			log.Printf("hackernews: skip entry %d: %v", i+1, err)
			return true
		}
		articles = append(articles, a)
		return true
	})

	return articles, nil
}

// parseStoryRow 解析单行故事，返回错误表示该行应被跳过
func (h *HackerNews) parseStoryRow(rank int, row *goquery.Selection, now time.Time) (RawArticle, error) {
	titleCell := row.Find("span.titleline").First()
	if titleCell.Length() == 0 {
		return RawArticle{}, errors.New("no title cell")
	}
	link := titleCell.Find("a").First()
	if link.Length() == 0 {
		return RawArticle{}, errors.New("no title link")
	}

	title := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")

	// 站内讨论帖的链接是相对的 item?id=...，补全为绝对地址；
	// 既非绝对链接也非站内帖的一律丢弃，不做猜测性拼接
	switch {
	case strings.HasPrefix(href, "item?"):
		href = hnBaseURL + href
	case !strings.HasPrefix(href, "http"):
		return RawArticle{}, fmt.Errorf("unrecognized link %q", href)
	}

	rawData := map[string]any{"rank": rank + 1}
	if id, ok := row.Attr("id"); ok && id != "" {
		rawData["hn_id"] = id
	}

	return RawArticle{
		Title:           title,
		Summary:         processor.TruncateSummary("Latest story from Hacker News: " + title),
		SourceURL:       href,
		SourceName:      hnSourceName,
		PublicationDate: now,
		RawData:         rawData,
	}, nil
}
