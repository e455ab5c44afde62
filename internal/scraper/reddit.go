package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/LJTian/NewsHub/internal/processor"
)

const (
	redditFeedURL    = "https://old.reddit.com/r/programming.json"
	redditBaseURL    = "https://reddit.com"
	redditSourceName = "Reddit Programming"
)

// Reddit 解析 r/programming 的公开 JSON feed（forum 源）
type Reddit struct{}

func (r *Reddit) ID() string         { return SourceForum }
func (r *Reddit) SourceName() string { return redditSourceName }
func (r *Reddit) Endpoint() string   { return redditFeedURL }

type redditPost struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Permalink   string `json:"permalink"`
	Selftext    string `json:"selftext"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Subreddit   string `json:"subreddit"`
	Author      string `json:"author"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) Extract(raw []byte, max int) ([]RawArticle, error) {
	var listing redditListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("reddit: decode feed: %w", err)
	}

	children := listing.Data.Children
	if max < len(children) {
		if max < 0 {
			max = 0
		}
		children = children[:max]
	}

	now := time.Now()
	articles := make([]RawArticle, 0, len(children))
	for i, child := range children {
		a, err := r.parsePost(child.Data, now)
		if err != nil {
			log.Printf("reddit: skip entry %d: %v", i+1, err)
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// parsePost 解析单个帖子，空标题的直接跳过
func (r *Reddit) parsePost(post redditPost, now time.Time) (RawArticle, error) {
	title := strings.TrimSpace(post.Title)
	if title == "" {
		return RawArticle{}, errors.New("empty title")
	}

	// 优先用帖子指向的外部链接；站内路径、reddit 域名或空链接
	// 一律落回帖子自身的 permalink
	sourceURL := post.URL
	if sourceURL == "" || strings.HasPrefix(sourceURL, "/r/") || strings.Contains(sourceURL, "reddit.com") {
		sourceURL = redditBaseURL + post.Permalink
	}

	summary := "Programming discussion: " + title
	if post.Selftext != "" {
		summary = post.Selftext
	}

	return RawArticle{
		Title:           title,
		Summary:         processor.TruncateSummary(summary),
		SourceURL:       sourceURL,
		SourceName:      redditSourceName,
		PublicationDate: now,
		RawData: map[string]any{
			"score":     post.Score,
			"comments":  post.NumComments,
			"subreddit": post.Subreddit,
			"author":    post.Author,
		},
	}, nil
}
