package scraper

import (
	"fmt"
	"strings"
	"testing"
)

func redditSample(selftext string) []byte {
	return []byte(fmt.Sprintf(`{"kind":"Listing","data":{"children":[
{"kind":"t3","data":{"title":"Go compiler internals","url":"https://example.com/compiler","permalink":"/r/programming/comments/a1/go_compiler/","selftext":"","score":420,"num_comments":88,"subreddit":"programming","author":"gopher"}},
{"kind":"t3","data":{"title":"How do you test scrapers?","url":"/r/programming/comments/a2/how_test/","permalink":"/r/programming/comments/a2/how_test/","selftext":"%s","score":10,"num_comments":3,"subreddit":"programming","author":"tester"}},
{"kind":"t3","data":{"title":"   ","url":"https://example.com/blank","permalink":"/r/programming/comments/a3/blank/","selftext":""}},
{"kind":"t3","data":{"title":"Crosspost from golang","url":"https://www.reddit.com/r/golang/comments/a4/","permalink":"/r/programming/comments/a4/crosspost/","selftext":""}},
{"kind":"t3","data":{"title":"No url at all","url":"","permalink":"/r/programming/comments/a5/no_url/","selftext":""}}
]}}`, selftext))
}

func TestRedditExtract(t *testing.T) {
	ex := &Reddit{}
	articles, err := ex.Extract(redditSample("short body"), 10)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// 空白标题的那条被跳过
	if len(articles) != 4 {
		t.Fatalf("expected 4 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Go compiler internals" {
		t.Fatalf("title = %q", first.Title)
	}
	// 外部链接保留原样
	if first.SourceURL != "https://example.com/compiler" {
		t.Fatalf("external url should be kept: %q", first.SourceURL)
	}
	if first.Summary != "Programming discussion: Go compiler internals" {
		t.Fatalf("summary = %q", first.Summary)
	}
	if first.SourceName != "Reddit Programming" {
		t.Fatalf("source name = %q", first.SourceName)
	}
	if first.RawData["score"] != 420 || first.RawData["author"] != "gopher" {
		t.Fatalf("raw data = %v", first.RawData)
	}

	// 站内路径换成 permalink 的绝对地址
	second := articles[1]
	if second.SourceURL != "https://reddit.com/r/programming/comments/a2/how_test/" {
		t.Fatalf("internal path should resolve to permalink: %q", second.SourceURL)
	}
	if second.Summary != "short body" {
		t.Fatalf("selftext should be used as summary: %q", second.Summary)
	}

	// reddit 域名的链接同样换成 permalink
	third := articles[2]
	if third.SourceURL != "https://reddit.com/r/programming/comments/a4/crosspost/" {
		t.Fatalf("reddit.com url should resolve to permalink: %q", third.SourceURL)
	}

	// 空链接也落回 permalink
	fourth := articles[3]
	if fourth.SourceURL != "https://reddit.com/r/programming/comments/a5/no_url/" {
		t.Fatalf("empty url should resolve to permalink: %q", fourth.SourceURL)
	}
}

func TestRedditExtractTruncatesLongSelftext(t *testing.T) {
	long := strings.Repeat("x", 250)

	ex := &Reddit{}
	articles, err := ex.Extract(redditSample(long), 10)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	sum := articles[1].Summary
	if n := len([]rune(sum)); n != 203 {
		t.Fatalf("summary length = %d, want 203", n)
	}
	if !strings.HasPrefix(sum, "xxx") || !strings.HasSuffix(sum, "...") {
		t.Fatalf("unexpected truncated summary: %q", sum)
	}
}

func TestRedditExtractHonorsMax(t *testing.T) {
	ex := &Reddit{}
	articles, err := ex.Extract(redditSample(""), 2)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles with max=2, got %d", len(articles))
	}
}

func TestRedditExtractRejectsMalformedJSON(t *testing.T) {
	ex := &Reddit{}
	if _, err := ex.Extract([]byte("<html>not json</html>"), 5); err == nil {
		t.Fatalf("expected error for malformed feed")
	}
}
