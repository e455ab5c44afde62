package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// SummaryLimit 摘要的最大字符数，超出部分截断并加省略号
const SummaryLimit = 200

// slugLimit slug 的最大长度
const slugLimit = 50

var (
	slugStripRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe = regexp.MustCompile(`\s+`)
)

// Fingerprint 计算文章的内容指纹：标题、摘要、原文链接按序直接拼接后取 sha256。
// 拼接顺序与"无分隔符"是既有数据的兼容约定，改动会导致全量记录被判新
func Fingerprint(title, summary, sourceURL string) string {
	sum := sha256.Sum256([]byte(title + summary + sourceURL))
	return hex.EncodeToString(sum[:])
}

// Slugify 由标题生成 URL 安全的 slug：小写、去掉特殊字符、空白折叠为连字符，最长 50 字符
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if rs := []rune(s); len(rs) > slugLimit {
		s = string(rs[:slugLimit])
	}
	return s
}

// TruncateSummary 把摘要截断到 SummaryLimit 个字符，按 rune 计数避免切坏多字节字符
func TruncateSummary(s string) string {
	rs := []rune(s)
	if len(rs) <= SummaryLimit {
		return s
	}
	return string(rs[:SummaryLimit]) + "..."
}
