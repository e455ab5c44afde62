package pipeline

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/LJTian/NewsHub/internal/processor"
	"github.com/LJTian/NewsHub/internal/scraper"
	"github.com/LJTian/NewsHub/internal/storage"
)

// Reconcile 对单篇文章做 create / update / skip 决策并执行。
// 指纹未命中走新建；命中且 forceUpdate 为真时覆写既有记录，否则跳过
func (r *Runner) Reconcile(a scraper.RawArticle, forceUpdate bool) (Outcome, error) {
	hash := processor.Fingerprint(a.Title, a.Summary, a.SourceURL)

	existing, err := r.store.FindByHash(hash)
	if err != nil {
		return "", fmt.Errorf("lookup by hash: %w", err)
	}

	if existing == nil {
		return r.create(a, hash)
	}

	if !forceUpdate {
		return OutcomeSkipped, nil
	}

	// 只覆写内容字段；指纹和 slug 保持原样，外部链接不会变
	existing.Title = a.Title
	existing.Summary = a.Summary
	existing.PublicationDate = a.PublicationDate
	existing.SourceName = a.SourceName
	if err := r.store.UpdateArticle(existing); err != nil {
		return "", fmt.Errorf("update article: %w", err)
	}
	return OutcomeUpdated, nil
}

func (r *Runner) create(a scraper.RawArticle, hash string) (Outcome, error) {
	page, err := r.store.ListingPage()
	if err != nil {
		return "", err
	}

	slug, err := r.uniqueSlug(processor.Slugify(a.Title))
	if err != nil {
		return "", fmt.Errorf("derive slug: %w", err)
	}

	article := &storage.Article{
		Title:           a.Title,
		Summary:         a.Summary,
		SourceURL:       a.SourceURL,
		SourceName:      a.SourceName,
		PublicationDate: a.PublicationDate,
		ContentHash:     hash,
		Slug:            slug,
		ExtraData:       datatypes.JSONMap(a.RawData),
	}

	if err := r.store.CreateArticle(page, article); err != nil {
		// 并发的另一轮先写入了同一指纹，行已存在，按 skip 处理
		if errors.Is(err, storage.ErrDuplicate) {
			return OutcomeSkipped, nil
		}
		return "", fmt.Errorf("create article: %w", err)
	}
	return OutcomeCreated, nil
}

// uniqueSlug 从基础 slug 开始找第一个未被占用的：base、base-1、base-2 依次尝试
func (r *Runner) uniqueSlug(base string) (string, error) {
	slug := base
	for i := 1; ; i++ {
		existing, err := r.store.FindBySlug(slug)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
