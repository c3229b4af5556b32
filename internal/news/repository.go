package news

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrArticleNotFound is returned when no article matches the requested slug.
var ErrArticleNotFound = eris.New("article not found")

// Repository defines persistence operations for articles, keywords and contact messages.
type Repository interface {
	CreateArticle(ctx context.Context, article *Article) error
	GetArticleBySlug(ctx context.Context, slug string) (*Article, error)
	ListLatest(ctx context.Context, limit int) ([]Article, error)
	ListByCategory(ctx context.Context, category Category, offset, limit int) ([]Article, error)
	CountByCategory(ctx context.Context) (map[Category]int64, error)
	ListTrending(ctx context.Context, limit int) ([]Article, error)
	ListRelated(ctx context.Context, category Category, excludeID string, limit int) ([]Article, error)
	ListAll(ctx context.Context) ([]Article, error)
	ListSlugs(ctx context.Context) ([]string, error)
	IncrementViews(ctx context.Context, id string) error

	CreateKeywords(ctx context.Context, keywords []TrendingKeyword) error
	ListRecentKeywords(ctx context.Context, limit int) ([]TrendingKeyword, error)
	DeleteKeywordsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	CreateContact(ctx context.Context, submission *ContactSubmission) error
}

// GormRepository persists news data using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: db, logger: logger}, nil
}

var _ Repository = (*GormRepository)(nil)

// CreateArticle inserts a new article. Slug collisions surface the store's error.
func (r *GormRepository) CreateArticle(ctx context.Context, article *Article) error {
	if article == nil {
		return eris.New("article is nil")
	}

	article.Slug = strings.TrimSpace(article.Slug)
	if article.Slug == "" {
		return eris.New("article slug is required")
	}

	if _, ok := ParseCategory(string(article.Category)); !ok {
		return eris.Errorf("invalid article category: %q", article.Category)
	}

	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		r.logError(logrus.Fields{"slug": article.Slug}, err, "creating article")
		return eris.Wrapf(err, "creating article: %s", article.Slug)
	}

	return nil
}

// GetArticleBySlug returns the article or ErrArticleNotFound.
func (r *GormRepository) GetArticleBySlug(ctx context.Context, slug string) (*Article, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}

	var article Article
	err := r.db.WithContext(ctx).First(&article, "slug = ?", trimmed).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, eris.Wrapf(ErrArticleNotFound, "slug %s", trimmed)
		}
		r.logError(logrus.Fields{"slug": trimmed}, err, "fetching article by slug")
		return nil, eris.Wrapf(err, "fetching article by slug: %s", trimmed)
	}

	return &article, nil
}

// ListLatest returns the newest articles.
func (r *GormRepository) ListLatest(ctx context.Context, limit int) ([]Article, error) {
	return r.listArticles(ctx, "listing latest articles", func(q *gorm.DB) *gorm.DB {
		return q.Limit(limit)
	})
}

// ListByCategory returns one offset-paginated slice of a category.
func (r *GormRepository) ListByCategory(ctx context.Context, category Category, offset, limit int) ([]Article, error) {
	if offset < 0 {
		offset = 0
	}
	return r.listArticles(ctx, "listing articles by category", func(q *gorm.DB) *gorm.DB {
		return q.Where("category = ?", category).Offset(offset).Limit(limit)
	})
}

// CountByCategory returns the number of articles per category.
func (r *GormRepository) CountByCategory(ctx context.Context) (map[Category]int64, error) {
	var rows []struct {
		Category Category
		Total    int64
	}

	err := r.db.WithContext(ctx).
		Model(&Article{}).
		Select("category, count(*) AS total").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		r.logError(nil, err, "counting articles by category")
		return nil, eris.Wrap(err, "counting articles by category")
	}

	counts := make(map[Category]int64, len(Categories))
	for _, row := range rows {
		counts[row.Category] = row.Total
	}
	return counts, nil
}

// ListTrending returns the newest articles flagged as trending.
func (r *GormRepository) ListTrending(ctx context.Context, limit int) ([]Article, error) {
	return r.listArticles(ctx, "listing trending articles", func(q *gorm.DB) *gorm.DB {
		return q.Where("is_trending = ?", true).Limit(limit)
	})
}

// ListRelated returns other articles from the same category.
func (r *GormRepository) ListRelated(ctx context.Context, category Category, excludeID string, limit int) ([]Article, error) {
	return r.listArticles(ctx, "listing related articles", func(q *gorm.DB) *gorm.DB {
		return q.Where("category = ? AND id <> ?", category, excludeID).Limit(limit)
	})
}

// ListAll returns every article, newest first.
func (r *GormRepository) ListAll(ctx context.Context) ([]Article, error) {
	return r.listArticles(ctx, "listing all articles", func(q *gorm.DB) *gorm.DB {
		return q
	})
}

// ListSlugs returns every article slug, newest first.
func (r *GormRepository) ListSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).
		Model(&Article{}).
		Order("created_at DESC").
		Pluck("slug", &slugs).Error
	if err != nil {
		r.logError(nil, err, "listing article slugs")
		return nil, eris.Wrap(err, "listing article slugs")
	}
	return slugs, nil
}

// IncrementViews bumps the view counter without touching updated_at.
func (r *GormRepository) IncrementViews(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		r.logError(logrus.Fields{"article_id": id}, err, "incrementing article views")
		return eris.Wrapf(err, "incrementing views for article %s", id)
	}
	return nil
}

// CreateKeywords batch inserts keyword rows. An empty slice is a no-op.
func (r *GormRepository) CreateKeywords(ctx context.Context, keywords []TrendingKeyword) error {
	if len(keywords) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Create(&keywords).Error; err != nil {
		r.logError(logrus.Fields{"count": len(keywords)}, err, "creating trending keywords")
		return eris.Wrap(err, "creating trending keywords")
	}
	return nil
}

// ListRecentKeywords returns the most recently discovered keywords.
func (r *GormRepository) ListRecentKeywords(ctx context.Context, limit int) ([]TrendingKeyword, error) {
	var keywords []TrendingKeyword
	err := r.db.WithContext(ctx).
		Order("discovered_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&keywords).Error
	if err != nil {
		r.logError(nil, err, "listing recent keywords")
		return nil, eris.Wrap(err, "listing recent keywords")
	}
	return keywords, nil
}

// DeleteKeywordsBefore removes keywords discovered strictly before cutoff.
func (r *GormRepository) DeleteKeywordsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("discovered_at < ?", cutoff).
		Delete(&TrendingKeyword{})
	if result.Error != nil {
		r.logError(logrus.Fields{"cutoff": cutoff}, result.Error, "deleting stale keywords")
		return 0, eris.Wrap(result.Error, "deleting stale keywords")
	}
	return result.RowsAffected, nil
}

// CreateContact stores a contact form submission.
func (r *GormRepository) CreateContact(ctx context.Context, submission *ContactSubmission) error {
	if submission == nil {
		return eris.New("contact submission is nil")
	}

	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		r.logError(logrus.Fields{"email": submission.Email}, err, "creating contact submission")
		return eris.Wrap(err, "creating contact submission")
	}
	return nil
}

func (r *GormRepository) listArticles(ctx context.Context, message string, scope func(*gorm.DB) *gorm.DB) ([]Article, error) {
	var articles []Article

	query := scope(r.db.WithContext(ctx).Order("created_at DESC"))
	if err := query.Find(&articles).Error; err != nil {
		r.logError(nil, err, message)
		return nil, eris.Wrap(err, message)
	}

	return articles, nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
