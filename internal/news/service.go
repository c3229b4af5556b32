package news

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const (
	HomeLimit          = 20
	CategoryPageSize   = 9
	MaxCategoryPage    = 10000
	TrendingLimit      = 5
	RelatedLimit       = 3
	KeywordTickerLimit = 20
)

var (
	// ErrUnknownCategory is returned for category routes outside the fixed set.
	ErrUnknownCategory = eris.New("unknown category")
	// ErrMissingFields is returned when a contact submission is incomplete.
	ErrMissingFields = eris.New("Missing required fields")
)

// HomeFeed holds the home page articles.
type HomeFeed struct {
	Latest   []Article
	Featured []Article
	Trending []Article
}

// CategoryListing holds one page of a category.
type CategoryListing struct {
	Category Category
	Page     int
	Articles []Article
	HasNext  bool
}

// ArticleView holds an article with its related stories.
type ArticleView struct {
	Article Article
	Related []Article
}

// Chrome holds the data shared by every page's header and sidebar.
type Chrome struct {
	Keywords       []TrendingKeyword
	Trending       []Article
	CategoryCounts map[Category]int64
}

// ContactInput is an unvalidated contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Service defines the read-side operations behind the site pages plus contact intake.
type Service interface {
	Home(ctx context.Context) (*HomeFeed, error)
	CategoryPage(ctx context.Context, category string, page int) (*CategoryListing, error)
	ArticlePage(ctx context.Context, slug string) (*ArticleView, error)
	Chrome(ctx context.Context) Chrome
	SubmitContact(ctx context.Context, input ContactInput) (*ContactSubmission, error)
}

type service struct {
	repo      Repository
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Service = (*service)(nil)

// NewService wires the news service with its repository.
func NewService(repo Repository, logger *logrus.Logger, hub *sentry.Hub) (Service, error) {
	if repo == nil {
		return nil, eris.New("news repository is required")
	}

	return &service{repo: repo, logger: logger, sentryHub: hub}, nil
}

func (s *service) Home(ctx context.Context) (*HomeFeed, error) {
	latest, err := s.repo.ListLatest(ctx, HomeLimit)
	if err != nil {
		s.recordError(nil, err, "loading home feed")
		return nil, eris.Wrap(err, "loading home feed")
	}

	feed := &HomeFeed{Latest: latest}
	for _, article := range latest {
		if article.IsFeatured {
			feed.Featured = append(feed.Featured, article)
		}
		if article.IsTrending {
			feed.Trending = append(feed.Trending, article)
		}
	}

	return feed, nil
}

func (s *service) CategoryPage(ctx context.Context, category string, page int) (*CategoryListing, error) {
	parsed, ok := ParseCategory(category)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownCategory, "category %q", category)
	}

	if page < 1 {
		page = 1
	}
	if page > MaxCategoryPage {
		page = MaxCategoryPage
	}

	articles, err := s.repo.ListByCategory(ctx, parsed, (page-1)*CategoryPageSize, CategoryPageSize)
	if err != nil {
		s.recordError(logrus.Fields{"category": parsed, "page": page}, err, "loading category page")
		return nil, eris.Wrapf(err, "loading category %s page %d", parsed, page)
	}

	return &CategoryListing{
		Category: parsed,
		Page:     page,
		Articles: articles,
		HasNext:  len(articles) == CategoryPageSize,
	}, nil
}

func (s *service) ArticlePage(ctx context.Context, slug string) (*ArticleView, error) {
	article, err := s.repo.GetArticleBySlug(ctx, slug)
	if err != nil {
		if !eris.Is(err, ErrArticleNotFound) {
			s.recordError(logrus.Fields{"slug": slug}, err, "loading article")
		}
		return nil, err
	}

	related, err := s.repo.ListRelated(ctx, article.Category, article.ID, RelatedLimit)
	if err != nil {
		s.recordError(logrus.Fields{"slug": slug}, err, "loading related articles")
		related = nil
	}

	if err := s.repo.IncrementViews(ctx, article.ID); err != nil {
		s.recordError(logrus.Fields{"slug": slug}, err, "incrementing views")
	} else {
		article.Views++
	}

	return &ArticleView{Article: *article, Related: related}, nil
}

// Chrome degrades to empty sections on failure so pages still render.
func (s *service) Chrome(ctx context.Context) Chrome {
	var chrome Chrome

	if keywords, err := s.repo.ListRecentKeywords(ctx, KeywordTickerLimit); err != nil {
		s.recordError(nil, err, "loading keyword ticker")
	} else {
		chrome.Keywords = keywords
	}

	if trending, err := s.repo.ListTrending(ctx, TrendingLimit); err != nil {
		s.recordError(nil, err, "loading trending sidebar")
	} else {
		chrome.Trending = trending
	}

	if counts, err := s.repo.CountByCategory(ctx); err != nil {
		s.recordError(nil, err, "loading category counts")
	} else {
		chrome.CategoryCounts = counts
	}

	return chrome
}

func (s *service) SubmitContact(ctx context.Context, input ContactInput) (*ContactSubmission, error) {
	submission := &ContactSubmission{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}

	if submission.Name == "" || submission.Email == "" || submission.Subject == "" || submission.Message == "" {
		return nil, ErrMissingFields
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"component": "news.contact",
			"name":      submission.Name,
			"email":     submission.Email,
			"subject":   submission.Subject,
		}).Info("contact submission received")
	}

	if err := s.repo.CreateContact(ctx, submission); err != nil {
		s.recordError(logrus.Fields{"email": submission.Email}, err, "persisting contact submission")
		return nil, eris.Wrap(err, "persisting contact submission")
	}

	return submission, nil
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
