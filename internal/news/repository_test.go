package news

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/db"
)

func TestNewRepositoryRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(nil, nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestCreateArticleAssignsIDAndRoundTrips(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	article := &Article{Slug: " gpu-shortage-2025-01-02 ", Title: "GPU shortage", Content: "# Body", Category: CategoryTech}
	if err := repo.CreateArticle(ctx, article); err != nil {
		t.Fatalf("CreateArticle returned error: %v", err)
	}

	if article.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if article.Slug != "gpu-shortage-2025-01-02" {
		t.Fatalf("expected slug trimmed, got %q", article.Slug)
	}

	stored, err := repo.GetArticleBySlug(ctx, "gpu-shortage-2025-01-02")
	if err != nil {
		t.Fatalf("GetArticleBySlug returned error: %v", err)
	}
	if stored.ID != article.ID || stored.Category != CategoryTech {
		t.Fatalf("unexpected stored article %#v", stored)
	}
}

func TestCreateArticleRejectsDuplicateSlug(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	first := &Article{Slug: "same", Title: "One", Content: "x", Category: CategoryAI}
	if err := repo.CreateArticle(ctx, first); err != nil {
		t.Fatalf("CreateArticle returned error: %v", err)
	}

	second := &Article{Slug: "same", Title: "Two", Content: "y", Category: CategoryAI}
	if err := repo.CreateArticle(ctx, second); err == nil {
		t.Fatalf("expected unique slug violation")
	}
}

func TestCreateArticleRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	err := repo.CreateArticle(context.Background(), &Article{Slug: "x", Title: "x", Content: "x", Category: "Sports"})
	if err == nil {
		t.Fatalf("expected invalid category error")
	}
}

func TestGetArticleBySlugReturnsNotFound(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	_, err := repo.GetArticleBySlug(context.Background(), "missing")
	if !eris.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestListQueriesOrderAndFilter(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []Article{
		{Slug: "ai-old", Category: CategoryAI, CreatedAt: base},
		{Slug: "ai-mid", Category: CategoryAI, IsTrending: true, CreatedAt: base.Add(time.Hour)},
		{Slug: "ai-new", Category: CategoryAI, IsTrending: true, CreatedAt: base.Add(2 * time.Hour)},
		{Slug: "sci", Category: CategoryScience, CreatedAt: base.Add(3 * time.Hour)},
	}
	ids := map[string]string{}
	for i := range seed {
		article := seed[i]
		article.Title = article.Slug
		article.Content = "body"
		if err := repo.CreateArticle(ctx, &article); err != nil {
			t.Fatalf("CreateArticle returned error: %v", err)
		}
		ids[article.Slug] = article.ID
	}

	latest, err := repo.ListLatest(ctx, 2)
	if err != nil {
		t.Fatalf("ListLatest returned error: %v", err)
	}
	assertSlugs(t, latest, "sci", "ai-new")

	page, err := repo.ListByCategory(ctx, CategoryAI, 1, 2)
	if err != nil {
		t.Fatalf("ListByCategory returned error: %v", err)
	}
	assertSlugs(t, page, "ai-mid", "ai-old")

	trending, err := repo.ListTrending(ctx, 5)
	if err != nil {
		t.Fatalf("ListTrending returned error: %v", err)
	}
	assertSlugs(t, trending, "ai-new", "ai-mid")

	related, err := repo.ListRelated(ctx, CategoryAI, ids["ai-new"], 3)
	if err != nil {
		t.Fatalf("ListRelated returned error: %v", err)
	}
	assertSlugs(t, related, "ai-mid", "ai-old")

	slugs, err := repo.ListSlugs(ctx)
	if err != nil {
		t.Fatalf("ListSlugs returned error: %v", err)
	}
	if len(slugs) != 4 || slugs[0] != "sci" {
		t.Fatalf("unexpected slugs %v", slugs)
	}

	counts, err := repo.CountByCategory(ctx)
	if err != nil {
		t.Fatalf("CountByCategory returned error: %v", err)
	}
	if counts[CategoryAI] != 3 || counts[CategoryScience] != 1 || counts[CategoryTech] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestIncrementViews(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	article := &Article{Slug: "viewed", Title: "Viewed", Content: "x", Category: CategoryBusiness}
	if err := repo.CreateArticle(ctx, article); err != nil {
		t.Fatalf("CreateArticle returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.IncrementViews(ctx, article.ID); err != nil {
			t.Fatalf("IncrementViews returned error: %v", err)
		}
	}

	stored, err := repo.GetArticleBySlug(ctx, "viewed")
	if err != nil {
		t.Fatalf("GetArticleBySlug returned error: %v", err)
	}
	if stored.Views != 3 {
		t.Fatalf("expected 3 views, got %d", stored.Views)
	}
}

func TestKeywordLifecycle(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	if err := repo.CreateKeywords(ctx, nil); err != nil {
		t.Fatalf("CreateKeywords with empty input returned error: %v", err)
	}

	keywords := []TrendingKeyword{
		{Keyword: "fresh", Category: CategoryAI, DiscoveredAt: today},
		{Keyword: "boundary", Category: CategoryAI, DiscoveredAt: today.AddDate(0, 0, -7)},
		{Keyword: "stale", Category: CategoryTech, DiscoveredAt: today.AddDate(0, 0, -8)},
	}
	if err := repo.CreateKeywords(ctx, keywords); err != nil {
		t.Fatalf("CreateKeywords returned error: %v", err)
	}

	deleted, err := repo.DeleteKeywordsBefore(ctx, today.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("DeleteKeywordsBefore returned error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted keyword, got %d", deleted)
	}

	recent, err := repo.ListRecentKeywords(ctx, 20)
	if err != nil {
		t.Fatalf("ListRecentKeywords returned error: %v", err)
	}
	if len(recent) != 2 || recent[0].Keyword != "fresh" || recent[1].Keyword != "boundary" {
		t.Fatalf("unexpected remaining keywords %#v", recent)
	}
}

func TestCreateContact(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	submission := &ContactSubmission{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"}
	if err := repo.CreateContact(context.Background(), submission); err != nil {
		t.Fatalf("CreateContact returned error: %v", err)
	}
	if submission.ID == 0 {
		t.Fatalf("expected contact id to be assigned")
	}
}

func assertSlugs(t *testing.T, articles []Article, want ...string) {
	t.Helper()

	got := make([]string, 0, len(articles))
	for _, article := range articles {
		got = append(got, article.Slug)
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected slugs %v, got %v", want, got)
	}
}

func setupRepository(t *testing.T) *GormRepository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "repo.db")
	gormDB, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if closeErr := db.Close(gormDB); closeErr != nil {
			t.Fatalf("closing database failed: %v", closeErr)
		}
	})

	logger := silentLogger()

	if err := Migrate(context.Background(), gormDB, logger); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	repo, err := NewRepository(gormDB, logger)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	return repo
}

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
