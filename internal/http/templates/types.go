package templates

import "github.com/zouhourab1996-stack/neural-post-ai/internal/seo"

// DefaultFooterNote is shown in the shared layout footer.
const DefaultFooterNote = "NeuralPost articles are researched and drafted with AI assistance. Verify important information with primary sources."

// CategoryLink is a navigation entry with its article count.
type CategoryLink struct {
	Name   string
	Path   string
	Count  int64
	Active bool
}

// ArticleCard is the summary of an article shown in grids and lists.
type ArticleCard struct {
	Title          string
	Path           string
	Description    string
	Category       string
	ImageURL       string
	Published      string
	ReadingMinutes int
}

// Chrome holds the header, ticker and sidebar content shared by every page.
type Chrome struct {
	Categories []CategoryLink
	Keywords   []string
	Trending   []ArticleCard
}

// LayoutData wraps every page.
type LayoutData struct {
	Head       seo.Head
	SiteName   string
	Chrome     Chrome
	Year       int
	FooterNote string
}

// HomePageData contains the landing page sections.
type HomePageData struct {
	Hero     *ArticleCard
	Featured []ArticleCard
	Latest   []ArticleCard
	Trending []ArticleCard
}

// CategoryPageData contains one page of a category.
type CategoryPageData struct {
	Name        string
	Description string
	Page        int
	Articles    []ArticleCard
	PrevURL     string
	NextURL     string
}

// ArticlePageData contains a rendered article.
type ArticlePageData struct {
	Title          string
	Description    string
	Category       string
	CategoryPath   string
	ImageURL       string
	Published      string
	Views          int64
	ReadingMinutes int
	HTML           string
	Share          seo.Share
	Related        []ArticleCard
}

// InfoSection is a heading with paragraphs and an optional bullet list.
type InfoSection struct {
	Heading    string
	Paragraphs []string
	Items      []string
}

// InfoPageData holds a static content page such as the privacy policy.
type InfoPageData struct {
	Title    string
	Lead     string
	Updated  string
	Sections []InfoSection
}

// ContactPageData configures the contact form.
type ContactPageData struct {
	Endpoint string
	Email    string
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	StatusLabel string
	Message     string
}
