package news

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article is a published NeuralPost story.
type Article struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Slug            string    `gorm:"size:255;uniqueIndex:idx_articles_slug;not null" json:"slug"`
	Title           string    `gorm:"size:512;not null" json:"title"`
	MetaDescription string    `gorm:"size:1024" json:"meta_description"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Category        Category  `gorm:"size:32;index:idx_articles_category;not null" json:"category"`
	ImageURL        string    `gorm:"size:2048" json:"image_url"`
	IsFeatured      bool      `gorm:"not null;default:false" json:"is_featured"`
	IsTrending      bool      `gorm:"index:idx_articles_trending;not null;default:false" json:"is_trending"`
	Views           int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt       time.Time `gorm:"index:idx_articles_created_at" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName defines the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (a *Article) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// TrendingKeyword is an SEO phrase discovered while generating an article.
type TrendingKeyword struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Keyword      string    `gorm:"size:255;not null" json:"keyword"`
	Category     Category  `gorm:"size:32;not null" json:"category"`
	SearchVolume string    `gorm:"size:32" json:"search_volume"`
	Competition  string    `gorm:"size:32" json:"competition"`
	DiscoveredAt time.Time `gorm:"index:idx_trending_keywords_discovered_at;not null" json:"discovered_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName defines the table name for the TrendingKeyword model.
func (TrendingKeyword) TableName() string {
	return "trending_keywords"
}

// ContactSubmission is a message left through the contact form.
type ContactSubmission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:320;not null" json:"email"`
	Subject   string    `gorm:"size:512;not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName defines the table name for the ContactSubmission model.
func (ContactSubmission) TableName() string {
	return "contact_submissions"
}
