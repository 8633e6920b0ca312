package domain

import (
	"errors"
	"time"
)

// Article is a knowledge-base entry. Drafts are visible to their author and to
// managers/admins; published articles are visible to everyone.
type Article struct {
	ID        string
	Title     string
	Content   string
	Category  string
	AuthorID  string
	Status    ArticleStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Validate validates the article for persistence.
func (a *Article) Validate() error {
	if a.Title == "" {
		return errors.New("title is required")
	}
	if a.AuthorID == "" {
		return errors.New("author is required")
	}
	if a.Status == "" {
		a.Status = ArticleStatusDraft
	}
	return nil
}
