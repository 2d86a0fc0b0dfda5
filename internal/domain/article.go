package domain

import "time"

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleView joins the author's public identity for list responses.
type ArticleView struct {
	Article
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

type CreateArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r *CreateArticleRequest) Validate() error {
	if r.Title == "" {
		return Validationf("title is required")
	}
	if r.Content == "" {
		return Validationf("content is required")
	}
	return nil
}

type UpdateArticleRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}
