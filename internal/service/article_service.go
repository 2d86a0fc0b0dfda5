package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/repo/postgres"
	"github.com/agriclinic/agri-clinic-hub/internal/security"
	"github.com/agriclinic/agri-clinic-hub/pkg/events"
	"github.com/agriclinic/agri-clinic-hub/pkg/logger"
)

type ArticleService interface {
	CreateArticle(ctx context.Context, authorID int64, req *domain.CreateArticleRequest) (*domain.Article, error)
	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
	ListArticles(ctx context.Context, limit, offset int) ([]domain.ArticleView, error)
	UpdateArticle(ctx context.Context, authorID, id int64, req *domain.UpdateArticleRequest) (*domain.Article, error)
	DeleteArticle(ctx context.Context, authorID, id int64) error
}

type articleService struct {
	articleRepo postgres.ArticleRepository
	sanitizer   *security.ContentSanitizer
	publisher   events.Publisher
}

func NewArticleService(
	articleRepo postgres.ArticleRepository,
	sanitizer *security.ContentSanitizer,
	publisher events.Publisher,
) ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		sanitizer:   sanitizer,
		publisher:   publisher,
	}
}

func (s *articleService) CreateArticle(ctx context.Context, authorID int64, req *domain.CreateArticleRequest) (*domain.Article, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	content := s.sanitizer.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		return nil, domain.Validationf("content is empty after sanitization")
	}

	article, err := s.articleRepo.Create(ctx, authorID, req.Title, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.ArticlePublished, events.ArticlePublishedEvent{
		ArticleID:   article.ID,
		AuthorID:    article.AuthorID,
		Title:       article.Title,
		PublishedAt: article.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish article event", "error", err, "article_id", article.ID)
	}

	return article, nil
}

func (s *articleService) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}
	if article == nil {
		return nil, fmt.Errorf("%w: article", domain.ErrNotFound)
	}
	return article, nil
}

func (s *articleService) ListArticles(ctx context.Context, limit, offset int) ([]domain.ArticleView, error) {
	return s.articleRepo.List(ctx, limit, offset)
}

// UpdateArticle lets only the author touch their article.
func (s *articleService) UpdateArticle(ctx context.Context, authorID, id int64, req *domain.UpdateArticleRequest) (*domain.Article, error) {
	if req.Title == nil && req.Content == nil {
		return nil, domain.Validationf("nothing to update")
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.Validationf("title cannot be empty")
		}
		req.Title = &title
	}
	if req.Content != nil {
		content := s.sanitizer.Sanitize(*req.Content)
		if strings.TrimSpace(content) == "" {
			return nil, domain.Validationf("content is empty after sanitization")
		}
		req.Content = &content
	}

	existing, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load article: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: article", domain.ErrNotFound)
	}
	if existing.AuthorID != authorID {
		return nil, domain.ErrForbidden
	}

	article, err := s.articleRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return article, nil
}

func (s *articleService) DeleteArticle(ctx context.Context, authorID, id int64) error {
	existing, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load article: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("%w: article", domain.ErrNotFound)
	}
	if existing.AuthorID != authorID {
		return domain.ErrForbidden
	}

	deleted, err := s.articleRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: article", domain.ErrNotFound)
	}
	return nil
}
