package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
)

type ArticleRepository interface {
	Create(ctx context.Context, authorID int64, title, content string) (*domain.Article, error)
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	List(ctx context.Context, limit, offset int) ([]domain.ArticleView, error)
	Update(ctx context.Context, id int64, req *domain.UpdateArticleRequest) (*domain.Article, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

const articleCols = `id, title, content, author_id, created_at, updated_at`

func (r *articleRepository) Create(ctx context.Context, authorID int64, title, content string) (*domain.Article, error) {
	const q = `
		INSERT INTO articles (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING ` + articleCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Article
	err := r.pool.QueryRow(ctx, q, title, content, authorID).Scan(
		&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articleRepository) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	const q = `SELECT ` + articleCols + ` FROM articles WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Article
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &a, err
}

func (r *articleRepository) List(ctx context.Context, limit, offset int) ([]domain.ArticleView, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT a.id, a.title, a.content, a.author_id, a.created_at, a.updated_at,
		       u.name, u.email
		FROM articles a
		JOIN users u ON u.id = a.author_id
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.ArticleView
	for rows.Next() {
		var v domain.ArticleView
		if err := rows.Scan(
			&v.ID, &v.Title, &v.Content, &v.AuthorID, &v.CreatedAt, &v.UpdatedAt,
			&v.AuthorName, &v.AuthorEmail,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *articleRepository) Update(ctx context.Context, id int64, req *domain.UpdateArticleRequest) (*domain.Article, error) {
	const q = `
		UPDATE articles
		SET title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + articleCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Article
	err := r.pool.QueryRow(ctx, q, id, req.Title, req.Content).Scan(
		&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &a, err
}

func (r *articleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM articles WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
