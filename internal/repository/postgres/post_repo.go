package postgres

import (
	"context"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// PostRepo implements PostRepository using PostgreSQL.
type PostRepo struct{ db *DB }

// NewPostRepo constructs a post repository.
func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

const postCols = `id, title, slug, excerpt, content, status, category_id, author_id, published_at, view_count, created_at, updated_at`

// postJoined embeds the author's profile summary and the category summary.
const postJoined = `
SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.status, p.category_id, p.author_id,
       p.published_at, p.view_count, p.created_at, p.updated_at,
       a.username, a.full_name, a.avatar_url,
       c.id, c.name, c.slug
FROM posts p
LEFT JOIN user_profiles a ON a.id = p.author_id
LEFT JOIN categories c ON c.id = p.category_id`

// ListPublished returns published posts ordered by published_at descending.
func (r *PostRepo) ListPublished(ctx context.Context) ([]model.Post, error) {
	const q = postJoined + `
WHERE p.status = 'published'
ORDER BY p.published_at DESC`
	return r.queryJoined(ctx, q)
}

// ListPublishedByCategory filters ListPublished by a resolved category id.
func (r *PostRepo) ListPublishedByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Post, error) {
	const q = postJoined + `
WHERE p.status = 'published' AND p.category_id = $1
ORDER BY p.published_at DESC`
	return r.queryJoined(ctx, q, categoryID)
}

// ListByAuthor returns all posts of an author, drafts included, newest first.
func (r *PostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error) {
	const q = `SELECT ` + postCols + ` FROM posts WHERE author_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetByID returns a single post with its relations.
func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	const q = postJoined + `
WHERE p.id = $1`
	p, err := scanPostJoined(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// Create inserts a post row.
func (r *PostRepo) Create(ctx context.Context, id, authorID uuid.UUID, in model.PostInput) (*model.Post, error) {
	const q = `
INSERT INTO posts (id, title, slug, excerpt, content, status, category_id, author_id, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + postCols
	row := r.db.Pool.QueryRow(ctx, q, id, in.Title, in.Slug, in.Excerpt, in.Content,
		string(in.Status), in.CategoryID, authorID, in.PublishedAt)
	p, err := scanPost(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// Update overwrites the editable columns of a post.
func (r *PostRepo) Update(ctx context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error) {
	const q = `
UPDATE posts SET
  title = $2, slug = $3, excerpt = $4, content = $5, status = $6,
  category_id = $7, published_at = $8, updated_at = now()
WHERE id = $1
RETURNING ` + postCols
	row := r.db.Pool.QueryRow(ctx, q, id, in.Title, in.Slug, in.Excerpt, in.Content,
		string(in.Status), in.CategoryID, in.PublishedAt)
	p, err := scanPost(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// Delete removes a post; comments cascade.
func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM posts WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// IncrementViews atomically bumps view_count.
func (r *PostRepo) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	const q = `UPDATE posts SET view_count = view_count + 1 WHERE id=$1 RETURNING view_count`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *PostRepo) queryJoined(ctx context.Context, q string, args ...any) ([]model.Post, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		p, err := scanPostJoined(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var (
		p      model.Post
		status string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &status, &p.CategoryID,
		&p.AuthorID, &p.PublishedAt, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = model.PostStatus(status)
	return &p, nil
}

func scanPostJoined(row pgx.Row) (*model.Post, error) {
	var (
		p       model.Post
		status  string
		author  model.AuthorRef
		catID   *uuid.UUID
		catName *string
		catSlug *string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &status, &p.CategoryID,
		&p.AuthorID, &p.PublishedAt, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&author.Username, &author.FullName, &author.AvatarURL,
		&catID, &catName, &catSlug); err != nil {
		return nil, err
	}
	p.Status = model.PostStatus(status)
	author.ID = p.AuthorID
	p.Author = &author
	if catID != nil {
		p.Category = &model.CategoryRef{ID: *catID, Name: deref(catName), Slug: deref(catSlug)}
	}
	return &p, nil
}
