package postgres

import (
	"context"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CommentRepo implements CommentRepository using PostgreSQL.
type CommentRepo struct{ db *DB }

// NewCommentRepo constructs a comment repository.
func NewCommentRepo(db *DB) *CommentRepo { return &CommentRepo{db: db} }

const commentCols = `id, content, post_id, author_id, status, created_at`

// ListApprovedByPost returns approved comments of a post ordered by creation.
func (r *CommentRepo) ListApprovedByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	const q = `
SELECT cm.id, cm.content, cm.post_id, cm.author_id, cm.status, cm.created_at,
       a.username, a.full_name, a.avatar_url
FROM comments cm
LEFT JOIN user_profiles a ON a.id = cm.author_id
WHERE cm.post_id = $1 AND cm.status = 'approved'
ORDER BY cm.created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Comment{}
	for rows.Next() {
		var (
			c      model.Comment
			author model.AuthorRef
		)
		if err = rows.Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.Status, &c.CreatedAt,
			&author.Username, &author.FullName, &author.AvatarURL); err != nil {
			return nil, err
		}
		author.ID = c.AuthorID
		c.Author = &author
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID selects a comment by id.
func (r *CommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	const q = `SELECT ` + commentCols + ` FROM comments WHERE id=$1`
	var c model.Comment
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.Status, &c.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

// Create inserts a comment; status defaults to approved in the schema.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	const q = `
INSERT INTO comments (id, content, post_id, author_id)
VALUES ($1, $2, $3, $4)
RETURNING ` + commentCols
	var out model.Comment
	if err := r.db.Pool.QueryRow(ctx, q, c.ID, c.Content, c.PostID, c.AuthorID).
		Scan(&out.ID, &out.Content, &out.PostID, &out.AuthorID, &out.Status, &out.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// Delete removes a comment.
func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM comments WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
