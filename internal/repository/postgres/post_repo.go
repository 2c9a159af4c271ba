package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/repository"
)

// PostRepository implements repository.PostRepository using PostgreSQL.
type PostRepository struct {
	db *DB
}

// NewPostRepository creates a new PostgreSQL post repository.
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

var _ repository.PostRepository = (*PostRepository)(nil)

const postColumns = `id, title, content, author_id, created_at, updated_at`

// Create persists a new post.
func (r *PostRepository) Create(ctx context.Context, input repository.NewPost) (*domain.Post, error) {
	row := r.db.Pool.QueryRow(ctx, `
		INSERT INTO posts (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING `+postColumns,
		input.Title, input.Content, input.AuthorID)

	post, err := scanPost(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("author id: %d", input.AuthorID))
		}
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}
	return post, nil
}

// GetByID retrieves a post by ID.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+postColumns+` FROM posts WHERE id = $1
	`, id)

	post, err := scanPost(row)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// UpdateOwned updates a post only when it is owned by ownerID.
func (r *PostRepository) UpdateOwned(ctx context.Context, postID, ownerID int64, patch repository.PostPatch) (*domain.Post, error) {
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE posts SET title = $1, content = $2, updated_at = now()
		WHERE id = $3 AND author_id = $4
		RETURNING `+postColumns,
		patch.Title, patch.Content, postID, ownerID)

	post, err := scanPost(row)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// Delete removes a post by ID.
func (r *PostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns one page of posts, newest first.
func (r *PostRepository) List(ctx context.Context, page repository.Page) ([]*domain.Post, error) {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = 1
	}
	offset := (page.Number - 1) * page.Size

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, page.Size, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0, page.Size)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// Count returns the total number of posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
