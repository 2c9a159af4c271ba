package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/repository"
)

// PostRepository implements repository.PostRepository using SQLite.
type PostRepository struct {
	db *DB
}

// NewPostRepository creates a new SQLite post repository.
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

var _ repository.PostRepository = (*PostRepository)(nil)

// Create persists a new post.
func (r *PostRepository) Create(ctx context.Context, input repository.NewPost) (*domain.Post, error) {
	now := time.Now().UTC()
	ts := now.Format(time.RFC3339Nano)

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (title, content, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, input.Title, input.Content, input.AuthorID, ts, ts)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("author id: %d", input.AuthorID))
		}
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted post id: %w", err)
	}

	return &domain.Post{
		ID:        id,
		Title:     input.Title,
		Content:   input.Content,
		AuthorID:  input.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetByID retrieves a post by ID.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, content, author_id, created_at, updated_at
		FROM posts WHERE id = ?
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
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND author_id = ?
	`, patch.Title, patch.Content, now.Format(time.RFC3339Nano), postID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, repository.ErrNotFound
	}

	return r.GetByID(ctx, postID)
}

// Delete removes a post by ID.
func (r *PostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected > 0, nil
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

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, content, author_id, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var post domain.Post
	var createdAt, updatedAt string

	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if post.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if post.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &post, nil
}
