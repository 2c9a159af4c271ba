package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/repository"
)

// PostService handles post CRUD with ownership enforcement.
type PostService struct {
	posts  repository.PostRepository
	logger zerolog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(posts repository.PostRepository, logger zerolog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		logger: logger.With().Str("service", "post").Logger(),
	}
}

// PostInput carries the mutable fields of a post for create and update.
type PostInput struct {
	Title   string
	Content string
}

func (in PostInput) normalize() (repository.PostPatch, error) {
	title, err := domain.NormalizeTitle(in.Title)
	if err != nil {
		return repository.PostPatch{}, err
	}
	content, err := domain.NormalizeContent(in.Content)
	if err != nil {
		return repository.PostPatch{}, err
	}
	return repository.PostPatch{Title: title, Content: content}, nil
}

// Create creates a new post owned by authorID.
func (s *PostService) Create(ctx context.Context, authorID int64, input PostInput) (*domain.Post, error) {
	patch, err := input.normalize()
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, repository.NewPost{
		Title:    patch.Title,
		Content:  patch.Content,
		AuthorID: authorID,
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("author_id", authorID).Msg("failed to create post")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().
		Int64("post_id", post.ID).
		Int64("author_id", authorID).
		Msg("post created")

	return post, nil
}

// Get retrieves a post by ID. Posts are publicly readable.
func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("post id: %d", id))
		}
		s.logger.Error().Err(err).Int64("post_id", id).Msg("failed to get post")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return post, nil
}

// Update replaces the title and content of a post owned by userID.
// A missing post yields not-found; a post owned by someone else yields
// domain.ErrForbidden. The final mutation stays conditional on ownership,
// so a concurrent delete degrades to not-found rather than clobbering.
func (s *PostService) Update(ctx context.Context, postID, userID int64, input PostInput) (*domain.Post, error) {
	patch, err := input.normalize()
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(ctx, postID, userID); err != nil {
		return nil, err
	}

	post, err := s.posts.UpdateOwned(ctx, postID, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("post id: %d", postID))
		}
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("failed to update post")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().
		Int64("post_id", postID).
		Int64("user_id", userID).
		Msg("post updated")

	return post, nil
}

// Delete removes a post owned by userID.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	if err := s.checkOwnership(ctx, postID, userID); err != nil {
		return err
	}

	deleted, err := s.posts.Delete(ctx, postID)
	if err != nil {
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("failed to delete post")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !deleted {
		// Raced with another delete.
		return domain.NewNotFoundError(fmt.Sprintf("post id: %d", postID))
	}

	s.logger.Info().
		Int64("post_id", postID).
		Int64("user_id", userID).
		Msg("post deleted")

	return nil
}

// checkOwnership loads the post and distinguishes missing from
// not-owned-by-userID.
func (s *PostService) checkOwnership(ctx context.Context, postID, userID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError(fmt.Sprintf("post id: %d", postID))
		}
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("failed to load post for ownership check")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if post.AuthorID != userID {
		return domain.ErrForbidden
	}
	return nil
}

// ListPostsOutput contains one page of posts plus the total count and the
// window that produced it.
type ListPostsOutput struct {
	Posts  []*domain.Post
	Total  int64
	Limit  int
	Offset int
}

// List returns posts newest-first for the given limit/offset window.
// The store speaks page/size, so the window is translated: the page size
// is the limit (at least 1) and the page number is offset/size + 1.
// Offsets that are not a multiple of the limit snap back to the start of
// the containing page.
func (s *PostService) List(ctx context.Context, limit, offset int) (*ListPostsOutput, error) {
	if limit < 1 {
		limit = 1
	}
	if offset < 0 {
		offset = 0
	}
	page := repository.Page{
		Number: offset/limit + 1,
		Size:   limit,
	}

	posts, err := s.posts.List(ctx, page)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list posts")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count posts")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return &ListPostsOutput{
		Posts:  posts,
		Total:  total,
		Limit:  limit,
		Offset: (page.Number - 1) * page.Size,
	}, nil
}
