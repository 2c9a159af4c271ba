package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkwell/internal/domain"
)

// ErrCacheMiss indicates the key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the byte-level cache used by the cached repositories.
// Implemented by Redis (distributed) and an in-memory map (single node,
// tests).
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if the key does
	// not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// CachedPostRepository is a read-through cache around a PostRepository.
// Only GetByID is cached: list pages churn on every insert and are cheap
// to serve from the store. Mutations invalidate before delegating, so the
// worst case after a lost invalidation is one stale read within the TTL.
type CachedPostRepository struct {
	inner  PostRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedPostRepository wraps inner with a read-through cache.
func NewCachedPostRepository(inner PostRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedPostRepository {
	return &CachedPostRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "post_cache").Logger(),
	}
}

func postCacheKey(id int64) string {
	return fmt.Sprintf("post:%d", id)
}

// Create delegates to the store and primes the cache with the new post.
func (r *CachedPostRepository) Create(ctx context.Context, input NewPost) (*domain.Post, error) {
	post, err := r.inner.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	r.store(ctx, post)
	return post, nil
}

// GetByID serves from cache when possible, falling back to the store.
// Cache failures are logged and treated as misses; they never surface.
func (r *CachedPostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	raw, err := r.cache.Get(ctx, postCacheKey(id))
	if err == nil {
		var post domain.Post
		if err := json.Unmarshal(raw, &post); err == nil {
			return &post, nil
		}
		r.logger.Warn().Int64("post_id", id).Msg("dropping undecodable cache entry")
		_ = r.cache.Delete(ctx, postCacheKey(id))
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn().Err(err).Int64("post_id", id).Msg("cache get failed")
	}

	post, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, post)
	return post, nil
}

// UpdateOwned invalidates the cached entry, then delegates. The fresh row
// is re-cached on success.
func (r *CachedPostRepository) UpdateOwned(ctx context.Context, postID, ownerID int64, patch PostPatch) (*domain.Post, error) {
	r.invalidate(ctx, postID)
	post, err := r.inner.UpdateOwned(ctx, postID, ownerID, patch)
	if err != nil {
		return nil, err
	}
	r.store(ctx, post)
	return post, nil
}

// Delete invalidates the cached entry, then delegates.
func (r *CachedPostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.invalidate(ctx, id)
	return r.inner.Delete(ctx, id)
}

// List is not cached.
func (r *CachedPostRepository) List(ctx context.Context, page Page) ([]*domain.Post, error) {
	return r.inner.List(ctx, page)
}

// Count is not cached.
func (r *CachedPostRepository) Count(ctx context.Context) (int64, error) {
	return r.inner.Count(ctx)
}

func (r *CachedPostRepository) store(ctx context.Context, post *domain.Post) {
	raw, err := json.Marshal(post)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, postCacheKey(post.ID), raw, r.ttl); err != nil {
		r.logger.Warn().Err(err).Int64("post_id", post.ID).Msg("cache set failed")
	}
}

func (r *CachedPostRepository) invalidate(ctx context.Context, id int64) {
	if err := r.cache.Delete(ctx, postCacheKey(id)); err != nil {
		r.logger.Warn().Err(err).Int64("post_id", id).Msg("cache invalidation failed")
	}
}

// Ensure CachedPostRepository implements PostRepository.
var _ PostRepository = (*CachedPostRepository)(nil)
