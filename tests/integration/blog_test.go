// Package integration provides end-to-end tests for the Inkwell API,
// running the full stack over an in-memory SQLite database.
package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/inkwell/internal/cache/memory"
	"github.com/prn-tf/inkwell/internal/handler"
	"github.com/prn-tf/inkwell/internal/metrics"
	"github.com/prn-tf/inkwell/internal/pkg/crypto"
	"github.com/prn-tf/inkwell/internal/repository"
	"github.com/prn-tf/inkwell/internal/repository/sqlite"
	"github.com/prn-tf/inkwell/internal/service"
	"github.com/prn-tf/inkwell/internal/token"
	"github.com/prn-tf/inkwell/pkg/client"
)

// cheapArgon2 keeps the full-stack tests fast while still exercising the
// real hasher.
var cheapArgon2 = crypto.Argon2Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newTestStack(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(":memory:"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	cache := memory.NewCache()
	t.Cleanup(cache.Stop)

	postRepo := repository.NewCachedPostRepository(
		sqlite.NewPostRepository(db), cache, 5*time.Minute, logger)

	tokens := token.NewService("0123456789abcdef0123456789abcdef", time.Hour)
	authSvc := service.NewAuthService(
		sqlite.NewUserRepository(db),
		crypto.NewArgon2HasherWithParams(cheapArgon2),
		tokens, logger)
	postSvc := service.NewPostService(postRepo, logger)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(authSvc, logger),
		PostHandler:    handler.NewPostHandler(postSvc, tokens, logger),
		Metrics:        metrics.New(),
		Database:       db,
		Logger:         logger,
		MaxBodySize:    1 << 20,
		MaxConcurrency: 16,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestBlogEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestStack(t)
	ctx := context.Background()

	alice := client.NewHTTP(srv.URL)
	bob := client.NewHTTP(srv.URL)
	anon := client.NewHTTP(srv.URL)

	// Register two users.
	aliceAuth, err := alice.Register(ctx, "alice", "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, aliceAuth.AccessToken)
	alice.SetToken(aliceAuth.AccessToken)

	bobAuth, err := bob.Register(ctx, "bob", "bob@example.com", "battery staple")
	require.NoError(t, err)
	bob.SetToken(bobAuth.AccessToken)

	// Duplicate registration conflicts.
	_, err = anon.Register(ctx, "alice", "elsewhere@example.com", "correct horse")
	requireAPIError(t, err, 409)

	// Login round-trip against the stored argon2 hash.
	login, err := anon.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	require.Equal(t, aliceAuth.User.ID, login.User.ID)

	_, err = anon.Login(ctx, "alice", "wrong password")
	requireAPIError(t, err, 401)
	_, err = anon.Login(ctx, "nobody", "whatever")
	requireAPIError(t, err, 401)

	// Alice writes a post; anyone can read it.
	post, err := alice.CreatePost(ctx, "First Post", "Hello, world")
	require.NoError(t, err)
	require.Equal(t, aliceAuth.User.ID, post.AuthorID)

	fetched, err := anon.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "First Post", fetched.Title)

	// Bob cannot touch Alice's post.
	_, err = bob.UpdatePost(ctx, post.ID, "Hijacked", "by bob")
	requireAPIError(t, err, 403)
	err = bob.DeletePost(ctx, post.ID)
	requireAPIError(t, err, 403)

	// Anonymous writes are rejected.
	_, err = anon.CreatePost(ctx, "Nope", "no token")
	requireAPIError(t, err, 401)

	// Alice updates and the cached read sees the new content.
	updated, err := alice.UpdatePost(ctx, post.ID, "First Post, Revised", "Hello again")
	require.NoError(t, err)
	require.Equal(t, "First Post, Revised", updated.Title)
	require.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	fetched, err = anon.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "Hello again", fetched.Content)

	// Delete, then the post is gone.
	require.NoError(t, alice.DeletePost(ctx, post.ID))
	_, err = anon.GetPost(ctx, post.ID)
	requireAPIError(t, err, 404)
}

func TestListPaginationEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestStack(t)
	ctx := context.Background()

	alice := client.NewHTTP(srv.URL)
	auth, err := alice.Register(ctx, "alice", "alice@example.com", "correct horse")
	require.NoError(t, err)
	alice.SetToken(auth.AccessToken)

	for i := 0; i < 25; i++ {
		_, err := alice.CreatePost(ctx, "Post", "body")
		require.NoError(t, err)
	}

	// Default window.
	page, err := alice.ListPosts(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Posts, 20)
	require.EqualValues(t, 25, page.Total)
	require.Equal(t, 20, page.Limit)

	// Second page.
	page, err = alice.ListPosts(ctx, 20, 20)
	require.NoError(t, err)
	require.Len(t, page.Posts, 5)
	require.Equal(t, 20, page.Offset)

	// Newest first, IDs strictly descending within a page.
	page, err = alice.ListPosts(ctx, 25, 0)
	require.NoError(t, err)
	require.Len(t, page.Posts, 25)
	for i := 1; i < len(page.Posts); i++ {
		require.Greater(t, page.Posts[i-1].ID, page.Posts[i].ID)
	}
}

func requireAPIError(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
}
