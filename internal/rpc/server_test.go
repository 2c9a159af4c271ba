package rpc

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/pkg/crypto"
	"github.com/prn-tf/inkwell/internal/repository"
	"github.com/prn-tf/inkwell/internal/rpc/blogpb"
	"github.com/prn-tf/inkwell/internal/service"
	"github.com/prn-tf/inkwell/internal/token"
)

type memUserRepo struct {
	users  map[string]*domain.Credentials
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.Credentials), nextID: 1}
}

func (m *memUserRepo) Create(ctx context.Context, input repository.NewUser) (*domain.User, error) {
	if _, ok := m.users[input.Username]; ok {
		return nil, domain.NewAlreadyExistsError("username")
	}
	for _, c := range m.users {
		if c.User.Email == input.Email {
			return nil, domain.NewAlreadyExistsError("email")
		}
	}
	user := domain.User{ID: m.nextID, Username: input.Username, Email: input.Email, CreatedAt: time.Now().UTC()}
	m.nextID++
	m.users[input.Username] = &domain.Credentials{User: user, PasswordHash: input.PasswordHash}
	return &user, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, c := range m.users {
		if c.User.ID == id {
			user := c.User
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) GetCredentialsByUsername(ctx context.Context, username string) (*domain.Credentials, error) {
	if c, ok := m.users[username]; ok {
		creds := *c
		return &creds, nil
	}
	return nil, repository.ErrNotFound
}

type memPostRepo struct {
	posts  map[int64]*domain.Post
	nextID int64
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[int64]*domain.Post), nextID: 1}
}

func (m *memPostRepo) Create(ctx context.Context, input repository.NewPost) (*domain.Post, error) {
	now := time.Now().UTC()
	post := &domain.Post{
		ID: m.nextID, Title: input.Title, Content: input.Content,
		AuthorID: input.AuthorID, CreatedAt: now, UpdatedAt: now,
	}
	m.nextID++
	m.posts[post.ID] = post
	return post, nil
}

func (m *memPostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	if p, ok := m.posts[id]; ok {
		post := *p
		return &post, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memPostRepo) UpdateOwned(ctx context.Context, postID, ownerID int64, patch repository.PostPatch) (*domain.Post, error) {
	p, ok := m.posts[postID]
	if !ok || p.AuthorID != ownerID {
		return nil, repository.ErrNotFound
	}
	p.Title = patch.Title
	p.Content = patch.Content
	p.UpdatedAt = time.Now().UTC()
	post := *p
	return &post, nil
}

func (m *memPostRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := m.posts[id]; !ok {
		return false, nil
	}
	delete(m.posts, id)
	return true, nil
}

func (m *memPostRepo) List(ctx context.Context, page repository.Page) ([]*domain.Post, error) {
	all := make([]*domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		post := *p
		all = append(all, &post)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	start := (page.Number - 1) * page.Size
	if start >= len(all) {
		return []*domain.Post{}, nil
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *memPostRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.posts)), nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Verify(password, encoded string) error {
	if encoded == "plain:"+password {
		return nil
	}
	return crypto.ErrPasswordMismatch
}

func newTestServer() *BlogServer {
	logger := zerolog.Nop()
	tokens := token.NewService("0123456789abcdef0123456789abcdef", time.Hour)
	authSvc := service.NewAuthService(newMemUserRepo(), plainHasher{}, tokens, logger)
	postSvc := service.NewPostService(newMemPostRepo(), logger)
	return NewBlogServer(authSvc, postSvc, tokens, logger)
}

func authCtx(tok string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+tok)
	return metadata.NewIncomingContext(context.Background(), md)
}

func register(t *testing.T, srv *BlogServer, username string) string {
	t.Helper()
	out, err := srv.Register(context.Background(), &blogpb.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return out.GetAccessToken()
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if status.Code(err) != code {
		t.Fatalf("expected code %v, got %v (err: %v)", code, status.Code(err), err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer()
	ctx := context.Background()

	out, err := srv.Register(ctx, &blogpb.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "longenough",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if out.GetUser().GetUsername() != "alice" || out.GetAccessToken() == "" {
		t.Errorf("unexpected register response: %v", out)
	}

	_, err = srv.Register(ctx, &blogpb.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "longenough",
	})
	wantCode(t, err, codes.AlreadyExists)

	_, err = srv.Register(ctx, &blogpb.RegisterRequest{
		Username: "ab", Email: "x@example.com", Password: "longenough",
	})
	wantCode(t, err, codes.InvalidArgument)

	login, err := srv.Login(ctx, &blogpb.LoginRequest{Username: "alice", Password: "longenough"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.GetAccessToken() == "" {
		t.Error("expected access token on login")
	}

	_, err = srv.Login(ctx, &blogpb.LoginRequest{Username: "alice", Password: "wrong"})
	wantCode(t, err, codes.Unauthenticated)

	_, err = srv.Login(ctx, &blogpb.LoginRequest{Username: "ghost", Password: "whatever"})
	wantCode(t, err, codes.Unauthenticated)
}

func TestPostRPCs(t *testing.T) {
	srv := newTestServer()
	aliceToken := register(t, srv, "alice")
	bobToken := register(t, srv, "bob")

	// Mutations require metadata auth.
	_, err := srv.CreatePost(context.Background(), &blogpb.CreatePostRequest{Title: "T", Content: "C"})
	wantCode(t, err, codes.Unauthenticated)

	post, err := srv.CreatePost(authCtx(aliceToken), &blogpb.CreatePostRequest{Title: "Hello", Content: "World"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Reads are public.
	got, err := srv.GetPost(context.Background(), &blogpb.GetPostRequest{Id: post.GetId()})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.GetTitle() != "Hello" {
		t.Errorf("unexpected post: %v", got)
	}

	_, err = srv.GetPost(context.Background(), &blogpb.GetPostRequest{Id: 9999})
	wantCode(t, err, codes.NotFound)

	// Non-owner mutations are denied.
	_, err = srv.UpdatePost(authCtx(bobToken), &blogpb.UpdatePostRequest{Id: post.GetId(), Title: "X", Content: "Y"})
	wantCode(t, err, codes.PermissionDenied)
	_, err = srv.DeletePost(authCtx(bobToken), &blogpb.DeletePostRequest{Id: post.GetId()})
	wantCode(t, err, codes.PermissionDenied)

	updated, err := srv.UpdatePost(authCtx(aliceToken), &blogpb.UpdatePostRequest{
		Id: post.GetId(), Title: "New", Content: "Body",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.GetTitle() != "New" {
		t.Errorf("update not applied: %v", updated)
	}

	if _, err := srv.DeletePost(authCtx(aliceToken), &blogpb.DeletePostRequest{Id: post.GetId()}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err = srv.GetPost(context.Background(), &blogpb.GetPostRequest{Id: post.GetId()})
	wantCode(t, err, codes.NotFound)
}

func TestListPostsRPC(t *testing.T) {
	srv := newTestServer()
	tok := register(t, srv, "alice")

	for i := 1; i <= 45; i++ {
		if _, err := srv.CreatePost(authCtx(tok), &blogpb.CreatePostRequest{
			Title: fmt.Sprintf("Post %d", i), Content: "body",
		}); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	// Defaults: page 1, page size 20.
	out, err := srv.ListPosts(context.Background(), &blogpb.ListPostsRequest{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(out.GetPosts()) != 20 || out.GetTotal() != 45 || out.GetPage() != 1 || out.GetPageSize() != 20 {
		t.Errorf("unexpected default page: %d posts, total %d, page %d, size %d",
			len(out.GetPosts()), out.GetTotal(), out.GetPage(), out.GetPageSize())
	}
	if out.GetPosts()[0].GetTitle() != "Post 45" {
		t.Errorf("expected newest first, got %q", out.GetPosts()[0].GetTitle())
	}

	// Third page of 20 holds the last 5.
	out, err = srv.ListPosts(context.Background(), &blogpb.ListPostsRequest{Page: 3, PageSize: 20})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(out.GetPosts()) != 5 || out.GetPage() != 3 {
		t.Errorf("unexpected third page: %d posts, page %d", len(out.GetPosts()), out.GetPage())
	}

	// Oversized page size is rejected outright.
	_, err = srv.ListPosts(context.Background(), &blogpb.ListPostsRequest{PageSize: 101})
	wantCode(t, err, codes.InvalidArgument)
}

func TestAuthMetadataShapes(t *testing.T) {
	srv := newTestServer()
	tok := register(t, srv, "alice")

	cases := []struct {
		name  string
		value string
		want  codes.Code
	}{
		{name: "lowercase scheme", value: "bearer " + tok, want: codes.OK},
		{name: "missing scheme", value: tok, want: codes.Unauthenticated},
		{name: "wrong scheme", value: "Basic " + tok, want: codes.Unauthenticated},
		{name: "trailing junk", value: "Bearer " + tok + " extra", want: codes.Unauthenticated},
		{name: "garbage token", value: "Bearer not.a.token", want: codes.Unauthenticated},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(),
				metadata.Pairs("authorization", tt.value))
			_, err := srv.CreatePost(ctx, &blogpb.CreatePostRequest{Title: "T", Content: "C"})
			if status.Code(err) != tt.want {
				t.Errorf("expected %v, got %v (err: %v)", tt.want, status.Code(err), err)
			}
		})
	}
}
