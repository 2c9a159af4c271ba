package rpc

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/rpc/blogpb"
	"github.com/prn-tf/inkwell/internal/service"
	"github.com/prn-tf/inkwell/internal/token"
	"github.com/prn-tf/inkwell/internal/transport"
)

// BlogServer implements blogpb.BlogServiceServer on top of the same
// services the REST handlers use.
type BlogServer struct {
	blogpb.UnimplementedBlogServiceServer

	auth   *service.AuthService
	posts  *service.PostService
	tokens *token.Service
	logger zerolog.Logger
}

// NewBlogServer creates a new BlogServer.
func NewBlogServer(auth *service.AuthService, posts *service.PostService, tokens *token.Service, logger zerolog.Logger) *BlogServer {
	return &BlogServer{
		auth:   auth,
		posts:  posts,
		tokens: tokens,
		logger: logger.With().Str("component", "grpc").Logger(),
	}
}

var _ blogpb.BlogServiceServer = (*BlogServer)(nil)

// Register creates a new user account.
func (s *BlogServer) Register(ctx context.Context, req *blogpb.RegisterRequest) (*blogpb.AuthResponse, error) {
	out, err := s.auth.Register(ctx, service.RegisterInput{
		Username: req.GetUsername(),
		Email:    req.GetEmail(),
		Password: req.GetPassword(),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &blogpb.AuthResponse{
		User:        toPbUser(out.User),
		AccessToken: out.AccessToken,
	}, nil
}

// Login verifies credentials and returns a fresh token.
func (s *BlogServer) Login(ctx context.Context, req *blogpb.LoginRequest) (*blogpb.AuthResponse, error) {
	out, err := s.auth.Login(ctx, service.LoginInput{
		Username: req.GetUsername(),
		Password: req.GetPassword(),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &blogpb.AuthResponse{
		User:        toPbUser(out.User),
		AccessToken: out.AccessToken,
	}, nil
}

// CreatePost creates a post owned by the authenticated user.
func (s *BlogServer) CreatePost(ctx context.Context, req *blogpb.CreatePostRequest) (*blogpb.Post, error) {
	claims, err := authenticate(ctx, s.tokens)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, claims.UserID, service.PostInput{
		Title:   req.GetTitle(),
		Content: req.GetContent(),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toPbPost(post), nil
}

// GetPost retrieves a post. Reads are public.
func (s *BlogServer) GetPost(ctx context.Context, req *blogpb.GetPostRequest) (*blogpb.Post, error) {
	if req.GetId() < 1 {
		return nil, toStatus(domain.NewValidationError("id", "must be a positive integer"))
	}

	post, err := s.posts.Get(ctx, req.GetId())
	if err != nil {
		return nil, toStatus(err)
	}
	return toPbPost(post), nil
}

// UpdatePost replaces the title and content of an owned post.
func (s *BlogServer) UpdatePost(ctx context.Context, req *blogpb.UpdatePostRequest) (*blogpb.Post, error) {
	claims, err := authenticate(ctx, s.tokens)
	if err != nil {
		return nil, err
	}
	if req.GetId() < 1 {
		return nil, toStatus(domain.NewValidationError("id", "must be a positive integer"))
	}

	post, err := s.posts.Update(ctx, req.GetId(), claims.UserID, service.PostInput{
		Title:   req.GetTitle(),
		Content: req.GetContent(),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toPbPost(post), nil
}

// DeletePost removes an owned post.
func (s *BlogServer) DeletePost(ctx context.Context, req *blogpb.DeletePostRequest) (*blogpb.DeletePostResponse, error) {
	claims, err := authenticate(ctx, s.tokens)
	if err != nil {
		return nil, err
	}
	if req.GetId() < 1 {
		return nil, toStatus(domain.NewValidationError("id", "must be a positive integer"))
	}

	if err := s.posts.Delete(ctx, req.GetId(), claims.UserID); err != nil {
		return nil, toStatus(err)
	}
	return &blogpb.DeletePostResponse{}, nil
}

// ListPosts returns one page of posts, newest first.
func (s *BlogServer) ListPosts(ctx context.Context, req *blogpb.ListPostsRequest) (*blogpb.ListPostsResponse, error) {
	if req.GetPage() < 0 {
		return nil, status.Error(codes.InvalidArgument, "page: must not be negative")
	}
	pageSize := int(req.GetPageSize())
	if pageSize < 0 || pageSize > transport.MaxPageSize {
		return nil, status.Errorf(codes.InvalidArgument, "page_size: must be between 0 and %d", transport.MaxPageSize)
	}

	limit, offset := transport.PageToLimitOffset(int(req.GetPage()), pageSize)

	out, err := s.posts.List(ctx, limit, offset)
	if err != nil {
		return nil, toStatus(err)
	}

	posts := make([]*blogpb.Post, 0, len(out.Posts))
	for _, p := range out.Posts {
		posts = append(posts, toPbPost(p))
	}

	return &blogpb.ListPostsResponse{
		Posts:    posts,
		Total:    out.Total,
		Page:     int32(out.Offset/out.Limit + 1),
		PageSize: int32(out.Limit),
	}, nil
}

func toPbUser(u *domain.User) *blogpb.User {
	return &blogpb.User{
		Id:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Unix(),
	}
}

func toPbPost(p *domain.Post) *blogpb.Post {
	return &blogpb.Post{
		Id:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorId:  p.AuthorID,
		CreatedAt: p.CreatedAt.Unix(),
		UpdatedAt: p.UpdatedAt.Unix(),
	}
}
