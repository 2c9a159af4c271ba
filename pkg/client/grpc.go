package client

import (
	"context"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/prn-tf/inkwell/internal/rpc/blogpb"
	"github.com/prn-tf/inkwell/internal/transport"
)

// GRPCClient talks to the gRPC surface.
type GRPCClient struct {
	conn  *grpc.ClientConn
	blog  blogpb.BlogServiceClient
	token string
}

// NewGRPC creates a client for the gRPC API at addr (plaintext).
func NewGRPC(addr string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &GRPCClient{
		conn: conn,
		blog: blogpb.NewBlogServiceClient(conn),
	}, nil
}

var _ Client = (*GRPCClient)(nil)

// SetToken installs the bearer token sent with mutating requests.
func (c *GRPCClient) SetToken(token string) {
	c.token = token
}

// Close closes the underlying connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// withAuth attaches the bearer token as outgoing metadata.
func (c *GRPCClient) withAuth(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

func (c *GRPCClient) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	resp, err := c.blog.Register(ctx, &blogpb.RegisterRequest{
		Username: username, Email: email, Password: password,
	})
	if err != nil {
		return nil, fromStatus(err)
	}
	return toAuthResult(resp), nil
}

func (c *GRPCClient) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	resp, err := c.blog.Login(ctx, &blogpb.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fromStatus(err)
	}
	return toAuthResult(resp), nil
}

func (c *GRPCClient) CreatePost(ctx context.Context, title, content string) (*Post, error) {
	resp, err := c.blog.CreatePost(c.withAuth(ctx), &blogpb.CreatePostRequest{
		Title: title, Content: content,
	})
	if err != nil {
		return nil, fromStatus(err)
	}
	return toPost(resp), nil
}

func (c *GRPCClient) GetPost(ctx context.Context, id int64) (*Post, error) {
	resp, err := c.blog.GetPost(ctx, &blogpb.GetPostRequest{Id: id})
	if err != nil {
		return nil, fromStatus(err)
	}
	return toPost(resp), nil
}

func (c *GRPCClient) UpdatePost(ctx context.Context, id int64, title, content string) (*Post, error) {
	resp, err := c.blog.UpdatePost(c.withAuth(ctx), &blogpb.UpdatePostRequest{
		Id: id, Title: title, Content: content,
	})
	if err != nil {
		return nil, fromStatus(err)
	}
	return toPost(resp), nil
}

func (c *GRPCClient) DeletePost(ctx context.Context, id int64) error {
	if _, err := c.blog.DeletePost(c.withAuth(ctx), &blogpb.DeletePostRequest{Id: id}); err != nil {
		return fromStatus(err)
	}
	return nil
}

func (c *GRPCClient) ListPosts(ctx context.Context, limit, offset int) (*PostList, error) {
	limit, offset = transport.NormalizeLimitOffset(limit, offset)
	page, pageSize := offset/limit+1, limit

	resp, err := c.blog.ListPosts(ctx, &blogpb.ListPostsRequest{
		Page:     int32(page),
		PageSize: int32(pageSize),
	})
	if err != nil {
		return nil, fromStatus(err)
	}

	posts := make([]Post, 0, len(resp.GetPosts()))
	for _, p := range resp.GetPosts() {
		posts = append(posts, *toPost(p))
	}
	return &PostList{
		Posts:  posts,
		Total:  resp.GetTotal(),
		Limit:  int(resp.GetPageSize()),
		Offset: int(resp.GetPage()-1) * int(resp.GetPageSize()),
	}, nil
}

func toAuthResult(resp *blogpb.AuthResponse) *AuthResult {
	return &AuthResult{
		User: User{
			ID:        resp.GetUser().GetId(),
			Username:  resp.GetUser().GetUsername(),
			Email:     resp.GetUser().GetEmail(),
			CreatedAt: time.Unix(resp.GetUser().GetCreatedAt(), 0).UTC(),
		},
		AccessToken: resp.GetAccessToken(),
	}
}

func toPost(p *blogpb.Post) *Post {
	return &Post{
		ID:        p.GetId(),
		Title:     p.GetTitle(),
		Content:   p.GetContent(),
		AuthorID:  p.GetAuthorId(),
		CreatedAt: time.Unix(p.GetCreatedAt(), 0).UTC(),
		UpdatedAt: time.Unix(p.GetUpdatedAt(), 0).UTC(),
	}
}

// fromStatus maps a gRPC error onto an APIError so callers can handle
// failures uniformly across transports.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var httpStatus int
	switch st.Code() {
	case codes.InvalidArgument:
		httpStatus = http.StatusBadRequest
	case codes.AlreadyExists:
		httpStatus = http.StatusConflict
	case codes.Unauthenticated:
		httpStatus = http.StatusUnauthorized
	case codes.NotFound:
		httpStatus = http.StatusNotFound
	case codes.PermissionDenied:
		httpStatus = http.StatusForbidden
	default:
		httpStatus = http.StatusInternalServerError
	}
	return &APIError{StatusCode: httpStatus, Message: st.Message()}
}
