// Package main is the Inkwell command line client. It talks to a running
// server over REST by default, or over gRPC with -grpc, and keeps the
// access token from the last register/login in ~/.inkwell_token.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prn-tf/inkwell/pkg/client"
)

const tokenFileName = ".inkwell_token"

func main() {
	httpAddr := flag.String("addr", "http://localhost:8080", "REST API base URL")
	grpcAddr := flag.String("grpc-addr", "localhost:9090", "gRPC API address")
	useGRPC := flag.Bool("grpc", false, "use the gRPC API instead of REST")
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	c, err := newClient(*useGRPC, *httpAddr, *grpcAddr)
	if err != nil {
		fatal("failed to create client: %v", err)
	}
	defer c.Close()

	if token, err := loadToken(); err == nil && token != "" {
		c.SetToken(token)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "register":
		runRegister(ctx, c, args)
	case "login":
		runLogin(ctx, c, args)
	case "create":
		runCreate(ctx, c, args)
	case "get":
		runGet(ctx, c, args)
	case "update":
		runUpdate(ctx, c, args)
	case "delete":
		runDelete(ctx, c, args)
	case "list":
		runList(ctx, c, args)
	case "logout":
		runLogout()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", flag.Arg(0))
		printUsage()
		os.Exit(1)
	}
}

func newClient(useGRPC bool, httpAddr, grpcAddr string) (client.Client, error) {
	if useGRPC {
		return client.NewGRPC(grpcAddr)
	}
	return client.NewHTTP(httpAddr), nil
}

func runRegister(ctx context.Context, c client.Client, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "username (3-64 characters)")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (8-128 characters)")
	parseFlags(fs, args)

	out, err := c.Register(ctx, *username, *email, *password)
	if err != nil {
		fatal("register failed: %v", err)
	}
	saveToken(out.AccessToken)
	fmt.Printf("registered user %q (id %d), logged in\n", out.User.Username, out.User.ID)
}

func runLogin(ctx context.Context, c client.Client, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	parseFlags(fs, args)

	out, err := c.Login(ctx, *username, *password)
	if err != nil {
		fatal("login failed: %v", err)
	}
	saveToken(out.AccessToken)
	fmt.Printf("logged in as %q\n", out.User.Username)
}

func runCreate(ctx context.Context, c client.Client, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "post title")
	content := fs.String("content", "", "post content")
	parseFlags(fs, args)

	post, err := c.CreatePost(ctx, *title, *content)
	if err != nil {
		fatal("create failed: %v", err)
	}
	fmt.Printf("created post %d: %s\n", post.ID, post.Title)
}

func runGet(ctx context.Context, c client.Client, args []string) {
	id := parseIDArg(args)

	post, err := c.GetPost(ctx, id)
	if err != nil {
		fatal("get failed: %v", err)
	}
	printPost(post)
}

func runUpdate(ctx context.Context, c client.Client, args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	title := fs.String("title", "", "new title")
	content := fs.String("content", "", "new content (omit to keep the current content)")

	id := parseIDArg(args)
	parseFlags(fs, args[1:])

	// Title and content are replaced together; when only the title
	// changes, carry the current content over.
	newContent := *content
	if newContent == "" {
		current, err := c.GetPost(ctx, id)
		if err != nil {
			fatal("failed to fetch current post: %v", err)
		}
		newContent = current.Content
	}

	post, err := c.UpdatePost(ctx, id, *title, newContent)
	if err != nil {
		fatal("update failed: %v", err)
	}
	fmt.Printf("updated post %d: %s\n", post.ID, post.Title)
}

func runDelete(ctx context.Context, c client.Client, args []string) {
	id := parseIDArg(args)

	if err := c.DeletePost(ctx, id); err != nil {
		fatal("delete failed: %v", err)
	}
	fmt.Printf("deleted post %d\n", id)
}

func runList(ctx context.Context, c client.Client, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 20, "posts per page (max 100)")
	offset := fs.Int("offset", 0, "number of posts to skip")
	parseFlags(fs, args)

	out, err := c.ListPosts(ctx, *limit, *offset)
	if err != nil {
		fatal("list failed: %v", err)
	}

	fmt.Printf("%d posts (showing %d from offset %d):\n", out.Total, len(out.Posts), out.Offset)
	for _, p := range out.Posts {
		fmt.Printf("  %d\t%s\t(author %d, %s)\n", p.ID, p.Title, p.AuthorID, p.CreatedAt.Format(time.RFC3339))
	}
}

func runLogout() {
	path, err := tokenPath()
	if err == nil {
		_ = os.Remove(path)
	}
	fmt.Println("logged out")
}

func printPost(p *client.Post) {
	fmt.Printf("Post %d by author %d\n", p.ID, p.AuthorID)
	fmt.Printf("Title:   %s\n", p.Title)
	fmt.Printf("Created: %s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated: %s\n", p.UpdatedAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Println(p.Content)
}

// parseIDArg reads the positional post ID.
func parseIDArg(args []string) int64 {
	if len(args) < 1 {
		fatal("missing post id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		fatal("invalid post id %q", args[0])
	}
	return id
}

func parseFlags(fs *flag.FlagSet, args []string) {
	_ = fs.Parse(args) // ExitOnError
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, tokenFileName), nil
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func saveToken(token string) {
	path, err := tokenPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot determine home directory, token not saved: %v\n", err)
		return
	}
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save token: %v\n", err)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`Inkwell CLI

Usage:
  inkwell [-addr url] [-grpc] [-grpc-addr host:port] <command> [arguments]

Commands:
  register  -username u -email e -password p   Create an account and log in
  login     -username u -password p            Log in
  logout                                       Forget the saved token
  create    -title t -content c                Create a post
  get       <id>                               Show a post
  update    <id> -title t [-content c]         Update a post
  delete    <id>                               Delete a post
  list      [-limit n] [-offset n]             List posts, newest first
  help                                         Show this help message

The access token from the last register/login is stored in ~/.inkwell_token.`)
}
