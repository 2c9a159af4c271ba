package service

import (
	"context"
	"sort"
	"time"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/pkg/crypto"
	"github.com/prn-tf/inkwell/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[string]*domain.Credentials // keyed by username
	nextID    int64
	createErr error
	getErr    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*domain.Credentials),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, input repository.NewUser) (*domain.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, exists := m.users[input.Username]; exists {
		return nil, domain.NewAlreadyExistsError("username")
	}
	for _, c := range m.users {
		if c.User.Email == input.Email {
			return nil, domain.NewAlreadyExistsError("email")
		}
	}
	user := domain.User{
		ID:        m.nextID,
		Username:  input.Username,
		Email:     input.Email,
		CreatedAt: time.Now().UTC(),
	}
	m.nextID++
	m.users[input.Username] = &domain.Credentials{User: user, PasswordHash: input.PasswordHash}
	return &user, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, c := range m.users {
		if c.User.ID == id {
			user := c.User
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetCredentialsByUsername(ctx context.Context, username string) (*domain.Credentials, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if c, exists := m.users[username]; exists {
		creds := *c
		return &creds, nil
	}
	return nil, repository.ErrNotFound
}

// MockPostRepository is a mock implementation of repository.PostRepository.
type MockPostRepository struct {
	posts     map[int64]*domain.Post
	nextID    int64
	createErr error
	getErr    error
	listErr   error
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		posts:  make(map[int64]*domain.Post),
		nextID: 1,
	}
}

func (m *MockPostRepository) Create(ctx context.Context, input repository.NewPost) (*domain.Post, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	now := time.Now().UTC()
	post := &domain.Post{
		ID:        m.nextID,
		Title:     input.Title,
		Content:   input.Content,
		AuthorID:  input.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextID++
	m.posts[post.ID] = post
	return post, nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, exists := m.posts[id]; exists {
		post := *p
		return &post, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockPostRepository) UpdateOwned(ctx context.Context, postID, ownerID int64, patch repository.PostPatch) (*domain.Post, error) {
	p, exists := m.posts[postID]
	if !exists || p.AuthorID != ownerID {
		return nil, repository.ErrNotFound
	}
	p.Title = patch.Title
	p.Content = patch.Content
	p.UpdatedAt = time.Now().UTC()
	post := *p
	return &post, nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if _, exists := m.posts[id]; !exists {
		return false, nil
	}
	delete(m.posts, id)
	return true, nil
}

func (m *MockPostRepository) List(ctx context.Context, page repository.Page) ([]*domain.Post, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
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

func (m *MockPostRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.posts)), nil
}

// fakeHasher records calls instead of running argon2, keeping tests fast
// and letting them assert on the login timing-equalization path.
type fakeHasher struct {
	hashCalls   int
	verifyCalls []string // encoded hashes passed to Verify
	verifyErr   error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	f.hashCalls++
	return "hashed:" + password, nil
}

func (f *fakeHasher) Verify(password, encoded string) error {
	f.verifyCalls = append(f.verifyCalls, encoded)
	if f.verifyErr != nil {
		return f.verifyErr
	}
	if encoded == "hashed:"+password {
		return nil
	}
	return crypto.ErrPasswordMismatch
}
