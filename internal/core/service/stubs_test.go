package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     []*domain.User
	createErr error
	findErr   error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	return &stubUserRepo{users: users}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.users = append(r.users, cloneUser(user))
	return nil
}

type stubBookRepo struct {
	books         []*domain.Book
	createErr     error
	transitionErr error
	transitions   int
}

func newStubBookRepo(books ...*domain.Book) *stubBookRepo {
	return &stubBookRepo{books: books}
}

func (r *stubBookRepo) index(id string) int {
	for i, b := range r.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (r *stubBookRepo) List(_ context.Context) ([]*domain.Book, error) {
	out := make([]*domain.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (r *stubBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	i := r.index(id)
	if i < 0 {
		return nil, domain.ErrBookNotFound
	}
	return r.books[i].Clone(), nil
}

func (r *stubBookRepo) Create(_ context.Context, book *domain.Book) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.books = append(r.books, book.Clone())
	return nil
}

func (r *stubBookRepo) Transition(_ context.Context, book *domain.Book, from domain.BookStatus) error {
	r.transitions++
	if r.transitionErr != nil {
		return r.transitionErr
	}
	i := r.index(book.ID)
	if i < 0 {
		return domain.ErrBookNotFound
	}
	if r.books[i].Status != from {
		return domain.ErrStatusConflict
	}
	r.books[i] = book.Clone()
	return nil
}

func (r *stubBookRepo) Delete(_ context.Context, id string) error {
	i := r.index(id)
	if i < 0 {
		return domain.ErrBookNotFound
	}
	r.books = append(r.books[:i], r.books[i+1:]...)
	return nil
}

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, key, bookID string) error {
	s.keys[key] = bookID
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var errDiskFull = errors.New("disk full")
