package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
	"github.com/sirpyerre/library-tracker/internal/pkg/metrics"
)

// BookService implements the catalog and the borrow/return lifecycle.
type BookService struct {
	books  ports.BookRepository
	users  ports.UserRepository
	idem   ports.IdempotencyStore
	ids    *idGenerator
	logger zerolog.Logger
}

// NewBookService returns a BookService. idem may be nil, in which case
// Idempotency-Keys are ignored.
func NewBookService(books ports.BookRepository, users ports.UserRepository, idem ports.IdempotencyStore, logger zerolog.Logger) *BookService {
	return &BookService{
		books:  books,
		users:  users,
		idem:   idem,
		ids:    &idGenerator{now: time.Now},
		logger: logger,
	}
}

func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *BookService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.FindByID(ctx, id)
}

// AddBook creates an available book. If an idempotency key is provided and
// already maps to an existing book, that book is returned without side effects.
func (s *BookService) AddBook(ctx context.Context, input ports.AddBookInput) (*ports.AddBookResult, error) {
	if input.Title == "" || input.Author == "" {
		return nil, s.reject("add", domain.MissingField("Title and author are required"))
	}

	if existing := s.replay(ctx, input.IdempotencyKey); existing != nil {
		return &ports.AddBookResult{Book: existing, AlreadyExisted: true}, nil
	}

	book := &domain.Book{
		ID:      s.ids.next(),
		Title:   input.Title,
		Author:  input.Author,
		ISBN:    input.ISBN,
		Status:  domain.StatusAvailable,
		AddedAt: time.Now().UTC(),
	}
	if err := s.books.Create(ctx, book); err != nil {
		s.logger.Error().Err(err).Msg("failed to add book")
		return nil, fmt.Errorf("add book: %w", err)
	}

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, input.IdempotencyKey, book.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	metrics.BookOperationsTotal.WithLabelValues("add").Inc()
	s.logger.Info().Str("book_id", book.ID).Str("title", book.Title).Msg("book added")

	return &ports.AddBookResult{Book: book}, nil
}

// BorrowBook lends the book to userID. Checks run in this order: missing
// user id, unknown book, already borrowed, unknown user.
func (s *BookService) BorrowBook(ctx context.Context, id, userID string) (*domain.Book, error) {
	if userID == "" {
		return nil, s.reject("borrow", domain.MissingField("User ID is required"))
	}

	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, s.reject("borrow", err)
	}
	if book.Status == domain.StatusBorrowed {
		return nil, s.reject("borrow", domain.ErrAlreadyBorrowed)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.reject("borrow", err)
	}

	updated := book.Clone()
	updated.Lend(user, time.Now())
	if err := s.books.Transition(ctx, updated, domain.StatusAvailable); err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			err = domain.ErrAlreadyBorrowed
		}
		return nil, s.reject("borrow", err)
	}

	metrics.BookOperationsTotal.WithLabelValues("borrow").Inc()
	s.logger.Info().Str("book_id", id).Str("user_id", userID).Msg("book borrowed")

	return updated, nil
}

// ReturnBook moves a borrowed book back to available.
func (s *BookService) ReturnBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, s.reject("return", err)
	}
	if book.Status == domain.StatusAvailable {
		return nil, s.reject("return", domain.ErrNotBorrowed)
	}

	updated := book.Clone()
	updated.Release()
	if err := s.books.Transition(ctx, updated, domain.StatusBorrowed); err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			err = domain.ErrNotBorrowed
		}
		return nil, s.reject("return", err)
	}

	metrics.BookOperationsTotal.WithLabelValues("return").Inc()
	s.logger.Info().Str("book_id", id).Str("user_id", book.BorrowedBy).Msg("book returned")

	return updated, nil
}

// DeleteBook removes the book permanently, whatever its status.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	if err := s.books.Delete(ctx, id); err != nil {
		return s.reject("delete", err)
	}

	metrics.BookOperationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Str("book_id", id).Msg("book deleted")
	return nil
}

// replay returns the book an earlier request with the same key created, or nil.
func (s *BookService) replay(ctx context.Context, key string) *domain.Book {
	if key == "" || s.idem == nil {
		return nil
	}

	bookID, found, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		// The book was deleted since; treat the key as unused.
		return nil
	}

	metrics.IdempotentReplaysTotal.Inc()
	s.logger.Info().Str("idempotency_key", key).Str("book_id", book.ID).Msg("idempotent replay")
	return book
}

// reject records a rejected operation and returns err, wrapping anything that
// is not a known business error.
func (s *BookService) reject(op string, err error) error {
	reason, ok := rejectionReason(err)
	if !ok {
		s.logger.Error().Err(err).Str("operation", op).Msg("book operation failed")
		return fmt.Errorf("%s book: %w", op, err)
	}
	metrics.BookOperationRejectionsTotal.WithLabelValues(op, reason).Inc()
	return err
}

// rejectionReason maps a business error to its metrics reason label.
func rejectionReason(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return "missing_field", true
	case errors.Is(err, domain.ErrBookNotFound):
		return "book_not_found", true
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found", true
	case errors.Is(err, domain.ErrAlreadyBorrowed):
		return "already_borrowed", true
	case errors.Is(err, domain.ErrNotBorrowed):
		return "not_borrowed", true
	}
	return "", false
}

// idGenerator produces millisecond-timestamp ids that never repeat within
// the process, even when two books are added in the same millisecond.
type idGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func (g *idGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
