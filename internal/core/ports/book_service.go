package ports

import (
	"context"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
)

// AddBookInput carries the fields of an add-book request.
type AddBookInput struct {
	Title          string
	Author         string
	ISBN           string
	IdempotencyKey string
}

// AddBookResult is returned by AddBook.
type AddBookResult struct {
	Book *domain.Book
	// AlreadyExisted is true when the Idempotency-Key matched an earlier add.
	AlreadyExisted bool
}

// BookService defines the catalog and lending use cases.
type BookService interface {
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	AddBook(ctx context.Context, input AddBookInput) (*AddBookResult, error)
	BorrowBook(ctx context.Context, id, userID string) (*domain.Book, error)
	ReturnBook(ctx context.Context, id string) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) error
}
