package ports

import (
	"context"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
)

// BookRepository defines persistence operations for books.
type BookRepository interface {
	// List returns every book in storage order.
	List(ctx context.Context) ([]*domain.Book, error)
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	Create(ctx context.Context, book *domain.Book) error
	// Transition replaces the stored book with book only if its current
	// status is from. It returns domain.ErrBookNotFound or
	// domain.ErrStatusConflict otherwise.
	Transition(ctx context.Context, book *domain.Book, from domain.BookStatus) error
	Delete(ctx context.Context, id string) error
}
