package jsonfile

import (
	"context"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

var _ ports.BookRepository = (*BookRepository)(nil)

// BookRepository implements ports.BookRepository over the document's book list.
// Each call works on a freshly read document, so returned books are never
// shared with the store.
type BookRepository struct {
	store *Store
}

func NewBookRepository(store *Store) *BookRepository {
	return &BookRepository{store: store}
}

func (r *BookRepository) List(_ context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	r.store.View(func(doc *domain.Document) {
		books = doc.Books
	})
	return books, nil
}

func (r *BookRepository) FindByID(_ context.Context, id string) (*domain.Book, error) {
	var found *domain.Book
	r.store.View(func(doc *domain.Document) {
		if i := indexOf(doc.Books, id); i >= 0 {
			found = doc.Books[i]
		}
	})
	if found == nil {
		return nil, domain.ErrBookNotFound
	}
	return found, nil
}

func (r *BookRepository) Create(_ context.Context, book *domain.Book) error {
	return r.store.Update(func(doc *domain.Document) error {
		doc.Books = append(doc.Books, book.Clone())
		return nil
	})
}

func (r *BookRepository) Transition(_ context.Context, book *domain.Book, from domain.BookStatus) error {
	return r.store.Update(func(doc *domain.Document) error {
		i := indexOf(doc.Books, book.ID)
		if i < 0 {
			return domain.ErrBookNotFound
		}
		if doc.Books[i].Status != from {
			return domain.ErrStatusConflict
		}
		doc.Books[i] = book.Clone()
		return nil
	})
}

func (r *BookRepository) Delete(_ context.Context, id string) error {
	return r.store.Update(func(doc *domain.Document) error {
		i := indexOf(doc.Books, id)
		if i < 0 {
			return domain.ErrBookNotFound
		}
		doc.Books = append(doc.Books[:i], doc.Books[i+1:]...)
		return nil
	})
}

func indexOf(books []*domain.Book, id string) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
