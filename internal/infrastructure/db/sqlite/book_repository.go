package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
	"github.com/sirpyerre/library-tracker/internal/pkg/metrics"
)

var _ ports.BookRepository = (*BookRepository)(nil)

// BookRepository keeps one row per book. The autoincrement seq column keeps
// List in insertion order.
type BookRepository struct {
	db *DB
}

func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db}
}

type bookRow struct {
	Seq          int64          `db:"seq"`
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Author       string         `db:"author"`
	ISBN         string         `db:"isbn"`
	Status       string         `db:"status"`
	BorrowedBy   sql.NullString `db:"borrowed_by"`
	BorrowerName sql.NullString `db:"borrower_name"`
	BorrowDate   sql.NullString `db:"borrow_date"`
	AddedAt      string         `db:"added_at"`
}

func (r bookRow) toDomain() *domain.Book {
	b := &domain.Book{
		ID:           r.ID,
		Title:        r.Title,
		Author:       r.Author,
		ISBN:         r.ISBN,
		Status:       domain.BookStatus(r.Status),
		BorrowedBy:   r.BorrowedBy.String,
		BorrowerName: r.BorrowerName.String,
		AddedAt:      parseTime(r.AddedAt),
	}
	if r.BorrowDate.Valid {
		ts := parseTime(r.BorrowDate.String)
		b.BorrowDate = &ts
	}
	return b
}

func bookRecord(b *domain.Book) goqu.Record {
	rec := goqu.Record{
		"id":       b.ID,
		"title":    b.Title,
		"author":   b.Author,
		"isbn":     b.ISBN,
		"added_at": formatTime(b.AddedAt),
	}
	for k, v := range borrowRecord(b) {
		rec[k] = v
	}
	return rec
}

// borrowRecord holds the columns that change on borrow and return. Borrow
// columns are NULL while a book is available.
func borrowRecord(b *domain.Book) goqu.Record {
	rec := goqu.Record{
		"status":        string(b.Status),
		"borrowed_by":   nullString(b.BorrowedBy),
		"borrower_name": nullString(b.BorrowerName),
		"borrow_date":   sql.NullString{},
	}
	if b.BorrowDate != nil {
		rec["borrow_date"] = nullString(formatTime(*b.BorrowDate))
	}
	return rec
}

func (r *BookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	var rows []bookRow
	if err := r.db.q.From(tableBooks).Order(goqu.C("seq").Asc()).ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	books := make([]*domain.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, row.toDomain())
	}
	return books, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	var row bookRow
	found, err := r.db.q.From(tableBooks).Where(goqu.C("id").Eq(id)).ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	if !found {
		return nil, domain.ErrBookNotFound
	}
	return row.toDomain(), nil
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	start := time.Now()
	defer observe(start)

	if _, err := r.db.q.Insert(tableBooks).Rows(bookRecord(book)).Executor().ExecContext(ctx); err != nil {
		return writeFailed("insert book", err)
	}
	return nil
}

// Transition writes the borrow columns only while the row still has the
// expected status.
func (r *BookRepository) Transition(ctx context.Context, book *domain.Book, from domain.BookStatus) error {
	start := time.Now()
	defer observe(start)

	res, err := r.db.q.Update(tableBooks).
		Set(borrowRecord(book)).
		Where(goqu.Ex{"id": book.ID, "status": string(from)}).
		Executor().ExecContext(ctx)
	if err != nil {
		return writeFailed("update book", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	if _, err := r.FindByID(ctx, book.ID); err != nil {
		return err
	}
	return domain.ErrStatusConflict
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer observe(start)

	res, err := r.db.q.Delete(tableBooks).Where(goqu.C("id").Eq(id)).Executor().ExecContext(ctx)
	if err != nil {
		return writeFailed("delete book", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func observe(start time.Time) {
	metrics.StoreOperationDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
