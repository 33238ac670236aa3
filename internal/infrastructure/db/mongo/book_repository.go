package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

var _ ports.BookRepository = (*BookRepository)(nil)

// BookRepository stores one document per book. seq preserves insertion order
// so List matches the JSON backend's storage order.
type BookRepository struct {
	col *mongo.Collection
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{col: db.Collection(collectionBooks)}
}

type mongoBook struct {
	ID           string     `bson:"_id"`
	Seq          int64      `bson:"seq"`
	Title        string     `bson:"title"`
	Author       string     `bson:"author"`
	ISBN         string     `bson:"isbn"`
	Status       string     `bson:"status"`
	BorrowedBy   string     `bson:"borrowed_by,omitempty"`
	BorrowerName string     `bson:"borrower_name,omitempty"`
	BorrowDate   *time.Time `bson:"borrow_date,omitempty"`
	AddedAt      time.Time  `bson:"added_at"`
}

func toMongoBook(b *domain.Book, seq int64) mongoBook {
	return mongoBook{
		ID:           b.ID,
		Seq:          seq,
		Title:        b.Title,
		Author:       b.Author,
		ISBN:         b.ISBN,
		Status:       string(b.Status),
		BorrowedBy:   b.BorrowedBy,
		BorrowerName: b.BorrowerName,
		BorrowDate:   b.BorrowDate,
		AddedAt:      b.AddedAt.UTC(),
	}
}

func (m mongoBook) toDomain() *domain.Book {
	b := &domain.Book{
		ID:           m.ID,
		Title:        m.Title,
		Author:       m.Author,
		ISBN:         m.ISBN,
		Status:       domain.BookStatus(m.Status),
		BorrowedBy:   m.BorrowedBy,
		BorrowerName: m.BorrowerName,
		AddedAt:      m.AddedAt.UTC(),
	}
	if m.BorrowDate != nil {
		ts := m.BorrowDate.UTC()
		b.BorrowDate = &ts
	}
	return b
}

func (r *BookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	var docs []mongoBook
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}

	books := make([]*domain.Book, 0, len(docs))
	for _, d := range docs {
		books = append(books, d.toDomain())
	}
	return books, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoBook
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toMongoBook(book, time.Now().UnixNano())); err != nil {
		return writeFailed("insert book", err)
	}
	return nil
}

// Transition updates status and borrow fields in one conditional update
// filtered on the expected current status.
func (r *BookRepository) Transition(ctx context.Context, book *domain.Book, from domain.BookStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var update bson.M
	if book.Status == domain.StatusBorrowed {
		update = bson.M{"$set": bson.M{
			"status":        string(book.Status),
			"borrowed_by":   book.BorrowedBy,
			"borrower_name": book.BorrowerName,
			"borrow_date":   book.BorrowDate,
		}}
	} else {
		update = bson.M{
			"$set":   bson.M{"status": string(book.Status)},
			"$unset": bson.M{"borrowed_by": "", "borrower_name": "", "borrow_date": ""},
		}
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": book.ID, "status": string(from)}, update)
	if err != nil {
		return writeFailed("update book", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": book.ID})
	if err != nil {
		return fmt.Errorf("count book: %w", err)
	}
	if n == 0 {
		return domain.ErrBookNotFound
	}
	return domain.ErrStatusConflict
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return writeFailed("delete book", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}
