package domain

import "time"

// BookStatus represents the lending state of a book.
type BookStatus string

const (
	StatusAvailable BookStatus = "available"
	StatusBorrowed  BookStatus = "borrowed"
)

// Valid reports whether s is one of the known statuses.
func (s BookStatus) Valid() bool {
	return s == StatusAvailable || s == StatusBorrowed
}

// Book is a catalog record. BorrowedBy, BorrowerName and BorrowDate are set
// only while Status is StatusBorrowed.
type Book struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	ISBN         string     `json:"isbn"`
	Status       BookStatus `json:"status"`
	BorrowedBy   string     `json:"borrowedBy,omitempty"`
	BorrowerName string     `json:"borrowerName,omitempty"`
	BorrowDate   *time.Time `json:"borrowDate,omitempty"`
	AddedAt      time.Time  `json:"addedAt"`
}

// Lend moves the book into the borrowed state. BorrowerName is a snapshot of
// the username at borrow time, not a live reference.
func (b *Book) Lend(user *User, at time.Time) {
	ts := at.UTC()
	b.Status = StatusBorrowed
	b.BorrowedBy = user.ID
	b.BorrowerName = user.Username
	b.BorrowDate = &ts
}

// Release moves the book back to available and clears the borrow fields.
func (b *Book) Release() {
	b.Status = StatusAvailable
	b.BorrowedBy = ""
	b.BorrowerName = ""
	b.BorrowDate = nil
}

// Clone returns a deep copy of b.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	c := *b
	if b.BorrowDate != nil {
		ts := *b.BorrowDate
		c.BorrowDate = &ts
	}
	return &c
}

// SeedBooks returns the catalog a fresh store starts with.
func SeedBooks(now time.Time) []*Book {
	now = now.UTC()
	return []*Book{
		{ID: "1", Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "978-0-06-112008-4", Status: StatusAvailable, AddedAt: now},
		{ID: "2", Title: "1984", Author: "George Orwell", ISBN: "978-0-452-28423-4", Status: StatusAvailable, AddedAt: now},
		{ID: "3", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "978-0-7432-7356-5", Status: StatusAvailable, AddedAt: now},
	}
}
