package domain

import (
	"errors"
	"testing"
	"time"
)

func TestBook_LendAndRelease(t *testing.T) {
	b := &Book{ID: "1", Title: "X", Author: "Y", Status: StatusAvailable}
	u := &User{ID: "u1", Username: "alice"}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	b.Lend(u, at)
	if b.Status != StatusBorrowed || b.BorrowedBy != "u1" || b.BorrowerName != "alice" {
		t.Fatalf("unexpected borrowed state: %+v", b)
	}
	if b.BorrowDate == nil || !b.BorrowDate.Equal(at) {
		t.Fatalf("borrow date not stamped: %v", b.BorrowDate)
	}

	// The snapshot must not follow later changes to the user.
	u.Username = "renamed"
	if b.BorrowerName != "alice" {
		t.Fatalf("borrower name should be a snapshot, got %q", b.BorrowerName)
	}

	b.Release()
	if b.Status != StatusAvailable || b.BorrowedBy != "" || b.BorrowerName != "" || b.BorrowDate != nil {
		t.Fatalf("borrow fields not cleared: %+v", b)
	}
}

func TestBook_CloneIsDeep(t *testing.T) {
	at := time.Now()
	b := &Book{ID: "1", BorrowDate: &at}
	c := b.Clone()
	*c.BorrowDate = at.Add(time.Hour)
	if !b.BorrowDate.Equal(at) {
		t.Fatal("clone shares borrow date with original")
	}
}

func TestSeedBooks(t *testing.T) {
	books := SeedBooks(time.Now())
	if len(books) != 3 {
		t.Fatalf("expected 3 seed books, got %d", len(books))
	}
	for i, b := range books {
		if want := string(rune('1' + i)); b.ID != want {
			t.Errorf("seed %d: expected id %q, got %q", i, want, b.ID)
		}
		if b.Status != StatusAvailable {
			t.Errorf("seed %s: expected available, got %s", b.ID, b.Status)
		}
	}
}

func TestFieldError_MatchesErrMissingField(t *testing.T) {
	err := MissingField("Title and author are required")
	if !errors.Is(err, ErrMissingField) {
		t.Fatal("FieldError must match ErrMissingField")
	}
	if err.Error() != "Title and author are required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
