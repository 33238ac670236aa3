package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
)

func TestHTTPErrorHandler_MapsErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"missing field", domain.MissingField("Title and author are required"), http.StatusBadRequest, "Title and author are required"},
		{"already borrowed", domain.ErrAlreadyBorrowed, http.StatusBadRequest, "Book is already borrowed"},
		{"not borrowed", domain.ErrNotBorrowed, http.StatusBadRequest, "Book is not borrowed"},
		{"book not found", domain.ErrBookNotFound, http.StatusNotFound, "Book not found"},
		{"user not found", fmt.Errorf("borrow: %w", domain.ErrUserNotFound), http.StatusNotFound, "User not found"},
		{"duplicate id", domain.ErrDuplicateID, http.StatusConflict, "User ID already exists"},
		{"duplicate username", domain.ErrDuplicateUsername, http.StatusConflict, "Username already exists"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"persistence", fmt.Errorf("%w: write document: disk full", domain.ErrPersistence), http.StatusInternalServerError, "internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp["success"] != false || resp["message"] != tc.message {
				t.Fatalf("unexpected body: %v", resp)
			}
		})
	}
}
