package handler

import "github.com/sirpyerre/library-tracker/internal/core/domain"

// --- Request types ---
// Presence of required fields is checked by the services so the messages
// match across transports; tags here only bound sizes.

type registerRequest struct {
	Username    string `json:"username"    validate:"max=64"`
	UserID      string `json:"userId"      validate:"max=64"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
}

type loginRequest struct {
	UserID      string `json:"userId"      validate:"max=64"`
	PhoneNumber string `json:"phoneNumber" validate:"max=32"`
}

type addBookRequest struct {
	Title  string `json:"title"  validate:"max=512"`
	Author string `json:"author" validate:"max=256"`
	ISBN   string `json:"isbn"   validate:"omitempty,max=32,printascii"`
}

type borrowRequest struct {
	UserID string `json:"userId" validate:"max=64"`
}

// --- Response types ---

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token,omitempty"`
}

type booksResponse struct {
	Success bool           `json:"success"`
	Books   []*domain.Book `json:"books"`
}

type bookResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Book    *domain.Book `json:"book"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
