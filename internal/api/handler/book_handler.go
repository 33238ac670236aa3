package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/library-tracker/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /books without creating duplicates.
const HeaderIdempotencyKey = "Idempotency-Key"

// BookHandler handles HTTP requests for catalog and lending operations.
type BookHandler struct {
	service ports.BookService
}

func NewBookHandler(service ports.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// List returns every book in storage order.
//
// @Summary      List books
// @Tags         books
// @Produce      json
// @Success      200  {object}  booksResponse
// @Router       /api/books [get]
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.service.ListBooks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booksResponse{Success: true, Books: books})
}

// Get returns a single book.
//
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  bookResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	book, err := h.service.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookResponse{Success: true, Book: book})
}

// Add creates an available book. A repeated Idempotency-Key returns the
// book created by the first request with 200 instead of 201.
//
// @Summary      Add a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        body             body      addBookRequest  true   "Book details"
// @Param        Idempotency-Key  header    string          false  "Client retry key"
// @Success      201  {object}  bookResponse
// @Success      200  {object}  bookResponse
// @Failure      400  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/books [post]
func (h *BookHandler) Add(c echo.Context) error {
	var req addBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.AddBook(c.Request().Context(), ports.AddBookInput{
		Title:          req.Title,
		Author:         req.Author,
		ISBN:           req.ISBN,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}

	if res.AlreadyExisted {
		return c.JSON(http.StatusOK, bookResponse{Success: true, Message: "Book already added", Book: res.Book})
	}
	return c.JSON(http.StatusCreated, bookResponse{Success: true, Message: "Book added successfully", Book: res.Book})
}

// Borrow lends a book to a user. userId defaults to the bearer token subject.
//
// @Summary      Borrow a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Book ID"
// @Param        body  body      borrowRequest  true  "Borrower"
// @Success      200   {object}  bookResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/books/{id}/borrow [post]
func (h *BookHandler) Borrow(c echo.Context) error {
	var req borrowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	userID := req.UserID
	if userID == "" {
		userID = ctxUserID(c)
	}

	book, err := h.service.BorrowBook(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookResponse{Success: true, Message: "Book borrowed successfully", Book: book})
}

// Return makes a borrowed book available again.
//
// @Summary      Return a book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  bookResponse
// @Failure      400  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/books/{id}/return [post]
func (h *BookHandler) Return(c echo.Context) error {
	book, err := h.service.ReturnBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookResponse{Success: true, Message: "Book returned successfully", Book: book})
}

// Delete removes a book permanently, borrowed or not.
//
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Book deleted successfully"})
}
