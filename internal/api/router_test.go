package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/library-tracker/docs"
	"github.com/sirpyerre/library-tracker/internal/api/handler"
	"github.com/sirpyerre/library-tracker/internal/core/service"
	"github.com/sirpyerre/library-tracker/internal/infrastructure/db/jsonfile"
)

func newTestServer(t *testing.T, jwtSecret string) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()

	store := jsonfile.New(filepath.Join(t.TempDir(), "database.json"), log)
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize store: %v", err)
	}
	users := jsonfile.NewUserRepository(store)
	books := jsonfile.NewBookRepository(store)

	return NewRouter(Deps{
		Users:     service.NewUserService(users, jwtSecret, time.Hour, log),
		Books:     service.NewBookService(books, users, nil, log),
		Ready:     map[string]handler.Pinger{"store": store},
		JWTSecret: jwtSecret,
		Logger:    log,
		Registry:  prometheus.NewRegistry(),
	})
}

type result struct {
	code int
	body map[string]any
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers ...string) result {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s: invalid json %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return result{code: rec.Code, body: decoded}
}

func expect(t *testing.T, r result, code int, message string) {
	t.Helper()
	if r.code != code {
		t.Fatalf("expected %d, got %d (%v)", code, r.code, r.body)
	}
	if message != "" && r.body["message"] != message {
		t.Fatalf("expected message %q, got %v", message, r.body["message"])
	}
}

func TestRouter_AuthFlow(t *testing.T) {
	e := newTestServer(t, "")

	r := do(t, e, http.MethodPost, "/api/register", `{"username":"alice","userId":"u1","phoneNumber":"555"}`)
	expect(t, r, http.StatusCreated, "User registered successfully")
	if r.body["success"] != true {
		t.Fatalf("unexpected body: %v", r.body)
	}

	expect(t, do(t, e, http.MethodPost, "/api/register", `{"username":"bob","userId":"u1","phoneNumber":"1"}`), http.StatusConflict, "User ID already exists")
	expect(t, do(t, e, http.MethodPost, "/api/register", `{"username":"alice","userId":"u2","phoneNumber":"1"}`), http.StatusConflict, "Username already exists")
	expect(t, do(t, e, http.MethodPost, "/api/register", `{"username":"carol","userId":"u3"}`), http.StatusBadRequest, "Username, user ID, and phone number are required")

	expect(t, do(t, e, http.MethodPost, "/api/login", `{"userId":"u1","phoneNumber":"555"}`), http.StatusOK, "Login successful")
	expect(t, do(t, e, http.MethodPost, "/api/login", `{"userId":"u1","phoneNumber":"000"}`), http.StatusUnauthorized, "Invalid credentials")
	expect(t, do(t, e, http.MethodPost, "/api/login", `{"userId":"ghost","phoneNumber":"555"}`), http.StatusNotFound, "User not found")
	expect(t, do(t, e, http.MethodPost, "/api/login", `{"userId":"u1"}`), http.StatusBadRequest, "User ID and phone number are required")
}

func TestRouter_LendingScenario(t *testing.T) {
	e := newTestServer(t, "")
	do(t, e, http.MethodPost, "/api/register", `{"username":"alice","userId":"u1","phoneNumber":"555"}`)

	r := do(t, e, http.MethodGet, "/api/books", "")
	expect(t, r, http.StatusOK, "")
	if books := r.body["books"].([]any); len(books) != 3 {
		t.Fatalf("expected 3 seed books, got %d", len(books))
	}

	expect(t, do(t, e, http.MethodPost, "/api/books/1/borrow", `{}`), http.StatusBadRequest, "User ID is required")
	expect(t, do(t, e, http.MethodPost, "/api/books/999/borrow", `{"userId":"u1"}`), http.StatusNotFound, "Book not found")
	expect(t, do(t, e, http.MethodPost, "/api/books/1/borrow", `{"userId":"ghost"}`), http.StatusNotFound, "User not found")

	r = do(t, e, http.MethodPost, "/api/books/1/borrow", `{"userId":"u1"}`)
	expect(t, r, http.StatusOK, "Book borrowed successfully")
	book := r.body["book"].(map[string]any)
	if book["status"] != "borrowed" || book["borrowedBy"] != "u1" || book["borrowerName"] != "alice" || book["borrowDate"] == nil {
		t.Fatalf("unexpected borrowed book: %v", book)
	}

	expect(t, do(t, e, http.MethodPost, "/api/books/1/borrow", `{"userId":"u1"}`), http.StatusBadRequest, "Book is already borrowed")

	r = do(t, e, http.MethodPost, "/api/books/1/return", "")
	expect(t, r, http.StatusOK, "Book returned successfully")
	book = r.body["book"].(map[string]any)
	if _, has := book["borrowDate"]; has || book["status"] != "available" {
		t.Fatalf("borrow fields must be cleared: %v", book)
	}
	expect(t, do(t, e, http.MethodPost, "/api/books/1/return", ""), http.StatusBadRequest, "Book is not borrowed")
	expect(t, do(t, e, http.MethodPost, "/api/books/999/return", ""), http.StatusNotFound, "Book not found")
}

func TestRouter_CatalogManagement(t *testing.T) {
	e := newTestServer(t, "")

	expect(t, do(t, e, http.MethodPost, "/api/books", `{"title":"Dune"}`), http.StatusBadRequest, "Title and author are required")

	r := do(t, e, http.MethodPost, "/api/books", `{"title":"Dune","author":"Frank Herbert"}`)
	expect(t, r, http.StatusCreated, "Book added successfully")
	id := r.body["book"].(map[string]any)["id"].(string)

	r = do(t, e, http.MethodGet, "/api/books/"+id, "")
	expect(t, r, http.StatusOK, "")
	if r.body["book"].(map[string]any)["isbn"] != "" {
		t.Fatalf("isbn should default to empty string: %v", r.body)
	}

	expect(t, do(t, e, http.MethodDelete, "/api/books/"+id, ""), http.StatusOK, "Book deleted successfully")
	expect(t, do(t, e, http.MethodDelete, "/api/books/"+id, ""), http.StatusNotFound, "Book not found")
	expect(t, do(t, e, http.MethodGet, "/api/books/"+id, ""), http.StatusNotFound, "Book not found")
}

func TestRouter_BearerTokenBorrow(t *testing.T) {
	e := newTestServer(t, "secret")

	r := do(t, e, http.MethodPost, "/api/register", `{"username":"alice","userId":"u1","phoneNumber":"555"}`)
	token, _ := r.body["token"].(string)
	if token == "" {
		t.Fatalf("expected a token when a secret is configured: %v", r.body)
	}

	r = do(t, e, http.MethodPost, "/api/books/2/borrow", `{}`, "Authorization", "Bearer "+token)
	expect(t, r, http.StatusOK, "Book borrowed successfully")
	if r.body["book"].(map[string]any)["borrowedBy"] != "u1" {
		t.Fatalf("expected the token subject as borrower: %v", r.body)
	}

	expect(t, do(t, e, http.MethodGet, "/api/books", "", "Authorization", "Bearer nope"), http.StatusUnauthorized, "invalid token")
}

func TestRouter_StaleTokenDoesNotBlockAuth(t *testing.T) {
	e := newTestServer(t, "secret")
	stale := "Bearer expired.token.value"

	expect(t, do(t, e, http.MethodPost, "/api/register", `{"username":"alice","userId":"u1","phoneNumber":"555"}`, "Authorization", stale),
		http.StatusCreated, "User registered successfully")

	r := do(t, e, http.MethodPost, "/api/login", `{"userId":"u1","phoneNumber":"555"}`, "Authorization", stale)
	expect(t, r, http.StatusOK, "Login successful")
	if token, _ := r.body["token"].(string); token == "" {
		t.Fatalf("expected a fresh token: %v", r.body)
	}

	expect(t, do(t, e, http.MethodGet, "/api/books/1", "", "Authorization", stale), http.StatusUnauthorized, "invalid token")
}

func TestRouter_OperationalRoutes(t *testing.T) {
	e := newTestServer(t, "")

	expect(t, do(t, e, http.MethodGet, "/health", ""), http.StatusOK, "")
	r := do(t, e, http.MethodGet, "/health/ready", "")
	expect(t, r, http.StatusOK, "")
	if r.body["status"] != "ok" {
		t.Fatalf("unexpected readiness: %v", r.body)
	}

	r = do(t, e, http.MethodGet, "/api/nope", "")
	if r.code != http.StatusNotFound || r.body["success"] != false {
		t.Fatalf("unknown routes should render the error envelope: %d %v", r.code, r.body)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "library_requests_total") {
		t.Fatalf("expected echo request metrics, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/books", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestRouter_SwaggerDocumentsEveryRoute(t *testing.T) {
	e := newTestServer(t, "secret")

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("swagger document is not valid JSON: %v", err)
	}

	documented := 0
	for _, rt := range e.Routes() {
		switch rt.Method {
		case http.MethodGet, http.MethodPost, http.MethodDelete:
		default:
			continue
		}
		if !strings.HasPrefix(rt.Path, "/api/") && !strings.HasPrefix(rt.Path, "/health") {
			continue
		}

		path := rt.Path
		for _, seg := range strings.Split(rt.Path, "/") {
			if strings.HasPrefix(seg, ":") {
				path = strings.Replace(path, seg, "{"+seg[1:]+"}", 1)
			}
		}
		if _, ok := doc.Paths[path][strings.ToLower(rt.Method)]; !ok {
			t.Errorf("route %s %s is missing from the swagger document", rt.Method, path)
		}
		documented++
	}
	if documented != 10 {
		t.Fatalf("expected 10 API and health routes, got %d", documented)
	}
}
