package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lending-service/internal/adapter/gin/handler"
	"lending-service/internal/adapter/gin/router"
	"lending-service/internal/adapter/repository/rest"
	library "lending-service/internal/domain/library"
	"lending-service/internal/store"
	"lending-service/internal/usecase/catalog"
	"lending-service/internal/usecase/identity"
	"lending-service/internal/usecase/lending"
	"lending-service/internal/usecase/reporting"
)

// newTestAPI wires the whole stack over the in-memory store: no cache,
// no network, real usecases and repositories.
func newTestAPI(t *testing.T) (*gin.Engine, *store.MemoryClient) {
	t.Helper()
	client := store.NewMemoryClient()
	log := zaptest.NewLogger(t)

	books := rest.NewBookRepo(client, log)
	loans := rest.NewLoanRepo(client, log)
	users := rest.NewUserRepo(client, log)

	identityUC := identity.New(users, log)
	h := router.Handlers{
		Auth:    handler.NewAuthHandler(identityUC, log),
		Books:   handler.NewBookHandler(catalog.New(books, log), log),
		Lending: handler.NewLendingHandler(lending.New(books, loans, log), log),
		Reports: handler.NewReportHandler(reporting.New(users, books, loans, log), log),
	}
	return router.SetupRouter(h, identityUC, log), client
}

func seedUser(t *testing.T, client *store.MemoryClient, name string, role library.Role) int64 {
	t.Helper()
	log := zaptest.NewLogger(t)
	u, err := rest.NewUserRepo(client, log).Create(context.Background(), &library.User{
		Name: name, Email: strings.ToLower(name) + "@example.com", Password: "hash", Role: role,
	})
	require.NoError(t, err)
	return u.ID
}

func seedBook(t *testing.T, client *store.MemoryClient, title string, available bool) int64 {
	t.Helper()
	log := zaptest.NewLogger(t)
	b, err := rest.NewBookRepo(client, log).Create(context.Background(), &library.Book{
		Title: title, Author: "Author Name", Category: "Fiction", Available: available,
	})
	require.NoError(t, err)
	return b.ID
}

func doJSON(api *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)
	return w
}

func TestAPI_Health(t *testing.T) {
	api, _ := newTestAPI(t)

	w := doJSON(api, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAPI_BorrowReturnFlow(t *testing.T) {
	api, client := newTestAPI(t)
	seedUser(t, client, "Ana", library.RoleUser)
	seedBook(t, client, "Dune", true)

	w := doJSON(api, http.MethodPost, "/v1/books/1/borrow", "1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var borrowResp struct {
		Book library.Book `json:"book"`
		Loan library.Loan `json:"loan"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &borrowResp))
	assert.False(t, borrowResp.Book.Available)
	assert.Equal(t, library.StatusBorrowed, borrowResp.Loan.Status)

	// Borrowing an unavailable book conflicts.
	w = doJSON(api, http.MethodPost, "/v1/books/1/borrow", "1", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// The open loan shows up under /v1/loans.
	w = doJSON(api, http.MethodGet, "/v1/loans", "1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bookId":1`)

	w = doJSON(api, http.MethodPost, "/v1/books/1/return", "1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Returning again conflicts: no active loan.
	w = doJSON(api, http.MethodPost, "/v1/books/1/return", "1", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_BorrowRequiresAuthentication(t *testing.T) {
	api, client := newTestAPI(t)
	seedBook(t, client, "Dune", true)

	w := doJSON(api, http.MethodPost, "/v1/books/1/borrow", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_AdminGate(t *testing.T) {
	api, client := newTestAPI(t)
	seedUser(t, client, "Ana", library.RoleUser)
	seedUser(t, client, "Root", library.RoleAdmin)

	body := `{"title":"Dune","author":"Frank Herbert","category":"Science Fiction"}`

	// Anonymous: 401. Non-admin: 403. Admin: 201.
	w := doJSON(api, http.MethodPost, "/v1/books", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(api, http.MethodPost, "/v1/books", "1", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(api, http.MethodPost, "/v1/books", "2", body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestAPI_CreateBookValidation(t *testing.T) {
	api, client := newTestAPI(t)
	seedUser(t, client, "Root", library.RoleAdmin)

	w := doJSON(api, http.MethodPost, "/v1/books", "1",
		`{"title":"","author":"X","category":"","imageUrl":"nope.gif"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "title")
	assert.Contains(t, resp.Fields, "author")
	assert.Contains(t, resp.Fields, "category")
	assert.Contains(t, resp.Fields, "imageUrl")
}

func TestAPI_DeleteBookNeedsConfirmation(t *testing.T) {
	api, client := newTestAPI(t)
	seedUser(t, client, "Root", library.RoleAdmin)
	seedBook(t, client, "Dune", true)

	w := doJSON(api, http.MethodDelete, "/v1/books/1", "1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(api, http.MethodDelete, "/v1/books/1?confirm=true", "1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(api, http.MethodGet, "/v1/books/1", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	api, _ := newTestAPI(t)

	w := doJSON(api, http.MethodPost, "/v1/auth/register", "",
		`{"name":"Ana","email":"ana@example.com","password":"secret123","confirmPassword":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret123")

	w = doJSON(api, http.MethodPost, "/v1/auth/login", "",
		`{"email":"ana@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(api, http.MethodPost, "/v1/auth/login", "",
		`{"email":"ana@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_ConsistencyEndpointIsReadOnly(t *testing.T) {
	api, client := newTestAPI(t)
	seedUser(t, client, "Ana", library.RoleUser)
	seedBook(t, client, "Dune", true)

	w := doJSON(api, http.MethodPost, "/v1/books/1/borrow", "1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(api, http.MethodGet, "/v1/books/1/consistency", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Stale":false`)
}

func TestAPI_ReportsOverview(t *testing.T) {
	api, client := newTestAPI(t)
	seedUser(t, client, "Ana", library.RoleUser)
	seedBook(t, client, "Dune", true)

	w := doJSON(api, http.MethodPost, "/v1/books/1/borrow", "1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(api, http.MethodGet, "/v1/reports/overview", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"TotalLoans":1`)
	assert.Contains(t, w.Body.String(), `"ActiveLoans":1`)
}

func TestAPI_RequestIDHeader(t *testing.T) {
	api, _ := newTestAPI(t)

	w := doJSON(api, http.MethodGet, "/health", "", "")

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
