package apitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.BaseURL()+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func loginAdmin(t *testing.T, s *Server) string {
	t.Helper()
	resp, body := do(t, s, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: AdminEmail, Password: AdminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env models.Envelope[models.LoginResponse]
	require.NoError(t, json.Unmarshal(body, &env))
	require.True(t, env.Success)
	return env.Data.Token
}

func TestLogin_IssuesSignedJWT(t *testing.T) {
	s := NewServer(t)
	token := loginAdmin(t, s)

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	require.NoError(t, err)
	assert.Equal(t, AdminID, claims.UserID)
	assert.Equal(t, AdminEmail, claims.Email)
}

func TestLogin_StaticTokens(t *testing.T) {
	s := NewServer(t, WithStaticTokens())
	assert.Equal(t, "t1", loginAdmin(t, s))
	assert.Equal(t, "t2", loginAdmin(t, s))
}

func TestLogin_WrongPassword(t *testing.T) {
	s := NewServer(t)
	resp, body := do(t, s, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: AdminEmail, Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INVALID_CREDENTIALS","message":"Invalid email or password"}}`, string(body))
}

func TestTodos_RequireToken(t *testing.T) {
	s := NewServer(t)

	resp, body := do(t, s, http.MethodGet, "/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), models.CodeUnauthorized)

	resp, _ = do(t, s, http.MethodGet, "/todos", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodos_ExpiredToken(t *testing.T) {
	base := time.Now()
	var skew atomic.Int64
	s := NewServer(t, WithClock(func() time.Time { return base.Add(time.Duration(skew.Load())) }))
	token := loginAdmin(t, s)

	skew.Store(int64(TokenExpiry + time.Minute))
	resp, _ := do(t, s, http.MethodGet, "/todos", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodos_RevokedToken(t *testing.T) {
	s := NewServer(t, WithStaticTokens())
	token := loginAdmin(t, s)

	resp, _ := do(t, s, http.MethodGet, "/todos", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s.Revoke(token)
	resp, _ = do(t, s, http.MethodGet, "/todos", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodos_CRUDAndPagination(t *testing.T) {
	s := NewServer(t)
	token := loginAdmin(t, s)

	for _, title := range []string{"a", "b", "c"} {
		resp, _ := do(t, s, http.MethodPost, "/todos", token, models.CreateTodoRequest{Title: title})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := do(t, s, http.MethodGet, "/todos?page=1&page_size=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list models.Envelope[models.Page[models.Todo]]
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Data.Data, 2)
	assert.Equal(t, "c", list.Data.Data[0].Title)
	assert.Equal(t, "b", list.Data.Data[1].Title)
	assert.Equal(t, models.Pagination{Page: 1, PageSize: 2, Total: 3, TotalPages: 2}, list.Data.Pagination)

	id := list.Data.Data[0].ID
	done := true
	resp, body = do(t, s, http.MethodPut, "/todos/"+id, token, models.TodoPatch{Completed: &done})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Envelope[models.Todo]
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.True(t, updated.Data.Completed)
	assert.Equal(t, "c", updated.Data.Title)

	resp, _ = do(t, s, http.MethodDelete, "/todos/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, s, http.MethodDelete, "/todos/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), models.CodeTodoNotFound)
	assert.Len(t, s.Todos(), 2)
}

func TestTodos_CreateRequiresTitle(t *testing.T) {
	s := NewServer(t)
	token := loginAdmin(t, s)

	resp, _ := do(t, s, http.MethodPost, "/todos", token, models.CreateTodoRequest{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, s.Todos())
}

func TestTodos_OwnerIsolation(t *testing.T) {
	s := NewServer(t, WithUser("bob@example.com", "secret", models.User{ID: "u2", Name: "Bob"}))
	s.Seed(models.Todo{ID: "x", Title: "admin's"})

	resp, body := do(t, s, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "bob@example.com", Password: "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env models.Envelope[models.LoginResponse]
	require.NoError(t, json.Unmarshal(body, &env))

	resp, _ = do(t, s, http.MethodGet, "/todos/x", env.Data.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/todos/x", loginAdmin(t, s), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFaults(t *testing.T) {
	s := NewServer(t)
	token := loginAdmin(t, s)

	s.Fail("GET /todos", http.StatusInternalServerError, models.CodeInternalError, "Failed to get todos")
	resp, body := do(t, s, http.MethodGet, "/todos", token, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "Failed to get todos")

	s.ClearFaults()
	resp, _ = do(t, s, http.MethodGet, "/todos", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDropNext(t *testing.T) {
	s := NewServer(t)
	s.DropNext(1)

	req, err := http.NewRequest(http.MethodGet, s.BaseURL()+"/todos", nil)
	require.NoError(t, err)
	_, err = s.Client().Do(req)
	assert.Error(t, err)

	resp, _ := do(t, s, http.MethodGet, "/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 2, s.CountRequests(http.MethodGet, "/todos"))
}

func TestUnknownRoute(t *testing.T) {
	s := NewServer(t)
	resp, body := do(t, s, http.MethodGet, "/nope", loginAdmin(t, s), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"success":false`)
}
