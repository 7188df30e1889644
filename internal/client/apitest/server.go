// Package apitest runs an in-process fake of the todo REST backend.
//
// It serves the same routes and envelope as the real service under /api/v1,
// keeps users and todos in memory, and lets tests inject failures: dropped
// connections, revoked tokens and canned error responses.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	BasePath = "/api/v1"

	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"
	AdminID       = "u1"
	AdminName     = "Admin"
)

// Request is a request observed by the server.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RetryCount    string
}

type account struct {
	user   models.User
	hash   []byte
}

// Server is a running fake backend. URL (from the embedded httptest.Server)
// plus BasePath is the API base URL.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  map[string]*account // by email
	todos     []models.Todo       // newest first
	tokens    map[string]string   // opaque token -> user id
	revoked   map[string]bool
	requests  []Request
	drops     int
	faults    map[string]fault
	issued    int
	static    bool
	jwtSecret []byte
	now       func() time.Time
}

type fault struct {
	status  int
	code    string
	message string
}

type Option func(*Server)

// WithStaticTokens makes login issue opaque tokens "t1", "t2", ... instead of
// signed JWTs.
func WithStaticTokens() Option {
	return func(s *Server) { s.static = true }
}

// WithClock overrides the time source used for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithUser registers an extra account.
func WithUser(email, password string, u models.User) Option {
	return func(s *Server) { s.addAccount(email, password, u) }
}

// NewServer starts a fake backend seeded with the admin account.
// It is closed automatically when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		accounts:  make(map[string]*account),
		tokens:    make(map[string]string),
		revoked:   make(map[string]bool),
		faults:    make(map[string]fault),
		jwtSecret: []byte("apitest-secret"),
		now:       time.Now,
	}
	s.addAccount(AdminEmail, AdminPassword, models.User{ID: AdminID, Email: AdminEmail, Name: AdminName})
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewUnstartedServer(s.router())
	// one request per connection, so a dropped connection is never
	// silently replayed by the client transport
	s.Config.SetKeepAlivesEnabled(false)
	s.Start()
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to the client.
func (s *Server) BaseURL() string {
	return s.URL + BasePath
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(s.record)
	e.Use(s.dropConnections)
	e.Use(s.injectFaults)

	api := e.Group(BasePath)
	api.POST("/auth/login", s.login)

	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: s.parseToken,
		ErrorHandler: func(c echo.Context, err error) error {
			return fail(c, http.StatusUnauthorized, models.CodeUnauthorized, "Invalid or expired token")
		},
	}))
	secured.GET("/todos", s.listTodos)
	secured.POST("/todos", s.createTodo)
	secured.GET("/todos/:id", s.getTodo)
	secured.PUT("/todos/:id", s.updateTodo)
	secured.DELETE("/todos/:id", s.deleteTodo)

	return e
}

// DropNext makes the next n requests end with a closed connection and no
// response.
func (s *Server) DropNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drops = n
}

// Fail makes every request to "METHOD /path" (path relative to BasePath, e.g.
// "POST /todos") answer with the given error envelope until ClearFaults.
func (s *Server) Fail(route string, status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[route] = fault{status: status, code: code, message: message}
}

func (s *Server) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.faults)
}

// Revoke makes the server reject token from now on.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// Seed inserts todos as if they had been created in order; the last one is
// the newest. Todos without an owner belong to the admin.
func (s *Server) Seed(todos ...models.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range todos {
		if t.UserID == "" {
			t.UserID = AdminID
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now().UTC()
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = t.CreatedAt
		}
		s.todos = slices.Insert(s.todos, 0, t)
	}
}

// Todos returns the stored todos, newest first.
func (s *Server) Todos() []models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.todos)
}

// Requests returns the requests observed so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// CountRequests counts observed requests matching method and API path.
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == BasePath+path {
			n++
		}
	}
	return n
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get(echo.HeaderAuthorization),
			RetryCount:    r.Header.Get("X-Retry-Count"),
		})
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) dropConnections(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		drop := s.drops > 0
		if drop {
			s.drops--
		}
		s.mu.Unlock()

		if !drop {
			return next(c)
		}
		conn, _, err := c.Response().Hijack()
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

func (s *Server) injectFaults(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Request().Method + " " + strings.TrimPrefix(c.Request().URL.Path, BasePath)
		s.mu.Lock()
		f, ok := s.faults[route]
		s.mu.Unlock()
		if !ok {
			return next(c)
		}
		return fail(c, f.status, f.code, f.message)
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := http.StatusInternalServerError, "Internal server error"
	code := models.CodeInternalError
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch status {
		case http.StatusNotFound:
			code, msg = models.CodeNotFound, "Not found"
		case http.StatusMethodNotAllowed:
			code, msg = models.CodeInvalidRequest, "Method not allowed"
		}
	}
	_ = fail(c, status, code, msg)
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, models.Envelope[struct{}]{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: message},
	})
}
