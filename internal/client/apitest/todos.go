package apitest

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxPageSize = 100

func (s *Server) listTodos(c echo.Context) error {
	page, err := intParam(c, "page", 1)
	if err != nil || page < 1 {
		return fail(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid page")
	}
	size, err := intParam(c, "page_size", 10)
	if err != nil || size < 1 || size > maxPageSize {
		return fail(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid page_size")
	}

	owner := currentUser(c)
	s.mu.Lock()
	var mine []models.Todo
	for _, t := range s.todos {
		if t.UserID == owner {
			mine = append(mine, t)
		}
	}
	s.mu.Unlock()

	total := len(mine)
	from := min((page-1)*size, total)
	to := min(from+size, total)

	return respond(c, http.StatusOK, models.Page[models.Todo]{
		Data: append([]models.Todo{}, mine[from:to]...),
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   size,
			Total:      int64(total),
			TotalPages: (total + size - 1) / size,
		},
	})
}

func (s *Server) createTodo(c echo.Context) error {
	var req models.CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return fail(c, http.StatusBadRequest, models.CodeInvalidRequest, "title is required")
	}

	now := s.now().UTC()
	t := models.Todo{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		UserID:      currentUser(c),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.todos = slices.Insert(s.todos, 0, t)
	s.mu.Unlock()

	return respond(c, http.StatusCreated, t)
}

func (s *Server) getTodo(c echo.Context) error {
	s.mu.Lock()
	i := s.find(c.Param("id"), currentUser(c))
	var t models.Todo
	if i >= 0 {
		t = s.todos[i]
	}
	s.mu.Unlock()

	if i < 0 {
		return fail(c, http.StatusNotFound, models.CodeTodoNotFound, "Todo not found")
	}
	return respond(c, http.StatusOK, t)
}

func (s *Server) updateTodo(c echo.Context) error {
	var patch models.TodoPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid request body")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return fail(c, http.StatusBadRequest, models.CodeInvalidRequest, "title must not be empty")
	}

	s.mu.Lock()
	i := s.find(c.Param("id"), currentUser(c))
	var t models.Todo
	if i >= 0 {
		t = patch.Apply(s.todos[i])
		t.UpdatedAt = s.now().UTC()
		s.todos[i] = t
	}
	s.mu.Unlock()

	if i < 0 {
		return fail(c, http.StatusNotFound, models.CodeTodoNotFound, "Todo not found")
	}
	return respond(c, http.StatusOK, t)
}

func (s *Server) deleteTodo(c echo.Context) error {
	s.mu.Lock()
	i := s.find(c.Param("id"), currentUser(c))
	if i >= 0 {
		s.todos = slices.Delete(s.todos, i, i+1)
	}
	s.mu.Unlock()

	if i < 0 {
		return fail(c, http.StatusNotFound, models.CodeTodoNotFound, "Todo not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// find returns the index of the owner's todo with id, or -1. Callers hold mu.
func (s *Server) find(id, owner string) int {
	return slices.IndexFunc(s.todos, func(t models.Todo) bool {
		return t.ID == id && t.UserID == owner
	})
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
