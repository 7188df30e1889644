package state

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

// TodoAPI is the part of the REST client used by TodoStore.
type TodoAPI interface {
	ListTodos(ctx context.Context, page, pageSize int) (*models.Page[models.Todo], error)
	CreateTodo(ctx context.Context, title, description string) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// TodoState is a read-only copy of the todo store.
type TodoState struct {
	Items      []models.Todo
	Current    *models.Todo
	Pagination models.Pagination
	Error      string

	Fetch  Result[models.Pagination]
	Create Result[models.Todo]
	Update Result[models.Todo]
	Delete Result[string]
}

// Loading reports whether a fetch or a create is in flight.
func (s TodoState) Loading() bool {
	return s.Fetch.Pending() || s.Create.Pending()
}

// Find returns the cached item with id.
func (s TodoState) Find(id string) (models.Todo, bool) {
	i := slices.IndexFunc(s.Items, func(t models.Todo) bool { return t.ID == id })
	if i < 0 {
		return models.Todo{}, false
	}
	return s.Items[i], true
}

// TodoStore caches one page of the user's todos. Items change only after
// the server confirmed an operation. Overlapping operations are not
// coordinated: whichever response arrives last wins.
type TodoStore struct {
	api TodoAPI
	log logging.Logger

	mu         sync.RWMutex
	items      []models.Todo
	current    *models.Todo
	pagination models.Pagination
	err        string

	fetch  Result[models.Pagination]
	create Result[models.Todo]
	update Result[models.Todo]
	remove Result[string]
}

func NewTodoStore(api TodoAPI, log logging.Logger) *TodoStore {
	return &TodoStore{
		api:        api,
		log:        log,
		pagination: models.DefaultPagination(),
	}
}

// Fetch replaces the cached items and pagination with the given page.
func (s *TodoStore) Fetch(ctx context.Context, page, pageSize int) error {
	if page < 1 || pageSize < 1 {
		return reject(s, &s.fetch, invalid("Page and page size must be positive"))
	}

	s.begin(func() { s.fetch = pending[models.Pagination]() })

	res, err := s.api.ListTodos(ctx, page, pageSize)
	if err != nil {
		s.recordFailure(ctx, "fetch todos", err, fetchMessages, func(msg string) { s.fetch = failed[models.Pagination](msg) })
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(res.Data)
	s.pagination = res.Pagination
	s.fetch = succeeded(res.Pagination)
	return nil
}

// Create adds a todo and puts it at the front of the cached page.
func (s *TodoStore) Create(ctx context.Context, title, description string) (models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Todo{}, reject(s, &s.create, invalid("Title is required"))
	}

	s.begin(func() { s.create = pending[models.Todo]() })

	t, err := s.api.CreateTodo(ctx, title, strings.TrimSpace(description))
	if err != nil {
		s.recordFailure(ctx, "create todo", err, createMessages, func(msg string) { s.create = failed[models.Todo](msg) })
		return models.Todo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Insert(s.items, 0, *t)
	s.create = succeeded(*t)
	return *t, nil
}

// Update applies patch on the server and replaces the cached copy. An id
// that is not cached leaves the cache untouched.
func (s *TodoStore) Update(ctx context.Context, id string, patch models.TodoPatch) (models.Todo, error) {
	switch {
	case strings.TrimSpace(id) == "":
		return models.Todo{}, reject(s, &s.update, invalid("Todo id is required"))
	case patch.Empty():
		return models.Todo{}, reject(s, &s.update, invalid("Nothing to update"))
	case patch.Title != nil && strings.TrimSpace(*patch.Title) == "":
		return models.Todo{}, reject(s, &s.update, invalid("Title is required"))
	}

	s.begin(func() { s.update = pending[models.Todo]() })

	t, err := s.api.UpdateTodo(ctx, id, patch)
	if err != nil {
		s.recordFailure(ctx, "update todo", err, updateMessages, func(msg string) { s.update = failed[models.Todo](msg) })
		return models.Todo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(t.ID); i >= 0 {
		s.items[i] = *t
	}
	if s.current != nil && s.current.ID == t.ID {
		cur := *t
		s.current = &cur
	}
	s.update = succeeded(*t)
	return *t, nil
}

// Delete removes a todo on the server and then from the cache.
func (s *TodoStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return reject(s, &s.remove, invalid("Todo id is required"))
	}

	s.begin(func() { s.remove = pending[string]() })

	if err := s.api.DeleteTodo(ctx, id); err != nil {
		s.recordFailure(ctx, "delete todo", err, deleteMessages, func(msg string) { s.remove = failed[string](msg) })
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.remove = succeeded(id)
	return nil
}

// Select makes the cached item with id the current one.
func (s *TodoStore) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	cur := s.items[i]
	s.current = &cur
	return true
}

func (s *TodoStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// ToggleLocal flips the completed flag of a cached item without calling the
// server.
func (s *TodoStore) ToggleLocal(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items[i].Completed = !s.items[i].Completed
	return true
}

func (s *TodoStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Reset drops everything cached, e.g. after sign-out.
func (s *TodoStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.current = nil
	s.pagination = models.DefaultPagination()
	s.err = ""
	s.fetch = idle[models.Pagination]()
	s.create = idle[models.Todo]()
	s.update = idle[models.Todo]()
	s.remove = idle[string]()
}

func (s *TodoStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetch.Pending() || s.create.Pending()
}

// Snapshot returns a deep copy of the current state.
func (s *TodoStore) Snapshot() TodoState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := TodoState{
		Items:      slices.Clone(s.items),
		Pagination: s.pagination,
		Error:      s.err,
		Fetch:      s.fetch,
		Create:     s.create,
		Update:     s.update,
		Delete:     s.remove,
	}
	if s.current != nil {
		cur := *s.current
		st.Current = &cur
	}
	return st
}

// begin marks an operation pending and clears the current error.
func (s *TodoStore) begin(mark func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
	mark()
}

func (s *TodoStore) recordFailure(ctx context.Context, op string, err error, f fallbacks, mark func(msg string)) {
	msg := f.message(err)
	s.log.Warn(ctx, op+" failed", "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
	mark(msg)
}

// reject records a validation error for an operation that was never sent.
func reject[T any](s *TodoStore, r *Result[T], err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err.Error()
	*r = failed[T](err.Error())
	return err
}

// indexOf returns the index of the cached item with id, or -1. Callers hold mu.
func (s *TodoStore) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(t models.Todo) bool { return t.ID == id })
}
