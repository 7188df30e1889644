package state

import (
	"context"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/stretchr/testify/mock"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*models.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) ListTodos(ctx context.Context, page, pageSize int) (*models.Page[models.Todo], error) {
	args := m.Called(ctx, page, pageSize)
	resp, _ := args.Get(0).(*models.Page[models.Todo])
	return resp, args.Error(1)
}

func (m *mockAPI) CreateTodo(ctx context.Context, title, description string) (*models.Todo, error) {
	args := m.Called(ctx, title, description)
	resp, _ := args.Get(0).(*models.Todo)
	return resp, args.Error(1)
}

func (m *mockAPI) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	args := m.Called(ctx, id, patch)
	resp, _ := args.Get(0).(*models.Todo)
	return resp, args.Error(1)
}

func (m *mockAPI) DeleteTodo(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
