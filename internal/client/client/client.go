package client

import (
	"context"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

// Client is the REST surface consumed by the state stores.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	ListTodos(ctx context.Context, page, pageSize int) (*models.Page[models.Todo], error)
	CreateTodo(ctx context.Context, title, description string) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Credentials is the part of the session store the transport needs.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Revoke(ctx context.Context, token string) (bool, error)
}
