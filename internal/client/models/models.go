// Package models defines the client-side data model and the wire shapes of
// the todo REST API.
package models

import "time"

// User is the identity record returned by the login endpoint.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Todo is a server-owned todo item.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Edited reports whether the item was modified after creation.
func (t Todo) Edited() bool {
	return !t.UpdatedAt.Equal(t.CreatedAt)
}

// Pagination describes the window of the todo collection returned by a fetch.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// DefaultPagination is the pagination value before the first fetch.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, PageSize: 10}
}

// HasPages reports whether a page selector is worth showing.
func (p Pagination) HasPages() bool {
	return p.TotalPages > 1
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TodoPatch is a partial update; nil fields are left untouched by the server.
type TodoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch carries no field.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply returns a copy of t with the patch fields applied.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
