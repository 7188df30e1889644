package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

const dateLayout = "2006-01-02"

// list fetches the requested page (1 by default) with the configured page
// size and renders it.
func (a *App) list(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			a.usage("todos")
			return nil
		}
		page = n
	}
	return a.fetch(ctx, page, a.pageSize)
}

func (a *App) page(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.usage("page")
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		a.usage("page")
		return nil
	}
	return a.goToPage(ctx, n)
}

func (a *App) next(ctx context.Context, _ []string) error {
	return a.goToPage(ctx, a.todos.Snapshot().Pagination.Page+1)
}

func (a *App) prev(ctx context.Context, _ []string) error {
	return a.goToPage(ctx, a.todos.Snapshot().Pagination.Page-1)
}

// goToPage fetches page n keeping the current page size, or the configured
// one when nothing was listed yet. Pages outside the last known range are
// refused without a request.
func (a *App) goToPage(ctx context.Context, n int) error {
	p := a.todos.Snapshot().Pagination
	if n < 1 || (p.TotalPages > 0 && n > p.TotalPages) {
		a.println(a.p.T("todos.noPage"))
		return nil
	}
	size := p.PageSize
	if p.TotalPages == 0 {
		size = a.pageSize
	}
	return a.fetch(ctx, n, size)
}

func (a *App) fetch(ctx context.Context, page, size int) error {
	if err := a.todos.Fetch(ctx, page, size); err != nil {
		a.report(err, a.todos.Snapshot().Error)
		return err
	}
	a.renderList()
	return nil
}

func (a *App) renderList() {
	st := a.todos.Snapshot()

	a.println(a.p.T("todos.title"))
	if len(st.Items) == 0 {
		a.println(a.p.T("todos.noTodos"))
	}
	for i, t := range st.Items {
		a.println(fmt.Sprintf("%3d. %s", i+1, a.summary(t)))
	}
	if st.Pagination.HasPages() {
		p := st.Pagination
		a.println(a.p.T("todos.page", p.Page, p.TotalPages, p.Total))
		a.println(a.p.T("todos.pageHint"))
	}
}

func (a *App) summary(t models.Todo) string {
	mark, status := " ", a.p.T("todos.pending")
	if t.Completed {
		mark, status = "x", a.p.T("todos.completed")
	}
	return fmt.Sprintf("[%s] %s (%s, %s)", mark, t.Title, status, shortID(t.ID))
}

func (a *App) renderTodo(t models.Todo) {
	a.println(a.summary(t))
	a.println("    id: " + t.ID)
	if t.Description != "" {
		a.println("    " + t.Description)
	}
	a.println("    " + a.p.T("todos.createdAt", t.CreatedAt.Local().Format(dateLayout)))
	if t.Edited() {
		a.println("    " + a.p.T("todos.updatedAt", t.UpdatedAt.Local().Format(dateLayout)))
	}
}

// add renders the create form.
func (a *App) add(ctx context.Context, _ []string) error {
	a.println(a.p.T("todos.createTodo"))

	title, err := getSimpleText(a.reader, a.p.T("todos.todoTitle"), a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, a.p.T("todos.todoDescription"), a.out)
	if err != nil {
		return err
	}

	if _, err := a.todos.Create(ctx, title, desc); err != nil {
		a.report(err, a.todos.Snapshot().Error)
		return err
	}
	a.println(a.p.T("todos.created"))
	a.renderList()
	return nil
}

// edit renders the edit form prefilled with the current values; an empty
// answer keeps a value. Both fields are sent.
func (a *App) edit(ctx context.Context, args []string) error {
	t, ok := a.pick("edit", args)
	if !ok {
		return nil
	}

	a.println(a.p.T("todos.editTodo"))
	a.println(a.p.T("common.keep"))

	title, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", a.p.T("todos.todoTitle"), t.Title), a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", a.p.T("todos.todoDescription"), t.Description), a.out)
	if err != nil {
		return err
	}
	if title == "" {
		title = t.Title
	}
	if desc == "" {
		desc = t.Description
	}

	return a.update(ctx, t.ID, models.TodoPatch{Title: &title, Description: &desc})
}

func (a *App) toggle(ctx context.Context, args []string) error {
	t, ok := a.pick("toggle", args)
	if !ok {
		return nil
	}
	completed := !t.Completed
	return a.update(ctx, t.ID, models.TodoPatch{Completed: &completed})
}

func (a *App) update(ctx context.Context, id string, patch models.TodoPatch) error {
	updated, err := a.todos.Update(ctx, id, patch)
	if err != nil {
		a.report(err, a.todos.Snapshot().Error)
		return err
	}
	a.println(a.p.T("todos.updated"))
	a.println(a.summary(updated))
	return nil
}

func (a *App) show(_ context.Context, args []string) error {
	t, ok := a.pick("show", args)
	if !ok {
		return nil
	}
	a.todos.Select(t.ID)
	a.renderTodo(t)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	t, ok := a.pick("delete", args)
	if !ok {
		return nil
	}
	a.println(a.summary(t))
	if !Confirm(a.reader, a.p.T("common.confirm", a.p.T("todos.deleteConfirm")), a.out) {
		return nil
	}

	if err := a.todos.Delete(ctx, t.ID); err != nil {
		a.report(err, a.todos.Snapshot().Error)
		return err
	}
	a.println(a.p.T("todos.deleted"))
	return nil
}

// pick resolves the single argument of cmd against the cached page,
// printing usage or a lookup error when it cannot.
func (a *App) pick(cmd string, args []string) (models.Todo, bool) {
	if len(args) != 1 {
		a.usage(cmd)
		return models.Todo{}, false
	}
	t, err := resolve(a.todos.Snapshot().Items, args[0])
	switch {
	case err == nil:
		return t, true
	case errors.Is(err, errAmbiguous):
		a.println(a.p.T("todos.ambiguous", args[0]))
	default:
		a.println(a.p.T("todos.notFound", args[0]))
	}
	return models.Todo{}, false
}
