package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

var (
	errNotFound  = errors.New("no matching todo")
	errAmbiguous = errors.New("ambiguous todo reference")
)

// shortIDLen is how much of an id the list shows.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolve finds the todo that ref designates among items. ref may be a full
// id (any UUID spelling is accepted), a 1-based position in the list as
// rendered, or a unique id prefix.
func resolve(items []models.Todo, ref string) (models.Todo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Todo{}, errNotFound
	}

	for _, t := range items {
		if t.ID == ref {
			return t, nil
		}
	}

	if uuid.Validate(ref) == nil {
		want := uuid.MustParse(ref)
		for _, t := range items {
			if id, err := uuid.Parse(t.ID); err == nil && id == want {
				return t, nil
			}
		}
		return models.Todo{}, errNotFound
	}

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return items[n-1], nil
	}

	var (
		found models.Todo
		count int
	)
	prefix := strings.ToLower(ref)
	for _, t := range items {
		if strings.HasPrefix(strings.ToLower(t.ID), prefix) {
			found = t
			count++
		}
	}
	switch count {
	case 0:
		return models.Todo{}, errNotFound
	case 1:
		return found, nil
	default:
		return models.Todo{}, errAmbiguous
	}
}
