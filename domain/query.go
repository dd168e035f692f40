package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField selects the comparator used to order the board.
type SortField string

const (
	SortByDueDate   SortField = "dueDate"
	SortByCreatedAt SortField = "createdAt"
	SortByTitle     SortField = "title"
)

func ParseSortField(raw string) (SortField, error) {
	switch f := SortField(strings.TrimSpace(raw)); f {
	case "":
		return SortByDueDate, nil
	case SortByDueDate, SortByCreatedAt, SortByTitle:
		return f, nil
	default:
		return "", Invalid("unknown sort field %q", raw)
	}
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(raw string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(raw))); o {
	case "":
		return SortAsc, nil
	case SortAsc, SortDesc:
		return o, nil
	default:
		return "", Invalid("unknown sort order %q", raw)
	}
}

// Query filters by free-text search and then sorts.
type Query struct {
	Search string
	SortBy SortField
	Order  SortOrder
	// Language drives title collation; zero value means English.
	Language language.Tag
}

// Matches is a case-insensitive substring match against title, description and tags.
func (t Task) Matches(search string) bool {
	needle := strings.ToLower(search)
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Apply returns a new slice: matching tasks in the requested order.
func (q Query) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Matches(q.Search) {
			out = append(out, t)
		}
	}

	tag := q.Language
	if tag == language.Und {
		tag = language.English
	}
	cmp := comparator(q.SortBy, collate.New(tag))
	desc := q.Order == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func comparator(field SortField, coll *collate.Collator) func(a, b Task) int {
	switch field {
	case SortByCreatedAt:
		return func(a, b Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByTitle:
		return func(a, b Task) int { return coll.CompareString(a.Title, b.Title) }
	case SortByDueDate:
		fallthrough
	default:
		return func(a, b Task) int { return a.DueDate.Compare(b.DueDate) }
	}
}
