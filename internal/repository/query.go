package repository

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	OwnerField       QueryField = "owner"
	DescriptionField QueryField = "description"
	CategoriesField  QueryField = "categories"
	ProductIDField   QueryField = "product_id"
	ActionField      QueryField = "action"
)

// Query carries filters, limit and keyset pagination for list operations.
type Query struct {
	Values map[QueryField]string

	// From and To bound a time range, both inclusive. Nil means unbounded.
	From *time.Time
	To   *time.Time

	Limit int

	Paginator *Paginator
}

type QueryField string

func NewQuery() *Query {
	return &Query{
		Values: map[QueryField]string{},
	}
}

func (q *Query) With(field QueryField, val string) *Query {
	q.Values[field] = val
	return q
}

// Get returns the value of field or an empty string.
func (q *Query) Get(field QueryField) string {
	return q.Values[field]
}

// Between sets the time range of the query.
func (q *Query) Between(from, to *time.Time) *Query {
	q.From = from
	q.To = to
	return q
}

func (q *Query) ApplyPagination(limit int32, token string) error {
	queryLimit := DefaultPaginationLimit
	if limit > 0 {
		queryLimit = min(maxPaginationLimit, int(limit))
	}
	q.Limit = queryLimit

	if token == "" {
		return nil
	}

	paginator, err := DecodePageToken(token)
	if err != nil {
		slog.Error("failed to decode page token", slog.Any("err", err), slog.String("token", token))
		return fmt.Errorf("invalid page token: %w", ErrInvalidPaginationToken)
	}
	q.Paginator = paginator
	return nil
}
