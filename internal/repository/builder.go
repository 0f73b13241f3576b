package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func normalizePage(page, size, fallback, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = fallback
	}
	if size > max {
		size = max
	}
	return page, size
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
