// Package sqlstore implements the storage interface on database/sql. SQL
// engines plug in through a Dialect; see the sqlite and postgres packages.
package sqlstore

import (
	"io/fs"
	"strconv"
	"strings"
)

// Dialect captures what differs between SQL engines
type Dialect interface {
	// Name identifies the engine in errors and logs
	Name() string

	// Rebind rewrites ? placeholders into the engine's native form
	Rebind(query string) string

	// LockForUpdate returns the clause appended to a SELECT that must hold
	// its rows until commit, or "" when transactions already serialize
	LockForUpdate() string

	// IsUniqueViolation reports whether err is a primary-key or unique
	// constraint failure
	IsUniqueViolation(err error) bool

	// Migrations returns the engine's schema migrations (*.sql, applied in
	// lexical order)
	Migrations() fs.FS
}

// RebindDollar rewrites ? placeholders as $1, $2, ...
// Queries in this package never contain ? inside string literals.
func RebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
