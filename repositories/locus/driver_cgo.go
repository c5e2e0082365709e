//go:build cgo

package locus

// With cgo enabled we use the mattn cgo sqlite3 driver. It is faster
// than the modernc sqlite driver.

import (
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

func openSqlite(path string) (*sqlx.DB, error) {
	return sqlx.Connect("sqlite3", path)
}
