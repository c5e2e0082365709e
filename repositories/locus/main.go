package locus

import (
	"strings"

	"haplo/api/models/variants"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS locus (
	chrom      TEXT    NOT NULL,
	pos        INTEGER NOT NULL,
	end_pos    INTEGER NOT NULL,
	n_variants INTEGER NOT NULL,
	n_calls    INTEGER NOT NULL,
	info       TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS locus_extent ON locus (chrom, pos, end_pos);
`

type (
	// Index is an on-disk location index over finalized blocks,
	// backed by SQLite. Rows are parsed with sqlx.
	Index struct {
		DB *sqlx.DB
	}

	// Row mirrors one record of the "locus" table.
	Row struct {
		Chrom     string `db:"chrom"`
		Pos       int64  `db:"pos"`
		EndPos    int64  `db:"end_pos"`
		NVariants int    `db:"n_variants"`
		NCalls    int    `db:"n_calls"`
		Info      string `db:"info"`
	}
)

// Open connects to (and if necessary creates) the index at path.
func Open(path string) (*Index, error) {
	// URI filenames have to begin with 'file:'; see
	// https://www.sqlite.org/c3ref/open.html
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	db, err := openSqlite(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	return &Index{DB: db}, nil
}

func (ix *Index) Close() error {
	return ix.DB.Close()
}

// Add records the extent of one finalized block.
func (ix *Index) Add(b *variants.Block) error {
	_, err := ix.DB.Exec(
		`INSERT INTO locus (chrom, pos, end_pos, n_variants, n_calls, info)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.Chrom, b.Pos, b.End(), len(b.Variation), len(b.Calls), b.Info)
	if err != nil {
		return pfx.Err(err)
	}
	return nil
}

// Query returns every indexed row overlapping [pos, endPos] on a
// chromosome, ordered by position.
func (ix *Index) Query(chrom string, pos int64, endPos int64) ([]Row, error) {
	rows := []Row{}
	err := ix.DB.Select(&rows,
		`SELECT chrom, pos, end_pos, n_variants, n_calls, info FROM locus
		 WHERE chrom = ? AND pos <= ? AND end_pos >= ?
		 ORDER BY pos`,
		chrom, endPos, pos)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return rows, nil
}

// Count returns the number of indexed blocks.
func (ix *Index) Count() (int, error) {
	var n int
	if err := ix.DB.Get(&n, "SELECT COUNT(*) FROM locus"); err != nil {
		return 0, pfx.Err(err)
	}
	return n, nil
}
