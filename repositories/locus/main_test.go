package locus

import (
	"path/filepath"
	"testing"

	"haplo/api/models/variants"

	"github.com/stretchr/testify/assert"
)

func openTestIndex(t *testing.T) *Index {
	ix, err := Open(filepath.Join(t.TempDir(), "locus.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func indexedBlock(chrom string, pos int64, length int64) *variants.Block {
	return &variants.Block{
		Chrom: chrom,
		Pos:   pos,
		Len:   length,
		Variation: []variants.RefVar{
			{Start: pos, End: pos, Ref: "A", Alt: "T"},
		},
		Calls: make([]variants.Call, 2),
		Info:  "DP=10",
	}
}

func TestIndexAddAndCount(t *testing.T) {
	ix := openTestIndex(t)

	assert.NoError(t, ix.Add(indexedBlock("1", 100, 1)))
	assert.NoError(t, ix.Add(indexedBlock("1", 200, 50)))
	assert.NoError(t, ix.Add(indexedBlock("2", 100, 1)))

	n, err := ix.Count()
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIndexRangeQuery(t *testing.T) {
	ix := openTestIndex(t)

	assert.NoError(t, ix.Add(indexedBlock("1", 100, 1)))
	assert.NoError(t, ix.Add(indexedBlock("1", 200, 50))) // covers 200-249
	assert.NoError(t, ix.Add(indexedBlock("2", 100, 1)))

	t.Run("should return overlapping rows ordered by position", func(t *testing.T) {
		rows, err := ix.Query("1", 90, 210)
		assert.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, int64(100), rows[0].Pos)
		assert.Equal(t, int64(200), rows[1].Pos)
		assert.Equal(t, int64(249), rows[1].EndPos)
		assert.Equal(t, 2, rows[1].NCalls)
		assert.Equal(t, "DP=10", rows[1].Info)
	})

	t.Run("should match a query landing inside an extent", func(t *testing.T) {
		rows, err := ix.Query("1", 240, 240)
		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, int64(200), rows[0].Pos)
	})

	t.Run("should not leak rows across chromosomes", func(t *testing.T) {
		rows, err := ix.Query("2", 0, 1000)
		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, "2", rows[0].Chrom)
	})

	t.Run("should return nothing outside every extent", func(t *testing.T) {
		rows, err := ix.Query("1", 300, 400)
		assert.NoError(t, err)
		assert.Empty(t, rows)
	})
}
