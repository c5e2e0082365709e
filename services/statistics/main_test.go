package statistics

import (
	"testing"

	"haplo/api/models/variants"

	"github.com/stretchr/testify/assert"
)

func blockWithCalls(chrom string, pos int64, gts [][]int) *variants.Block {
	b := &variants.Block{
		Chrom: chrom,
		Pos:   pos,
		Len:   1,
		Variation: []variants.RefVar{
			{Start: pos, End: pos, Ref: "A", Alt: "T"},
		},
	}
	for _, gt := range gts {
		call := variants.NewCall()
		call.SetGT(gt...)
		b.Calls = append(b.Calls, call)
	}
	return b
}

func TestStatisticsTalliesGenotypeClasses(t *testing.T) {
	stats := New([]string{"NA1", "NA2"})

	stats.Observe(blockWithCalls("1", 100, [][]int{{0, 1}, {0, 0}}))
	stats.Observe(blockWithCalls("1", 200, [][]int{{1, 1}, {0, 1}}))
	stats.Observe(blockWithCalls("1", 300, [][]int{{1}, {-1}}))

	t.Run("should count each class per sample", func(t *testing.T) {
		samples := stats.Samples()
		assert.Len(t, samples, 2)

		assert.Equal(t, "NA1", samples[0].Id)
		assert.Equal(t, 1, samples[0].GTTypes["HET"])
		assert.Equal(t, 1, samples[0].GTTypes["HOMALT"])
		assert.Equal(t, 1, samples[0].GTTypes["HEMI"])

		assert.Equal(t, "NA2", samples[1].Id)
		assert.Equal(t, 1, samples[1].GTTypes["HOMREF"])
		assert.Equal(t, 1, samples[1].GTTypes["HET"])
		assert.Equal(t, 1, samples[1].GTTypes["NOCALL"])
	})

	t.Run("should count observed blocks", func(t *testing.T) {
		assert.Equal(t, 3, stats.Blocks)
		assert.Equal(t, 0, stats.AllHomrefBlocks)
	})
}

func TestStatisticsCountsHomrefBlocksAndFilters(t *testing.T) {
	stats := New([]string{"NA1"})

	homref := blockWithCalls("1", 100, [][]int{{0, 0}})
	stats.Observe(homref)

	filtered := blockWithCalls("1", 200, [][]int{{0, 1}})
	assert.NoError(t, filtered.Calls[0].AddFilter("q10"))
	stats.Observe(filtered)

	assert.Equal(t, 1, stats.AllHomrefBlocks)
	assert.Equal(t, 1, stats.Samples()[0].Filtered)
	assert.Equal(t, 2, stats.Samples()[0].Calls)
}

func TestStatisticsCountsAmbiguousAlleles(t *testing.T) {
	stats := New([]string{"NA1"})

	b := blockWithCalls("1", 100, [][]int{{0, 1}})
	assert.NoError(t, b.AddAmbiguous(0, 2))
	assert.NoError(t, b.AddAmbiguous(0, 3))
	stats.Observe(b)

	assert.Equal(t, 2, stats.Samples()[0].Ambiguous)
}

func TestStatisticsOverview(t *testing.T) {
	stats := New([]string{"NA2", "NA1"})
	stats.Observe(blockWithCalls("1", 100, [][]int{{0, 1}, {1, 1}}))

	overview := stats.Overview()

	genotypes := overview["genotypes"].(map[string]int)
	assert.Equal(t, 1, genotypes["HET"])
	assert.Equal(t, 1, genotypes["HOMALT"])

	// never-seen classes still show up with a zero count
	assert.Equal(t, 0, genotypes["NOCALL"])
	assert.Equal(t, 0, genotypes["UNKNOWN"])

	t.Run("should order samples by id", func(t *testing.T) {
		samples := stats.Samples()
		assert.Equal(t, "NA1", samples[0].Id)
		assert.Equal(t, "NA2", samples[1].Id)
	})
}

func TestStatisticsGrowsForUnannouncedSamples(t *testing.T) {
	stats := New(nil)
	stats.Observe(blockWithCalls("1", 100, [][]int{{0, 1}, {0, 0}}))

	samples := stats.Samples()
	assert.Len(t, samples, 2)
	assert.Equal(t, 1, samples[0].GTTypes["HET"])
}
