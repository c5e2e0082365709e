package vcf

import (
	"bytes"
	"os"
	"path"
	"strings"
	"testing"

	"haplo/api/models/constants/gttype"
	"haplo/api/services/processing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
)

func testVcfText() string {
	lines := []string{
		"##fileformat=VCFv4.1",
		"##source=unit-test",
		strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT", "NA001", "NA002"}, "\t"),
		strings.Join([]string{"1", "100", ".", "A", "T", "29.5", "PASS", "DP=10", "GT:DP:GQ:AD", "0/1:20:99:10,10", "0/0:18:80:18,0"}, "\t"),
		strings.Join([]string{"1", "110", ".", "GA", "C,GT", ".", "q10", ".", "GT", "1|2", "1/2/3"}, "\t"),
		strings.Join([]string{"2", "50", ".", "G", ".", ".", ".", "END=150", "GT", "0/0", "./."}, "\t"),
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestReaderHeader(t *testing.T) {
	r, err := NewReader(strings.NewReader(testVcfText()))
	assert.NoError(t, err)
	assert.Equal(t, []string{"NA001", "NA002"}, r.SampleIds)

	t.Run("should refuse input with no #CHROM line", func(t *testing.T) {
		_, err := NewReader(strings.NewReader("##fileformat=VCFv4.1\n"))
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("should be a usage error to ask for a block before advancing", func(t *testing.T) {
		fresh, err := NewReader(strings.NewReader(testVcfText()))
		assert.NoError(t, err)
		_, err = fresh.Current()
		assert.ErrorIs(t, err, processing.ErrNoCurrent)
	})
}

func TestReaderBlocks(t *testing.T) {
	r, err := NewReader(strings.NewReader(testVcfText()))
	assert.NoError(t, err)

	t.Run("should parse a plain biallelic line", func(t *testing.T) {
		assert.True(t, r.Advance())
		b, err := r.Current()
		assert.NoError(t, err)

		assert.Equal(t, "1", b.Chrom)
		assert.Equal(t, int64(100), b.Pos)
		assert.Equal(t, int64(100), b.End())
		assert.Len(t, b.Variation, 1)
		assert.Equal(t, "A", b.Variation[0].Ref)
		assert.Equal(t, "T", b.Variation[0].Alt)
		assert.Equal(t, "DP=10", b.Info)

		assert.Len(t, b.Calls, 2)
		assert.Equal(t, gttype.Heterozygous, b.Calls[0].GTType())
		assert.Equal(t, 20, b.Calls[0].DP)
		assert.Equal(t, float64(99), b.Calls[0].GQ)
		assert.Equal(t, 10, b.Calls[0].ADRef)
		assert.Equal(t, 10, b.Calls[0].AD[1])
		assert.Equal(t, 0, b.Calls[0].ADOther)
		assert.Equal(t, 29.5, b.Calls[0].Qual)

		assert.Equal(t, gttype.HomozygousReference, b.Calls[1].GTType())
		assert.True(t, b.AnyHomref())
		assert.False(t, b.AllHomref())
		assert.False(t, b.AnyAmbiguous())
	})

	t.Run("should track over-ploidy genotypes as ambiguous no-calls", func(t *testing.T) {
		assert.True(t, r.Advance())
		b, err := r.Current()
		assert.NoError(t, err)

		assert.Len(t, b.Variation, 2)
		assert.Equal(t, int64(110), b.Pos)
		// two-base ref spans 110-111
		assert.Equal(t, int64(111), b.End())

		// sample 0 is a phased het-alt : kept, classified unknown
		assert.True(t, b.Calls[0].Phased)
		assert.Equal(t, gttype.Unknown, b.Calls[0].GTType())

		// sample 1 had three alleles : no-call plus ambiguous set
		assert.Equal(t, gttype.NoCall, b.Calls[1].GTType())
		assert.Equal(t, []int{1, 2, 3}, b.AmbiguousAlleles[1])
		assert.True(t, b.AnyAmbiguous())

		// the line filter lands on every call
		assert.Equal(t, []string{"q10"}, b.Calls[0].FilterList())
		assert.Equal(t, []string{"q10"}, b.Calls[1].FilterList())
	})

	t.Run("should keep an extent on alt-less lines and parse missing genotypes", func(t *testing.T) {
		assert.True(t, r.Advance())
		b, err := r.Current()
		assert.NoError(t, err)

		assert.Equal(t, "2", b.Chrom)
		assert.Empty(t, b.Variation)
		assert.Equal(t, int64(50), b.Pos)
		assert.Equal(t, "END=150", b.Info)

		assert.Equal(t, gttype.HomozygousReference, b.Calls[0].GTType())
		assert.Equal(t, gttype.NoCall, b.Calls[1].GTType())
	})

	t.Run("should signal clean exhaustion at end of input", func(t *testing.T) {
		assert.False(t, r.Advance())
		assert.NoError(t, r.Err())
	})
}

func TestReaderOrdering(t *testing.T) {
	t.Run("should reject a position going backwards", func(t *testing.T) {
		lines := []string{
			strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}, "\t"),
			strings.Join([]string{"1", "200", ".", "A", "T", ".", ".", "."}, "\t"),
			strings.Join([]string{"1", "100", ".", "A", "T", ".", ".", "."}, "\t"),
		}
		r, err := NewReader(strings.NewReader(strings.Join(lines, "\n")))
		assert.NoError(t, err)

		assert.True(t, r.Advance())
		assert.False(t, r.Advance())
		assert.ErrorIs(t, r.Err(), ErrUnsorted)
	})

	t.Run("should reject a chromosome going backwards", func(t *testing.T) {
		lines := []string{
			strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}, "\t"),
			strings.Join([]string{"2", "100", ".", "A", "T", ".", ".", "."}, "\t"),
			strings.Join([]string{"1", "200", ".", "A", "T", ".", ".", "."}, "\t"),
		}
		r, err := NewReader(strings.NewReader(strings.Join(lines, "\n")))
		assert.NoError(t, err)

		assert.True(t, r.Advance())
		assert.False(t, r.Advance())
		assert.ErrorIs(t, r.Err(), ErrUnsorted)
	})

	t.Run("should accept a position reset on a new chromosome", func(t *testing.T) {
		lines := []string{
			strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}, "\t"),
			strings.Join([]string{"1", "5000", ".", "A", "T", ".", ".", "."}, "\t"),
			strings.Join([]string{"2", "100", ".", "A", "T", ".", ".", "."}, "\t"),
		}
		r, err := NewReader(strings.NewReader(strings.Join(lines, "\n")))
		assert.NoError(t, err)

		assert.True(t, r.Advance())
		assert.True(t, r.Advance())
		assert.NoError(t, r.Err())
	})
}

func TestReaderBadRecords(t *testing.T) {
	cases := []struct {
		name string
		line []string
	}{
		{"bad chromosome", []string{"25", "100", ".", "A", "T", ".", ".", "."}},
		{"bad position", []string{"1", "abc", ".", "A", "T", ".", ".", "."}},
		{"too few columns", []string{"1", "100", ".", "A"}},
	}

	header := strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}, "\t")

	for _, tc := range cases {
		t.Run("should reject a record with "+tc.name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(header + "\n" + strings.Join(tc.line, "\t")))
			assert.NoError(t, err)
			assert.False(t, r.Advance())
			assert.ErrorIs(t, r.Err(), ErrBadRecord)
		})
	}
}

func TestOpenGzipped(t *testing.T) {
	dir := t.TempDir()
	gzPath := path.Join(dir, "test.vcf.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(testVcfText()))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	assert.NoError(t, os.WriteFile(gzPath, buf.Bytes(), 0o644))

	r, err := Open(gzPath)
	assert.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"NA001", "NA002"}, r.SampleIds)

	n := 0
	for r.Advance() {
		n++
	}
	assert.NoError(t, r.Err())
	assert.Equal(t, 3, n)
}

func TestReaderIntoStage(t *testing.T) {
	// end to end : reader drained by a gap-policy stage
	r, err := NewReader(strings.NewReader(testVcfText()))
	assert.NoError(t, err)

	stage, err := processing.NewStage(processing.BufferBlock, 15)
	assert.NoError(t, err)

	for {
		consumed, err := stage.AddFrom(r)
		assert.NoError(t, err)
		if !consumed {
			break
		}
	}
	assert.NoError(t, r.Err())
	stage.Flush()

	// 100 and 110 merge (gap 15), chromosome 2 starts its own block
	assert.True(t, stage.Advance())
	first, err := stage.Current()
	assert.NoError(t, err)
	assert.Equal(t, "1", first.Chrom)
	assert.Equal(t, int64(100), first.Pos)
	assert.Equal(t, int64(111), first.End())
	assert.Len(t, first.Variation, 3)

	assert.True(t, stage.Advance())
	second, err := stage.Current()
	assert.NoError(t, err)
	assert.Equal(t, "2", second.Chrom)

	assert.False(t, stage.Advance())
}
