package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"haplo/api/models/variants"

	"github.com/klauspost/compress/gzip"
)

type (
	// Writer serializes finalized blocks back into VCF text, one
	// line per block. Combined blocks are written with their
	// unioned alt alleles ; this is a faithful rendering of the
	// block, not a byte-for-byte echo of the input file.
	Writer struct {
		SampleIds []string

		w    *bufio.Writer
		gz   *gzip.Writer
		file *os.File

		headerWritten bool
	}
)

// NewWriter wraps any io.Writer.
func NewWriter(out io.Writer, sampleIds []string) *Writer {
	return &Writer{
		SampleIds: sampleIds,
		w:         bufio.NewWriter(out),
	}
}

// Create writes a plain or gzipped VCF file to disk.
func Create(path string, sampleIds []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := &Writer{SampleIds: sampleIds, file: f}
	if strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(f)
		w.w = bufio.NewWriter(w.gz)
	} else {
		w.w = bufio.NewWriter(f)
	}

	return w, nil
}

// WriteHeader emits the meta lines and the #CHROM header ;
// called lazily by the first Write if need be.
func (w *Writer) WriteHeader() error {
	if w.headerWritten {
		return nil
	}
	w.headerWritten = true

	if _, err := w.w.WriteString("##fileformat=VCFv4.1\n"); err != nil {
		return err
	}
	if _, err := w.w.WriteString("##source=haplo\n"); err != nil {
		return err
	}

	columns := []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}
	columns = append(columns, w.SampleIds...)
	_, err := w.w.WriteString(strings.Join(columns, "\t") + "\n")

	return err
}

// Write renders one block as a VCF data line.
func (w *Writer) Write(b *variants.Block) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}

	ref := "N"
	alts := []string{}
	seenAlts := map[string]bool{}
	for _, rv := range b.Variation {
		if ref == "N" && rv.Ref != "" {
			ref = rv.Ref
		}
		if rv.Alt != "" && !seenAlts[rv.Alt] {
			seenAlts[rv.Alt] = true
			alts = append(alts, rv.Alt)
		}
	}

	altColumn := "."
	if len(alts) > 0 {
		altColumn = strings.Join(alts, ",")
	}

	info := b.Info
	if info == "" {
		info = "."
	}

	qualColumn := "."
	filters := []string{}
	seenFilters := map[string]bool{}
	for i := range b.Calls {
		call := &b.Calls[i]
		if call.Qual != 0 && qualColumn == "." {
			qualColumn = strconv.FormatFloat(call.Qual, 'g', -1, 64)
		}
		for _, f := range call.FilterList() {
			if !seenFilters[f] {
				seenFilters[f] = true
				filters = append(filters, f)
			}
		}
	}

	filterColumn := "PASS"
	if len(filters) > 0 {
		filterColumn = strings.Join(filters, ";")
	}

	columns := []string{
		b.Chrom,
		strconv.FormatInt(b.Pos, 10),
		".",
		ref,
		altColumn,
		qualColumn,
		filterColumn,
		info,
		"GT:DP:GQ",
	}

	for i := range b.Calls {
		call := &b.Calls[i]

		dp := "."
		if call.DP >= 0 {
			dp = strconv.Itoa(call.DP)
		}
		gq := "."
		if call.GQ != 0 {
			gq = strconv.FormatFloat(call.GQ, 'g', -1, 64)
		}

		columns = append(columns, fmt.Sprintf("%s:%s:%s", call.GTString(), dp, gq))
	}

	_, err := w.w.WriteString(strings.Join(columns, "\t") + "\n")
	return err
}

// Flush pushes everything through the buffered layers.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.gz != nil {
		return w.gz.Flush()
	}
	return nil
}

func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return err
		}
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
