package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"haplo/api/models/constants/chromosome"
	p "haplo/api/models/constants/ploidy"
	"haplo/api/models/variants"
	"haplo/api/services/processing"

	"github.com/klauspost/compress/gzip"
)

// the fixed VCF column set ; anything after these is a sample column
var VcfHeaders = []string{"chrom", "pos", "id", "ref", "alt", "qual", "filter", "info", "format"}

var (
	ErrNoHeader  = errors.New("vcf: no #CHROM header line found")
	ErrUnsorted  = errors.New("vcf: input is not sorted by chromosome then position")
	ErrBadRecord = errors.New("vcf: malformed record")
)

type (
	// Reader streams a VCF file and materializes one variant
	// block per data line. It satisfies processing.Source, so it
	// can be drained straight into a buffering stage.
	Reader struct {
		SampleIds []string
		Line      int

		scanner *bufio.Scanner
		file    *os.File
		gz      *gzip.Reader

		cur *variants.Block
		err error

		lastRank int
		lastPos  int64
	}
)

// Open reads a plain or gzipped VCF file from disk.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		gz *gzip.Reader
		in io.Reader = f
	)
	if strings.HasSuffix(path, ".gz") {
		// klauspost's gzip reads multistream archives, which also
		// covers bgzipped VCFs
		gz, err = gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		in = gz
	}

	r, err := NewReader(in)
	if err != nil {
		if gz != nil {
			gz.Close()
		}
		f.Close()
		return nil, err
	}

	r.file = f
	r.gz = gz

	return r, nil
}

// NewReader consumes VCF text from an io.Reader, swallowing the
// meta lines and keeping the sample ids from the #CHROM header.
func NewReader(in io.Reader) (*Reader, error) {
	scanner := bufio.NewScanner(in)
	// VCF lines with many samples can get long
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	r := &Reader{scanner: scanner}
	if err := r.readHeader(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Reader) readHeader() error {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		r.Line++

		if strings.HasPrefix(line, "##") {
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			headers := strings.Split(line, "\t")
			for id, header := range headers {
				// everything past the fixed columns is a sample id
				if id >= len(VcfHeaders) {
					r.SampleIds = append(r.SampleIds, strings.TrimSpace(header))
				}
			}
			return nil
		}

		return fmt.Errorf("%w: line %d", ErrNoHeader, r.Line)
	}

	return ErrNoHeader
}

// Err returns the first error hit while streaming, if any.
func (r *Reader) Err() error {
	return r.err
}

// Advance parses the next data line ; false means end of input
// or a sticky error (see Err).
func (r *Reader) Advance() bool {
	if r.err != nil {
		return false
	}

	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		r.Line++
		if line == "" {
			continue
		}

		b, err := r.parseLine(line)
		if err != nil {
			r.err = fmt.Errorf("line %d: %w", r.Line, err)
			return false
		}

		r.cur = b
		return true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = err
	}
	return false
}

// Current returns the block produced by the last Advance.
func (r *Reader) Current() (*variants.Block, error) {
	if r.cur == nil {
		return nil, processing.ErrNoCurrent
	}
	return r.cur, nil
}

func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

func (r *Reader) parseLine(line string) (*variants.Block, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, fmt.Errorf("%w: %d columns", ErrBadRecord, len(fields))
	}

	chrom := strings.TrimPrefix(strings.TrimSpace(fields[0]), "chr")
	if !chromosome.IsValidHumanChromosome(chrom) {
		return nil, fmt.Errorf("%w: chromosome %q", ErrBadRecord, fields[0])
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: position %q", ErrBadRecord, fields[1])
	}

	// the buffering policies rely on sorted input
	rank := chromosome.Rank(chrom)
	if rank < r.lastRank || (rank == r.lastRank && pos < r.lastPos) {
		return nil, fmt.Errorf("%w: %s:%d after rank %d pos %d", ErrUnsorted, chrom, pos, r.lastRank, r.lastPos)
	}
	r.lastRank = rank
	r.lastPos = pos

	ref := fields[3]
	qual, qualErr := strconv.ParseFloat(fields[5], 64)
	if qualErr != nil {
		// '.' or empty, same as unknown
		qual = 0
	}

	b := &variants.Block{Chrom: chrom}

	if info := fields[7]; info != "." {
		b.Info = info
	}

	refEnd := pos + int64(len(ref)) - 1
	for _, alt := range strings.Split(fields[4], ",") {
		if alt == "" || alt == "." {
			continue
		}
		b.Extend(variants.RefVar{Start: pos, End: refEnd, Ref: ref, Alt: alt})
	}
	if len(b.Variation) == 0 {
		// sites-only or pure reference line still has an extent
		b.Pos = pos
		b.Len = int64(len(ref))
	}

	// line-level filters apply to every call on the line
	var lineFilters []string
	if filter := fields[6]; filter != "." && filter != "" && filter != "PASS" {
		lineFilters = strings.Split(filter, ";")
	}

	if len(fields) < 10 {
		// no FORMAT/sample columns
		return b, nil
	}

	// ----  get format positions
	var (
		gtPosition = -1
		dpPosition = -1
		gqPosition = -1
		adPosition = -1
		ftPosition = -1
	)
	for i, f := range strings.Split(fields[8], ":") {
		switch f {
		case "GT":
			gtPosition = i
		case "DP":
			dpPosition = i
		case "GQ":
			gqPosition = i
		case "AD":
			adPosition = i
		case "FT":
			ftPosition = i
		}
	}

	samples := fields[9:]
	b.EnsureSamples(len(samples))

	for sampleIdx, column := range samples {
		call := &b.Calls[sampleIdx]
		call.Qual = qual

		for _, f := range lineFilters {
			if err := call.AddFilter(f); err != nil {
				return nil, err
			}
		}

		values := strings.Split(column, ":")
		for k, value := range values {
			switch k {
			case gtPosition:
				if err := parseGenotype(value, call, b, sampleIdx); err != nil {
					return nil, err
				}
			case dpPosition:
				if dp, dpErr := strconv.Atoi(value); dpErr == nil {
					call.DP = dp
				}
			case gqPosition:
				if gq, gqErr := strconv.ParseFloat(value, 64); gqErr == nil {
					call.GQ = gq
				}
			case adPosition:
				parseAlleleDepths(value, call)
			case ftPosition:
				if value != "." && value != "" && value != "PASS" {
					for _, f := range strings.Split(value, ";") {
						if err := call.AddFilter(f); err != nil {
							return nil, err
						}
					}
				}
			}
		}
	}

	return b, nil
}

// parseGenotype fills a call from a VCF GT string. Calls with
// more alleles than the ploidy cap stay no-calls, with every
// observed allele tracked as ambiguous.
func parseGenotype(gtString string, call *variants.Call, b *variants.Block, sampleIdx int) error {
	call.Phased = strings.Contains(gtString, "|")

	var alleleStringSplits []string
	if call.Phased {
		alleleStringSplits = strings.Split(gtString, "|")
	} else {
		alleleStringSplits = strings.Split(gtString, "/")
	}

	alleles := make([]int, 0, len(alleleStringSplits))
	for _, s := range alleleStringSplits {
		if s == "." || s == "" {
			alleles = append(alleles, -1)
			continue
		}
		// an unparseable character counts as missing
		allele, err := strconv.Atoi(s)
		if err != nil {
			allele = -1
		}
		alleles = append(alleles, allele)
	}

	if len(alleles) > p.Max {
		// cannot resolve a genotype at this ploidy
		for _, allele := range alleles {
			if allele >= 0 {
				if err := b.AddAmbiguous(sampleIdx, allele); err != nil {
					return err
				}
			}
		}
		return nil
	}

	return call.SetGT(alleles...)
}

// parseAlleleDepths splits an AD column into the ref depth, the
// depths of the called alleles and the summed rest.
func parseAlleleDepths(value string, call *variants.Call) {
	if value == "." || value == "" {
		return
	}

	depths := []int{}
	total := 0
	for _, s := range strings.Split(value, ",") {
		d, err := strconv.Atoi(s)
		if err != nil {
			d = -1
		}
		depths = append(depths, d)
		if d > 0 {
			total += d
		}
	}

	if len(depths) == 0 {
		return
	}

	call.ADRef = depths[0]

	kept := 0
	if depths[0] > 0 {
		kept = depths[0]
	}
	counted := map[int]bool{0: true}

	for i := 0; i < call.NGT; i++ {
		allele := call.GT[i]
		if allele >= 0 && allele < len(depths) {
			call.AD[i] = depths[allele]
			if !counted[allele] && depths[allele] > 0 {
				kept += depths[allele]
			}
			counted[allele] = true
		}
	}

	call.ADOther = total - kept
}
