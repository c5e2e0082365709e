package variants

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInfoFlagField   = errors.New("variants: info field is a flag (no '='), cannot set a value on it")
	ErrInfoEmptyName   = errors.New("variants: empty info field name")
	ErrSampleIndex     = errors.New("variants: sample index out of range")
	ErrVariationExtent = errors.New("variants: variation lies outside the block extent")
)

type (
	// Block gathers the calls made for every sample at one
	// location on a chromosome, together with the alleles seen there.
	//
	// A block is produced by a reader, possibly merged with others
	// while buffered inside a processing stage, and is final once a
	// consumer pops it through Advance/Current.
	Block struct {
		Chrom string `json:"chrom"`

		Variation []RefVar `json:"variation"`

		// one call per sample ; insertion order is sample order
		Calls []Call `json:"calls"`

		// extent covering every entry in Variation
		Pos int64 `json:"pos"`
		Len int64 `json:"len"`

		// shared semicolon-delimited key=value annotation
		Info string `json:"info"`

		// alleles seen for a sample that could not be folded into a
		// resolved genotype, keyed by sample index (not a dense
		// parallel array, so out-of-order samples cannot misalign)
		AmbiguousAlleles map[int][]int `json:"ambiguousAlleles,omitempty"`
	}
)

// End is the last reference base covered by the block (inclusive).
func (b *Block) End() int64 {
	return b.Pos + b.Len - 1
}

// Extend appends a variation entry and grows the positional
// extent to cover it.
func (b *Block) Extend(rv RefVar) {
	if len(b.Variation) == 0 {
		b.Pos = rv.Start
		b.Len = rv.End - rv.Start + 1
	} else {
		end := b.End()
		if rv.Start < b.Pos {
			b.Pos = rv.Start
		}
		if rv.End > end {
			end = rv.End
		}
		b.Len = end - b.Pos + 1
	}

	b.Variation = append(b.Variation, rv)
}

// EnsureSamples grows the call list with empty calls until it
// holds at least n samples.
func (b *Block) EnsureSamples(n int) {
	for len(b.Calls) < n {
		b.Calls = append(b.Calls, NewCall())
	}
}

// AddAmbiguous records an allele seen for a sample that did not
// make it into a resolved genotype.
func (b *Block) AddAmbiguous(sample int, allele int) error {
	if sample < 0 || sample >= len(b.Calls) {
		return fmt.Errorf("%w: %d with %d calls", ErrSampleIndex, sample, len(b.Calls))
	}

	if b.AmbiguousAlleles == nil {
		b.AmbiguousAlleles = map[int][]int{}
	}
	b.AmbiguousAlleles[sample] = append(b.AmbiguousAlleles[sample], allele)

	return nil
}

// Validate rejects blocks that break the model invariants rather
// than letting them silently flow downstream.
func (b *Block) Validate() error {
	for sample := range b.AmbiguousAlleles {
		if sample < 0 || sample >= len(b.Calls) {
			return fmt.Errorf("%w: ambiguous alleles for sample %d with %d calls", ErrSampleIndex, sample, len(b.Calls))
		}
	}

	for _, rv := range b.Variation {
		if rv.Start < b.Pos || rv.End > b.End() {
			return fmt.Errorf("%w: %s not within %s:%d-%d", ErrVariationExtent, rv.String(), b.Chrom, b.Pos, b.End())
		}
	}

	return nil
}

// AnyHomref returns whether at least one call is homozygous-reference.
func (b *Block) AnyHomref() bool {
	for i := range b.Calls {
		if b.Calls[i].IsHomref() {
			return true
		}
	}
	return false
}

// AllHomref returns whether every call is homozygous-reference.
// An empty call list is not "all homref".
func (b *Block) AllHomref() bool {
	for i := range b.Calls {
		if !b.Calls[i].IsHomref() {
			return false
		}
	}
	return len(b.Calls) > 0
}

// AnyAmbiguous returns whether any sample carries unresolved alleles.
func (b *Block) AnyAmbiguous() bool {
	for _, alleles := range b.AmbiguousAlleles {
		if len(alleles) > 0 {
			return true
		}
	}
	return false
}

// SetInfo find/replaces a key=value field inside the shared info
// string. A missing name is appended, an empty value removes the
// field along with its delimiter. Flag-style fields (no '=') are
// not supported and come back as a usage error instead of being
// silently mangled.
func (b *Block) SetInfo(name string, value string) error {
	if name == "" {
		return ErrInfoEmptyName
	}

	fields := strings.Split(b.Info, ";")
	rebuilt := make([]string, 0, len(fields)+1)
	replaced := false

	for _, field := range fields {
		if field == "" {
			continue
		}

		eq := strings.IndexByte(field, '=')
		if eq < 0 {
			if field == name {
				return fmt.Errorf("%w: %q", ErrInfoFlagField, name)
			}
			rebuilt = append(rebuilt, field)
			continue
		}

		if field[:eq] == name {
			if value != "" {
				rebuilt = append(rebuilt, name+"="+value)
			}
			replaced = true
			continue
		}

		rebuilt = append(rebuilt, field)
	}

	if !replaced && value != "" {
		rebuilt = append(rebuilt, name+"="+value)
	}

	b.Info = strings.Join(rebuilt, ";")

	return nil
}

func (b *Block) String() string {
	variation := make([]string, 0, len(b.Variation))
	for _, rv := range b.Variation {
		variation = append(variation, rv.String())
	}

	calls := make([]string, 0, len(b.Calls))
	for i := range b.Calls {
		calls = append(calls, b.Calls[i].String())
	}

	s := fmt.Sprintf("%s:%d-%d [%s] calls: %s",
		b.Chrom, b.Pos, b.End(),
		strings.Join(variation, ", "),
		strings.Join(calls, " ; "))

	if b.Info != "" {
		s += " info: " + b.Info
	}
	if b.AnyAmbiguous() {
		s += " (ambiguous)"
	}

	return s
}
