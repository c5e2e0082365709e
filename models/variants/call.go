package variants

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"haplo/api/models/constants"
	"haplo/api/models/constants/gttype"
	p "haplo/api/models/constants/ploidy"
)

// upper bound on the number of filter names a single call can carry
const MaxFilter = 20

var (
	ErrTooManyAlleles = errors.New("variants: more alleles than the ploidy cap allows")
	ErrTooManyFilters = errors.New("variants: filter list is full")
)

type (
	// Call is one sample's genotype call at a single site.
	// Allele indices follow the usual convention :
	// -1 missing, 0 reference, >0 an alternate allele.
	Call struct {
		GT [p.Max]int `json:"gt"`

		// ref depth and the summed depth of alleles we did not keep,
		// plus per-kept-allele depths ; -1 means unknown
		ADRef   int        `json:"adRef"`
		ADOther int        `json:"adOther"`
		AD      [p.Max]int `json:"ad"`

		// number of valid entries in GT
		NGT    int  `json:"ngt"`
		Phased bool `json:"phased"`

		Filters [MaxFilter]string `json:"-"`
		NFilter int               `json:"nfilter"`

		GQ   float64 `json:"gq"`
		DP   int     `json:"dp"`
		Qual float64 `json:"qual"`
	}
)

// NewCall returns an empty call with every depth and
// allele slot marked unknown.
func NewCall() Call {
	c := Call{
		ADRef:   -1,
		ADOther: -1,
		DP:      -1,
	}
	for i := 0; i < p.Max; i++ {
		c.GT[i] = -1
		c.AD[i] = -1
	}
	return c
}

// SetGT replaces the genotype with the given allele indices,
// rejecting anything past the ploidy cap rather than truncating.
func (c *Call) SetGT(alleles ...int) error {
	if len(alleles) > p.Max {
		return fmt.Errorf("%w: got %d", ErrTooManyAlleles, len(alleles))
	}

	for i := 0; i < p.Max; i++ {
		c.GT[i] = -1
	}
	copy(c.GT[:], alleles)
	c.NGT = len(alleles)

	return nil
}

// AddFilter appends a filter name, keeping insertion order.
func (c *Call) AddFilter(name string) error {
	if c.NFilter >= MaxFilter {
		return fmt.Errorf("%w: cannot add %q", ErrTooManyFilters, name)
	}

	c.Filters[c.NFilter] = name
	c.NFilter++

	return nil
}

// FilterList returns the filters set so far, in insertion order.
func (c *Call) FilterList() []string {
	return c.Filters[:c.NFilter]
}

func (c *Call) IsNoCall() bool {
	for i := 0; i < c.NGT; i++ {
		if c.GT[i] >= 0 {
			return false
		}
	}
	return true
}

func (c *Call) IsHomref() bool {
	for i := 0; i < c.NGT; i++ {
		if c.GT[i] != 0 {
			return false
		}
	}
	return c.NGT > 0
}

func (c *Call) IsHet() bool {
	return c.NGT == 2 &&
		((c.GT[0] == 0 && c.GT[1] > 0) || (c.GT[0] > 0 && c.GT[1] == 0))
}

func (c *Call) IsHomalt() bool {
	return c.NGT == 2 && c.GT[0] == c.GT[1] && c.GT[1] > 0
}

func (c *Call) IsHemi() bool {
	return c.NGT == 1
}

// GTType classifies the call into the six-way taxonomy.
// The order of the checks is load-bearing : a haploid call has to be
// picked up before the homref check, otherwise a lone 0 allele would
// come back as homozygous-reference.
func (c *Call) GTType() constants.GTType {
	switch {
	case c.IsNoCall():
		return gttype.NoCall
	case c.IsHemi():
		return gttype.Hemizygous
	case c.IsHomref():
		return gttype.HomozygousReference
	case c.IsHet():
		return gttype.Heterozygous
	case c.IsHomalt():
		return gttype.HomozygousAlternate
	}

	// het-alt calls and anything beyond the ploidy cap both
	// land here ; downstream treats them as one bucket
	return gttype.Unknown
}

// GTString renders the genotype the way a VCF sample column would
// ("0/1", "1|1", ".", ...).
func (c *Call) GTString() string {
	if c.NGT == 0 {
		return "."
	}

	separator := "/"
	if c.Phased {
		separator = "|"
	}

	alleles := make([]string, 0, c.NGT)
	for i := 0; i < c.NGT; i++ {
		if c.GT[i] < 0 {
			alleles = append(alleles, ".")
		} else {
			alleles = append(alleles, strconv.Itoa(c.GT[i]))
		}
	}

	return strings.Join(alleles, separator)
}

func (c *Call) String() string {
	s := fmt.Sprintf("%s (%s)", c.GTString(), gttype.GTTypeToString(c.GTType()))

	if c.DP >= 0 {
		s += fmt.Sprintf(" DP=%d", c.DP)
	}
	if c.GQ != 0 {
		s += fmt.Sprintf(" GQ=%g", c.GQ)
	}
	if c.NFilter > 0 {
		s += " filters=" + strings.Join(c.FilterList(), ",")
	}

	return s
}
