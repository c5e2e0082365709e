package variants

import (
	"testing"

	"haplo/api/models/constants"
	"haplo/api/models/constants/gttype"

	"github.com/stretchr/testify/assert"
)

func makeCall(t *testing.T, alleles ...int) Call {
	c := NewCall()
	assert.NoError(t, c.SetGT(alleles...))
	return c
}

func TestGTTypeClassification(t *testing.T) {
	t.Run("should classify an empty genotype as nocall", func(t *testing.T) {
		c := NewCall()
		assert.Equal(t, gttype.NoCall, c.GTType())
	})

	t.Run("should classify all-missing alleles as nocall regardless of depth fields", func(t *testing.T) {
		c := makeCall(t, -1, -1)
		c.DP = 42
		c.GQ = 99
		assert.Equal(t, gttype.NoCall, c.GTType())

		haploidMissing := makeCall(t, -1)
		assert.Equal(t, gttype.NoCall, haploidMissing.GTType())
	})

	t.Run("should classify any single-allele call as hemizygous, even a lone 0", func(t *testing.T) {
		for _, allele := range []int{0, 1, 7} {
			c := makeCall(t, allele)
			assert.Equal(t, gttype.Hemizygous, c.GTType())
		}
	})

	t.Run("should classify diploid genotypes into homref, het, homalt", func(t *testing.T) {
		cases := []struct {
			alleles  []int
			expected constants.GTType
		}{
			{[]int{0, 0}, gttype.HomozygousReference},
			{[]int{0, 2}, gttype.Heterozygous},
			{[]int{3, 0}, gttype.Heterozygous},
			{[]int{2, 2}, gttype.HomozygousAlternate},
		}

		for _, tc := range cases {
			c := makeCall(t, tc.alleles...)
			assert.Equal(t, tc.expected, c.GTType(), "alleles %v", tc.alleles)
		}
	})

	t.Run("should classify two distinct non-zero alleles as unknown, not nocall", func(t *testing.T) {
		c := makeCall(t, 1, 2)
		assert.Equal(t, gttype.Unknown, c.GTType())
		assert.False(t, c.IsNoCall())
		assert.False(t, c.IsHet())
		assert.False(t, c.IsHomalt())
		assert.False(t, c.IsHomref())
	})
}

func TestCallInvariants(t *testing.T) {
	t.Run("should reject genotypes past the ploidy cap instead of truncating", func(t *testing.T) {
		c := NewCall()
		err := c.SetGT(1, 2, 3)
		assert.ErrorIs(t, err, ErrTooManyAlleles)
		assert.Equal(t, 0, c.NGT)
	})

	t.Run("should reject filters past the cap and keep insertion order below it", func(t *testing.T) {
		c := NewCall()
		assert.NoError(t, c.AddFilter("LowQual"))
		assert.NoError(t, c.AddFilter("q10"))
		assert.Equal(t, []string{"LowQual", "q10"}, c.FilterList())

		for i := c.NFilter; i < MaxFilter; i++ {
			assert.NoError(t, c.AddFilter("f"))
		}
		assert.ErrorIs(t, c.AddFilter("one-too-many"), ErrTooManyFilters)
		assert.Equal(t, MaxFilter, c.NFilter)
	})

	t.Run("should seed depths as unknown on a fresh call", func(t *testing.T) {
		c := NewCall()
		assert.Equal(t, -1, c.DP)
		assert.Equal(t, -1, c.ADRef)
		assert.Equal(t, -1, c.ADOther)
		assert.Equal(t, -1, c.AD[0])
		assert.Equal(t, -1, c.AD[1])
	})
}

func TestCallRendering(t *testing.T) {
	t.Run("should render unphased and phased genotypes", func(t *testing.T) {
		het := makeCall(t, 0, 1)
		assert.Equal(t, "0/1", het.GTString())

		het.Phased = true
		assert.Equal(t, "0|1", het.GTString())

		empty := NewCall()
		assert.Equal(t, ".", empty.GTString())

		missing := makeCall(t, 0, -1)
		assert.Equal(t, "0/.", missing.GTString())
	})

	t.Run("should include the classification in the diagnostic form", func(t *testing.T) {
		c := makeCall(t, 0, 1)
		c.DP = 30
		assert.Equal(t, "0/1 (HET) DP=30", c.String())
	})
}
