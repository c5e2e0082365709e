package ploidy

import (
	"haplo/api/models/constants"
)

const (
	Unknown constants.Ploidy = iota

	Haploid
	Diploid
)

// Max is the ploidy cap assumed throughout the variant model :
// a call carries at most this many allele indices.
const Max = int(Diploid)

func IsKnown(value int) bool {
	return value > int(Unknown) && value <= int(Diploid)
}
