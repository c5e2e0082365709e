package gttype

import (
	"haplo/api/models/constants"
)

const (
	NoCall constants.GTType = iota

	// Haploid
	Hemizygous

	// Diploid
	HomozygousReference
	Heterozygous
	HomozygousAlternate

	// Residual bucket : anything that cannot be classified
	// above (het-alt calls, more alleles than the ploidy cap).
	// Deliberately distinct from NoCall.
	Unknown
)

func IsKnown(value int) bool {
	return value >= int(NoCall) && value < int(Unknown)
}

func GTTypeToString(gt constants.GTType) string {
	switch gt {
	case NoCall:
		return "NOCALL"

	// Haploid
	case Hemizygous:
		return "HEMI"

	// Diploid
	case HomozygousReference:
		return "HOMREF"
	case Heterozygous:
		return "HET"
	case HomozygousAlternate:
		return "HOMALT"

	default:
		return "UNKNOWN"
	}
}
