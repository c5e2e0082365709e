package variants

import "fmt"

type (
	// RefVar is a reference-relative allele representation :
	// the sequence in Alt replaces the reference bases spanning
	// [Start, End] (both inclusive, 0-based).
	RefVar struct {
		Start int64  `json:"start"`
		End   int64  `json:"end"`
		Ref   string `json:"ref"`
		Alt   string `json:"alt"`
	}
)

func (rv RefVar) String() string {
	return fmt.Sprintf("%d-%d %s>%s", rv.Start, rv.End, rv.Ref, rv.Alt)
}
