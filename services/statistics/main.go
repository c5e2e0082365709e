package statistics

import (
	"fmt"

	"haplo/api/models/constants/gttype"
	"haplo/api/models/variants"

	linq "github.com/ahmetb/go-linq"
)

type (
	// SampleStats tallies what one sample's calls looked like
	// across every finalized block seen so far.
	SampleStats struct {
		Id string `json:"id"`

		GTTypes   map[string]int `json:"gtTypes"`
		Ambiguous int            `json:"ambiguous"`
		Filtered  int            `json:"filtered"`
		Calls     int            `json:"calls"`
	}

	// Statistics is a read-only consumer of finalized blocks ;
	// nothing flows back into the pipeline from here.
	Statistics struct {
		SampleIds []string

		Blocks          int
		AllHomrefBlocks int

		samples []*SampleStats
	}
)

func New(sampleIds []string) *Statistics {
	s := &Statistics{SampleIds: sampleIds}
	for _, id := range sampleIds {
		s.samples = append(s.samples, &SampleStats{
			Id:      id,
			GTTypes: map[string]int{},
		})
	}
	return s
}

// sample returns the stats bucket for a sample index, growing
// the list for samples the header did not announce.
func (s *Statistics) sample(idx int) *SampleStats {
	for len(s.samples) <= idx {
		s.samples = append(s.samples, &SampleStats{
			Id:      fmt.Sprintf("sample-%d", len(s.samples)),
			GTTypes: map[string]int{},
		})
	}
	return s.samples[idx]
}

// Observe folds one finalized block into the tallies.
func (s *Statistics) Observe(b *variants.Block) {
	s.Blocks++
	if b.AllHomref() {
		s.AllHomrefBlocks++
	}

	for idx := range b.Calls {
		call := &b.Calls[idx]
		bucket := s.sample(idx)

		bucket.Calls++
		bucket.GTTypes[gttype.GTTypeToString(call.GTType())]++
		if call.NFilter > 0 {
			bucket.Filtered++
		}
	}

	for idx, alleles := range b.AmbiguousAlleles {
		if len(alleles) > 0 {
			s.sample(idx).Ambiguous += len(alleles)
		}
	}
}

// Samples returns the per-sample tallies, ordered by sample id.
func (s *Statistics) Samples() []*SampleStats {
	ordered := []*SampleStats{}
	linq.From(s.samples).
		OrderBy(func(item interface{}) interface{} {
			return item.(*SampleStats).Id
		}).
		ToSlice(&ordered)
	return ordered
}

// Overview renders the tallies the way the overview endpoint
// serves them.
func (s *Statistics) Overview() map[string]interface{} {
	samples := map[string]interface{}{}
	totals := map[string]int{}

	for _, bucket := range s.Samples() {
		samples[bucket.Id] = bucket

		for name, count := range bucket.GTTypes {
			totals[name] += count
		}
	}

	// expose every class, including the ones never seen
	for gt := gttype.NoCall; gt <= gttype.Unknown; gt++ {
		name := gttype.GTTypeToString(gt)
		if _, ok := totals[name]; !ok {
			totals[name] = 0
		}
	}

	return map[string]interface{}{
		"blocks":          s.Blocks,
		"allHomrefBlocks": s.AllHomrefBlocks,
		"genotypes":       totals,
		"samples":         samples,
	}
}
