package processing

import (
	"errors"
	"fmt"
	"strings"

	"haplo/api/models/constants"
	"haplo/api/models/variants"
)

/*
	Buffering layer between a block source (usually the vcf
	reader) and downstream consumers. A stage accumulates
	incoming blocks according to its policy and emits one
	combined block each time the policy boundary is crossed.
*/

const (
	// accumulate a fixed number of blocks ; param is the count
	BufferCount constants.BufferPolicy = iota
	// accumulate while blocks stay within param base pairs of
	// the last buffered block's end
	BufferBlock
	// accumulate everything ; released only by Flush
	BufferAll
	// accumulate while positions stay at or below param
	BufferEndPos
)

var (
	ErrNoCurrent     = errors.New("processing: no block at the cursor, Advance first")
	ErrUnknownPolicy = errors.New("processing: unknown buffering policy")
	ErrBadParam      = errors.New("processing: invalid policy parameter")
)

func PolicyToString(policy constants.BufferPolicy) string {
	switch policy {
	case BufferCount:
		return "count"
	case BufferBlock:
		return "block"
	case BufferAll:
		return "all"
	case BufferEndPos:
		return "end-position"
	default:
		return "unknown"
	}
}

func CastToBufferPolicy(text string) (constants.BufferPolicy, error) {
	switch text {
	case "count":
		return BufferCount, nil
	case "block":
		return BufferBlock, nil
	case "all":
		return BufferAll, nil
	case "end-position", "endpos":
		return BufferEndPos, nil
	}
	return BufferCount, fmt.Errorf("%w: %q", ErrUnknownPolicy, text)
}

type (
	// Source is anything a stage can pull finished blocks from.
	// Both the vcf reader and the stages themselves satisfy it,
	// so stages can be chained.
	Source interface {
		// Advance moves to the next block ; false means exhaustion
		Advance() bool
		// Current returns the block at the cursor ; calling it
		// before a successful Advance is a usage error
		Current() (*variants.Block, error)
	}

	// Stage is a processing step that buffers per its policy.
	Stage interface {
		Source

		// Add enqueues one block
		Add(b *variants.Block) error

		// AddFrom pulls from src until the policy boundary is
		// crossed or src runs dry ; reports whether anything
		// was consumed
		AddFrom(src Source) (bool, error)

		// Flush completes whatever is still pending so the
		// remaining content becomes visible to Advance
		Flush()

		// AddVariant injects a single call for one sample into
		// the pipeline (0/1 when het, homalt otherwise)
		AddVariant(sample int, chrom string, rv variants.RefVar, het bool) error

		// AddHomref injects an implicit reference call spanning
		// [start, end) for one sample ; het asks for a haploid
		// reference half-call instead
		AddHomref(sample int, chrom string, start int64, end int64, het bool) error
	}
)

// NewStage builds the stage implementation matching the policy.
func NewStage(policy constants.BufferPolicy, param int64) (Stage, error) {
	switch policy {
	case BufferCount:
		if param < 1 {
			return nil, fmt.Errorf("%w: count policy needs a positive count, got %d", ErrBadParam, param)
		}
		return &countStage{target: int(param)}, nil
	case BufferBlock:
		if param < 0 {
			return nil, fmt.Errorf("%w: block policy needs a non-negative gap, got %d", ErrBadParam, param)
		}
		return &gapStage{gap: param}, nil
	case BufferAll:
		return &allStage{}, nil
	case BufferEndPos:
		return &endPosStage{endPos: param}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, policy)
}

// ---------------------------------------------
// shared buffer state

type stageBuffer struct {
	// blocks accumulated since the last boundary
	pending []*variants.Block
	// combined blocks waiting to be popped
	ready []*variants.Block
	// block owned by the consumer since the last Advance
	cur *variants.Block
}

func (sb *stageBuffer) push(b *variants.Block) error {
	if err := b.Validate(); err != nil {
		return err
	}
	sb.pending = append(sb.pending, b)
	return nil
}

// complete merges whatever is pending into one combined block
// and queues it for Advance.
func (sb *stageBuffer) complete() {
	if len(sb.pending) == 0 {
		return
	}
	sb.ready = append(sb.ready, mergeBlocks(sb.pending))
	sb.pending = nil
}

func (sb *stageBuffer) Advance() bool {
	if len(sb.ready) == 0 {
		return false
	}
	sb.cur = sb.ready[0]
	sb.ready = sb.ready[1:]
	return true
}

func (sb *stageBuffer) Current() (*variants.Block, error) {
	if sb.cur == nil {
		return nil, ErrNoCurrent
	}
	return sb.cur, nil
}

func (sb *stageBuffer) Flush() {
	sb.complete()
}

// fill drives the shared pull loop : keep consuming src until
// a combined block shows up in the ready queue (the policy
// boundary, as decided by the concrete stage's add) or src is
// exhausted.
func (sb *stageBuffer) fill(src Source, add func(*variants.Block) error) (bool, error) {
	consumed := false
	before := len(sb.ready)

	for len(sb.ready) == before {
		if !src.Advance() {
			break
		}

		b, err := src.Current()
		if err != nil {
			return consumed, err
		}
		if err := add(b); err != nil {
			return consumed, err
		}
		consumed = true
	}

	return consumed, nil
}

// sameRegion reports whether b continues the pending run on the
// same chromosome ; positional policies force a boundary on a
// chromosome change since positions only compare within one.
func (sb *stageBuffer) sameRegion(b *variants.Block) bool {
	return len(sb.pending) == 0 || sb.pending[0].Chrom == b.Chrom
}

// ---------------------------------------------
// synthetic input helpers

func variantBlock(sample int, chrom string, rv variants.RefVar, het bool) (*variants.Block, error) {
	b := &variants.Block{Chrom: chrom}
	b.Extend(rv)
	b.EnsureSamples(sample + 1)

	var err error
	if het {
		err = b.Calls[sample].SetGT(0, 1)
	} else {
		err = b.Calls[sample].SetGT(1, 1)
	}
	if err != nil {
		return nil, err
	}

	return b, nil
}

func homrefBlock(sample int, chrom string, start int64, end int64, het bool) (*variants.Block, error) {
	if end <= start {
		return nil, fmt.Errorf("%w: empty homref span [%d, %d)", ErrBadParam, start, end)
	}

	b := &variants.Block{Chrom: chrom, Pos: start, Len: end - start}
	b.EnsureSamples(sample + 1)

	var err error
	if het {
		// haploid reference half-call
		err = b.Calls[sample].SetGT(0)
	} else {
		err = b.Calls[sample].SetGT(0, 0)
	}
	if err != nil {
		return nil, err
	}

	return b, nil
}

// ---------------------------------------------
// count policy

type countStage struct {
	stageBuffer
	target int
}

func (s *countStage) Add(b *variants.Block) error {
	if err := s.push(b); err != nil {
		return err
	}
	if len(s.pending) == s.target {
		s.complete()
	}
	return nil
}

func (s *countStage) AddFrom(src Source) (bool, error) {
	return s.fill(src, s.Add)
}

func (s *countStage) AddVariant(sample int, chrom string, rv variants.RefVar, het bool) error {
	b, err := variantBlock(sample, chrom, rv, het)
	if err != nil {
		return err
	}
	return s.Add(b)
}

func (s *countStage) AddHomref(sample int, chrom string, start int64, end int64, het bool) error {
	b, err := homrefBlock(sample, chrom, start, end, het)
	if err != nil {
		return err
	}
	return s.Add(b)
}

// ---------------------------------------------
// block-gap policy

type gapStage struct {
	stageBuffer
	gap int64
	// furthest end seen in the pending run
	lastEnd int64
}

func (s *gapStage) Add(b *variants.Block) error {
	if len(s.pending) > 0 && (!s.sameRegion(b) || b.Pos > s.lastEnd+s.gap) {
		s.complete()
	}

	if err := s.push(b); err != nil {
		return err
	}

	if len(s.pending) == 1 || b.End() > s.lastEnd {
		s.lastEnd = b.End()
	}

	return nil
}

func (s *gapStage) AddFrom(src Source) (bool, error) {
	return s.fill(src, s.Add)
}

func (s *gapStage) AddVariant(sample int, chrom string, rv variants.RefVar, het bool) error {
	b, err := variantBlock(sample, chrom, rv, het)
	if err != nil {
		return err
	}
	return s.Add(b)
}

func (s *gapStage) AddHomref(sample int, chrom string, start int64, end int64, het bool) error {
	b, err := homrefBlock(sample, chrom, start, end, het)
	if err != nil {
		return err
	}
	return s.Add(b)
}

// ---------------------------------------------
// whole-input policy

type allStage struct {
	stageBuffer
}

func (s *allStage) Add(b *variants.Block) error {
	return s.push(b)
}

func (s *allStage) AddFrom(src Source) (bool, error) {
	return s.fill(src, s.Add)
}

func (s *allStage) AddVariant(sample int, chrom string, rv variants.RefVar, het bool) error {
	b, err := variantBlock(sample, chrom, rv, het)
	if err != nil {
		return err
	}
	return s.Add(b)
}

func (s *allStage) AddHomref(sample int, chrom string, start int64, end int64, het bool) error {
	b, err := homrefBlock(sample, chrom, start, end, het)
	if err != nil {
		return err
	}
	return s.Add(b)
}

// ---------------------------------------------
// end-position policy

type endPosStage struct {
	stageBuffer
	endPos int64
}

func (s *endPosStage) Add(b *variants.Block) error {
	if len(s.pending) > 0 && (!s.sameRegion(b) || b.Pos > s.endPos) {
		s.complete()
	}
	return s.push(b)
}

func (s *endPosStage) AddFrom(src Source) (bool, error) {
	return s.fill(src, s.Add)
}

func (s *endPosStage) AddVariant(sample int, chrom string, rv variants.RefVar, het bool) error {
	b, err := variantBlock(sample, chrom, rv, het)
	if err != nil {
		return err
	}
	return s.Add(b)
}

func (s *endPosStage) AddHomref(sample int, chrom string, start int64, end int64, het bool) error {
	b, err := homrefBlock(sample, chrom, start, end, het)
	if err != nil {
		return err
	}
	return s.Add(b)
}

// ---------------------------------------------
// merging

// mergeBlocks folds a pending run into one combined block :
// extents union, variation concatenates, and each sample keeps
// its first resolved call. Alternate alleles from a second
// resolved call for the same sample cannot be represented in a
// single genotype anymore, so they land in the ambiguous set.
func mergeBlocks(blocks []*variants.Block) *variants.Block {
	if len(blocks) == 1 {
		return blocks[0]
	}

	merged := &variants.Block{Chrom: blocks[0].Chrom}

	var (
		extentSet bool
		end       int64
	)

	for _, b := range blocks {
		if b.Len > 0 {
			if !extentSet {
				merged.Pos = b.Pos
				end = b.End()
				extentSet = true
			} else {
				if b.Pos < merged.Pos {
					merged.Pos = b.Pos
				}
				if b.End() > end {
					end = b.End()
				}
			}
		}

		merged.Variation = append(merged.Variation, b.Variation...)
		merged.EnsureSamples(len(b.Calls))

		for sample := range b.Calls {
			call := b.Calls[sample]
			if call.IsNoCall() {
				continue
			}
			if merged.Calls[sample].IsNoCall() {
				merged.Calls[sample] = call
				continue
			}
			for i := 0; i < call.NGT; i++ {
				if call.GT[i] > 0 {
					_ = merged.AddAmbiguous(sample, call.GT[i])
				}
			}
		}

		for sample, alleles := range b.AmbiguousAlleles {
			for _, allele := range alleles {
				_ = merged.AddAmbiguous(sample, allele)
			}
		}

		merged.Info = joinInfo(merged.Info, b.Info)
	}

	if extentSet {
		merged.Len = end - merged.Pos + 1
	}

	return merged
}

// joinInfo unions two semicolon-delimited info strings,
// first occurrence of a key wins.
func joinInfo(a string, b string) string {
	if a == "" {
		return b
	}
	if b == "" || a == b {
		return a
	}

	seen := map[string]bool{}
	out := []string{}

	for _, info := range []string{a, b} {
		for _, field := range strings.Split(info, ";") {
			if field == "" {
				continue
			}
			key := field
			if eq := strings.IndexByte(field, '='); eq >= 0 {
				key = field[:eq]
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, field)
		}
	}

	return strings.Join(out, ";")
}
