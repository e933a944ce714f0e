package stats

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/safestats/safe-stats/pkg/safe"
)

// Accumulator folds decoded Safe events into summary statistics. Folding is
// commutative: the final Statistics never depend on the order in which
// records are observed.
type Accumulator struct {
	fromBlock uint64
	toBlock   uint64

	tracked      map[safe.Kind]bool
	counts       map[safe.Kind]int
	signers      map[common.Address]struct{}
	total        int
	other        int
	unrecognized int
}

// NewAccumulator returns an Accumulator for events in [fromBlock, toBlock].
// Events whose Kind is outside the tracked set are counted under a single
// "other" bucket.
func NewAccumulator(fromBlock, toBlock uint64, tracked []safe.Kind) *Accumulator {
	trackedSet := make(map[safe.Kind]bool, len(tracked))
	for _, kind := range tracked {
		trackedSet[kind] = true
	}
	return &Accumulator{
		fromBlock: fromBlock,
		toBlock:   toBlock,
		tracked:   trackedSet,
		counts:    make(map[safe.Kind]int),
		signers:   make(map[common.Address]struct{}),
	}
}

// Observe folds a single record into the accumulator.
func (a *Accumulator) Observe(record safe.Record) {
	a.total++
	if record.Kind == safe.KindUnknown {
		a.unrecognized++
		return
	}
	if signer, ok := record.Signer(); ok {
		a.signers[signer] = struct{}{}
	}
	for _, owner := range record.Owners {
		a.signers[owner] = struct{}{}
	}
	if !a.tracked[record.Kind] {
		a.other++
		return
	}
	a.counts[record.Kind]++
}

// Statistics is the finalized, read-only result of a scan.
type Statistics struct {
	FromBlock uint64
	ToBlock   uint64

	Total        int
	Unrecognized int
	Other        int
	Counts       map[safe.Kind]int
	Signers      []common.Address
}

// Stats finalizes the accumulator into an immutable snapshot. The signer
// list is sorted for deterministic output.
func (a *Accumulator) Stats() *Statistics {
	signers := maps.Keys(a.signers)
	slices.SortFunc(signers, func(a, b common.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	counts := make(map[safe.Kind]int, len(a.counts))
	for kind, count := range a.counts {
		counts[kind] = count
	}
	return &Statistics{
		FromBlock:    a.fromBlock,
		ToBlock:      a.toBlock,
		Total:        a.total,
		Unrecognized: a.unrecognized,
		Other:        a.other,
		Counts:       counts,
		Signers:      signers,
	}
}

// UniqueSigners is the number of distinct signer addresses observed.
func (s *Statistics) UniqueSigners() int {
	return len(s.Signers)
}
