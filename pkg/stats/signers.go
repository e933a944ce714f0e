package stats

import (
	"bytes"
	"time"

	"github.com/ethereum/go-ethereum/common"
	mstats "github.com/montanaflynn/stats"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/safestats/safe-stats/pkg/precise"
	"github.com/safestats/safe-stats/pkg/txservice"
)

// SignerStats tracks a single signer's activity across the Safe's executed
// transactions.
type SignerStats struct {
	Address     common.Address
	TxsCreated  int
	TxsSigned   int
	TxsExecuted int
	GasSpent    *precise.ETH

	signingTimes []float64 // in seconds
}

func newSignerStats(address common.Address) *SignerStats {
	return &SignerStats{
		Address:  address,
		GasSpent: precise.NewETH(nil),
	}
}

func (s *SignerStats) addSigningTime(created, signed time.Time) {
	s.signingTimes = append(s.signingTimes, signed.Sub(created).Seconds())
}

// Summary holds summary statistics over the signer's signing times,
// in seconds.
type Summary struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Stdev  float64
}

// SigningSummary summarizes the time the signer took to sign transactions
// they did not create. Returns false when there are no such signings.
// Stdev is the sample standard deviation and zero with fewer than 2 points.
func (s *SignerStats) SigningSummary() (Summary, bool) {
	if len(s.signingTimes) == 0 {
		return Summary{}, false
	}
	data := mstats.Float64Data(s.signingTimes)
	var summary Summary
	summary.Min, _ = mstats.Min(data)
	summary.Max, _ = mstats.Max(data)
	summary.Mean, _ = mstats.Mean(data)
	summary.Median, _ = mstats.Median(data)
	if len(s.signingTimes) > 1 {
		summary.Stdev, _ = mstats.StandardDeviationSample(data)
	}
	return summary, true
}

// TransactionStats aggregates the Safe's executed transactions from the
// Transaction Service into per-signer activity.
type TransactionStats struct {
	NumExecuted        int
	NonOwnerExecutions int
	TotalExecutionTime time.Duration
	Signers            []*SignerStats
}

// AvgExecutionTime is the mean time from submission to execution.
func (t *TransactionStats) AvgExecutionTime() time.Duration {
	if t.NumExecuted == 0 {
		return 0
	}
	return t.TotalExecutionTime / time.Duration(t.NumExecuted)
}

// BuildTransactionStats folds the given transactions into per-signer
// statistics. Only transactions that executed successfully at or after
// fromBlock are counted. The first confirmation of a transaction is
// attributed to its creator; signing times are only recorded for signers
// other than the creator. Executions by accounts outside the owner set are
// counted separately and carry no per-signer stats.
func BuildTransactionStats(
	transactions []txservice.Transaction,
	owners []common.Address,
	fromBlock uint64,
) *TransactionStats {
	ownerSet := make(map[common.Address]bool, len(owners))
	for _, owner := range owners {
		ownerSet[owner] = true
	}

	result := &TransactionStats{}
	bySigner := make(map[common.Address]*SignerStats)
	signerStats := func(address common.Address) *SignerStats {
		if stats, ok := bySigner[address]; ok {
			return stats
		}
		stats := newSignerStats(address)
		bySigner[address] = stats
		return stats
	}

	for _, tx := range transactions {
		if !tx.IsExecuted || !tx.IsSuccessful {
			continue
		}
		if tx.BlockNumber < fromBlock {
			continue
		}
		result.NumExecuted++
		result.TotalExecutionTime += tx.ExecutionDate.Sub(tx.SubmissionDate)

		// Execution.
		if !ownerSet[tx.Executor] {
			result.NonOwnerExecutions++
		} else {
			executor := signerStats(tx.Executor)
			executor.TxsExecuted++
			if tx.Fee != nil {
				executor.GasSpent.Add(executor.GasSpent, precise.NewETH(nil).SetWei(tx.Fee))
			}
		}

		// Signing.
		for i, confirmation := range tx.Confirmations {
			signer := signerStats(confirmation.Owner)
			signer.TxsSigned++
			if i == 0 {
				// Creator of the transaction.
				signer.TxsCreated++
			} else {
				signer.addSigningTime(tx.SubmissionDate, confirmation.SubmissionDate)
			}
		}
	}

	result.Signers = maps.Values(bySigner)
	slices.SortFunc(result.Signers, func(a, b *SignerStats) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	return result
}
