package stats

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/safestats/safe-stats/pkg/txservice"
)

var (
	ownerA   = common.HexToAddress("0x01")
	ownerB   = common.HexToAddress("0x02")
	ownerC   = common.HexToAddress("0x03")
	stranger = common.HexToAddress("0xff")
)

func executedTx(
	block uint64,
	submitted time.Time,
	executed time.Time,
	executor common.Address,
	fee int64,
	confirmations ...txservice.Confirmation,
) txservice.Transaction {
	return txservice.Transaction{
		BlockNumber:    block,
		IsExecuted:     true,
		IsSuccessful:   true,
		SubmissionDate: submitted,
		ExecutionDate:  executed,
		Executor:       executor,
		Fee:            big.NewInt(fee),
		Confirmations:  confirmations,
	}
}

func TestBuildTransactionStats(t *testing.T) {
	base := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	owners := []common.Address{ownerA, ownerB, ownerC}

	transactions := []txservice.Transaction{
		// Created by A, signed by B 10 minutes later, executed by B.
		executedTx(100, base, base.Add(30*time.Minute), ownerB, 1e15,
			txservice.Confirmation{Owner: ownerA, SubmissionDate: base},
			txservice.Confirmation{Owner: ownerB, SubmissionDate: base.Add(10 * time.Minute)},
		),
		// Created by B, signed by A 20 minutes later, executed by a
		// non-owner.
		executedTx(200, base, base.Add(time.Hour), stranger, 1e15,
			txservice.Confirmation{Owner: ownerB, SubmissionDate: base},
			txservice.Confirmation{Owner: ownerA, SubmissionDate: base.Add(20 * time.Minute)},
		),
		// Not executed: ignored entirely.
		{
			IsExecuted:     false,
			SubmissionDate: base,
			Confirmations: []txservice.Confirmation{
				{Owner: ownerC, SubmissionDate: base},
			},
		},
		// Executed but failed: ignored entirely.
		{
			IsExecuted:     true,
			IsSuccessful:   false,
			BlockNumber:    300,
			SubmissionDate: base,
			Confirmations: []txservice.Confirmation{
				{Owner: ownerC, SubmissionDate: base},
			},
		},
	}

	result := BuildTransactionStats(transactions, owners, 0)
	require.Equal(t, 2, result.NumExecuted)
	require.Equal(t, 1, result.NonOwnerExecutions)
	require.Equal(t, 45*time.Minute, result.AvgExecutionTime())
	require.Len(t, result.Signers, 2)

	a := result.Signers[0]
	require.Equal(t, ownerA, a.Address)
	require.Equal(t, 1, a.TxsCreated)
	require.Equal(t, 2, a.TxsSigned)
	require.Equal(t, 0, a.TxsExecuted)
	summary, ok := a.SigningSummary()
	require.True(t, ok)
	require.InDelta(t, 20*60, summary.Mean, 0.001)
	require.Zero(t, summary.Stdev) // single data point

	b := result.Signers[1]
	require.Equal(t, ownerB, b.Address)
	require.Equal(t, 1, b.TxsCreated)
	require.Equal(t, 2, b.TxsSigned)
	require.Equal(t, 1, b.TxsExecuted)
	require.Equal(t, big.NewInt(1e15), b.GasSpent.Wei())
}

func TestBuildTransactionStatsFromBlock(t *testing.T) {
	base := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	owners := []common.Address{ownerA}

	transactions := []txservice.Transaction{
		executedTx(100, base, base.Add(time.Minute), ownerA, 0,
			txservice.Confirmation{Owner: ownerA, SubmissionDate: base},
		),
		executedTx(500, base, base.Add(time.Minute), ownerA, 0,
			txservice.Confirmation{Owner: ownerA, SubmissionDate: base},
		),
	}

	result := BuildTransactionStats(transactions, owners, 200)
	require.Equal(t, 1, result.NumExecuted)
	require.Len(t, result.Signers, 1)
	require.Equal(t, 1, result.Signers[0].TxsCreated)
}

func TestSigningSummary(t *testing.T) {
	signer := newSignerStats(ownerA)
	_, ok := signer.SigningSummary()
	require.False(t, ok)

	base := time.Now()
	signer.addSigningTime(base, base.Add(1*time.Minute))
	signer.addSigningTime(base, base.Add(3*time.Minute))
	signer.addSigningTime(base, base.Add(5*time.Minute))

	summary, ok := signer.SigningSummary()
	require.True(t, ok)
	require.InDelta(t, 60, summary.Min, 0.001)
	require.InDelta(t, 300, summary.Max, 0.001)
	require.InDelta(t, 180, summary.Mean, 0.001)
	require.InDelta(t, 180, summary.Median, 0.001)
	require.InDelta(t, 120, summary.Stdev, 0.001)
}

func TestAvgExecutionTimeEmpty(t *testing.T) {
	result := BuildTransactionStats(nil, nil, 0)
	require.Zero(t, result.AvgExecutionTime())
	require.Empty(t, result.Signers)
}
