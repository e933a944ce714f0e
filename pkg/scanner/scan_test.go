package scanner

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safestats/safe-stats/pkg/safe"
)

const safeAddressHex = "0x19B3Eb3Af5D93b77a5619b047De0EED7115A19e7"

func addedOwnerLog(t *testing.T, block uint64, index uint, owner common.Address) types.Log {
	t.Helper()
	event := safe.ABI().Events["AddedOwner"]
	data, err := event.Inputs.NonIndexed().Pack(owner)
	require.NoError(t, err)
	return types.Log{
		BlockNumber: block,
		Index:       index,
		Topics:      []common.Hash{event.ID},
		Data:        data,
	}
}

func executionSuccessLog(t *testing.T, block uint64, index uint) types.Log {
	t.Helper()
	event := safe.ABI().Events["ExecutionSuccess"]
	data, err := event.Inputs.NonIndexed().Pack(
		common.HexToHash("0x01"),
		big.NewInt(0),
	)
	require.NoError(t, err)
	return types.Log{
		BlockNumber: block,
		Index:       index,
		Topics:      []common.Hash{event.ID},
		Data:        data,
	}
}

func TestScanSafe(t *testing.T) {
	// Over blocks 100-110: three AddedOwner events with distinct owners and
	// one ExecutionSuccess event.
	node := &mockNode{head: 110, logs: []types.Log{
		addedOwnerLog(t, 101, 0, common.HexToAddress("0x01")),
		addedOwnerLog(t, 103, 0, common.HexToAddress("0x02")),
		addedOwnerLog(t, 103, 1, common.HexToAddress("0x03")),
		executionSuccessLog(t, 109, 0),
	}}

	statistics, err := ScanSafe(
		context.Background(),
		zap.NewNop(),
		node,
		safeAddressHex,
		100,
		safe.DefaultKinds(),
		fastOptions(),
	)
	require.NoError(t, err)
	require.Equal(t, 4, statistics.Total)
	require.Equal(t, 3, statistics.Counts[safe.KindAddedOwner])
	require.Equal(t, 1, statistics.Counts[safe.KindExecutionSuccess])
	require.Equal(t, 3, statistics.UniqueSigners())
	require.Equal(t, 0, statistics.Unrecognized)
	require.EqualValues(t, 100, statistics.FromBlock)
	require.EqualValues(t, 110, statistics.ToBlock)
}

func TestScanSafeInvalidAddress(t *testing.T) {
	// A malformed address must fail before any network call.
	node := &mockNode{head: 100}
	_, err := ScanSafe(
		context.Background(),
		zap.NewNop(),
		node,
		"0x123",
		0,
		safe.DefaultKinds(),
		fastOptions(),
	)
	require.Error(t, err)
	require.Equal(t, 0, node.calls())
}

func TestScanSafeFromBeyondHead(t *testing.T) {
	node := &mockNode{head: 100, logs: []types.Log{
		addedOwnerLog(t, 50, 0, common.HexToAddress("0x01")),
	}}
	statistics, err := ScanSafe(
		context.Background(),
		zap.NewNop(),
		node,
		safeAddressHex,
		200,
		safe.DefaultKinds(),
		fastOptions(),
	)
	require.NoError(t, err)
	require.Equal(t, 0, statistics.Total)
	require.Equal(t, 0, statistics.UniqueSigners())
	require.Equal(t, 0, node.filterCalls)
}

func TestScanSafeUnrecognizedLogs(t *testing.T) {
	unknown := types.Log{
		BlockNumber: 5,
		Topics:      []common.Hash{common.HexToHash("0xdeadbeef")},
	}
	// Known signature, malformed data: skipped and counted, not fatal.
	malformed := types.Log{
		BlockNumber: 6,
		Topics:      []common.Hash{safe.ABI().Events["AddedOwner"].ID},
		Data:        []byte{0x01},
	}
	node := &mockNode{head: 10, logs: []types.Log{
		unknown,
		malformed,
		addedOwnerLog(t, 7, 0, common.HexToAddress("0x01")),
	}}

	statistics, err := ScanSafe(
		context.Background(),
		zap.NewNop(),
		node,
		safeAddressHex,
		0,
		safe.DefaultKinds(),
		fastOptions(),
	)
	require.NoError(t, err)
	require.Equal(t, 3, statistics.Total)
	require.Equal(t, 2, statistics.Unrecognized)
	require.Equal(t, 1, statistics.Counts[safe.KindAddedOwner])

	// Unrecognized logs never land in a named bucket.
	total := 0
	for _, count := range statistics.Counts {
		total += count
	}
	require.Equal(t, 1, total)
}
