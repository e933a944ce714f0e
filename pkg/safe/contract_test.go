package safe

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// mockCaller serves packed eth_call results keyed by method name.
type mockCaller struct {
	t       *testing.T
	results map[string][]interface{}
}

func (m *mockCaller) CallContract(
	ctx context.Context,
	call ethereum.CallMsg,
	blockNumber *big.Int,
) ([]byte, error) {
	for name, method := range contractABI.Methods {
		if len(call.Data) >= 4 && string(call.Data[:4]) == string(method.ID) {
			values, ok := m.results[name]
			if !ok {
				return nil, nil // no contract code
			}
			packed, err := method.Outputs.Pack(values...)
			require.NoError(m.t, err)
			return packed, nil
		}
	}
	return nil, errors.New("unexpected call")
}

func TestContractInfo(t *testing.T) {
	owners := []common.Address{
		common.HexToAddress("0x19B3Eb3Af5D93b77a5619b047De0EED7115A19e7"),
		common.HexToAddress("0x39aa39c021dfbaE8faC545936693aC917d5E7563"),
	}
	caller := &mockCaller{t: t, results: map[string][]interface{}{
		"getOwners":    {owners},
		"getThreshold": {big.NewInt(2)},
		"nonce":        {big.NewInt(42)},
		"VERSION":      {"1.3.0"},
	}}

	address := common.HexToAddress("0xabc0000000000000000000000000000000000abc")
	info, err := NewContract(address, caller).Info(context.Background())
	require.NoError(t, err)
	require.Equal(t, address, info.Address)
	require.Equal(t, "1.3.0", info.Version)
	require.EqualValues(t, 2, info.Threshold.Int64())
	require.EqualValues(t, 42, info.Nonce.Int64())
	require.Equal(t, owners, info.Owners)
}

func TestContractInfoNotAContract(t *testing.T) {
	// eth_call against an account without code returns no data.
	caller := &mockCaller{t: t, results: map[string][]interface{}{}}
	address := common.HexToAddress("0xabc0000000000000000000000000000000000abc")
	_, err := NewContract(address, caller).Info(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no contract")
}
