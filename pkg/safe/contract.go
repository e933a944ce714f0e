package safe

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress validates and parses a Safe address. It rejects anything that
// is not a 0x-prefixed 20-byte hexadecimal value.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid Safe address %q", s)
	}
	return common.HexToAddress(s), nil
}

// Caller is the subset of the execution client used for read-only contract
// calls. *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contract reads the Safe's on-chain state via eth_call.
type Contract struct {
	address common.Address
	caller  Caller
}

func NewContract(address common.Address, caller Caller) *Contract {
	return &Contract{
		address: address,
		caller:  caller,
	}
}

// Info is the Safe's on-chain overview.
type Info struct {
	Address   common.Address
	Version   string
	Threshold *big.Int
	Nonce     *big.Int
	Owners    []common.Address
}

func (c *Contract) Info(ctx context.Context) (*Info, error) {
	version, err := c.Version(ctx)
	if err != nil {
		return nil, err
	}
	threshold, err := c.Threshold(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := c.Nonce(ctx)
	if err != nil {
		return nil, err
	}
	owners, err := c.Owners(ctx)
	if err != nil {
		return nil, err
	}
	return &Info{
		Address:   c.address,
		Version:   version,
		Threshold: threshold,
		Nonce:     nonce,
		Owners:    owners,
	}, nil
}

func (c *Contract) Owners(ctx context.Context) ([]common.Address, error) {
	values, err := c.call(ctx, "getOwners")
	if err != nil {
		return nil, err
	}
	return addressSliceValue(values, 0)
}

func (c *Contract) Threshold(ctx context.Context) (*big.Int, error) {
	values, err := c.call(ctx, "getThreshold")
	if err != nil {
		return nil, err
	}
	return bigValue(values, 0)
}

func (c *Contract) Nonce(ctx context.Context) (*big.Int, error) {
	values, err := c.call(ctx, "nonce")
	if err != nil {
		return nil, err
	}
	return bigValue(values, 0)
}

func (c *Contract) Version(ctx context.Context) (string, error) {
	values, err := c.call(ctx, "VERSION")
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", fmt.Errorf("VERSION: empty result")
	}
	version, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("VERSION: result is not a string")
	}
	return version, nil
}

func (c *Contract) call(ctx context.Context, method string) ([]interface{}, error) {
	input, err := contractABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: input,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("%s call returned no data: no contract at %s?", method, c.address)
	}
	values, err := contractABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return values, nil
}
