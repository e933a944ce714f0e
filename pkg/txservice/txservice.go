package txservice

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/time/rate"

	"github.com/safestats/safe-stats/pkg/httpretry"
)

var ErrNotFound = fmt.Errorf("not found")

// pageSize is the number of transactions requested per page.
const pageSize = 100

// Client talks to a Safe Transaction Service API
// (for example https://safe-transaction-mainnet.safe.global).
type Client struct {
	endpoint    string
	rateLimiter *rate.Limiter
}

func New(endpoint string, requestsPerSecond float64) *Client {
	return &Client{
		endpoint: endpoint,
		rateLimiter: rate.NewLimiter(
			rate.Every(time.Duration(float64(time.Second)/requestsPerSecond)),
			1,
		),
	}
}

// SafeInfo is the service's view of a Safe.
type SafeInfo struct {
	Address   common.Address
	Nonce     int
	Threshold int
	Owners    []common.Address
	Version   string
}

// Safe fetches the Safe's overview from the service. Returns ErrNotFound if
// the address is not a known Safe.
func (c *Client) Safe(
	ctx context.Context,
	address common.Address,
) (*SafeInfo, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}
	var resp struct {
		Address   string
		Nonce     int
		Threshold int
		Owners    []string
		Version   string
	}

	err := requests.URL(c.endpoint).
		Client(httpretry.Client).
		Pathf("/api/v1/safes/%s/", address.String()).
		CheckStatus(200).
		ToJSON(&resp).
		Fetch(ctx)
	if requests.HasStatusErr(err, 404) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	// Decode the response.
	if !common.IsHexAddress(resp.Address) {
		return nil, fmt.Errorf("invalid address")
	}
	if common.HexToAddress(resp.Address) != address {
		return nil, fmt.Errorf("address mismatch")
	}
	if resp.Threshold < 1 {
		return nil, fmt.Errorf("invalid threshold")
	}
	if resp.Version == "" {
		return nil, fmt.Errorf("invalid version")
	}
	owners := make([]common.Address, 0, len(resp.Owners))
	for _, owner := range resp.Owners {
		if !common.IsHexAddress(owner) {
			return nil, fmt.Errorf("invalid owner address %q", owner)
		}
		owners = append(owners, common.HexToAddress(owner))
	}
	return &SafeInfo{
		Address:   common.HexToAddress(resp.Address),
		Nonce:     resp.Nonce,
		Threshold: resp.Threshold,
		Owners:    owners,
		Version:   resp.Version,
	}, nil
}

// Confirmation is a single signer's approval of a multisig transaction. The
// first confirmation of a transaction belongs to its creator.
type Confirmation struct {
	Owner          common.Address
	SubmissionDate time.Time
}

// Transaction is a multisig transaction known to the service.
type Transaction struct {
	SafeTxHash     common.Hash
	BlockNumber    uint64
	IsExecuted     bool
	IsSuccessful   bool
	SubmissionDate time.Time
	ExecutionDate  time.Time
	Executor       common.Address
	Fee            *big.Int // in wei
	Confirmations  []Confirmation
}

type transactionJSON struct {
	SafeTxHash     string     `json:"safeTxHash"`
	BlockNumber    *uint64    `json:"blockNumber"`
	IsExecuted     bool       `json:"isExecuted"`
	IsSuccessful   *bool      `json:"isSuccessful"`
	SubmissionDate time.Time  `json:"submissionDate"`
	ExecutionDate  *time.Time `json:"executionDate"`
	Executor       *string    `json:"executor"`
	Fee            *string    `json:"fee"`
	Confirmations  []struct {
		Owner          string    `json:"owner"`
		SubmissionDate time.Time `json:"submissionDate"`
	} `json:"confirmations"`
}

// Transactions fetches every multisig transaction of the Safe, following the
// service's paging cursor until exhausted. Transactions are returned in the
// order the service yields them.
func (c *Client) Transactions(
	ctx context.Context,
	address common.Address,
) ([]Transaction, error) {
	var all []Transaction
	for offset := 0; ; offset += pageSize {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
		var resp struct {
			Count   int               `json:"count"`
			Next    *string           `json:"next"`
			Results []transactionJSON `json:"results"`
		}
		err := requests.URL(c.endpoint).
			Client(httpretry.Client).
			Pathf("/api/v1/safes/%s/multisig-transactions/", address.String()).
			ParamInt("limit", pageSize).
			ParamInt("offset", offset).
			CheckStatus(200).
			ToJSON(&resp).
			Fetch(ctx)
		if requests.HasStatusErr(err, 404) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		for _, raw := range resp.Results {
			tx, err := decodeTransaction(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to decode transaction %s: %w", raw.SafeTxHash, err)
			}
			all = append(all, tx)
		}
		if resp.Next == nil || len(resp.Results) == 0 {
			break
		}
	}
	return all, nil
}

func decodeTransaction(raw transactionJSON) (Transaction, error) {
	tx := Transaction{
		SafeTxHash:     common.HexToHash(raw.SafeTxHash),
		IsExecuted:     raw.IsExecuted,
		SubmissionDate: raw.SubmissionDate,
	}
	if raw.BlockNumber != nil {
		tx.BlockNumber = *raw.BlockNumber
	}
	if raw.IsSuccessful != nil {
		tx.IsSuccessful = *raw.IsSuccessful
	}
	if raw.ExecutionDate != nil {
		tx.ExecutionDate = *raw.ExecutionDate
	}
	if raw.Executor != nil {
		if !common.IsHexAddress(*raw.Executor) {
			return tx, fmt.Errorf("invalid executor address %q", *raw.Executor)
		}
		tx.Executor = common.HexToAddress(*raw.Executor)
	}
	if raw.Fee != nil {
		fee, ok := new(big.Int).SetString(*raw.Fee, 10)
		if !ok {
			return tx, fmt.Errorf("invalid fee %q", *raw.Fee)
		}
		tx.Fee = fee
	}
	for _, confirmation := range raw.Confirmations {
		if !common.IsHexAddress(confirmation.Owner) {
			return tx, fmt.Errorf("invalid confirmation owner %q", confirmation.Owner)
		}
		tx.Confirmations = append(tx.Confirmations, Confirmation{
			Owner:          common.HexToAddress(confirmation.Owner),
			SubmissionDate: confirmation.SubmissionDate,
		})
	}
	return tx, nil
}
