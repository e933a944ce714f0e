package scanner

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ErrRangeTooLarge signals that the node rejected a log query because its
// block range exceeds the node's limit. The scanner recovers from it by
// halving the batch size.
var ErrRangeTooLarge = errors.New("block range too large")

// Filterer is the subset of the execution client the scanner needs.
// *ethclient.Client satisfies it.
type Filterer interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// Batch is the result of a single log query over [FromBlock, ToBlock].
type Batch struct {
	FromBlock uint64
	ToBlock   uint64
	Logs      []types.Log
}

// Options tune the scanner. The zero value selects defaults.
type Options struct {
	BatchSize    uint64        // initial blocks per query
	MinBatchSize uint64        // below this, range rejections are fatal
	MaxBatchSize uint64        // cap for the growing batch size
	MaxRetries   int           // retries per query on transient failures
	RetryDelay   time.Duration // base delay between retries
	QueryTimeout time.Duration // timeout per query
	Progress     bool          // report scan progress on stdout
}

func (o *Options) setDefaults() {
	if o.BatchSize == 0 {
		o.BatchSize = 2048
	}
	if o.MinBatchSize == 0 {
		o.MinBatchSize = 1
	}
	if o.MaxBatchSize == 0 {
		o.MaxBatchSize = 10000
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 5
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.QueryTimeout == 0 {
		o.QueryTimeout = 30 * time.Second
	}
}

// Scanner pages through a contract's event logs over a block range, adapting
// its batch size to the node's limits.
type Scanner struct {
	logger  *zap.Logger
	client  Filterer
	address common.Address
	opts    Options
}

func New(logger *zap.Logger, client Filterer, address common.Address, opts Options) *Scanner {
	opts.setDefaults()
	return &Scanner{
		logger:  logger,
		client:  client,
		address: address,
		opts:    opts,
	}
}

// FetchLogs streams the address's logs over [fromBlock, toBlock] in ascending
// block order. Batches arrive on the first channel; once it closes, the
// second channel yields the terminal error, if any. Every block in the range
// is covered by exactly one batch.
func (s *Scanner) FetchLogs(
	ctx context.Context,
	fromBlock, toBlock uint64,
) (<-chan Batch, <-chan error) {
	batches := make(chan Batch)
	errs := make(chan error, 1)
	go func() {
		defer close(batches)
		defer close(errs)
		if err := s.fetch(ctx, fromBlock, toBlock, batches); err != nil {
			errs <- err
		}
	}()
	return batches, errs
}

func (s *Scanner) fetch(
	ctx context.Context,
	fromBlock, toBlock uint64,
	batches chan<- Batch,
) error {
	batchSize := s.opts.BatchSize
	lo := fromBlock
	for lo <= toBlock {
		hi := toBlock
		if hi-lo+1 > batchSize {
			hi = lo + batchSize - 1
		}
		logs, err := s.filterLogs(ctx, lo, hi)
		if err != nil {
			if isRangeTooLarge(err) && batchSize > s.opts.MinBatchSize {
				batchSize /= 2
				if batchSize < s.opts.MinBatchSize {
					batchSize = s.opts.MinBatchSize
				}
				s.logger.Debug("Node rejected block range, halving batch size",
					zap.Uint64("from", lo),
					zap.Uint64("to", hi),
					zap.Uint64("batch_size", batchSize),
				)
				continue
			}
			return fmt.Errorf("failed to fetch logs for blocks %d-%d: %w", lo, hi, err)
		}
		select {
		case batches <- Batch{FromBlock: lo, ToBlock: hi, Logs: logs}:
		case <-ctx.Done():
			return ctx.Err()
		}
		lo = hi + 1

		// Grow the batch size back to amortize round-trips.
		if batchSize*2 <= s.opts.MaxBatchSize {
			batchSize *= 2
		} else {
			batchSize = s.opts.MaxBatchSize
		}
	}
	return nil
}

// filterLogs queries a single block range, retrying transient failures with
// an incremental backoff. Range rejections are returned immediately so the
// caller can shrink the range.
func (s *Scanner) filterLogs(ctx context.Context, lo, hi uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(lo),
		ToBlock:   new(big.Int).SetUint64(hi),
		Addresses: []common.Address{s.address},
	}
	var lastErr error
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn("Retrying log query",
				zap.Uint64("from", lo),
				zap.Uint64("to", hi),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(time.Duration(attempt) * s.opts.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		queryCtx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
		logs, err := s.client.FilterLogs(queryCtx, query)
		cancel()
		if err == nil {
			return logs, nil
		}
		if isRangeTooLarge(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("exhausted %d retries: %w", s.opts.MaxRetries, lastErr)
}

// rangeTooLargeHints match the error messages nodes return when a log query
// spans more blocks or results than they allow. There is no standard error
// code for this, so matching the message is the best we can do.
var rangeTooLargeHints = []string{
	"query returned more than",
	"block range is too",
	"exceed maximum block range",
	"too many results",
	"range too large",
	"response size exceeded",
}

func isRangeTooLarge(err error) bool {
	if errors.Is(err, ErrRangeTooLarge) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range rangeTooLargeHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
