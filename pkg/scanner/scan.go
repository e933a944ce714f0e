package scanner

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/safestats/safe-stats/pkg/safe"
	"github.com/safestats/safe-stats/pkg/stats"
)

// ScanSafe scans the chain for the Safe's events from fromBlock to the
// current head and folds them into Statistics. The address is validated
// before any call to the node; a malformed address fails without touching
// the network. A fromBlock beyond the head yields empty Statistics, not an
// error. Logs that cannot be decoded are counted as unrecognized and never
// abort the scan.
func ScanSafe(
	ctx context.Context,
	logger *zap.Logger,
	client Filterer,
	addressHex string,
	fromBlock uint64,
	tracked []safe.Kind,
	opts Options,
) (*stats.Statistics, error) {
	address, err := safe.ParseAddress(addressHex)
	if err != nil {
		return nil, err
	}

	head, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain head: %w", err)
	}

	acc := stats.NewAccumulator(fromBlock, head, tracked)
	if fromBlock > head {
		logger.Warn("Starting block is beyond the chain head, nothing to scan",
			zap.Uint64("from", fromBlock),
			zap.Uint64("head", head),
		)
		return acc.Stats(), nil
	}

	logger.Info("Fetching events",
		zap.Uint64("from", fromBlock),
		zap.Uint64("to", head),
	)
	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.New(int(head-fromBlock) + 1)
		bar.Describe("Fetching events")
		defer bar.Clear()
	}

	batches, errs := New(logger, client, address, opts).FetchLogs(ctx, fromBlock, head)
FetchEvents:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				break FetchEvents
			}
			for _, log := range batch.Logs {
				record, err := safe.DecodeLog(log)
				if err != nil {
					logger.Warn("Skipping undecodable log",
						zap.String("tx_hash", log.TxHash.String()),
						zap.Uint64("block", log.BlockNumber),
						zap.Error(err),
					)
					record.Kind = safe.KindUnknown
				}
				acc.Observe(record)
			}
			if bar != nil {
				bar.Set(int(batch.ToBlock-fromBlock) + 1)
			}
		}
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("failed to fetch logs: %w", err)
	}

	statistics := acc.Stats()
	logger.Info("Fetched events",
		zap.Uint64("from", fromBlock),
		zap.Uint64("to", head),
		zap.Int("count", statistics.Total),
	)
	return statistics, nil
}
