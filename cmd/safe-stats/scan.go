package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/safestats/safe-stats/pkg/safe"
	"github.com/safestats/safe-stats/pkg/scanner"
	"github.com/safestats/safe-stats/pkg/stats"
	"github.com/safestats/safe-stats/pkg/txservice"
)

type ScanCmd struct {
	Address   string `arg:""            help:"Address of the Gnosis Safe multisig."`
	Endpoint  string `arg:""            help:"RPC endpoint of an Ethereum execution node."`
	FromBlock uint64 `arg:"" optional:"" help:"Block number to start collecting from."`

	TxService                  string        `env:"TX_SERVICE_ENDPOINT"            help:"HTTP endpoint of a Safe Transaction Service. Enables per-signer transaction statistics."`
	TxServiceRequestsPerSecond float64       `env:"TX_SERVICE_REQUESTS_PER_SECOND" default:"4"    help:"Maximum number of requests per second to the Transaction Service."`
	Events                     string        `env:"EVENTS_CONFIG"                  help:"Path to a YAML file selecting the event kinds to report."`
	Format                     string        `default:"text"                 enum:"text,csv" help:"Output format: human-readable text or signer statistics as CSV."`
	BatchSize                  uint64        `default:"2048"                 help:"Initial number of blocks per log query."`
	QueryTimeout               time.Duration `default:"30s"                  help:"Timeout per node query."`
}

func (c *ScanCmd) Run(logger *zap.Logger, globals *Globals) error {
	ctx := context.Background()

	// Validate inputs before touching the network.
	address, err := safe.ParseAddress(c.Address)
	if err != nil {
		return err
	}
	tracked := safe.DefaultKinds()
	if c.Events != "" {
		data, err := os.ReadFile(c.Events)
		if err != nil {
			return fmt.Errorf("failed to read events config: %w", err)
		}
		tracked, err = safe.ParseConfig(data)
		if err != nil {
			return fmt.Errorf("failed to parse events config: %w", err)
		}
	}
	if c.Format == "csv" && c.TxService == "" {
		return fmt.Errorf("--format=csv requires --tx-service")
	}

	// Connect to the execution node.
	client, err := ethclient.DialContext(ctx, c.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to execution node: %w", err)
	}
	defer client.Close()
	logger.Info("Connected to execution node", zap.String("endpoint", c.Endpoint))

	// Scan events.
	statistics, err := scanner.ScanSafe(ctx, logger, client, c.Address, c.FromBlock, tracked, scanner.Options{
		BatchSize:    c.BatchSize,
		QueryTimeout: c.QueryTimeout,
		Progress:     c.Format == "text",
	})
	if err != nil {
		return err
	}

	// Fetch the on-chain overview. Failure here is not fatal: the Safe may
	// predate the getters we call, and the event statistics stand on their
	// own.
	var info *safe.Info
	info, err = safe.NewContract(address, client).Info(ctx)
	if err != nil {
		logger.Warn("Failed to fetch Safe overview", zap.Error(err))
		info = nil
	}

	// Fetch per-signer transaction statistics from the Transaction Service.
	var transactions *stats.TransactionStats
	if c.TxService != "" {
		transactions, err = c.transactionStats(ctx, logger, address, info)
		if err != nil {
			return err
		}
	}

	report := &stats.Report{
		Safe:         address.String(),
		Statistics:   statistics,
		Info:         info,
		Transactions: transactions,
		Tracked:      tracked,
	}
	if c.Format == "csv" {
		return report.WriteCSV(os.Stdout)
	}
	report.WriteText(os.Stdout)
	return nil
}

func (c *ScanCmd) transactionStats(
	ctx context.Context,
	logger *zap.Logger,
	address common.Address,
	info *safe.Info,
) (*stats.TransactionStats, error) {
	service := txservice.New(c.TxService, c.TxServiceRequestsPerSecond)

	owners := []common.Address{}
	if info != nil {
		owners = info.Owners
	} else {
		serviceInfo, err := service.Safe(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch Safe from Transaction Service: %w", err)
		}
		owners = serviceInfo.Owners
	}

	transactions, err := service.Transactions(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	logger.Info("Fetched transactions",
		zap.String("endpoint", c.TxService),
		zap.Int("count", len(transactions)),
	)
	return stats.BuildTransactionStats(transactions, owners, c.FromBlock), nil
}
