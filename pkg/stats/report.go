package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/safestats/safe-stats/pkg/safe"
)

// Report is everything the tool learned about the Safe: the event scan
// result, optionally the on-chain overview and the Transaction Service
// signer statistics.
type Report struct {
	Safe         string
	Statistics   *Statistics
	Info         *safe.Info
	Transactions *TransactionStats
	Tracked      []safe.Kind
}

const leaderWidth = 30

// line prints "label ....... value" with a dotted leader, indented by the
// given number of tabs.
func line(w io.Writer, indent int, label string, format string, args ...interface{}) {
	dots := leaderWidth - len(label)
	if dots < 2 {
		dots = 2
	}
	fmt.Fprintf(w, "%s%s %s %s\n",
		strings.Repeat("\t", indent),
		label,
		strings.Repeat(".", dots),
		fmt.Sprintf(format, args...),
	)
}

// WriteText writes the human-readable report.
func (r *Report) WriteText(w io.Writer) {
	banner := strings.Repeat("=", 55)
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Gnosis Safe: %s\n", r.Safe)
	fmt.Fprintln(w, banner)

	if r.Statistics.FromBlock != 0 {
		fmt.Fprintf(w, "\n*NOTE*: Only data from block number %d\n", r.Statistics.FromBlock)
	}

	if r.Info != nil {
		fmt.Fprintf(w, "\n** OVERVIEW **\n\n")
		line(w, 0, "Contract Version", "%s", r.Info.Version)
		line(w, 0, "Threshold", "%s", r.Info.Threshold)
		line(w, 0, "Nonce", "%s", r.Info.Nonce)
		line(w, 0, "Owners", "%d", len(r.Info.Owners))
		for _, owner := range r.Info.Owners {
			fmt.Fprintf(w, "\t%s\n", owner)
		}
	}

	fmt.Fprintf(w, "\n** EVENT INFO **\n\n")
	line(w, 0, "Blocks Scanned", "%d-%d", r.Statistics.FromBlock, r.Statistics.ToBlock)
	line(w, 0, "Total Events", "%d", r.Statistics.Total)
	line(w, 0, "Unique Signers", "%d", r.Statistics.UniqueSigners())
	line(w, 0, "Unrecognized Events", "%d", r.Statistics.Unrecognized)
	fmt.Fprintln(w, "Event Counts")
	for _, kind := range r.Tracked {
		if count := r.Statistics.Counts[kind]; count > 0 {
			line(w, 1, string(kind), "%d", count)
		}
	}
	if r.Statistics.Other > 0 {
		line(w, 1, "Other", "%d", r.Statistics.Other)
	}

	if r.Transactions != nil {
		r.writeTransactions(w)
	}
}

func (r *Report) writeTransactions(w io.Writer) {
	t := r.Transactions
	fmt.Fprintf(w, "\n** TRANSACTION INFO **\n\n")
	line(w, 0, "Num Executed Txs", "%d", t.NumExecuted)
	line(w, 0, "Non-owner Executions", "%d", t.NonOwnerExecutions)
	if t.NumExecuted > 0 {
		line(w, 0, "Avg Time to Execution", "%.2f mins.", t.AvgExecutionTime().Minutes())
	}
	fmt.Fprintln(w, "Signer Stats")
	for _, signer := range t.Signers {
		fmt.Fprintf(w, "\tSigner: %s\n", signer.Address)
		line(w, 2, "Num Txs Created", "%d (%s)", signer.TxsCreated, percent(signer.TxsCreated, t.NumExecuted))
		line(w, 2, "Num Txs Signed", "%d (%s)", signer.TxsSigned, percent(signer.TxsSigned, t.NumExecuted))
		if summary, ok := signer.SigningSummary(); ok {
			fmt.Fprintf(w, "\t\tStatistics for txs signed but not created (%d txs):\n", signer.TxsSigned-signer.TxsCreated)
			line(w, 3, "Min Tx Signing Time", "%.2f mins.", summary.Min/60)
			line(w, 3, "Max Tx Signing Time", "%.2f mins.", summary.Max/60)
			line(w, 3, "Mean Tx Signing Time", "%.2f mins.", summary.Mean/60)
			line(w, 3, "Median Tx Signing Time", "%.2f mins.", summary.Median/60)
			line(w, 3, "Stdev Tx Signing Time", "%.2f mins.", summary.Stdev/60)
		}
		line(w, 2, "Num Txs Executed", "%d (%s)", signer.TxsExecuted, percent(signer.TxsExecuted, t.NumExecuted))
		line(w, 3, "Gas Spent", "%s ETH", signer.GasSpent)
		fmt.Fprintln(w)
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(n)/float64(total)*100)
}

// signerRow is the CSV shape of a signer's statistics.
type signerRow struct {
	Signer            string  `csv:"signer"`
	TxsCreated        int     `csv:"txs_created"`
	TxsSigned         int     `csv:"txs_signed"`
	TxsExecuted       int     `csv:"txs_executed"`
	GasSpentETH       string  `csv:"gas_spent_eth"`
	MinSigningMins    float64 `csv:"min_signing_mins"`
	MaxSigningMins    float64 `csv:"max_signing_mins"`
	MeanSigningMins   float64 `csv:"mean_signing_mins"`
	MedianSigningMins float64 `csv:"median_signing_mins"`
	StdevSigningMins  float64 `csv:"stdev_signing_mins"`
}

// WriteCSV writes one CSV row per signer.
func (r *Report) WriteCSV(w io.Writer) error {
	if r.Transactions == nil {
		return fmt.Errorf("no transaction statistics to write")
	}
	rows := make([]signerRow, 0, len(r.Transactions.Signers))
	for _, signer := range r.Transactions.Signers {
		row := signerRow{
			Signer:      signer.Address.String(),
			TxsCreated:  signer.TxsCreated,
			TxsSigned:   signer.TxsSigned,
			TxsExecuted: signer.TxsExecuted,
			GasSpentETH: signer.GasSpent.String(),
		}
		if summary, ok := signer.SigningSummary(); ok {
			row.MinSigningMins = summary.Min / 60
			row.MaxSigningMins = summary.Max / 60
			row.MeanSigningMins = summary.Mean / 60
			row.MedianSigningMins = summary.Median / 60
			row.StdevSigningMins = summary.Stdev / 60
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(&rows, w)
}
