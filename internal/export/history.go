// Package export writes trade history to disk.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/freshpay/bitfinex/internal/numeric"
	"github.com/freshpay/bitfinex/internal/schema"
)

// HistoryHeader is the first line of every history file.
const HistoryHeader = "#price, amount, time, exchange, type"

// WriteHistory writes the header and one ", "-separated row per trade.
func WriteHistory(w io.Writer, trades []schema.Trade) error {
	buf := bufio.NewWriter(w)
	if _, err := buf.WriteString(HistoryHeader + "\n"); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	for i, tr := range trades {
		when := tr.Time
		if when == "" && !tr.Timestamp.IsZero() {
			when = numeric.FormatLocal(tr.Timestamp.Time)
		}
		row := strings.Join([]string{
			tr.Price.String(),
			tr.Amount.String(),
			when,
			tr.Exchange,
			tr.Type,
		}, ", ")
		if _, err := buf.WriteString(row + "\n"); err != nil {
			return fmt.Errorf("write history row %d: %w", i, err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	return nil
}

// HistoryFileName returns the conventional file name for symbol.
func HistoryFileName(symbol string) string {
	return "history-" + strings.ToLower(strings.TrimSpace(symbol)) + ".csv"
}

// WriteHistoryFile writes trades for symbol into dir and returns the path.
func WriteHistoryFile(dir, symbol string, trades []schema.Trade) (string, error) {
	path := filepath.Join(dir, HistoryFileName(symbol))
	// #nosec G304 -- directory is operator provided via CLI flags.
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create history file: %w", err)
	}
	if err := WriteHistory(file, trades); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close history file: %w", err)
	}
	return path, nil
}
