// Command bfx drives the Bitfinex client from the shell.
//
//	bfx [-config path] history [-dir out] [symbol...]
//	bfx status <order-id>
//	bfx cancel <order-id>...
//	bfx summary <order-id>...
//	bfx ticker [symbol...]
//	bfx balances
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/freshpay/bitfinex/config"
	"github.com/freshpay/bitfinex/internal/export"
	"github.com/freshpay/bitfinex/internal/observability"
	"github.com/freshpay/bitfinex/internal/telemetry"
	"github.com/freshpay/bitfinex/pkg/bitfinex"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("bfx", flag.ContinueOnError)
	cfgPath := flags.String("config", "", fmt.Sprintf("Path to credentials file (default: %s)", config.DefaultConfigPath))
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: bfx [-config path] <history|status|cancel|summary|ticker|balances> [args]")
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := *cfgPath
	if path == "" {
		path = config.DefaultConfigPath
	}
	settings, loaded, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v (continuing with defaults)\n", err)
	}

	zlog, err := observability.NewZapLogger(settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer func() { _ = zlog.Sync() }()
	observability.SetLogger(zlog)
	if !loaded {
		zlog.Info("configuration file not found, using defaults and environment", observability.F("path", path))
	}

	provider, err := initTelemetry(ctx, settings)
	if err != nil {
		zlog.Warn("telemetry disabled", observability.F("error", err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			zlog.Warn("telemetry shutdown", observability.F("error", err))
		}
	}()

	client := bitfinex.New(settings,
		bitfinex.WithLogger(zlog),
		bitfinex.WithInstruments(telemetry.NewInstruments(provider.Meter("bitfinex.client"))))

	if err := dispatch(ctx, client, flags.Arg(0), flags.Args()[1:], stdout); err != nil {
		zlog.Error("command failed", observability.F("command", flags.Arg(0)), observability.F("error", err))
		return 1
	}
	return 0
}

func initTelemetry(ctx context.Context, settings config.Settings) (*telemetry.Provider, error) {
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = settings.Metrics
	cfg.Environment = string(settings.Environment)
	return telemetry.NewProvider(ctx, cfg)
}

func dispatch(ctx context.Context, client *bitfinex.Client, command string, args []string, stdout io.Writer) error {
	switch command {
	case "history":
		return runHistory(ctx, client, args, stdout)
	case "status":
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		if len(ids) != 1 {
			return fmt.Errorf("status takes exactly one order id")
		}
		order, err := client.Status(ctx, ids[0])
		if err != nil {
			return err
		}
		return printJSON(stdout, order)
	case "cancel":
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		res, err := client.Cancel(ctx, ids)
		if err != nil {
			return err
		}
		return printJSON(stdout, res)
	case "summary":
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		sum, err := client.SummarizeOrders(ctx, ids)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, sum.String())
		return err
	case "ticker":
		if len(args) == 0 {
			args = []string{bitfinex.DefaultSymbol}
		}
		tickers, err := client.Tickers(ctx, args...)
		if err != nil {
			return err
		}
		return printJSON(stdout, tickers)
	case "balances":
		balances, err := client.Balances(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, balances)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runHistory(ctx context.Context, client *bitfinex.Client, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("history", flag.ContinueOnError)
	dir := flags.String("dir", ".", "Directory for history-<symbol>.csv files")
	if err := flags.Parse(args); err != nil {
		return err
	}
	var histories map[string][]bitfinex.Trade
	if flags.NArg() == 0 {
		histories = client.HistoryAll(ctx)
	} else {
		histories = make(map[string][]bitfinex.Trade, flags.NArg())
		for _, symbol := range flags.Args() {
			histories[symbol] = client.History(ctx, bitfinex.HistoryQuery{Symbol: symbol})
		}
	}
	symbols := make([]string, 0, len(histories))
	for symbol := range histories {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		trades := histories[symbol]
		path, err := export.WriteHistoryFile(*dir, symbol, trades)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d trades -> %s\n", symbol, len(trades), path)
		if len(trades) > 0 {
			fmt.Fprintf(stdout, "  first: %s %s @ %s\n", trades[0].Time, trades[0].Amount, trades[0].Price)
			last := trades[len(trades)-1]
			fmt.Fprintf(stdout, "  last:  %s %s @ %s\n", last.Time, last.Amount, last.Price)
		}
	}
	return nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid order id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSON(w io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
