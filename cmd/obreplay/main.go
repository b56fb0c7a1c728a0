// Command obreplay applies a stream of JSON-lines order commands to an
// in-memory order book and prints the resulting top of book per instrument.
//
// Each input line is a protocol.Command, for example:
//
//	{"seq_id":1,"type":51,"payload":{"order_id":"a1","instrument":"VOD.L","side":2,"price":"3.00","quantity":"5"}}
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/0x5487/orderbook"
	"github.com/0x5487/orderbook/protocol"
)

type sideReport struct {
	Best   string                `json:"best,omitempty"`
	Levels []*protocol.DepthItem `json:"levels"`
}

type instrumentReport struct {
	Instrument string     `json:"instrument"`
	Bid        sideReport `json:"bid"`
	Ask        sideReport `json:"ask"`
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfg, err := parseConfig(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if err := run(cfg, log, os.Stdout); err != nil {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

// parseConfig resolves the configuration.
// Priority: flags > ENV > .env file (or -env) > defaults
func parseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	def := Default()
	envPath := fs.String("env", "", "path to a .env file")
	input := fs.String("input", def.Input, `command file, "-" for stdin`)
	tick := fs.String("tick", def.TickSize, "price tick size")
	lot := fs.String("lot", def.LotSize, "quantity lot size")
	depth := fs.Uint64("depth", uint64(def.Depth), "levels per side to report")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := LoadFromEnv(*envPath)

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "tick":
			cfg.TickSize = *tick
		case "lot":
			cfg.LotSize = *lot
		case "depth":
			if *depth == 0 || *depth > math.MaxUint32 {
				err = fmt.Errorf("depth %d out of range", *depth)
				return
			}
			cfg.Depth = uint32(*depth)
		}
	})
	return cfg, err
}

func run(cfg Config, log *slog.Logger, out io.Writer) error {
	orderbook.SetLogger(log)

	if cfg.Depth == 0 {
		return errors.New("depth must be positive")
	}
	tick, err := protocol.NewTickSize(cfg.TickSize)
	if err != nil {
		return err
	}
	lot, err := protocol.NewTickSize(cfg.LotSize)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	manager := orderbook.NewOrderBookManager()
	executor := orderbook.NewCommandExecutor(manager, tick, lot)

	instruments, err := replay(in, executor, manager, log)
	if err != nil {
		return err
	}

	reports := make([]instrumentReport, 0, len(instruments))
	for _, instrument := range instruments {
		r := instrumentReport{Instrument: instrument}
		r.Bid, err = report(manager, tick, instrument, orderbook.Buy, cfg.Depth)
		if err != nil {
			return err
		}
		r.Ask, err = report(manager, tick, instrument, orderbook.Sell, cfg.Depth)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// replay applies every line and returns the sorted instruments that received orders.
// Rejected commands are logged and skipped.
func replay(in io.Reader, executor *orderbook.CommandExecutor, manager *orderbook.OrderBookManager, log *slog.Logger) ([]string, error) {
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(in)

	line := 0
	applied, rejected := 0, 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var cmd protocol.Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			log.Warn("skip malformed line", "line", line, "error", err)
			rejected++
			continue
		}

		result, err := executor.Execute(&cmd)
		if err != nil {
			log.Warn("command rejected", "line", line, "seq_id", cmd.SeqID,
				"type", cmd.Type.String(), "order_id", result.OrderID, "error", err)
			rejected++
			continue
		}
		applied++

		if order, ok := manager.Order(result.OrderID); ok {
			seen[order.Instrument()] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", line+1, err)
	}

	log.Info("replay finished", "applied", applied, "rejected", rejected, "resting", manager.OrderCount())

	instruments := make([]string, 0, len(seen))
	for instrument := range seen {
		instruments = append(instruments, instrument)
	}
	sort.Strings(instruments)
	return instruments, nil
}

func report(manager *orderbook.OrderBookManager, tick protocol.TickSize, instrument string, side orderbook.Side, depth uint32) (sideReport, error) {
	var r sideReport
	if best, ok := manager.BestPrice(instrument, side); ok {
		r.Best = tick.FromTicks(best)
	}
	resp, err := manager.Depth(instrument, side, depth)
	if err != nil {
		return r, err
	}
	r.Levels = resp.Levels
	return r, nil
}
