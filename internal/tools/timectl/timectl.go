// Package timectl implements the stable-time CLI.
//
// The tool speaks to a running daemon when -addr is set and opens the
// preference medium directly otherwise.
package timectl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	platformcmd "github.com/louisbranch/stabletime/internal/platform/cmd"
	"github.com/louisbranch/stabletime/internal/timed"
	"github.com/louisbranch/stabletime/internal/timepoint"
	"github.com/louisbranch/stabletime/internal/timestore"
)

// Commands accepted by the tool.
const (
	CommandShow   = "show"
	CommandRecord = "record"
	CommandNow    = "now"
)

// Config holds the timectl command configuration.
type Config struct {
	Addr   string  `env:"STABLETIME_ADDR" envDefault:""`
	Store  string  `env:"STABLETIME_STORE" envDefault:"sqlite"`
	DBPath string  `env:"STABLETIME_DB_PATH" envDefault:"stabletime.db"`
	Group  string `env:"STABLETIME_GROUP" envDefault:""`

	Offset  float64
	Command string
}

// ParseConfig loads env defaults and parses flags into a Config. The first
// positional argument selects the command.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "daemon base URL (empty to open the store directly)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "storage medium (sqlite, bbolt, memory)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the preference database file")
	fs.StringVar(&cfg.Group, "group", cfg.Group, "shared group identifier (empty for the default partition)")
	fs.Float64Var(&cfg.Offset, "offset", 0, "reference-clock offset in seconds for record")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Command = strings.TrimSpace(fs.Arg(0))
	return cfg, nil
}

// Run executes the configured command and writes results to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	if cfg.Command == "" {
		return fmt.Errorf("command is required: %s, %s, or %s", CommandShow, CommandRecord, CommandNow)
	}

	sess, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.close() }()

	switch cfg.Command {
	case CommandShow:
		return runShow(ctx, sess, out)
	case CommandRecord:
		return runRecord(ctx, sess, cfg.Offset, out)
	case CommandNow:
		return runNow(ctx, sess, out)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func runShow(ctx context.Context, s session, out io.Writer) error {
	snap, ok, err := s.current(ctx)
	if err != nil {
		return fmt.Errorf("read stable time: %w", err)
	}
	if !ok {
		_, err := fmt.Fprintln(out, "no stable time stored")
		return err
	}
	return printSnapshot(out, snap)
}

func runRecord(ctx context.Context, s session, offset float64, out io.Writer) error {
	snap, err := timepoint.Capture(offset)
	if err != nil {
		return fmt.Errorf("capture stable time: %w", err)
	}
	if err := s.record(ctx, snap); err != nil {
		return fmt.Errorf("store stable time: %w", err)
	}
	if _, err := fmt.Fprintln(out, "recorded stable time"); err != nil {
		return err
	}
	return printSnapshot(out, snap)
}

func runNow(ctx context.Context, s session, out io.Writer) error {
	value, ok, err := s.now(ctx)
	if err != nil {
		return fmt.Errorf("project stable time: %w", err)
	}
	if !ok {
		_, err := fmt.Fprintln(out, "no stable time stored")
		return err
	}
	_, err = fmt.Fprintln(out, value.Format(time.RFC3339Nano))
	return err
}

func printSnapshot(out io.Writer, snap timepoint.Snapshot) error {
	_, err := fmt.Fprintf(out, "uptime:    %.3fs\nlocal:     %s\noffset:    %.3fs\nreference: %s\n",
		snap.Uptime,
		snap.Local().Format(time.RFC3339Nano),
		snap.Offset,
		snap.Reference().Format(time.RFC3339Nano),
	)
	return err
}

// session abstracts local and remote access to the cached reading.
type session interface {
	current(ctx context.Context) (timepoint.Snapshot, bool, error)
	record(ctx context.Context, snap timepoint.Snapshot) error
	now(ctx context.Context) (time.Time, bool, error)
	close() error
}

func openSession(cfg Config) (session, error) {
	if strings.TrimSpace(cfg.Addr) != "" {
		client, err := timed.NewClient(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("init daemon client: %w", err)
		}
		return &remoteSession{client: client}, nil
	}

	catalog, closer, err := timed.OpenCatalog(cfg.Store, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	storage, err := timestore.New(timed.SelectPolicy(cfg.Store, cfg.Group), catalog)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("init stable-time storage: %w", err)
	}
	return &localSession{storage: storage, closer: closer}, nil
}

type localSession struct {
	storage *timestore.Storage
	closer  io.Closer
}

func (s *localSession) current(ctx context.Context) (timepoint.Snapshot, bool, error) {
	snap, ok := s.storage.Current(ctx)
	return snap, ok, nil
}

func (s *localSession) record(ctx context.Context, snap timepoint.Snapshot) error {
	return s.storage.SetCurrent(ctx, &snap)
}

func (s *localSession) now(ctx context.Context) (time.Time, bool, error) {
	snap, ok := s.storage.Current(ctx)
	if !ok {
		return time.Time{}, false, nil
	}
	value, err := snap.Projected()
	if err != nil {
		return time.Time{}, false, err
	}
	return value, true, nil
}

func (s *localSession) close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

type remoteSession struct {
	client *timed.Client
}

func (s *remoteSession) current(ctx context.Context) (timepoint.Snapshot, bool, error) {
	return s.client.StableTime(ctx)
}

func (s *remoteSession) record(ctx context.Context, snap timepoint.Snapshot) error {
	return s.client.SetStableTime(ctx, snap)
}

func (s *remoteSession) now(ctx context.Context) (time.Time, bool, error) {
	return s.client.Now(ctx)
}

func (s *remoteSession) close() error {
	return nil
}
