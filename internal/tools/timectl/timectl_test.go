package timectl

import (
	"bytes"
	"context"
	"flag"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/stabletime/internal/timed"
	"github.com/louisbranch/stabletime/internal/timestore"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STABLETIME_ADDR", "")
	t.Setenv("STABLETIME_STORE", "")
	t.Setenv("STABLETIME_DB_PATH", "")
	t.Setenv("STABLETIME_GROUP", "")
}

func TestParseConfigDefaults(t *testing.T) {
	clearEnv(t)

	fs := flag.NewFlagSet("timectl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"show"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "" {
		t.Fatalf("Addr = %q, want empty", cfg.Addr)
	}
	if cfg.Store != "sqlite" {
		t.Fatalf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.DBPath != "stabletime.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Command != CommandShow {
		t.Fatalf("Command = %q, want %q", cfg.Command, CommandShow)
	}
}

func TestParseConfigFlagsAndCommand(t *testing.T) {
	clearEnv(t)

	fs := flag.NewFlagSet("timectl", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-addr", "http://localhost:8091", "-offset", "1.5", "record"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "http://localhost:8091" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.Offset != 1.5 {
		t.Fatalf("Offset = %v", cfg.Offset)
	}
	if cfg.Command != CommandRecord {
		t.Fatalf("Command = %q", cfg.Command)
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if err := Run(context.Background(), Config{Store: "memory"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing command")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	cfg := Config{Store: "memory", Command: "drop"}
	if err := Run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestRunRequiresOutput(t *testing.T) {
	cfg := Config{Store: "memory", Command: CommandShow}
	if err := Run(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for nil output")
	}
}

func TestShowReportsAbsentOnFreshStore(t *testing.T) {
	out := &bytes.Buffer{}
	cfg := Config{Store: "memory", Command: CommandShow}
	if err := Run(context.Background(), cfg, out); err != nil {
		t.Fatalf("run show: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "no stable time stored" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRecordThenShowAgainstSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stabletime.db")

	out := &bytes.Buffer{}
	record := Config{Store: "sqlite", DBPath: dbPath, Offset: 0.25, Command: CommandRecord}
	if err := Run(context.Background(), record, out); err != nil {
		t.Fatalf("run record: %v", err)
	}
	if !strings.Contains(out.String(), "recorded stable time") {
		t.Fatalf("unexpected record output %q", out.String())
	}

	out.Reset()
	show := Config{Store: "sqlite", DBPath: dbPath, Command: CommandShow}
	if err := Run(context.Background(), show, out); err != nil {
		t.Fatalf("run show: %v", err)
	}
	if !strings.Contains(out.String(), "offset:    0.250s") {
		t.Fatalf("expected recorded offset in output, got %q", out.String())
	}
}

func newRemoteFixture(t *testing.T) string {
	t.Helper()
	storage, err := timestore.New(timestore.MemoryPolicy(), nil)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	server, err := timed.NewServer(timed.ServerConfig{
		HTTPAddr: "localhost:0",
		Storage:  storage,
		Uptime:   func() (float64, error) { return 150, nil },
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestRemoteRecordThenShowAndNow(t *testing.T) {
	addr := newRemoteFixture(t)

	out := &bytes.Buffer{}
	record := Config{Addr: addr, Offset: 2, Command: CommandRecord}
	if err := Run(context.Background(), record, out); err != nil {
		t.Fatalf("run record: %v", err)
	}

	out.Reset()
	show := Config{Addr: addr, Command: CommandShow}
	if err := Run(context.Background(), show, out); err != nil {
		t.Fatalf("run show: %v", err)
	}
	if !strings.Contains(out.String(), "offset:    2.000s") {
		t.Fatalf("expected recorded offset in output, got %q", out.String())
	}

	out.Reset()
	now := Config{Addr: addr, Command: CommandNow}
	if err := Run(context.Background(), now, out); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if strings.TrimSpace(out.String()) == "no stable time stored" {
		t.Fatal("expected a projected time")
	}
}

func TestRemoteNowAbsent(t *testing.T) {
	addr := newRemoteFixture(t)

	out := &bytes.Buffer{}
	now := Config{Addr: addr, Command: CommandNow}
	if err := Run(context.Background(), now, out); err != nil {
		t.Fatalf("run now: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "no stable time stored" {
		t.Fatalf("unexpected output %q", got)
	}
}
