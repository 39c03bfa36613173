package timed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	platformcmd "github.com/louisbranch/stabletime/internal/platform/cmd"
	"github.com/louisbranch/stabletime/internal/platform/telemetry"
	"github.com/louisbranch/stabletime/internal/prefs"
	bboltstore "github.com/louisbranch/stabletime/internal/prefs/bbolt"
	sqlitestore "github.com/louisbranch/stabletime/internal/prefs/sqlite"
	"github.com/louisbranch/stabletime/internal/timestore"
)

// Store kinds accepted by the daemon configuration.
const (
	StoreSQLite = "sqlite"
	StoreBBolt  = "bbolt"
	StoreMemory = "memory"
)

// Config holds the daemon command configuration.
type Config struct {
	HTTPAddr string `env:"STABLETIME_HTTP_ADDR" envDefault:"localhost:8091"`
	Store    string `env:"STABLETIME_STORE" envDefault:"sqlite"`
	DBPath   string `env:"STABLETIME_DB_PATH" envDefault:"stabletime.db"`
	Group    string `env:"STABLETIME_GROUP" envDefault:""`
}

// ParseConfig loads env defaults and parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "storage medium (sqlite, bbolt, memory)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the preference database file")
	fs.StringVar(&cfg.Group, "group", cfg.Group, "shared group identifier (empty for the default partition)")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// OpenCatalog opens the preference catalog for the configured store kind.
// The memory kind returns a nil catalog since the memory backend has no
// medium to bind.
func OpenCatalog(store, dbPath string) (prefs.Catalog, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(store)) {
	case StoreSQLite:
		catalog, err := sqlitestore.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite catalog: %w", err)
		}
		return catalog, catalog, nil
	case StoreBBolt:
		catalog, err := bboltstore.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bbolt catalog: %w", err)
		}
		return catalog, catalog, nil
	case StoreMemory:
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", store)
	}
}

// SelectPolicy maps the configured store kind and group to a storage policy.
func SelectPolicy(store, group string) timestore.Policy {
	if strings.ToLower(strings.TrimSpace(store)) == StoreMemory {
		return timestore.MemoryPolicy()
	}
	return timestore.PolicyForGroup(group)
}

// Run starts the stable-time daemon.
func Run(ctx context.Context, cfg Config) error {
	catalog, closer, err := OpenCatalog(cfg.Store, cfg.DBPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Printf("close preference catalog: %v", err)
			}
		}()
	}

	emitter := telemetry.NewEmitter(telemetry.LogSink{}, nil)
	policy := SelectPolicy(cfg.Store, cfg.Group)
	storage, err := timestore.New(policy, catalog, timestore.WithMonitor(func(d timestore.Diagnostic) {
		detail := map[string]string{}
		if d.Group != "" {
			detail["group"] = d.Group
		}
		if d.Key != "" {
			detail["key"] = d.Key
		}
		if d.Err != nil {
			detail["error"] = d.Err.Error()
		}
		if err := emitter.Emit(ctx, telemetry.Event{Name: "timestore." + d.Op, Detail: detail}); err != nil {
			log.Printf("emit diagnostic: %v", err)
		}
	}))
	if err != nil {
		return fmt.Errorf("init stable-time storage: %w", err)
	}
	log.Printf("stable-time storage policy %s", policy)

	server, err := NewServer(ServerConfig{HTTPAddr: cfg.HTTPAddr, Storage: storage})
	if err != nil {
		return fmt.Errorf("init timed server: %w", err)
	}
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve timed: %w", err)
	}
	return nil
}
