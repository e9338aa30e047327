package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"go-hse/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/fx"
)

// SQLDB wraps the relational handle used by the sql layout store drivers. Driver is the
// KV_DRIVER value: postgres, mysql or sqlite.
type SQLDB struct {
	DB     *sql.DB
	Driver string
}

// OpenSQLite opens a sqlite database file with WAL journaling.
func OpenSQLite(path string) (*SQLDB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)
	return &SQLDB{DB: db, Driver: "sqlite"}, nil
}

// NewSQLDB opens a connection pool when KV_DRIVER is postgres, mysql or sqlite, otherwise
// it returns nil.
func NewSQLDB(lc fx.Lifecycle, cfg *config.Config) (*SQLDB, error) {
	var sdb *SQLDB
	switch cfg.KVDriver {
	case "postgres", "mysql":
		dsn := cfg.PostgresDSN
		if cfg.KVDriver == "mysql" {
			dsn = cfg.MySQLDSN
		}
		if dsn == "" {
			return nil, fmt.Errorf("a DSN is required when KV_DRIVER=%s", cfg.KVDriver)
		}
		db, err := sql.Open(cfg.KVDriver, dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
		sdb = &SQLDB{DB: db, Driver: cfg.KVDriver}
	case "sqlite":
		var err error
		if sdb, err = OpenSQLite(cfg.SQLitePath); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}
	db := sdb.DB

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.KVDriver, err)
	}

	log.Printf("Connected to %s!", cfg.KVDriver)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return sdb, nil
}
