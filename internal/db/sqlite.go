// Package db provides database connectivity helpers and migration support
// for the SQLite result metastore.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// SQLite DSN parameters for production hardening.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
)

const defaultReadConns = 4

// OpenWriter opens the single-connection write pool for the metastore.
// SQLite allows one writer at a time; a one-connection pool with
// _txlock=immediate serializes writes instead of surfacing SQLITE_BUSY.
func OpenWriter(path string) (*sql.DB, error) {
	dbc, err := open(buildDSN(path, true))
	if err != nil {
		return nil, fmt.Errorf("open metastore writer: %w", err)
	}
	dbc.SetMaxOpenConns(1)
	dbc.SetMaxIdleConns(1)
	if err := ping(dbc); err != nil {
		return nil, err
	}
	return dbc, nil
}

// OpenReader opens a read pool for the metastore. WAL mode lets readers run
// concurrently with the writer. maxOpen <= 0 selects the default of 4.
func OpenReader(path string, maxOpen int) (*sql.DB, error) {
	if maxOpen <= 0 {
		maxOpen = defaultReadConns
	}
	dbc, err := open(buildDSN(path, false))
	if err != nil {
		return nil, fmt.Errorf("open metastore reader: %w", err)
	}
	dbc.SetMaxOpenConns(maxOpen)
	dbc.SetMaxIdleConns(maxOpen)
	if err := ping(dbc); err != nil {
		return nil, err
	}
	return dbc, nil
}

// OpenSQLitePair opens the writer and a read pool for the same metastore
// file. The WAL journal makes the split safe.
func OpenSQLitePair(path string, readMaxOpen int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = OpenWriter(path)
	if err != nil {
		return nil, nil, err
	}
	readDB, err = OpenReader(path, readMaxOpen)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}
	return writeDB, readDB, nil
}

func open(dsn string) (*sql.DB, error) {
	dbc, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	dbc.SetConnMaxLifetime(time.Hour)
	return dbc, nil
}

// ping verifies the pool is usable and closes it when it is not.
func ping(dbc *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbc.PingContext(ctx); err != nil {
		_ = dbc.Close()
		return fmt.Errorf("ping metastore: %w", err)
	}
	return nil
}

func buildDSN(path string, writer bool) string {
	params := url.Values{}
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_synchronous", defaultSynchronous)
	params.Set("_foreign_keys", "on")
	if writer {
		params.Set("_txlock", "immediate")
	}
	return fmt.Sprintf("file:%s?%s", path, params.Encode())
}
