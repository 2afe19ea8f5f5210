package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"leadawaker/internal/logger"
	"leadawaker/internal/sessionstore"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type DBManager struct {
	DB     *sqlx.DB
	driver string
	dsn    string
	Log    logger.Logger
}

func NewDBManager(driver, dsn string, log logger.Logger) *DBManager {
	return &DBManager{
		driver: driver,
		dsn:    dsn,
		Log:    log,
	}
}

func (dm *DBManager) Connect(ctx context.Context) error {
	if dm.driver == DriverSQLite && dm.dsn != ":memory:" {
		if _, err := os.Stat(dm.dsn); err != nil {
			dm.Log.Info("No database found at %s. Creating database...", dm.dsn)
			if err := os.MkdirAll(filepath.Dir(dm.dsn), 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	dm.Log.Info("Connecting to %s database", dm.driver)
	db, err := sqlx.Open(dm.driver, dm.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	if dm.driver == DriverSQLite {
		// One writer; also keeps :memory: databases on a single connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	dm.DB = db
	dm.Log.Info("Successfully connected to database.")
	return nil
}

func (dm *DBManager) Close() error {
	if dm.DB != nil {
		dm.Log.Info("Closing database connection.")
		return dm.DB.Close()
	}
	return nil
}

// InitSessionStore opens the BuntDB file next to the relational data.
func (dm *DBManager) InitSessionStore(path string) (*sessionstore.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return sessionstore.Open(path)
}

func (dm *DBManager) ApplyMigrations(ctx context.Context) error {
	if dm.DB == nil {
		return errors.New("database connection is not established, call Connect() first")
	}

	dm.Log.Info("Applying database migrations...")
	if dm.driver == DriverSQLite {
		if _, err := dm.DB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	for i, stmt := range schemaStatements(dm.driver) {
		if _, err := dm.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i, err)
		}
	}
	dm.Log.Info("Database migrations applied successfully.")
	return nil
}
