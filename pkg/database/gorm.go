// Package database opens the Postgres handle that backs the knowledge corpus
// (pgvector chunks) and the advisory record log.
package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolOptions sizes the connection pool. Zero fields take the defaults.
type PoolOptions struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// SlowQuery is where vector searches start being logged as slow.
	SlowQuery time.Duration
	LogLevel  logger.LogLevel
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = 10
	}
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 50
	}
	if o.MaxIdleConns > o.MaxOpenConns {
		o.MaxIdleConns = o.MaxOpenConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = time.Hour
	}
	if o.SlowQuery <= 0 {
		o.SlowQuery = 2 * time.Second
	}
	if o.LogLevel == 0 {
		o.LogLevel = logger.Warn
	}
	return o
}

func newLogger(o PoolOptions) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             o.SlowQuery,
			LogLevel:                  o.LogLevel,
			IgnoreRecordNotFoundError: true,
			// embeddings and farmer text stay out of the SQL log
			ParameterizedQueries: true,
			Colorful:             false,
		},
	)
}

// NewGormDBFromDSN connects to Postgres with the default pool.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return NewGormDBWithOptions(dsn, PoolOptions{})
}

func NewGormDBWithOptions(dsn string, opts PoolOptions) (*gorm.DB, error) {
	opts = opts.withDefaults()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger(opts),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	return db, nil
}
