package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestPoolOptions_Defaults(t *testing.T) {
	o := PoolOptions{}.withDefaults()

	assert.Equal(t, 10, o.MaxIdleConns)
	assert.Equal(t, 50, o.MaxOpenConns)
	assert.Equal(t, time.Hour, o.ConnMaxLifetime)
	assert.Equal(t, 2*time.Second, o.SlowQuery)
	assert.Equal(t, logger.Warn, o.LogLevel)
}

func TestPoolOptions_IdleNeverExceedsOpen(t *testing.T) {
	o := PoolOptions{MaxIdleConns: 40, MaxOpenConns: 8, LogLevel: logger.Info}.withDefaults()

	assert.Equal(t, 8, o.MaxIdleConns)
	assert.Equal(t, 8, o.MaxOpenConns)
	assert.Equal(t, logger.Info, o.LogLevel)
}
