// Package storagetest provides an isolated in-memory SQLite database for tests.
package storagetest

import (
	"civicdesk/backend/internal/storage"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a fresh, migrated in-memory database that is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := storage.Open(dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewService wraps NewDB in a storage service without Redis.
func NewService(t testing.TB) *storage.Service {
	t.Helper()
	return storage.NewStorageService(NewDB(t), nil, nil)
}
