package database

import (
	"database/sql"
	"errors"
)

// ErrDuplicateHash is returned by InsertScan when a record with the same
// data_hash already exists. The unique index is the arbiter, so two
// concurrent inserts of the same payload resolve to exactly one record.
var ErrDuplicateHash = errors.New("scan with this data hash already exists")

type DatabaseService interface {
	CreateDatabase() (*sql.DB, error)
	DoesDatabaseExist() bool
	Close() error

	// FindScanByHash returns the record with the given data_hash,
	// or nil when no such record exists.
	FindScanByHash(hash string) (*ScanRecord, error)
	// InsertScan creates a new record. Returns ErrDuplicateHash when the
	// data_hash uniqueness constraint is violated.
	InsertScan(record *ScanRecord) error
	// UpsertDailyStat atomically increments the total and per-type counter
	// for the given date, creating the row if absent.
	UpsertDailyStat(date string, qrType string) error

	GetAllScans(limit int) ([]*ScanRecord, error)
	GetScansByType(qrType string) ([]*ScanRecord, error)
	GetFavorites() ([]*ScanRecord, error)
	SearchScans(query string) ([]*ScanRecord, error)
	ToggleFavorite(id string) (bool, error)
	UpdateTags(id string, tags []string) error
	UpdateNotes(id string, notes string) error
	DeleteScan(id string) (bool, error)

	GetDailyStats(limit int) ([]*DailyStat, error)
	GetOverallStats() (*OverallStats, error)
}
