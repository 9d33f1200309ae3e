package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const scanColumns = `id, filename, qr_data, qr_type, scan_date, data_preview,
	data_hash, is_favorite, tags, notes, file_format, file_size_kb, created_at`

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one pooled connection avoids lock
	// contention and keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() (*sql.DB, error) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			qr_data TEXT NOT NULL,
			qr_type TEXT NOT NULL,
			scan_date TEXT NOT NULL,
			data_preview TEXT,
			data_hash TEXT NOT NULL UNIQUE,
			is_favorite INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]',
			notes TEXT NOT NULL DEFAULT '',
			file_format TEXT,
			file_size_kb INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			date TEXT PRIMARY KEY,
			total_scans INTEGER NOT NULL DEFAULT 0,
			by_type TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_date ON scans(scan_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_type ON scans(qr_type)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_favorite ON scans(is_favorite) WHERE is_favorite = 1`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return nil, err
		}
	}

	return s.db, nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) FindScanByHash(hash string) (*ScanRecord, error) {
	row := s.db.QueryRow("SELECT "+scanColumns+" FROM scans WHERE data_hash = ?", hash)
	record, err := scanRecordFromRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return record, err
}

func (s *SQLiteDatabase) InsertScan(record *ScanRecord) error {
	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return fmt.Errorf("failed to serialize tags: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO scans (
		id, filename, qr_data, qr_type, scan_date, data_preview,
		data_hash, is_favorite, tags, notes, file_format, file_size_kb, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Filename, record.QRData, record.QRType,
		record.ScanDate, record.DataPreview, record.DataHash,
		boolToInt(record.IsFavorite), string(tags), record.Notes,
		record.FileFormat, record.FileSizeKB,
		record.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateHash
		}
		return err
	}
	return nil
}

// UpsertDailyStat increments both counters in a single statement, so the
// update stays atomic under concurrent record creation. The JSON path is
// built from qr_type, which is restricted to the classifier's enum values.
func (s *SQLiteDatabase) UpsertDailyStat(date string, qrType string) error {
	_, err := s.db.Exec(`INSERT INTO daily_stats (date, total_scans, by_type, created_at)
		VALUES (?, 1, json_object(?, 1), datetime('now'))
		ON CONFLICT(date) DO UPDATE SET
			total_scans = total_scans + 1,
			by_type = json_set(by_type, '$.' || ?,
				COALESCE(json_extract(by_type, '$.' || ?), 0) + 1)`,
		date, qrType, qrType, qrType)
	return err
}

func (s *SQLiteDatabase) GetAllScans(limit int) ([]*ScanRecord, error) {
	rows, err := s.db.Query("SELECT "+scanColumns+
		" FROM scans ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return collectScanRecords(rows)
}

func (s *SQLiteDatabase) GetScansByType(qrType string) ([]*ScanRecord, error) {
	rows, err := s.db.Query("SELECT "+scanColumns+
		" FROM scans WHERE qr_type = ? ORDER BY created_at DESC", qrType)
	if err != nil {
		return nil, err
	}
	return collectScanRecords(rows)
}

func (s *SQLiteDatabase) GetFavorites() ([]*ScanRecord, error) {
	rows, err := s.db.Query("SELECT " + scanColumns +
		" FROM scans WHERE is_favorite = 1 ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return collectScanRecords(rows)
}

func (s *SQLiteDatabase) SearchScans(query string) ([]*ScanRecord, error) {
	searchTerm := "%" + query + "%"
	rows, err := s.db.Query("SELECT "+scanColumns+
		" FROM scans WHERE qr_data LIKE ? OR filename LIKE ? OR tags LIKE ?"+
		" ORDER BY created_at DESC", searchTerm, searchTerm, searchTerm)
	if err != nil {
		return nil, err
	}
	return collectScanRecords(rows)
}

func (s *SQLiteDatabase) ToggleFavorite(id string) (bool, error) {
	row := s.db.QueryRow("SELECT is_favorite FROM scans WHERE id = ?", id)
	var favorite int
	if err := row.Scan(&favorite); err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("scan %s not found", id)
		}
		return false, err
	}

	newState := 1 - favorite
	if _, err := s.db.Exec("UPDATE scans SET is_favorite = ? WHERE id = ?", newState, id); err != nil {
		return false, err
	}
	return newState == 1, nil
}

func (s *SQLiteDatabase) UpdateTags(id string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	serialized, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to serialize tags: %w", err)
	}
	_, err = s.db.Exec("UPDATE scans SET tags = ? WHERE id = ?", string(serialized), id)
	return err
}

func (s *SQLiteDatabase) UpdateNotes(id string, notes string) error {
	_, err := s.db.Exec("UPDATE scans SET notes = ? WHERE id = ?", notes, id)
	return err
}

func (s *SQLiteDatabase) DeleteScan(id string) (bool, error) {
	result, err := s.db.Exec("DELETE FROM scans WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SQLiteDatabase) GetDailyStats(limit int) ([]*DailyStat, error) {
	rows, err := s.db.Query(
		"SELECT date, total_scans, by_type FROM daily_stats ORDER BY date DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var stats []*DailyStat
	for rows.Next() {
		var stat DailyStat
		var byType string
		if err := rows.Scan(&stat.Date, &stat.TotalScans, &byType); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(byType), &stat.ByType); err != nil {
			return nil, fmt.Errorf("failed to parse by_type for %s: %w", stat.Date, err)
		}
		stats = append(stats, &stat)
	}
	return stats, rows.Err()
}

func (s *SQLiteDatabase) GetOverallStats() (*OverallStats, error) {
	stats := &OverallStats{
		ByType:         map[string]int{},
		RecentActivity: map[string]int{},
	}

	row := s.db.QueryRow("SELECT COUNT(*) FROM scans")
	if err := row.Scan(&stats.TotalScans); err != nil {
		return nil, err
	}

	row = s.db.QueryRow("SELECT COUNT(*) FROM scans WHERE is_favorite = 1")
	if err := row.Scan(&stats.Favorites); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT qr_type, COUNT(*) FROM scans GROUP BY qr_type")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var qrType string
		var count int
		if err := rows.Scan(&qrType, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.ByType[qrType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	rows, err = s.db.Query(
		"SELECT scan_date, COUNT(*) FROM scans GROUP BY scan_date ORDER BY scan_date DESC LIMIT 7")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, err
		}
		stats.RecentActivity[date] = count
	}
	return stats, rows.Err()
}

func collectScanRecords(rows *sql.Rows) ([]*ScanRecord, error) {
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	var records []*ScanRecord
	for rows.Next() {
		record, err := scanRecordFromRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecordFromRow(row rowScanner) (*ScanRecord, error) {
	var record ScanRecord
	var favorite int
	var tags string
	var createdAt string
	err := row.Scan(&record.ID, &record.Filename, &record.QRData, &record.QRType,
		&record.ScanDate, &record.DataPreview, &record.DataHash, &favorite,
		&tags, &record.Notes, &record.FileFormat, &record.FileSizeKB, &createdAt)
	if err != nil {
		return nil, err
	}

	record.IsFavorite = favorite == 1
	if err := json.Unmarshal([]byte(tags), &record.Tags); err != nil {
		return nil, fmt.Errorf("failed to parse tags for %s: %w", record.ID, err)
	}
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at for %s: %w", record.ID, err)
	}
	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
