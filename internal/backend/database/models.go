package database

import "time"

// DateLayout is the key format of scan_date and daily_stats.date.
const DateLayout = "2006-01-02"

// ScanRecord is the persisted unit of one deduplicated QR payload.
// QRData and DataHash are immutable after creation; only favorite, tags
// and notes may change.
type ScanRecord struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	QRData      string    `json:"qr_data"`
	QRType      string    `json:"qr_type"`
	ScanDate    string    `json:"scan_date"` // DateLayout
	DataPreview string    `json:"data_preview"`
	DataHash    string    `json:"data_hash"`
	IsFavorite  bool      `json:"is_favorite"`
	Tags        []string  `json:"tags"`
	Notes       string    `json:"notes"`
	FileFormat  string    `json:"file_format"`
	FileSizeKB  int64     `json:"file_size_kb"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyStat is the per-date aggregate row. ByType maps qr_type to count;
// the sum over ByType always equals TotalScans.
type DailyStat struct {
	Date       string         `json:"date"` // DateLayout
	TotalScans int            `json:"total_scans"`
	ByType     map[string]int `json:"by_type"`
}

// OverallStats summarizes the whole store.
type OverallStats struct {
	TotalScans     int            `json:"total_scans"`
	ByType         map[string]int `json:"by_type"`
	RecentActivity map[string]int `json:"recent_activity"` // date -> count, last 7 active days
	Favorites      int            `json:"favorites"`
}
