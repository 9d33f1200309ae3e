// Package records is the dedup and persistence gateway: it maps a classified
// payload onto at most one durable scan record, enforcing content-level
// deduplication across all stored scans.
package records

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jo-hoe/qrscan/internal/backend/database"
	"github.com/jo-hoe/qrscan/internal/dedupcache"
)

// previewLength caps data_preview stored alongside the full payload.
const previewLength = 100

// OutcomeKind distinguishes a first-sight record from a duplicate payload.
// A duplicate is an expected outcome, not an error; storage failures are
// returned as errors and must never be mistaken for either kind.
type OutcomeKind string

const (
	OutcomeCreated   OutcomeKind = "created"
	OutcomeDuplicate OutcomeKind = "duplicate"
)

// Outcome references the record a payload resolved to.
type Outcome struct {
	Kind   OutcomeKind
	Record *database.ScanRecord
}

// Request carries one classified payload into the gateway.
type Request struct {
	Text       string
	QRType     string
	Tags       []string
	Filename   string
	ScanDate   time.Time
	FileFormat string
	FileSizeKB int64
}

// Recorder persists classified payloads with global dedup by content hash.
// The cache is optional; when present it short-circuits the lookup for
// hashes already known to be stored.
type Recorder struct {
	databaseService database.DatabaseService
	cache           dedupcache.Cache
}

func NewRecorder(databaseService database.DatabaseService, cache dedupcache.Cache) *Recorder {
	return &Recorder{
		databaseService: databaseService,
		cache:           cache,
	}
}

// HashPayload computes the stable content fingerprint of a payload text.
// Identical text always yields the identical hash regardless of filename
// or scan date.
func HashPayload(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Record stores the payload on first sight and reports a duplicate
// otherwise. The database unique index on data_hash arbitrates races: if
// two concurrent calls carry the same payload, exactly one insert wins and
// the loser resolves to a Duplicate outcome referencing the winner's record.
// Stats are forwarded only for genuinely created records.
func (r *Recorder) Record(ctx context.Context, request Request) (*Outcome, error) {
	hash := HashPayload(request.Text)

	if r.shouldCheckStore(ctx, hash) {
		existing, err := r.databaseService.FindScanByHash(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to look up scan by hash: %w", err)
		}
		if existing != nil {
			return &Outcome{Kind: OutcomeDuplicate, Record: existing}, nil
		}
	}

	record := &database.ScanRecord{
		ID:          uuid.NewString(),
		Filename:    request.Filename,
		QRData:      request.Text,
		QRType:      request.QRType,
		ScanDate:    request.ScanDate.Format(database.DateLayout),
		DataPreview: preview(request.Text),
		DataHash:    hash,
		Tags:        request.Tags,
		FileFormat:  request.FileFormat,
		FileSizeKB:  request.FileSizeKB,
		CreatedAt:   time.Now().UTC(),
	}

	err := r.databaseService.InsertScan(record)
	if err == database.ErrDuplicateHash {
		// Lost the race to a concurrent insert of the same payload.
		existing, findErr := r.databaseService.FindScanByHash(hash)
		if findErr != nil {
			return nil, fmt.Errorf("failed to load existing scan: %w", findErr)
		}
		if existing == nil {
			return nil, fmt.Errorf("scan %s vanished after duplicate insert", hash)
		}
		return &Outcome{Kind: OutcomeDuplicate, Record: existing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}

	if err := r.databaseService.UpsertDailyStat(record.ScanDate, record.QRType); err != nil {
		return nil, fmt.Errorf("failed to update daily stats: %w", err)
	}

	r.remember(ctx, hash)

	slog.Info("scan recorded",
		"id", record.ID,
		"qr_type", record.QRType,
		"filename", record.Filename)
	return &Outcome{Kind: OutcomeCreated, Record: record}, nil
}

// shouldCheckStore decides whether the pre-insert duplicate lookup is
// worth doing. A confirmed cache miss skips it for the common new-payload
// case; the unique index still catches anything the cache got wrong.
// Without a cache, or on cache errors, the lookup always runs.
func (r *Recorder) shouldCheckStore(ctx context.Context, hash string) bool {
	if r.cache == nil {
		return true
	}
	known, err := r.cache.Contains(ctx, hash)
	if err != nil {
		slog.Debug("dedup cache lookup failed", "error", err)
		return true
	}
	return known
}

func (r *Recorder) remember(ctx context.Context, hash string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Add(ctx, hash); err != nil {
		slog.Debug("dedup cache add failed", "error", err)
	}
}

func preview(text string) string {
	if len(text) <= previewLength {
		return text
	}
	return text[:previewLength-3] + "..."
}
