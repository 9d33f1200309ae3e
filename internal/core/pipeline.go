package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/jo-hoe/qrscan/internal/classify"
	"github.com/jo-hoe/qrscan/internal/records"
	"github.com/jo-hoe/qrscan/internal/scanner"
)

// BatchInput is one image of a batch scan, as uploaded.
type BatchInput struct {
	Filename string
	Data     []byte
}

// PayloadStatus reports how one decoded payload was persisted.
type PayloadStatus string

const (
	StatusCreated   PayloadStatus = "created"
	StatusDuplicate PayloadStatus = "duplicate"
	// StatusFailed marks a storage failure; it is never used for
	// duplicates, which are an expected outcome.
	StatusFailed PayloadStatus = "failed"
)

// PayloadResult is the caller-facing outcome of one decoded payload.
type PayloadResult struct {
	Text          string               `json:"text"`
	SourceVariant string               `json:"source_variant"`
	Region        *scanner.Region      `json:"region,omitempty"`
	QRType        classify.ContentType `json:"qr_type"`
	Tags          []string             `json:"tags,omitempty"`
	Status        PayloadStatus        `json:"status"`
	RecordID      string               `json:"record_id,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// ScanOutcome is the per-image result of a scan. Error is set only for
// whole-image failures (unreadable input); an image without any QR symbol
// is a success with zero results.
type ScanOutcome struct {
	Filename string          `json:"filename"`
	Results  []PayloadResult `json:"results"`
	Error    string          `json:"error,omitempty"`
}

// Pipeline chains preprocessing, decoding, classification and persistence
// for incoming images.
type Pipeline struct {
	engine   *scanner.Engine
	recorder *records.Recorder
	workers  int
}

func NewPipeline(engine *scanner.Engine, recorder *records.Recorder, workers int) *Pipeline {
	return &Pipeline{
		engine:   engine,
		recorder: recorder,
		workers:  workers,
	}
}

// ScanImage runs the full pipeline for one uploaded image. Decode failures
// are silent (empty result set); only unreadable input marks the outcome
// itself as failed. Storage failures are reported per payload.
func (p *Pipeline) ScanImage(ctx context.Context, data []byte, filename string, scanDate time.Time) *ScanOutcome {
	outcome := &ScanOutcome{Filename: filename}

	img, format, err := scanner.NormalizeImage(data)
	if err != nil {
		slog.Warn("unreadable input image", "filename", filename, "error", err)
		outcome.Error = err.Error()
		return outcome
	}

	payloads := p.engine.Extract(img)
	fileSizeKB := int64(len(data) / 1024)

	for _, payload := range payloads {
		qrType, tags := classify.Classify(payload.Text)

		result := PayloadResult{
			Text:          payload.Text,
			SourceVariant: payload.SourceVariant,
			Region:        payload.Region,
			QRType:        qrType,
			Tags:          tags,
		}

		recordOutcome, err := p.recorder.Record(ctx, records.Request{
			Text:       payload.Text,
			QRType:     string(qrType),
			Tags:       tags,
			Filename:   filename,
			ScanDate:   scanDate,
			FileFormat: format,
			FileSizeKB: fileSizeKB,
		})
		if err != nil {
			slog.Error("failed to record scan",
				"filename", filename,
				"qr_type", qrType,
				"error", err)
			result.Status = StatusFailed
			result.Error = err.Error()
		} else {
			result.Status = PayloadStatus(recordOutcome.Kind)
			result.RecordID = recordOutcome.Record.ID
		}

		outcome.Results = append(outcome.Results, result)
	}

	return outcome
}

// ScanBatch processes independent images in parallel, bounded by the
// configured worker count. The returned slice preserves input order; a
// single unreadable image yields its own failed outcome without affecting
// sibling images.
func (p *Pipeline) ScanBatch(ctx context.Context, inputs []BatchInput, scanDate time.Time) []*ScanOutcome {
	outcomes := make([]*ScanOutcome, len(inputs))

	scanner.ParallelFor(len(inputs), p.workers, func(i int) {
		outcomes[i] = p.ScanImage(ctx, inputs[i].Data, inputs[i].Filename, scanDate)
	})

	return outcomes
}
