package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/qrscan/internal/backend/database"
	"github.com/jo-hoe/qrscan/internal/classify"
	"github.com/jo-hoe/qrscan/internal/dedupcache"
	"github.com/jo-hoe/qrscan/internal/records"
	"github.com/jo-hoe/qrscan/internal/scanner"
)

// CoreService wires the scan pipeline to its persistence collaborators and
// exposes the operations the transport layer needs.
type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	cache           dedupcache.Cache
	pipeline        *Pipeline
}

func NewCoreService(config *ServiceConfig) *CoreService {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		slog.Error("failed to initialize database service", "error", err)
		panic(err)
	}

	cache := getCache(config)

	recorder := records.NewRecorder(databaseService, cache)
	engine := scanner.NewEngine(scanner.NewQRDecoder())
	pipeline := NewPipeline(engine, recorder, config.Scanner.Workers)

	return &CoreService{
		config:          config,
		databaseService: databaseService,
		cache:           cache,
		pipeline:        pipeline,
	}
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

// getCache builds the optional dedup cache. A cache that cannot be reached
// at startup is reported and skipped rather than failing the service.
func getCache(config *ServiceConfig) dedupcache.Cache {
	if config.Cache.Type != "redis" {
		return nil
	}
	cache, err := dedupcache.NewRedisCache(config.Cache.Address, config.Cache.Password, config.Cache.DB)
	if err != nil {
		slog.Warn("dedup cache unavailable, continuing without it",
			"address", config.Cache.Address, "error", err)
		return nil
	}
	slog.Info("dedup cache initialized", "address", config.Cache.Address)
	return cache
}

// ScanImage scans one uploaded image dated today.
func (service *CoreService) ScanImage(ctx context.Context, data []byte, filename string) *ScanOutcome {
	return service.pipeline.ScanImage(ctx, data, filename, time.Now())
}

// ScanBatch scans independent images in parallel, preserving input order.
func (service *CoreService) ScanBatch(ctx context.Context, inputs []BatchInput) []*ScanOutcome {
	return service.pipeline.ScanBatch(ctx, inputs, time.Now())
}

// Classify re-classifies arbitrary text, e.g. for edited or imported content.
func (service *CoreService) Classify(text string) (classify.ContentType, []string) {
	return classify.Classify(text)
}

func (service *CoreService) GetAllScans(limit int) ([]*database.ScanRecord, error) {
	return service.databaseService.GetAllScans(limit)
}

func (service *CoreService) GetScansByType(qrType string) ([]*database.ScanRecord, error) {
	return service.databaseService.GetScansByType(qrType)
}

func (service *CoreService) GetFavorites() ([]*database.ScanRecord, error) {
	return service.databaseService.GetFavorites()
}

func (service *CoreService) SearchScans(query string) ([]*database.ScanRecord, error) {
	return service.databaseService.SearchScans(query)
}

func (service *CoreService) ToggleFavorite(id string) (bool, error) {
	return service.databaseService.ToggleFavorite(id)
}

func (service *CoreService) UpdateTags(id string, tags []string) error {
	return service.databaseService.UpdateTags(id, tags)
}

func (service *CoreService) UpdateNotes(id string, notes string) error {
	return service.databaseService.UpdateNotes(id, notes)
}

func (service *CoreService) DeleteScan(id string) (bool, error) {
	return service.databaseService.DeleteScan(id)
}

func (service *CoreService) GetDailyStats(limit int) ([]*database.DailyStat, error) {
	return service.databaseService.GetDailyStats(limit)
}

func (service *CoreService) GetOverallStats() (*database.OverallStats, error) {
	return service.databaseService.GetOverallStats()
}

func (service *CoreService) Close() error {
	if service.cache != nil {
		if err := service.cache.Close(); err != nil {
			slog.Warn("failed to close dedup cache", "error", err)
		}
	}
	return service.databaseService.Close()
}
