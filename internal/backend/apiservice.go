package backend

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/qrscan/internal/backend/database"
	"github.com/jo-hoe/qrscan/internal/core"
)

const defaultListLimit = 50

type APIService struct {
	config      *core.ServiceConfig
	coreService *core.CoreService
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		config:      config,
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/probe", s.probeHandler)

	e.POST("/scans", s.scanHandler)
	e.GET("/scans", s.listScansHandler)
	e.PATCH("/scans/:id/favorite", s.toggleFavoriteHandler)
	e.PUT("/scans/:id/tags", s.updateTagsHandler)
	e.PUT("/scans/:id/notes", s.updateNotesHandler)
	e.DELETE("/scans/:id", s.deleteScanHandler)

	e.POST("/classify", s.classifyHandler)

	e.GET("/stats", s.statsHandler)
	e.GET("/stats/daily", s.dailyStatsHandler)
}

func (s *APIService) probeHandler(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "API Service is running")
}

// scanHandler accepts one or more images as multipart form files under
// "images" and scans them as a batch. The response preserves upload order.
func (s *APIService) scanHandler(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "expected multipart form upload")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no images provided")
	}

	inputs := make([]core.BatchInput, 0, len(files))
	for _, file := range files {
		source, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to open uploaded file")
		}
		data, err := io.ReadAll(source)
		_ = source.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read uploaded file")
		}
		inputs = append(inputs, core.BatchInput{Filename: file.Filename, Data: data})
	}

	outcomes := s.coreService.ScanBatch(ctx.Request().Context(), inputs)
	return ctx.JSON(http.StatusOK, outcomes)
}

func (s *APIService) listScansHandler(ctx echo.Context) error {
	var scans []*database.ScanRecord
	var err error

	switch {
	case ctx.QueryParam("q") != "":
		scans, err = s.coreService.SearchScans(ctx.QueryParam("q"))
	case ctx.QueryParam("type") != "":
		scans, err = s.coreService.GetScansByType(ctx.QueryParam("type"))
	case ctx.QueryParam("favorites") == "true":
		scans, err = s.coreService.GetFavorites()
	default:
		limit := defaultListLimit
		if raw := ctx.QueryParam("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
			}
		}
		scans, err = s.coreService.GetAllScans(limit)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if scans == nil {
		scans = []*database.ScanRecord{}
	}
	return ctx.JSON(http.StatusOK, scans)
}

func (s *APIService) toggleFavoriteHandler(ctx echo.Context) error {
	favorite, err := s.coreService.ToggleFavorite(ctx.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"is_favorite": favorite})
}

type updateTagsRequest struct {
	Tags []string `json:"tags" validate:"required"`
}

func (s *APIService) updateTagsHandler(ctx echo.Context) error {
	var request updateTagsRequest
	if err := ctx.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&request); err != nil {
		return err
	}

	if err := s.coreService.UpdateTags(ctx.Param("id"), request.Tags); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.NoContent(http.StatusNoContent)
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (s *APIService) updateNotesHandler(ctx echo.Context) error {
	var request updateNotesRequest
	if err := ctx.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.coreService.UpdateNotes(ctx.Param("id"), request.Notes); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *APIService) deleteScanHandler(ctx echo.Context) error {
	deleted, err := s.coreService.DeleteScan(ctx.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "scan not found")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type classifyRequest struct {
	Text string `json:"text" validate:"required"`
}

type classifyResponse struct {
	QRType string   `json:"qr_type"`
	Tags   []string `json:"tags,omitempty"`
}

func (s *APIService) classifyHandler(ctx echo.Context) error {
	var request classifyRequest
	if err := ctx.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&request); err != nil {
		return err
	}

	qrType, tags := s.coreService.Classify(request.Text)
	return ctx.JSON(http.StatusOK, classifyResponse{QRType: string(qrType), Tags: tags})
}

func (s *APIService) statsHandler(ctx echo.Context) error {
	stats, err := s.coreService.GetOverallStats()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (s *APIService) dailyStatsHandler(ctx echo.Context) error {
	limit := defaultListLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	stats, err := s.coreService.GetDailyStats(limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if stats == nil {
		stats = []*database.DailyStat{}
	}
	return ctx.JSON(http.StatusOK, stats)
}
