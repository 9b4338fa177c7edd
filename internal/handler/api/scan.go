package api

import (
	"sync"

	"KabuScan/internal/domain/models"
	"KabuScan/internal/service/screen"
	"KabuScan/internal/service/universe"
	"KabuScan/internal/usecase"
	xhttp "KabuScan/pkg/http"
	xlogger "KabuScan/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScanHandler exposes the screener over HTTP.
type ScanHandler struct {
	logger  *xlogger.Logger
	scanner *usecase.Scanner
	market  *usecase.MarketSummarizer

	// deployment-level fetch defaults layered under every preset
	base usecase.ScanConfig

	mu       sync.RWMutex
	universe []models.Instrument
	segments []string
}

func NewScanHandler(logger *xlogger.Logger, scanner *usecase.Scanner, market *usecase.MarketSummarizer, segments []string, base usecase.ScanConfig) *ScanHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ScanHandler{
		logger:   logger,
		scanner:  scanner,
		market:   market,
		segments: segments,
		base:     base,
	}
}

// SetUniverse replaces the active instrument universe.
func (h *ScanHandler) SetUniverse(instruments []models.Instrument) {
	h.mu.Lock()
	h.universe = instruments
	h.mu.Unlock()
}

// Universe returns the active universe.
func (h *ScanHandler) Universe() []models.Instrument {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.universe
}

func (h *ScanHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/scan", h.Scan)
	g.GET("/market", h.Market)
	g.POST("/universe", h.UploadUniverse)
	g.GET("/universe", h.GetUniverse)
}

// Scan runs one screening pass over the active universe.
func (h *ScanHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cfg, ok := usecase.Preset(req.Preset)
	if !ok {
		return xhttp.BadRequestResponse(c, "unknown preset: "+req.Preset)
	}
	h.applyBase(&cfg)
	applyOverrides(&cfg, req)

	instruments := h.Universe()
	if len(instruments) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("universe is empty; upload one via POST /api/universe"))
	}

	report, err := h.scanner.Run(c.Request().Context(), instruments, cfg)
	if err != nil {
		h.logger.Error("scan usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, report)
}

// Market returns the benchmark market condition summary. A summary that
// cannot be computed is returned with available=false, not an error status.
func (h *ScanHandler) Market(c echo.Context) error {
	cond := h.market.Condition(c.Request().Context())
	return xhttp.SuccessResponse(c, cond)
}

// UploadUniverse replaces the universe from an uploaded CSV master list.
func (h *ScanHandler) UploadUniverse(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("multipart field \"file\" is required"))
	}
	f, err := fh.Open()
	if err != nil {
		h.logger.Error("universe upload open failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not read upload"))
	}
	defer f.Close()

	instruments, err := universe.ParseCSV(f)
	if err != nil {
		// missing required columns is fatal for the upload and names the fields
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}
	filtered := universe.Filter(instruments, h.segments)
	h.SetUniverse(filtered)

	h.logger.Info("universe replaced",
		xlogger.Int("rows", len(instruments)),
		xlogger.Int("kept", len(filtered)),
	)
	return xhttp.SuccessResponse(c, models.UniverseResponse{Count: len(filtered)})
}

// GetUniverse lists the active universe.
func (h *ScanHandler) GetUniverse(c echo.Context) error {
	instruments := h.Universe()
	return xhttp.SuccessResponse(c, models.UniverseResponse{
		Count:       len(instruments),
		Instruments: instruments,
	})
}

// applyBase fills fetch parameters the preset left unset from the
// deployment configuration.
func (h *ScanHandler) applyBase(cfg *usecase.ScanConfig) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = h.base.BatchSize
	}
	if cfg.WindowDays == 0 {
		cfg.WindowDays = h.base.WindowDays
	}
	if cfg.ChunkDelay == 0 {
		cfg.ChunkDelay = h.base.ChunkDelay
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = h.base.CacheTTL
	}
}

// applyOverrides layers explicit request fields over the preset.
func applyOverrides(cfg *usecase.ScanConfig, req *models.ScanRequest) {
	if req.Sort != "" {
		cfg.Sort = screen.SortKey(req.Sort)
	}
	if req.TopK > 0 {
		cfg.TopK = req.TopK
	}
	if req.MinTradingValueOku > 0 {
		cfg.Thresholds.MinTradingValueOku = req.MinTradingValueOku
	}
	if req.MinRvolShort > 0 {
		cfg.Thresholds.MinRvolShort = req.MinRvolShort
	}
	if req.MinRvolLong > 0 {
		cfg.Thresholds.MinRvolLong = req.MinRvolLong
	}
	if req.MinCloseStrength > 0 {
		cfg.Thresholds.MinCloseStrength = req.MinCloseStrength
	}
	if req.RequirePositiveGap != nil {
		cfg.Thresholds.RequirePositiveGap = *req.RequirePositiveGap
	}
	if req.RequireTrendOrBreakout != nil {
		cfg.Thresholds.RequireTrendOrBreakout = *req.RequireTrendOrBreakout
	}
	if req.WindowDays > 0 {
		cfg.WindowDays = req.WindowDays
	}
	if req.BatchSize > 0 {
		cfg.BatchSize = req.BatchSize
	}
}
