package api

import (
	"time"

	"github.com/labstack/echo/v4"

	models "PaperPulse/internal/domain/models"
	drepo "PaperPulse/internal/domain/repository"
	"PaperPulse/internal/usecase"
	xhttp "PaperPulse/pkg/http"
	xlogger "PaperPulse/pkg/logger"
)

// CycleEchoHandler exposes the engine's invocation and health endpoints
// over Echo.
type CycleEchoHandler struct {
	logger *xlogger.Logger
	orch   *usecase.Orchestrator
	health *usecase.HealthReporter
	ticks  drepo.TickStore
}

func NewCycleEchoHandler(logger *xlogger.Logger, orch *usecase.Orchestrator, health *usecase.HealthReporter, ticks drepo.TickStore) *CycleEchoHandler {
	return &CycleEchoHandler{logger: logger, orch: orch, health: health, ticks: ticks}
}

func (h *CycleEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/cycle", h.Cycle)
	g.GET("/health", h.Health)
}

// Cycle runs the phases selected by the request action (full cycle by
// default) and returns one result object per executed phase.
func (h *CycleEchoHandler) Cycle(c echo.Context) error {
	req := &models.CycleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resp, err := h.orch.Run(c.Request().Context(), req.Action)
	if err != nil {
		h.logger.Error("cycle failed",
			xlogger.String("action", req.Action),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(err.Error()))
	}
	return xhttp.SuccessResponse(c, resp)
}

// Health returns every recorded vital plus a live tick-store ping, under a
// worst-of overall status.
func (h *CycleEchoHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	vitals, overall, err := h.health.Snapshot(ctx)
	if err != nil {
		h.logger.Error("health snapshot failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(err.Error()))
	}

	store := models.VitalEntry{
		Name:      "tick-store",
		Status:    models.VitalHealthy,
		Value:     1,
		Timestamp: time.Now().UTC(),
	}
	if err := h.ticks.Health(ctx); err != nil {
		store.Status = models.VitalCritical
		store.Value = 0
		store.Metadata = map[string]string{"error": err.Error()}
		overall = models.VitalCritical
	}

	resp := models.HealthResponse{
		Status: overall,
		Vitals: make([]models.VitalEntry, 0, len(vitals)+1),
	}
	for _, v := range vitals {
		resp.Vitals = append(resp.Vitals, models.VitalEntry{
			Name:      v.Name,
			Status:    v.Status,
			Value:     v.Value,
			Metadata:  v.Metadata,
			Timestamp: v.Timestamp,
		})
	}
	resp.Vitals = append(resp.Vitals, store)
	return xhttp.SuccessResponse(c, resp)
}
