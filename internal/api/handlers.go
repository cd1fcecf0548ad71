package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/YoavSilman/Suicides-Dashboard/internal/engine"
	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// Views is what the handlers render. dashboard.Aggregator implements it.
type Views interface {
	Years(ctx context.Context) ([]int, error)
	Overview(ctx context.Context, sel models.Selection) (*models.OverviewData, error)
	AgeAnalysis(ctx context.Context, sel models.Selection) (*models.AgeAnalysisData, error)
	Demographics(ctx context.Context, sel models.Selection) (*models.DemographicData, error)
	TimeTrends(ctx context.Context, sel models.Selection) (*models.TrendData, error)
}

type Handler struct {
	mu    sync.RWMutex
	views Views
}

// NewHandler accepts nil views; the API answers 503 until SetViews is called.
func NewHandler(views Views) *Handler {
	return &Handler{views: views}
}

// SetViews publishes the loaded views.
func (h *Handler) SetViews(v Views) {
	h.mu.Lock()
	h.views = v
	h.mu.Unlock()
}

func (h *Handler) current() (Views, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.views == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "data is still loading")
	}
	return h.views, nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/years", h.GetYears)
	api.GET("/overview", h.GetOverview)
	api.GET("/age", h.GetAgeAnalysis)
	api.GET("/demographics", h.GetDemographics)
	api.GET("/trends", h.GetTimeTrends)
}

// --- HANDLERS ---

func (h *Handler) Health(c echo.Context) error {
	if _, err := h.current(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetYears(c echo.Context) error {
	v, err := h.current()
	if err != nil {
		return err
	}
	years, err := v.Years(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"years": years})
}

func (h *Handler) GetOverview(c echo.Context) error {
	return serve(h, c, Views.Overview)
}

func (h *Handler) GetAgeAnalysis(c echo.Context) error {
	return serve(h, c, Views.AgeAnalysis)
}

func (h *Handler) GetDemographics(c echo.Context) error {
	return serve(h, c, Views.Demographics)
}

func (h *Handler) GetTimeTrends(c echo.Context) error {
	return serve(h, c, Views.TimeTrends)
}

// serve binds the selection, computes one view and writes it.
func serve[T any](h *Handler, c echo.Context, view func(Views, context.Context, models.Selection) (T, error)) error {
	v, err := h.current()
	if err != nil {
		return err
	}
	sel, err := bindSelection(c, v)
	if err != nil {
		return err
	}
	data, err := view(v, c.Request().Context(), sel)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, data)
}

// bindSelection reads query parameters. A missing start or end defaults to
// the observed year bound, widened to the other bound when that one lies
// outside the observed years. List parameters accept repeats and commas.
func bindSelection(c echo.Context, v Views) (models.Selection, error) {
	var sel models.Selection
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &sel); err != nil {
		return sel, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters").SetInternal(err)
	}
	sel.Categories = splitList(sel.Categories)
	sel.Measures = splitList(sel.Measures)

	if sel.Start == 0 || sel.End == 0 {
		years, err := v.Years(c.Request().Context())
		if err != nil {
			return sel, toHTTPError(err)
		}
		if len(years) > 0 {
			first, last := years[0], years[len(years)-1]
			switch {
			case sel.Start == 0 && sel.End == 0:
				sel.Start, sel.End = first, last
			case sel.Start == 0:
				sel.Start = min(first, sel.End)
			case sel.End == 0:
				sel.End = max(last, sel.Start)
			}
		}
	}
	if err := c.Validate(&sel); err != nil {
		return sel, err
	}
	return sel, nil
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}

// toHTTPError maps pipeline failures to status codes.
func toHTTPError(err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, engine.ErrInvalidRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrSchemaMismatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrSourceLoad):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
