package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoavSilman/Suicides-Dashboard/internal/config"
	"github.com/YoavSilman/Suicides-Dashboard/internal/engine"
	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// fakeViews records the last selection and returns canned data.
type fakeViews struct {
	years []int
	err   error
	last  models.Selection
}

func (f *fakeViews) Years(context.Context) ([]int, error) { return f.years, nil }

func (f *fakeViews) Overview(_ context.Context, sel models.Selection) (*models.OverviewData, error) {
	f.last = sel
	if f.err != nil {
		return nil, f.err
	}
	return &models.OverviewData{
		StartYear: sel.Start,
		EndYear:   sel.End,
		KPIs: []models.KPI{{
			Measure: "total_num", Year: sel.End, Value: models.Some(395), Delta: models.None(), PrevYear: sel.End - 1,
		}},
	}, nil
}

func (f *fakeViews) AgeAnalysis(_ context.Context, sel models.Selection) (*models.AgeAnalysisData, error) {
	f.last = sel
	return &models.AgeAnalysisData{Selected: sel.Categories}, f.err
}

func (f *fakeViews) Demographics(_ context.Context, sel models.Selection) (*models.DemographicData, error) {
	f.last = sel
	return &models.DemographicData{DataType: sel.DataType}, f.err
}

func (f *fakeViews) TimeTrends(_ context.Context, sel models.Selection) (*models.TrendData, error) {
	f.last = sel
	return &models.TrendData{}, f.err
}

func newTestServer(views Views) (*echo.Echo, *Handler) {
	h := NewHandler(views)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewServer(config.ServerConfig{AllowedOrigins: []string{"*"}}, h, NewMetrics(), logger)
	return e, h
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServiceUnavailableWhileLoading(t *testing.T) {
	e, h := newTestServer(nil)

	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/overview").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/healthz").Code)

	h.SetViews(&fakeViews{years: []int{2018, 2020}})
	assert.Equal(t, http.StatusOK, get(e, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(e, "/api/overview").Code)
}

func TestGetYears(t *testing.T) {
	e, _ := newTestServer(&fakeViews{years: []int{2018, 2019, 2020}})

	rec := get(e, "/api/years")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Years []int `json:"years"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []int{2018, 2019, 2020}, body.Years)
}

func TestOverviewDefaultsAndNulls(t *testing.T) {
	views := &fakeViews{years: []int{2010, 2011, 2020}}
	e, _ := newTestServer(views)

	rec := get(e, "/api/overview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2010, views.last.Start, "start defaults to the first observed year")
	assert.Equal(t, 2020, views.last.End)

	var body models.OverviewData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.KPIs, 1)
	assert.Equal(t, models.Some(395), body.KPIs[0].Value)
	assert.False(t, body.KPIs[0].Delta.Valid)
	assert.Contains(t, rec.Body.String(), `"delta":null`, "undefined is null, never zero")
}

func TestSelectionBinding(t *testing.T) {
	views := &fakeViews{years: []int{2010, 2020}}
	e, _ := newTestServer(views)

	rec := get(e, "/api/age?start=2012&end=2015&groups=25-44,75%2B&groups=25-44")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2012, views.last.Start)
	assert.Equal(t, 2015, views.last.End)
	assert.Equal(t, []string{"25-44", "75+"}, views.last.Categories, "comma lists and repeats merge")

	rec = get(e, "/api/trends?measures=Suicides&trendline=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Suicides"}, views.last.Measures)
	assert.True(t, views.last.Trendline)

	rec = get(e, "/api/demographics?type=attempted")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Attempted, views.last.DataType)
}

func TestOneSidedWindowOutsideData(t *testing.T) {
	views := &fakeViews{years: []int{2010, 2020}}
	e, _ := newTestServer(views)

	rec := get(e, "/api/overview?start=2030")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2030, views.last.Start)
	assert.Equal(t, 2030, views.last.End, "end widens to start past the last year")

	rec = get(e, "/api/overview?end=1990")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1990, views.last.Start, "start narrows to end before the first year")
	assert.Equal(t, 1990, views.last.End)

	rec = get(e, "/api/overview?start=2015")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2015, views.last.Start)
	assert.Equal(t, 2020, views.last.End)
}

func TestNewServerNilLogger(t *testing.T) {
	h := NewHandler(&fakeViews{years: []int{2010, 2020}})
	var e *echo.Echo
	require.NotPanics(t, func() {
		e = NewServer(config.ServerConfig{AllowedOrigins: []string{"*"}}, h, nil, nil)
	})
	assert.Equal(t, http.StatusOK, get(e, "/api/years").Code)
}

func TestBadRequests(t *testing.T) {
	e, _ := newTestServer(&fakeViews{years: []int{2010, 2020}})

	tests := []struct {
		name   string
		target string
	}{
		{"start after end", "/api/overview?start=2020&end=2015"},
		{"non-numeric year", "/api/overview?start=abc"},
		{"unknown data type", "/api/demographics?type=both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, get(e, tt.target).Code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: no 75+ column", engine.ErrSchemaMismatch), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: 2020 > 2019", engine.ErrInvalidRange), http.StatusBadRequest},
		{fmt.Errorf("%w: missing file", engine.ErrSourceLoad), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e, _ := newTestServer(&fakeViews{years: []int{2010, 2020}, err: tt.err})
			assert.Equal(t, tt.code, get(e, "/api/overview").Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e, _ := newTestServer(&fakeViews{years: []int{2010, 2020}})
	get(e, "/api/overview")

	rec := get(e, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dashboard_requests_total{code="200",route="/api/overview"} 1`)
}
