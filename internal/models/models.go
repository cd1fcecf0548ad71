package models

import (
	"math"
	"strconv"
)

// Value is a nullable measurement. An invalid Value means "no data" and is
// distinct from a real zero.
type Value struct {
	Float float64
	Valid bool
}

// Some wraps f as a valid Value. NaN and Inf are never valid.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// None is the undefined Value.
func None() Value { return Value{} }

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.Float, 'f', -1, 64), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value{}
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// TidyRow is one long-form observation.
type TidyRow struct {
	Year     int      `json:"year"`
	IDs      []string `json:"ids,omitempty"`
	Category string   `json:"category"`
	Value    Value    `json:"value"`
}

// LongSeries is a tidy table. IDNames names the entries of TidyRow.IDs and
// Categories carries the declared legend/stacking order.
type LongSeries struct {
	IDNames    []string  `json:"id_names,omitempty"`
	Categories []string  `json:"categories"`
	Rows       []TidyRow `json:"rows"`
	NoData     bool      `json:"no_data"`
}

type WideRow struct {
	Year   int      `json:"year"`
	Labels []string `json:"labels,omitempty"`
	Values []Value  `json:"values"`
}

// WideSeries is one row per year (and dimension labels) with one value per column.
type WideSeries struct {
	Dimensions []string  `json:"dimensions,omitempty"`
	Columns    []string  `json:"columns"`
	Rows       []WideRow `json:"rows"`
	NoData     bool      `json:"no_data"`
}

type CategoryValue struct {
	Category string `json:"category"`
	Value    Value  `json:"value"`
}

type KPI struct {
	Measure  string `json:"measure"`
	Year     int    `json:"year"`
	Value    Value  `json:"value"`
	Delta    Value  `json:"delta"`
	PrevYear int    `json:"previous_year"`
}

type TrendLine struct {
	Measure   string  `json:"measure"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	Fitted    []Point `json:"fitted"`
}

type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

type OverviewData struct {
	StartYear int        `json:"start_year"`
	EndYear   int        `json:"end_year"`
	KPIs      []KPI      `json:"kpis"`
	Rates     WideSeries `json:"rates"`
	Counts    LongSeries `json:"counts"`
	NoData    bool       `json:"no_data"`
}

type AgeAnalysisData struct {
	Averages   []CategoryValue `json:"averages"`
	Default    string          `json:"default_group,omitempty"`
	Selected   []string        `json:"selected_groups"`
	Series     WideSeries      `json:"series"`
	Comparison LongSeries      `json:"completed_vs_attempted"`
	Gender     LongSeries      `json:"by_gender"`
	NoData     bool            `json:"no_data"`
}

type DemographicData struct {
	DataType        string     `json:"data_type"`
	LatestYear      int        `json:"latest_year,omitempty"`
	AgeDistribution WideSeries `json:"age_distribution"`
	Ethnic          LongSeries `json:"ethnic"`
	OriginShares    LongSeries `json:"origin_shares"`
	NoData          bool       `json:"no_data"`
}

type TrendData struct {
	Series LongSeries  `json:"series"`
	Trends []TrendLine `json:"trends,omitempty"`
	NoData bool        `json:"no_data"`
}

// Data type toggle values.
const (
	Completed = "completed"
	Attempted = "attempted"
)

// Selection is the whole user control surface.
type Selection struct {
	Start      int      `query:"start" json:"start" validate:"required"`
	End        int      `query:"end" json:"end" validate:"required,gtefield=Start"`
	Categories []string `query:"groups" json:"groups"`
	DataType   string   `query:"type" json:"type" validate:"omitempty,oneof=completed attempted"`
	Measures   []string `query:"measures" json:"measures"`
	Trendline  bool     `query:"trendline" json:"trendline"`
}
