package dashboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/YoavSilman/Suicides-Dashboard/internal/engine"
	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// Tables is the read side of the registry the views need.
type Tables interface {
	Table(ctx context.Context, name string) (*engine.Table, error)
}

// Aggregator recomputes each dashboard view from the raw tables on every
// call. It holds no derived state.
type Aggregator struct {
	tables Tables
	logger *slog.Logger
}

func NewAggregator(tables Tables, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{tables: tables, logger: logger.With(slog.String("component", "aggregator"))}
}

// Years returns the observed years of the gender table (the slider domain).
func (a *Aggregator) Years(ctx context.Context) ([]int, error) {
	t, err := a.tables.Table(ctx, TableGender)
	if err != nil {
		return nil, err
	}
	return t.ObservedYears(), nil
}

// --- OVERVIEW ---

var (
	overviewKPIs  = []string{"total_num", "men_num", "women_num", "total_rate"}
	overviewRates = []string{"men_rate", "women_rate"}
	overviewCount = []string{"men_num", "women_num"}
)

func (a *Aggregator) Overview(ctx context.Context, sel models.Selection) (*models.OverviewData, error) {
	t, err := a.tables.Table(ctx, TableGender)
	if err != nil {
		return nil, err
	}
	w, err := engine.FilterYears(t, sel.Start, sel.End)
	if err != nil {
		return nil, err
	}
	if err := engine.RequireColumns(w, slices.Concat(overviewKPIs, overviewRates)...); err != nil {
		return nil, err
	}

	data := &models.OverviewData{StartYear: sel.Start, EndYear: sel.End}
	if err := w.CheckNotEmpty(); err != nil {
		a.logger.Debug("overview window empty", slog.Int("start", sel.Start), slog.Int("end", sel.End))
		data.NoData = true
	} else {
		for _, m := range overviewKPIs {
			kpi, err := engine.Latest(w, m)
			if err != nil {
				return nil, err
			}
			data.KPIs = append(data.KPIs, kpi)
		}
	}

	rates, err := w.SelectColumns(overviewRates...)
	if err != nil {
		return nil, err
	}
	data.Rates = rates.Wide()
	if data.Counts, err = engine.Melt(w, overviewCount, nil); err != nil {
		return nil, err
	}
	return data, nil
}

// --- AGE ANALYSIS ---

func (a *Aggregator) AgeAnalysis(ctx context.Context, sel models.Selection) (*models.AgeAnalysisData, error) {
	t, err := a.tables.Table(ctx, TableAgeGender)
	if err != nil {
		return nil, err
	}
	w, err := engine.FilterYears(t, sel.Start, sel.End)
	if err != nil {
		return nil, err
	}
	all, err := engine.SelectDimension(w, dimGroup, groupAll)
	if err != nil {
		return nil, err
	}
	if err := engine.RequireColumns(all, AgeGroups...); err != nil {
		return nil, err
	}
	for _, g := range sel.Categories {
		if !slices.Contains(AgeGroups, g) {
			return nil, fmt.Errorf("%w: unknown age group %q", engine.ErrSchemaMismatch, g)
		}
	}

	data := &models.AgeAnalysisData{NoData: all.Empty()}

	avgs, err := engine.PeriodAverages(all, AgeGroups)
	if err != nil {
		return nil, err
	}
	// Ascending for the horizontal bar chart; undefined averages first.
	slices.SortStableFunc(avgs, func(x, y models.CategoryValue) int {
		if x.Value.Valid != y.Value.Valid {
			if x.Value.Valid {
				return 1
			}
			return -1
		}
		return cmp.Compare(x.Value.Float, y.Value.Float)
	})
	data.Averages = avgs

	best, ok, err := engine.ArgMaxAverage(all, AgeGroups)
	if err != nil {
		return nil, err
	}
	if ok {
		data.Default = best
	}

	// Keep the declared category order regardless of the order picked.
	selected := make([]string, 0, len(AgeGroups))
	for _, g := range AgeGroups {
		if slices.Contains(sel.Categories, g) || (len(sel.Categories) == 0 && g == data.Default) {
			selected = append(selected, g)
		}
	}
	data.Selected = selected

	series, err := all.SelectColumns(selected...)
	if err != nil {
		return nil, err
	}
	data.Series = series.Wide()

	attempts, err := a.tables.Table(ctx, TableAttemptsAgeGender)
	if err != nil {
		return nil, err
	}
	attAll, err := engine.Window(attempts, sel.Start, sel.End, dimGroup, groupAll)
	if err != nil {
		return nil, err
	}
	ageMap := AttemptAgeMapping.Restrict(selected)
	sAligned, aAligned, err := engine.Align(all, attAll, ageMap, dimGroup)
	if err != nil {
		return nil, err
	}
	if data.Comparison, err = engine.CompareAverages([]engine.Series{
		{Label: LabelCompleted, Table: sAligned},
		{Label: LabelAttempts, Table: aAligned},
	}, ageMap.Left()); err != nil {
		return nil, err
	}

	men, err := engine.SelectDimension(w, dimGroup, groupMen)
	if err != nil {
		return nil, err
	}
	women, err := engine.SubtractGroups(w, dimGroup, groupAll, groupMen, "women", selected)
	if err != nil {
		return nil, err
	}
	if data.Gender, err = engine.CompareAverages([]engine.Series{
		{Label: LabelMen, Table: men},
		{Label: LabelWomen, Table: women},
	}, selected); err != nil {
		return nil, err
	}
	return data, nil
}

// --- DEMOGRAPHICS ---

func (a *Aggregator) Demographics(ctx context.Context, sel models.Selection) (*models.DemographicData, error) {
	dataType := sel.DataType
	if dataType == "" {
		dataType = models.Completed
	}
	data := &models.DemographicData{DataType: dataType}

	ag, err := a.tables.Table(ctx, TableAgeGender)
	if err != nil {
		return nil, err
	}
	agAll, err := engine.Window(ag, sel.Start, sel.End, dimGroup, groupAll)
	if err != nil {
		return nil, err
	}
	latest := agAll
	if years := agAll.ObservedYears(); len(years) > 0 {
		data.LatestYear = years[len(years)-1]
		if latest, err = engine.FilterYears(agAll, data.LatestYear, data.LatestYear); err != nil {
			return nil, err
		}
	}
	dist, err := latest.SelectColumns(AgeGroups...)
	if err != nil {
		return nil, err
	}
	data.AgeDistribution = dist.Wide()

	if data.Ethnic, err = a.ethnicTrend(ctx, sel, dataType); err != nil {
		return nil, err
	}
	if data.OriginShares, err = a.originShares(ctx, sel); err != nil {
		return nil, err
	}
	data.NoData = data.AgeDistribution.NoData && data.Ethnic.NoData && data.OriginShares.NoData
	return data, nil
}

func (a *Aggregator) ethnicTrend(ctx context.Context, sel models.Selection, dataType string) (models.LongSeries, error) {
	name := TableEthnic
	if dataType == models.Attempted {
		name = TableAttemptsEthnic
	}
	t, err := a.tables.Table(ctx, name)
	if err != nil {
		return models.LongSeries{}, err
	}
	w, err := engine.FilterYears(t, sel.Start, sel.End)
	if err != nil {
		return models.LongSeries{}, err
	}
	combined, err := engine.CombineLabels(w, ethnicGenderDim, " - ", dimEthnicity, dimGroup)
	if err != nil {
		return models.LongSeries{}, err
	}
	wide, err := engine.Pivot(combined, ethnicGenderDim, ethnicTotal, EthnicOrder)
	if err != nil {
		return models.LongSeries{}, err
	}
	return engine.Melt(wide, wide.ColumnNames(), nil)
}

func (a *Aggregator) originShares(ctx context.Context, sel models.Selection) (models.LongSeries, error) {
	so, err := a.tables.Table(ctx, TableOlim)
	if err != nil {
		return models.LongSeries{}, err
	}
	ao, err := a.tables.Table(ctx, TableAttemptsOlim)
	if err != nil {
		return models.LongSeries{}, err
	}
	sw, err := engine.FilterYears(so, sel.Start, sel.End)
	if err != nil {
		return models.LongSeries{}, err
	}
	aw, err := engine.Window(ao, sel.Start, sel.End, dimGroup, groupAll)
	if err != nil {
		return models.LongSeries{}, err
	}
	sAligned, aAligned, err := engine.Align(sw, aw, AttemptOriginMapping)
	if err != nil {
		return models.LongSeries{}, err
	}
	sShares, err := engine.Shares(sAligned, Origins)
	if err != nil {
		return models.LongSeries{}, err
	}
	aShares, err := engine.Shares(aAligned, Origins)
	if err != nil {
		return models.LongSeries{}, err
	}
	stacked, err := engine.Stack([]engine.Series{
		{Label: LabelCompleted, Table: sShares},
		{Label: LabelAttempts, Table: aShares},
	}, Origins)
	if err != nil {
		return models.LongSeries{}, err
	}
	return engine.Melt(stacked, Origins, []string{engine.SourceDimension})
}

// --- TIME TRENDS ---

func (a *Aggregator) TimeTrends(ctx context.Context, sel models.Selection) (*models.TrendData, error) {
	measures := sel.Measures
	if len(measures) == 0 {
		measures = Measures
	}
	for _, m := range measures {
		if !slices.Contains(Measures, m) {
			return nil, fmt.Errorf("%w: unknown measure %q", engine.ErrSchemaMismatch, m)
		}
	}

	var series []engine.Series
	for _, src := range []struct{ table, label string }{
		{TableMonthly, MeasureSuicides},
		{TableAttemptsMonthly, MeasureAttempts},
	} {
		t, err := a.tables.Table(ctx, src.table)
		if err != nil {
			return nil, err
		}
		w, err := engine.FilterYears(engine.CanonicalizeColumns(t, Months), sel.Start, sel.End)
		if err != nil {
			return nil, err
		}
		total, err := engine.YearlyTotal(w, Months, nil, yearlyTotalField)
		if err != nil {
			return nil, err
		}
		series = append(series, engine.Series{Label: src.label, Table: total})
	}

	joined, err := engine.OuterJoin(series, yearlyTotalField)
	if err != nil {
		return nil, err
	}
	long, err := engine.Melt(joined, Measures, nil)
	if err != nil {
		return nil, err
	}
	data := &models.TrendData{Series: engine.SelectCategories(long, measures)}
	data.NoData = data.Series.NoData

	if sel.Trendline && !data.NoData {
		for _, m := range data.Series.Categories {
			vals, err := joined.Column(m)
			if err != nil {
				return nil, err
			}
			tl, err := engine.FitTrend(m, joined.Years, vals)
			if errors.Is(err, engine.ErrUndefined) {
				a.logger.Debug("trend skipped", slog.String("measure", m), slog.Any("error", err))
				continue
			}
			if err != nil {
				return nil, err
			}
			data.Trends = append(data.Trends, tl)
		}
	}
	return data, nil
}
