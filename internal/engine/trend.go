package engine

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

// FitTrend fits value = intercept + slope*year by ordinary least squares over
// the valid points. Fewer than two valid points (or a single distinct year)
// is ErrUndefined.
func FitTrend(measure string, years []int, values []models.Value) (models.TrendLine, error) {
	var xs, ys []float64
	for i, v := range values {
		if i < len(years) && v.Valid {
			xs = append(xs, float64(years[i]))
			ys = append(ys, v.Float)
		}
	}
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 {
		return models.TrendLine{}, fmt.Errorf("%w: %s needs two distinct years", ErrUndefined, measure)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	tl := models.TrendLine{Measure: measure, Intercept: alpha, Slope: beta}
	for _, x := range xs {
		tl.Fitted = append(tl.Fitted, models.Point{Year: int(x), Value: alpha + beta*x})
	}
	return tl, nil
}
