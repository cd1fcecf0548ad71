package engine

import (
	"math"

	"github.com/YoavSilman/Suicides-Dashboard/internal/models"
)

var missing = math.NaN()

// vals builds a column; NaN marks an undefined cell.
func vals(fs ...float64) []models.Value {
	out := make([]models.Value, len(fs))
	for i, f := range fs {
		out[i] = models.Some(f)
	}
	return out
}

func col(name string, fs ...float64) Column {
	return Column{Name: name, Values: vals(fs...)}
}

func dim(name string, labels ...string) Dimension {
	return Dimension{Name: name, Labels: labels}
}

// floats flattens values for comparison; undefined becomes NaN.
func floats(vs []models.Value) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		if v.Valid {
			out[i] = v.Float
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

func validity(vs []models.Value) []bool {
	out := make([]bool, len(vs))
	for i, v := range vs {
		out[i] = v.Valid
	}
	return out
}
