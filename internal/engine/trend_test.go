package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTrend(t *testing.T) {
	years := []int{2016, 2017, 2018, 2019}
	tl, err := FitTrend("Completed Suicides", years, vals(1, 3, missing, 7))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, tl.Slope, 1e-6)
	assert.InDelta(t, 1-2*2016.0, tl.Intercept, 1e-6)
	require.Len(t, tl.Fitted, 3, "undefined points are skipped")
	assert.Equal(t, 2019, tl.Fitted[2].Year)
	assert.InDelta(t, 7.0, tl.Fitted[2].Value, 1e-6)
}

func TestFitTrendUndefined(t *testing.T) {
	_, err := FitTrend("x", []int{2020}, vals(4))
	assert.ErrorIs(t, err, ErrUndefined)

	_, err = FitTrend("x", []int{2020, 2020}, vals(4, 5))
	assert.ErrorIs(t, err, ErrUndefined, "a single distinct year has no slope")
}
