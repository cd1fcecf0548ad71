package dashboard

import "github.com/YoavSilman/Suicides-Dashboard/internal/engine"

// Registry table names.
const (
	TableGender            = "suicides_gender"
	TableAgeGender         = "suicides_age_gender"
	TableAttemptsAgeGender = "attempts_age_gender"
	TableEthnic            = "suicides_ethnic_groups"
	TableAttemptsEthnic    = "attempts_ethnic_groups"
	TableOlim              = "suicides_olim"
	TableAttemptsOlim      = "attempts_olim"
	TableMonthly           = "suicides_month"
	TableAttemptsMonthly   = "attempts_month"
)

const (
	dimGroup     = "group"
	dimEthnicity = "ethnicity"
	groupAll     = "all"
	groupMen     = "men"
)

// AgeGroups is the suicide tables' age category set, youngest first.
var AgeGroups = []string{"<14", "15-17", "18-21", "22-24", "25-44", "45-64", "65-74", "75+"}

// AttemptAgeMapping maps suicide age buckets to attempt age buckets.
// "<14" and "10-14" are the closest match, not the same bucket.
var AttemptAgeMapping = append(
	engine.Mapping{{Left: "<14", Right: "10-14"}},
	engine.IdentityMapping(AgeGroups[1:]...)...,
)

// AttemptOriginMapping maps origin labels to the attempts table columns.
var AttemptOriginMapping = engine.Mapping{
	{Left: "Ethiopia", Right: "ethiopia_since_1980"},
	{Left: "USSR", Right: "ussr_since_1990"},
	{Left: "Others", Right: "other_immigrants"},
}

// Origins is the immigrant country-of-origin category set.
var Origins = AttemptOriginMapping.Left()

// EthnicOrder is the legend order of the ethnic trend.
var EthnicOrder = []string{
	"Jews & Christians - men",
	"Jews & Christians - women",
	"Arabs - men",
	"Arabs - women",
}

// Months are the sub-period columns of the monthly tables.
var Months = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// Measure labels.
const (
	MeasureSuicides  = "Suicides"
	MeasureAttempts  = "Attempts"
	LabelCompleted   = "Completed Suicides"
	LabelAttempts    = "Suicide Attempts"
	LabelMen         = "Men"
	LabelWomen       = "Women"
	ethnicGenderDim  = "ethnicity_gender"
	ethnicTotal      = "total"
	yearlyTotalField = "total"
)

// Measures is the default time-trend measure selection.
var Measures = []string{MeasureSuicides, MeasureAttempts}

// DefaultSources is the manifest used when no YAML manifest is configured.
// Paths are relative to the data directory.
func DefaultSources() []engine.Source {
	return []engine.Source{
		{Name: TableGender, Path: "Suicides per Gender.csv"},
		{Name: TableAgeGender, Path: "Suicides - Age&Gender.csv", Dimensions: []string{dimGroup}},
		{Name: TableAttemptsAgeGender, Path: "Attempts - Age&Gender.csv", Dimensions: []string{dimGroup}},
		{Name: TableEthnic, Path: "Suicides - Ethnic Groups.csv", Dimensions: []string{dimEthnicity, dimGroup}},
		{Name: TableAttemptsEthnic, Path: "Attempts - Ethnic Groups.csv", Dimensions: []string{dimEthnicity, dimGroup}},
		{Name: TableOlim, Path: "Suicides - Olim.csv"},
		{Name: TableAttemptsOlim, Path: "Olim - Attempts.csv", Dimensions: []string{dimGroup}},
		{Name: TableMonthly, Path: "Suicides - Month&Year.csv", LowerColumns: true},
		{Name: TableAttemptsMonthly, Path: "Attempts - Month&Year.csv", LowerColumns: true},
	}
}
