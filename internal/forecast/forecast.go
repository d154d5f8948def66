// Package forecast projects budget consumption by extrapolating a least
// squares trend.
package forecast

import (
	"math"
)

// Trend is the direction of a fitted series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Risk is how likely a budget is to miss its target.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

const (
	DefaultPeriods = 3
	DefaultEpsilon = 1e-9

	// Confidence lost per projected period
	confidenceDecay = 5
)

// Options configure a projection.
type Options struct {
	PeriodsToForecast int     `yaml:"periods" toml:"periods"` // Number of projected periods, DefaultPeriods if zero
	Epsilon           float64 `yaml:"epsilon" toml:"epsilon"` // Slopes within ±Epsilon are stable, DefaultEpsilon if zero
}

func (o Options) withDefaults() Options {
	if o.PeriodsToForecast <= 0 {
		o.PeriodsToForecast = DefaultPeriods
	}

	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}

	return o
}

// Line is a fitted linear trend, value = Slope * index + Intercept.
type Line struct {
	Slope     float64 `json:"slope" example:"0.46"`
	Intercept float64 `json:"intercept" example:"32.21"`
	RSquared  float64 `json:"rSquared" example:"0.25"`
}

// At returns the value of the line at index i.
func (l Line) At(i int) float64 {
	return l.Slope*float64(i) + l.Intercept
}

// Point is a projected value.
type Point struct {
	Step       int     `json:"step" example:"1"` // Periods after the last actual value
	Value      float64 `json:"value" example:"34.05"`
	Confidence float64 `json:"confidence" example:"90.2"`
}

// Forecast is the projection of a series.
type Forecast struct {
	CurrentAmount            float64 `json:"currentAmount" example:"34.2"`  // Last actual value
	ForecastAmount           float64 `json:"forecastAmount" example:"35.0"` // Value of the last projected point
	Confidence               float64 `json:"confidence" example:"95.2"`     // Confidence of the fit, 0 to 100
	Trend                    Trend   `json:"trend" example:"increasing"`
	Line                     Line    `json:"line"`
	Points                   []Point `json:"points"`
	BudgetAmount             float64 `json:"budgetAmount,omitempty" example:"45000"`
	ProjectedVariance        float64 `json:"projectedVariance" example:"-1200"`        // Forecast amount minus budget amount
	ProjectedVariancePercent float64 `json:"projectedVariancePercent" example:"-2.67"` // Projected variance in percent of the budget amount
	RiskLevel                Risk    `json:"riskLevel,omitempty" example:"low"`
}

// Fit fits a line through the series by ordinary least squares, with the
// index of each value as x. It reports false for fewer than two values.
func Fit(series []float64) (Line, bool) {
	n := float64(len(series))
	if len(series) < 2 {
		return Line{}, false
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	// The x values are distinct, so the denominator is positive
	denom := n*sumX2 - sumX*sumX
	slope := (n*sumXY - sumX*sumY) / denom
	line := Line{
		Slope:     slope,
		Intercept: (sumY - slope*sumX) / n,
	}

	mean := sumY / n
	var ssRes, ssTot float64
	for i, y := range series {
		ssRes += math.Pow(y-line.At(i), 2)
		ssTot += math.Pow(y-mean, 2)
	}

	if ssTot > 0 {
		line.RSquared = 1 - ssRes/ssTot
	}

	return line, true
}

// confidence returns 100 minus the coefficient of variation of the residuals
// in percent, clamped to [0, 100].
func confidence(series []float64, line Line) float64 {
	var sum, squares float64
	for i, y := range series {
		sum += y
		squares += math.Pow(y-line.At(i), 2)
	}

	mean := sum / float64(len(series))
	if mean == 0 {
		return 0
	}

	stddev := math.Sqrt(squares / float64(len(series)))
	return clamp(100-stddev/math.Abs(mean)*100, 0, 100)
}

func clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

// Project fits the series and projects it into the future. It reports false
// if the series has fewer than two values.
//
// Projected values are never negative.
func Project(series []float64, opts Options) (*Forecast, bool) {
	line, ok := Fit(series)
	if !ok {
		return nil, false
	}

	opts = opts.withDefaults()
	base := confidence(series, line)

	f := &Forecast{
		CurrentAmount: series[len(series)-1],
		Confidence:    base,
		Trend:         trend(line.Slope, opts.Epsilon),
		Line:          line,
		Points:        make([]Point, 0, opts.PeriodsToForecast),
	}

	for step := 1; step <= opts.PeriodsToForecast; step++ {
		f.Points = append(f.Points, Point{
			Step:       step,
			Value:      math.Max(0, line.At(len(series)-1+step)),
			Confidence: math.Max(0, base-float64(confidenceDecay*step)),
		})
	}
	f.ForecastAmount = f.Points[len(f.Points)-1].Value

	return f, true
}

func trend(slope, epsilon float64) Trend {
	switch {
	case slope > epsilon:
		return TrendIncreasing
	case slope < -epsilon:
		return TrendDecreasing
	}
	return TrendStable
}

// RiskLevel classifies a projected variance in percent by its magnitude.
func RiskLevel(projectedVariancePercent float64) Risk {
	v := math.Abs(projectedVariancePercent)

	switch {
	case v < 10:
		return RiskLow
	case v <= 25:
		return RiskMedium
	}
	return RiskHigh
}

// Assess projects the series and compares the forecast with the budget amount.
func Assess(series []float64, budgetAmount float64, opts Options) (*Forecast, bool) {
	f, ok := Project(series, opts)
	if !ok {
		return nil, false
	}

	f.BudgetAmount = budgetAmount
	f.ProjectedVariance = f.ForecastAmount - budgetAmount
	if budgetAmount != 0 {
		f.ProjectedVariancePercent = f.ProjectedVariance / budgetAmount * 100
	}
	f.RiskLevel = RiskLevel(f.ProjectedVariancePercent)

	return f, true
}
