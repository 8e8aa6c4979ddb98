package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"callpulse/internal/dataprocessing"
	"callpulse/pkg/contracts/domain"
)

// Forecaster predicts the next month's call volume from the monthly
// series. The primary method fits an ordinary-least-squares line over
// (month ordinal, count) and reports a 95% band from the residual
// standard deviation; the fallback extrapolates the last observed delta
// without a band. Fewer than two points yields no prediction at all.
type Forecaster struct {
	horizon *dataprocessing.Horizon

	// UseRegression selects the primary OLS method. When false the
	// deterministic last-delta fallback is used even with enough points.
	UseRegression bool
}

// NewForecaster creates a Forecaster with regression enabled.
func NewForecaster(horizon *dataprocessing.Horizon) *Forecaster {
	return &Forecaster{horizon: horizon, UseRegression: true}
}

// Forecast predicts the next period from an ordered monthly series. The
// series must be in canonical month order with zero-observation months
// dropped; that shape is exactly what Aggregator.MonthlySeries returns.
func (f *Forecaster) Forecast(series []domain.MonthlyCount) domain.Forecast {
	out := domain.Forecast{Method: domain.ForecastMethodNone}
	if len(series) == 0 {
		return out
	}

	last := series[len(series)-1]
	if next, ok := dataprocessing.NextMonth(last.Month); ok {
		out.NextMonth = next
	}

	if len(series) < 2 {
		return out
	}

	if f.UseRegression {
		f.regress(series, &out)
		return out
	}

	// Last-delta extrapolation, no confidence band.
	previous := series[len(series)-2]
	predicted := last.Count + (last.Count - previous.Count)
	out.Predicted = &predicted
	out.Method = domain.ForecastMethodLastDelta
	return out
}

func (f *Forecaster) regress(series []domain.MonthlyCount, out *domain.Forecast) {
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, point := range series {
		xs[i] = float64(f.horizon.Index(point.Month))
		ys[i] = float64(point.Count)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	nextX := xs[len(xs)-1] + 1
	predicted := alpha + beta*nextX

	// Residual standard deviation of the fit (population form).
	var sumSq float64
	for i := range xs {
		resid := ys[i] - (alpha + beta*xs[i])
		sumSq += resid * resid
	}
	sigma := 0.0
	if len(xs) > 1 {
		sigma = math.Sqrt(sumSq / float64(len(xs)))
	}

	lower := math.Max(0, predicted-1.96*sigma)
	upper := predicted + 1.96*sigma

	p := int(math.Round(predicted))
	lo := int(math.Round(lower))
	hi := int(math.Round(upper))
	out.Predicted = &p
	out.Lower = &lo
	out.Upper = &hi
	out.Method = domain.ForecastMethodRegression
}
