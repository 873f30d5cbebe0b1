package risk

import (
	"sort"

	"github.com/rawblock/feltledger/pkg/ledger"
)

// Direction classifies the shape of a metric's trend.
type Direction string

const (
	DirectionVolatile      Direction = "VOLATILE"
	DirectionImproving     Direction = "IMPROVING"
	DirectionDeteriorating Direction = "DETERIORATING"
	DirectionStable        Direction = "STABLE"
)

// TrendPoint is one chronological observation of a metric.
type TrendPoint struct {
	Timestamp int64
	Value     int64
}

// Trend is the computed shape of one metric's series: its volatility and
// slope, both scaled to basis points, a derived direction, and whether the
// series is large/clean enough for that direction to be significant.
type Trend struct {
	ID          string
	EntityID    string
	Metric      string
	StdDevBp    int64
	SlopeBp     int64
	Direction   Direction
	Significant bool
	Checksum    string
}

func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

func meanOf(points []TrendPoint) int64 {
	var sum int64
	for _, p := range points {
		sum += p.Value
	}
	return sum / int64(len(points))
}

// linearRegressionSlope returns the least-squares slope of value against
// index (0, 1, 2, ...), as a rational numerator/denominator pair so callers
// can rescale before rounding, avoiding any floating-point arithmetic.
func linearRegressionSlope(points []TrendPoint) (numerator, denominator int64) {
	n := int64(len(points))
	var sumX, sumY, sumXY, sumXX int64
	for i, p := range points {
		x := int64(i)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}
	numerator = n*sumXY - sumX*sumY
	denominator = n*sumXX - sumX*sumX
	return numerator, denominator
}

func directionOf(stdDevBp, slopeBp int64) Direction {
	if stdDevBp > 1500 {
		return DirectionVolatile
	}
	switch {
	case slopeBp > 500:
		return DirectionImproving
	case slopeBp < -500:
		return DirectionDeteriorating
	default:
		return DirectionStable
	}
}

func (t Trend) canonical() map[string]any {
	return map[string]any{
		"entityId": t.EntityID,
		"metric":   t.Metric,
	}
}

// ComputeTrend derives metric's trend for entityID from points. It returns
// ok=false when fewer than 3 points are supplied — the minimum the
// regression and std-dev calculations require to mean anything. points need
// not be pre-sorted; ComputeTrend sorts a copy by timestamp first.
func ComputeTrend(entityID, metric string, points []TrendPoint, nowMillis int64) (trend Trend, ok bool) {
	if len(points) < 3 {
		return Trend{}, false
	}
	sorted := make([]TrendPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	mean := meanOf(sorted)
	meanMagnitude := absInt64(mean)
	if meanMagnitude == 0 {
		meanMagnitude = 1
	}

	var sumSqDev int64
	for _, p := range sorted {
		d := p.Value - mean
		sumSqDev += d * d
	}
	variance := sumSqDev / int64(len(sorted))
	stdDev := isqrt(variance)
	stdDevBp := stdDev * 10000 / meanMagnitude

	numerator, denominator := linearRegressionSlope(sorted)
	firstMagnitude := absInt64(sorted[0].Value)
	if firstMagnitude == 0 {
		firstMagnitude = 1
	}
	var slopeBp int64
	if denominator != 0 {
		slopeBp = numerator * 10000 / (denominator * firstMagnitude)
	}

	direction := directionOf(stdDevBp, slopeBp)
	significant := len(sorted) >= 5 && absInt64(slopeBp) >= 100 && stdDevBp <= 3*absInt64(slopeBp)

	trend = Trend{
		ID:          ledger.NewTrendID(entityID, metric, nowMillis),
		EntityID:    entityID,
		Metric:      metric,
		StdDevBp:    stdDevBp,
		SlopeBp:     slopeBp,
		Direction:   direction,
		Significant: significant,
	}
	trend.Checksum = ledger.Checksum("ta", trend.canonical())
	return trend, true
}

// AggregateDirection derives an overall direction across multiple metrics'
// trends by majority vote among the significant ones, falling back to
// VOLATILE when there is no majority (including when none are significant).
func AggregateDirection(trends []Trend) Direction {
	counts := make(map[Direction]int)
	var significantCount int
	for _, t := range trends {
		if !t.Significant {
			continue
		}
		counts[t.Direction]++
		significantCount++
	}
	if significantCount == 0 {
		return DirectionVolatile
	}
	var best Direction = DirectionVolatile
	var bestCount int
	for d, c := range counts {
		if c > bestCount || (c == bestCount && d < best) {
			best, bestCount = d, c
		}
	}
	if bestCount*2 <= significantCount {
		return DirectionVolatile
	}
	return best
}
