// Package pipeline aggregates deals into pipeline and revenue figures.
package pipeline

import "github.com/wagnerlima/tenant-crm/internal/models"

// Metrics summarizes a set of deals. Open figures only count deals with
// status open; revenue only counts deals with status won.
type Metrics struct {
	TotalValue    float64 `json:"total_value"`
	WeightedValue float64 `json:"weighted_value"`
	OpenCount     int     `json:"open_count"`
	TotalRevenue  float64 `json:"total_revenue"`
	WonCount      int     `json:"won_count"`
}

// StageNumber returns the 1-based position of a stage in the pipeline, or 0
// for an unknown stage.
func StageNumber(stage models.DealStage) int {
	for i, s := range models.DealStages {
		if s == stage {
			return i + 1
		}
	}
	return 0
}

// WeightedValue discounts a deal value by its win probability in percent.
func WeightedValue(value float64, probability int) float64 {
	if value <= 0 || probability <= 0 {
		return 0
	}
	return value * float64(probability) / 100
}

// Compute aggregates the given deals. An empty slice yields all zeros.
func Compute(deals []models.Deal) Metrics {
	var m Metrics
	for _, d := range deals {
		switch d.Status {
		case models.DealOpen:
			m.TotalValue += d.Value
			m.WeightedValue += WeightedValue(d.Value, d.Probability)
			m.OpenCount++
		case models.DealWon:
			m.TotalRevenue += d.Value
			m.WonCount++
		}
	}
	return m
}

// WinRate returns won / (won + lost) as a percentage, or 0 when nothing closed.
func WinRate(won, lost int) float64 {
	if won+lost == 0 {
		return 0
	}
	return float64(won) / float64(won+lost) * 100
}
