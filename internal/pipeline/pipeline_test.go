package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wagnerlima/tenant-crm/internal/models"
)

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, Metrics{}, Compute(nil))
	assert.Equal(t, Metrics{}, Compute([]models.Deal{}))
}

func TestComputeOpenAndWon(t *testing.T) {
	got := Compute([]models.Deal{
		{Value: 100, Status: models.DealOpen, Probability: 50},
		{Value: 200, Status: models.DealWon, Probability: 100},
	})
	assert.Equal(t, Metrics{
		TotalValue:    100,
		WeightedValue: 50,
		OpenCount:     1,
		TotalRevenue:  200,
		WonCount:      1,
	}, got)
}

func TestComputeIgnoresLostAndZeroFields(t *testing.T) {
	got := Compute([]models.Deal{
		{Value: 500, Status: models.DealLost, Probability: 90},
		{Status: models.DealOpen},
		{Value: 80, Status: models.DealOpen},
	})
	assert.Equal(t, 80.0, got.TotalValue)
	assert.Equal(t, 0.0, got.WeightedValue)
	assert.Equal(t, 2, got.OpenCount)
	assert.Equal(t, 0, got.WonCount)
	assert.Equal(t, 0.0, got.TotalRevenue)
}

func TestStageNumber(t *testing.T) {
	want := map[models.DealStage]int{
		models.StageQualification: 1,
		models.StageNeedsAnalysis: 2,
		models.StageProposal:      3,
		models.StageNegotiation:   4,
		models.StageClosedWon:     5,
		models.StageClosedLost:    6,
		"unknown":                 0,
	}
	for stage, n := range want {
		assert.Equal(t, n, StageNumber(stage), "stage %s", stage)
	}
}

func TestWeightedValue(t *testing.T) {
	assert.Equal(t, 250.0, WeightedValue(1000, 25))
	assert.Equal(t, 0.0, WeightedValue(1000, 0))
	assert.Equal(t, 0.0, WeightedValue(0, 80))
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(0, 0))
	assert.Equal(t, 75.0, WinRate(3, 1))
	assert.Equal(t, 100.0, WinRate(2, 0))
}
