package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCategoryReport(t *testing.T) {
	tests := []struct {
		name         string
		stats        []CategoryStat
		wantTotal    int
		wantCatCount int
	}{
		{
			name:         "no stats",
			stats:        nil,
			wantTotal:    0,
			wantCatCount: 0,
		},
		{
			name: "sums counts across categories",
			stats: []CategoryStat{
				{Category: "work", Count: 12},
				{Category: "spam", Count: 3},
				{Category: "other", Count: 1},
			},
			wantTotal:    16,
			wantCatCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := BuildCategoryReport(tt.stats)

			assert.Equal(t, tt.wantTotal, report.Total)
			assert.Equal(t, tt.wantCatCount, report.CategoryCount)
			assert.NotNil(t, report.Categories)
		})
	}
}

func TestSyncResultSkipped(t *testing.T) {
	r := SyncResult{Fetched: 140, Inserted: 110, Deleted: 5}
	assert.Equal(t, 30, r.Skipped())

	empty := SyncResult{}
	assert.Zero(t, empty.Skipped())
}
