package domain

// CategoryStat is the per-category item count for one user and item kind.
// Stats are derived on demand, never stored.
type CategoryStat struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count"    db:"count"`
}

// CategoryReport is the aggregate returned by the stats and refresh endpoints.
type CategoryReport struct {
	Total         int            `json:"total"`
	CategoryCount int            `json:"categoryCount"`
	Categories    []CategoryStat `json:"categories"`
}

// BuildCategoryReport sums per-category counts into a report.
func BuildCategoryReport(stats []CategoryStat) *CategoryReport {
	total := 0
	for _, s := range stats {
		total += s.Count
	}
	if stats == nil {
		stats = []CategoryStat{}
	}
	return &CategoryReport{
		Total:         total,
		CategoryCount: len(stats),
		Categories:    stats,
	}
}

// CategoryResult is one classifier verdict for a stored item.
type CategoryResult struct {
	ID         int64   `json:"id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// SyncResult reports what a reconciliation pass did. Fetched is the batch
// size handed to the store, Inserted the rows actually added (duplicates
// are absorbed by the conflict clause), Deleted the rows pruned by
// retention.
type SyncResult struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
}

// Skipped is how many fetched items were already stored.
func (r *SyncResult) Skipped() int {
	return r.Fetched - r.Inserted
}
