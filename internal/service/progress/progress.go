// Package progress derives completion ratios from region snapshots. All
// computations are pure and read-only; grouping always uses the stable state
// code a region was initialized with, never its display name.
package progress

// RegionSnapshot is one region's counters at a point in time.
type RegionSnapshot struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StateCode    string `json:"state_code"`
	VisitedCells int    `json:"visited_cells"`
	TotalCells   int    `json:"total_cells"`
}

// Ratio returns visited/total for the region, or 0 for an empty grid.
func (r RegionSnapshot) Ratio() float64 {
	if r.TotalCells == 0 {
		return 0
	}
	return float64(r.VisitedCells) / float64(r.TotalCells)
}

// Totals is an aggregated visited/total pair with its ratio.
type Totals struct {
	VisitedCells int     `json:"visited_cells"`
	TotalCells   int     `json:"total_cells"`
	Ratio        float64 `json:"ratio"`
}

func newTotals(visited, total int) Totals {
	t := Totals{VisitedCells: visited, TotalCells: total}
	if total > 0 {
		t.Ratio = float64(visited) / float64(total)
	}
	return t
}

// Overall sums visited and total cells across all regions.
func Overall(regions []RegionSnapshot) Totals {
	visited, total := 0, 0
	for _, r := range regions {
		visited += r.VisitedCells
		total += r.TotalCells
	}
	return newTotals(visited, total)
}

// ByState groups regions by state code and aggregates each group.
func ByState(regions []RegionSnapshot) map[string]Totals {
	visited := make(map[string]int)
	total := make(map[string]int)
	for _, r := range regions {
		visited[r.StateCode] += r.VisitedCells
		total[r.StateCode] += r.TotalCells
	}

	result := make(map[string]Totals, len(total))
	for code := range total {
		result[code] = newTotals(visited[code], total[code])
	}
	return result
}
