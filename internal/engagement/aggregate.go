package engagement

// Totals holds engagement sums over a filtered dataset.
type Totals struct {
	Likes    int `json:"likes"`
	Shares   int `json:"shares"`
	Comments int `json:"comments"`
}

// Point is one entry of the engagement time series.
type Point struct {
	PostID   string `json:"post_id"`
	Date     string `json:"date"`
	Likes    int    `json:"likes"`
	Shares   int    `json:"shares"`
	Comments int    `json:"comments"`
}

// Dashboard bundles every derived view for one dataset and filter.
type Dashboard struct {
	Filter      Filter             `json:"filter"`
	Categories  []string           `json:"categories"`
	PostCount   int                `json:"post_count"`
	HasData     bool               `json:"has_data"`
	Breakdown   map[string]int     `json:"breakdown"`
	Totals      Totals             `json:"totals"`
	Percentages map[string]float64 `json:"percentages"`
	TimeSeries  []Point            `json:"time_series"`
}

// Categories returns the distinct post types in first-seen order. A dataset
// read without a post type column has no categories.
func Categories(ds Dataset) []string {
	out := make([]string, 0)
	if !ds.HasCategories() {
		return out
	}
	seen := make(map[string]struct{})
	for _, p := range ds.Posts {
		if _, ok := seen[p.PostType]; ok {
			continue
		}
		seen[p.PostType] = struct{}{}
		out = append(out, p.PostType)
	}
	return out
}

// CategoryBreakdown counts filtered posts per post type.
func CategoryBreakdown(ds Dataset, f Filter) map[string]int {
	counts := make(map[string]int)
	for _, p := range Apply(ds, f) {
		counts[p.PostType]++
	}
	return counts
}

// ComputeTotals sums likes, shares and comments over the filtered posts.
func ComputeTotals(ds Dataset, f Filter) Totals {
	var t Totals
	for _, p := range Apply(ds, f) {
		t.Likes += p.Likes
		t.Shares += p.Shares
		t.Comments += p.Comments
	}
	return t
}

// Percentages reports, for each known category, its share of the filtered
// posts in percent. With no filtered posts every entry is 0.
func Percentages(ds Dataset, f Filter, known []string) map[string]float64 {
	filtered := Apply(ds, f)
	out := make(map[string]float64, len(known))
	if len(filtered) == 0 {
		for _, c := range known {
			out[c] = 0
		}
		return out
	}
	counts := make(map[string]int)
	for _, p := range filtered {
		counts[p.PostType]++
	}
	total := float64(len(filtered))
	for _, c := range known {
		out[c] = 100 * float64(counts[c]) / total
	}
	return out
}

// TimeSeries emits one point per filtered post in dataset order. The dataset
// is assumed to be chronological; it is not re-sorted.
func TimeSeries(ds Dataset, f Filter) []Point {
	filtered := Apply(ds, f)
	points := make([]Point, 0, len(filtered))
	for _, p := range filtered {
		points = append(points, Point{
			PostID:   p.ID,
			Date:     p.DatePosted,
			Likes:    p.Likes,
			Shares:   p.Shares,
			Comments: p.Comments,
		})
	}
	return points
}

// BuildDashboard computes every derived view for ds under f.
func BuildDashboard(ds Dataset, f Filter) Dashboard {
	categories := Categories(ds)
	series := TimeSeries(ds, f)
	return Dashboard{
		Filter:      f,
		Categories:  categories,
		PostCount:   len(series),
		HasData:     len(series) > 0,
		Breakdown:   CategoryBreakdown(ds, f),
		Totals:      ComputeTotals(ds, f),
		Percentages: Percentages(ds, f, categories),
		TimeSeries:  series,
	}
}
