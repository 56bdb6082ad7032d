package engagement

import (
	"math"
	"testing"
	"time"
)

func sampleDataset() Dataset {
	return Dataset{
		Columns: Header,
		Posts: []Post{
			{ID: "1", PostType: "Reel", Likes: 100, Shares: 10, Comments: 5, DatePosted: "2024-01-01"},
			{ID: "2", PostType: "Static", Likes: 50, Shares: 5, Comments: 2, DatePosted: "2024-01-02"},
		},
	}
}

func TestDashboard_AllFilterSumsEveryPost(t *testing.T) {
	ds := sampleDataset()

	totals := ComputeTotals(ds, FilterAll)
	want := Totals{Likes: 150, Shares: 15, Comments: 7}
	if totals != want {
		t.Errorf("totals = %+v, want %+v", totals, want)
	}

	breakdown := CategoryBreakdown(ds, FilterAll)
	if len(breakdown) != 2 || breakdown["Reel"] != 1 || breakdown["Static"] != 1 {
		t.Errorf("breakdown = %v, want Reel:1 Static:1", breakdown)
	}

	pct := Percentages(ds, FilterAll, Categories(ds))
	if pct["Reel"] != 50 || pct["Static"] != 50 {
		t.Errorf("percentages = %v, want 50/50", pct)
	}
}

func TestDashboard_CategoryFilterNarrowsEveryView(t *testing.T) {
	ds := sampleDataset()
	f := Filter("Reel")

	if got, want := ComputeTotals(ds, f), (Totals{Likes: 100, Shares: 10, Comments: 5}); got != want {
		t.Errorf("totals = %+v, want %+v", got, want)
	}

	breakdown := CategoryBreakdown(ds, f)
	if len(breakdown) != 1 || breakdown["Reel"] != 1 {
		t.Errorf("breakdown = %v, want only Reel:1", breakdown)
	}

	series := TimeSeries(ds, f)
	if len(series) != 1 {
		t.Fatalf("time series should have 1 point, got %d", len(series))
	}
	if series[0].Date != "2024-01-01" || series[0].Likes != 100 {
		t.Errorf("unexpected point %+v", series[0])
	}
}

func TestDashboard_UnknownCategoryYieldsZeroState(t *testing.T) {
	ds := sampleDataset()
	f := Filter("Story")

	if got := CategoryBreakdown(ds, f); len(got) != 0 {
		t.Errorf("breakdown should be empty, got %v", got)
	}
	if got := ComputeTotals(ds, f); got != (Totals{}) {
		t.Errorf("totals should be zero, got %+v", got)
	}
	for c, v := range Percentages(ds, f, Categories(ds)) {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("percentage for %s should be 0, got %v", c, v)
		}
	}
}

func TestDashboard_TotalsMatchManualSumForMockData(t *testing.T) {
	ds := GenerateMock(200, 7)

	var want Totals
	for _, p := range ds.Posts {
		want.Likes += p.Likes
		want.Shares += p.Shares
		want.Comments += p.Comments
	}
	if got := ComputeTotals(ds, FilterAll); got != want {
		t.Errorf("totals = %+v, want %+v", got, want)
	}

	for _, c := range Categories(ds) {
		breakdown := CategoryBreakdown(ds, Filter(c))
		count := 0
		for _, p := range ds.Posts {
			if p.PostType == c {
				count++
			}
		}
		if len(breakdown) != 1 || breakdown[c] != count {
			t.Errorf("breakdown for %s = %v, want %d", c, breakdown, count)
		}
	}
}

func TestDashboard_PercentagesSumToHundred(t *testing.T) {
	ds := GenerateMock(50, 3)
	sum := 0.0
	for _, v := range Percentages(ds, FilterAll, Categories(ds)) {
		sum += v
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages should sum to 100, got %v", sum)
	}
}

func TestDashboard_EmptyDatasetIsValidZeroState(t *testing.T) {
	d := BuildDashboard(Dataset{}, FilterAll)

	if d.HasData {
		t.Error("empty dataset should report HasData=false")
	}
	if d.PostCount != 0 || d.Totals != (Totals{}) {
		t.Errorf("expected zero counts, got %+v", d)
	}
	if d.Breakdown == nil || d.Percentages == nil || d.TimeSeries == nil || d.Categories == nil {
		t.Error("views should be empty, not nil")
	}
}

func TestCategories_RequiresPostTypeColumn(t *testing.T) {
	ds := Dataset{
		Columns: []string{"Post_ID", "Likes"},
		Posts:   []Post{{ID: "1", Likes: 4}},
	}
	if got := Categories(ds); len(got) != 0 {
		t.Errorf("categories should be empty without a post type column, got %v", got)
	}

	ds = sampleDataset()
	got := Categories(ds)
	if len(got) != 2 || got[0] != "Reel" || got[1] != "Static" {
		t.Errorf("categories = %v, want [Reel Static] in first-seen order", got)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want Filter
	}{
		{"", FilterAll},
		{"all", FilterAll},
		{" ALL ", FilterAll},
		{"Reel", Filter("Reel")},
	}
	for _, tt := range tests {
		if got := ParseFilter(tt.in); got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateMock_IsDeterministicAndInRange(t *testing.T) {
	a := GenerateMock(100, 42)
	b := GenerateMock(100, 42)

	if a.Len() != 100 {
		t.Fatalf("expected 100 posts, got %d", a.Len())
	}
	for i := range a.Posts {
		if a.Posts[i] != b.Posts[i] {
			t.Fatalf("post %d differs between runs with the same seed", i)
		}
		p := a.Posts[i]
		w, ok := mockWeights[p.PostType]
		if !ok {
			t.Fatalf("unexpected post type %q", p.PostType)
		}
		if p.Likes < w.likes.lo || p.Likes > w.likes.hi {
			t.Errorf("post %s likes %d outside %v", p.ID, p.Likes, w.likes)
		}
		if p.DatePosted < "2025-01-01" || p.DatePosted > "2025-01-31" {
			t.Errorf("post %s date %s outside January 2025", p.ID, p.DatePosted)
		}
	}
	if !a.HasCategories() {
		t.Error("generated data should carry a post type column")
	}
}

func TestBoard_LoadReplacesDatasetWholesale(t *testing.T) {
	b := NewBoard()
	if s := b.Snapshot(); s.Filter != FilterAll || s.Dataset.Len() != 0 {
		t.Fatalf("new board should be empty with filter all, got %+v", s)
	}

	b.SetFilter("Reel")
	b.Load("v1", "upload.csv", sampleDataset(), time.Time{})
	b.Load("v2", "mock", GenerateMock(3, 1), time.Time{})

	s := b.Snapshot()
	if s.Version != "v2" || s.Source != "mock" || s.Dataset.Len() != 3 {
		t.Errorf("expected the second load to win, got %+v", s)
	}
	if s.Filter != "Reel" {
		t.Errorf("loading data should keep the active filter, got %q", s.Filter)
	}
}
