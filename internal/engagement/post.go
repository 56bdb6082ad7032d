// Package engagement turns uploaded social-media post data into the views the
// dashboard charts: category breakdown, engagement totals, category
// percentages and an engagement time series.
package engagement

import "strings"

// FilterAll selects every post regardless of type.
const FilterAll Filter = "all"

// Filter is either FilterAll or a single post type label.
type Filter string

// Post is one row of engagement data.
type Post struct {
	ID         string `json:"post_id"`
	PostType   string `json:"post_type"`
	Likes      int    `json:"likes"`
	Shares     int    `json:"shares"`
	Comments   int    `json:"comments"`
	DatePosted string `json:"date_posted"`
}

// Dataset is an ordered set of posts together with the header it was read from.
type Dataset struct {
	Columns []string `json:"columns"`
	Posts   []Post   `json:"posts"`
}

// HasCategories reports whether the source header carried a post type column.
func (d Dataset) HasCategories() bool {
	for _, c := range d.Columns {
		if normalizeColumn(c) == colPostType {
			return true
		}
	}
	return false
}

// Len returns the number of posts.
func (d Dataset) Len() int { return len(d.Posts) }

// Matches reports whether the post passes the filter.
func (f Filter) Matches(p Post) bool {
	return f == FilterAll || p.PostType == string(f)
}

// ParseFilter maps an empty or case-insensitive "all" value to FilterAll.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(FilterAll)) {
		return FilterAll
	}
	return Filter(s)
}

// Apply returns the posts of ds that pass f, in dataset order.
func Apply(ds Dataset, f Filter) []Post {
	if f == FilterAll {
		return ds.Posts
	}
	out := make([]Post, 0, len(ds.Posts))
	for _, p := range ds.Posts {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
