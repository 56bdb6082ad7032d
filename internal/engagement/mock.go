package engagement

import (
	"math/rand/v2"
	"strconv"
	"time"
)

type span struct{ lo, hi int }

type weights struct{ likes, shares, comments span }

// Engagement ranges per post type for generated data.
var mockWeights = map[string]weights{
	"Reel":          {likes: span{400, 900}, shares: span{150, 400}, comments: span{80, 300}},
	"Carousel":      {likes: span{250, 600}, shares: span{60, 200}, comments: span{40, 120}},
	"Static_images": {likes: span{30, 150}, shares: span{5, 30}, comments: span{2, 15}},
	"Poll":          {likes: span{50, 300}, shares: span{10, 50}, comments: span{5, 25}},
}

// MockPostTypes lists the post types GenerateMock draws from.
var MockPostTypes = []string{"Reel", "Carousel", "Static_images", "Poll"}

var (
	mockStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	mockDays  = 31
)

// GenerateMock builds a dataset of n posts with IDs 1..n, random post types
// and engagement drawn from per-type ranges, dated within January 2025. The
// same seed always yields the same dataset.
func GenerateMock(n int, seed uint64) Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	posts := make([]Post, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		postType := MockPostTypes[rng.IntN(len(MockPostTypes))]
		w := mockWeights[postType]
		posts = append(posts, Post{
			ID:         strconv.Itoa(i),
			PostType:   postType,
			Likes:      between(rng, w.likes),
			Shares:     between(rng, w.shares),
			Comments:   between(rng, w.comments),
			DatePosted: mockStart.AddDate(0, 0, rng.IntN(mockDays)).Format(time.DateOnly),
		})
	}
	columns := make([]string, len(Header))
	copy(columns, Header)
	return Dataset{Columns: columns, Posts: posts}
}

// between returns a value in [s.lo, s.hi].
func between(rng *rand.Rand, s span) int {
	return s.lo + rng.IntN(s.hi-s.lo+1)
}
