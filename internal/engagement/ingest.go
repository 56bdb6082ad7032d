package engagement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrRead is returned when the underlying reader fails. Malformed CSV content
// never produces an error; bad rows are skipped and bad numbers read as zero.
var ErrRead = errors.New("engagement: read failed")

// Header is the fixed column order used by Export.
var Header = []string{"Post_ID", "Post_Type", "Likes", "Shares", "Comments", "Date_Posted"}

const (
	colID       = "postid"
	colPostType = "posttype"
	colLikes    = "likes"
	colShares   = "shares"
	colComments = "comments"
	colDate     = "dateposted"
)

// normalizeColumn folds case and drops separators so "Post_Type",
// "post type" and "POST-TYPE" all name the same field.
func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case '_', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Ingest reads comma-separated text with a header row into a Dataset.
//
// Empty input and header-only input both give an empty Dataset with a nil
// error, so callers can treat the result as a fully computed zero state.
func Ingest(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.Is(err, io.EOF) || errors.As(err, &perr) {
			return Dataset{Columns: []string{}, Posts: []Post{}}, nil
		}
		return Dataset{}, fmt.Errorf("%w: %w", ErrRead, err)
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = h
		key := normalizeColumn(h)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	ds := Dataset{Columns: columns, Posts: make([]Post, 0)}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return Dataset{}, fmt.Errorf("%w: %w", ErrRead, err)
		}
		if blankRecord(record) {
			continue
		}
		ds.Posts = append(ds.Posts, recordToPost(record, index))
	}
	return ds, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func recordToPost(record []string, index map[string]int) Post {
	cell := func(key string) string {
		i, ok := index[key]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	return Post{
		ID:         cell(colID),
		PostType:   cell(colPostType),
		Likes:      parseCount(cell(colLikes)),
		Shares:     parseCount(cell(colShares)),
		Comments:   parseCount(cell(colComments)),
		DatePosted: cell(colDate),
	}
}

// MaxCount is the largest engagement count kept; larger values are clamped
// so every count fits a 32-bit INTEGER column.
const MaxCount = math.MaxInt32

// parseCount reads a non-negative decimal integer. A fractional part of
// digits, as in "12.0", is dropped. Values above MaxCount are clamped.
// Anything else, including negatives and exponent forms, reads as 0.
func parseCount(s string) int {
	whole, frac, hasFrac := strings.Cut(strings.TrimSpace(s), ".")
	whole = strings.TrimPrefix(whole, "+")
	if whole == "" || !allDigits(whole) || (hasFrac && !allDigits(frac)) {
		return 0
	}
	n, err := strconv.ParseUint(whole, 10, 64)
	if err != nil || n > MaxCount {
		return MaxCount
	}
	return int(n)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
