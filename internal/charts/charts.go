// Package charts renders dashboard views as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"social-dashboard-backend/internal/engagement"
)

// ErrNotEnoughData is returned when a view has too few points to draw.
var ErrNotEnoughData = errors.New("charts: not enough data to render")

// Palette is the dashboard's series colour cycle.
var Palette = []drawing.Color{
	drawing.ColorFromHex("22C55E"),
	drawing.ColorFromHex("16A34A"),
	drawing.ColorFromHex("A7F3D0"),
	drawing.ColorFromHex("4BC0C0"),
	drawing.ColorFromHex("9966FF"),
}

var (
	likesColor    = drawing.ColorFromHex("4BC0C0")
	sharesColor   = drawing.ColorFromHex("16A34A")
	commentsColor = drawing.ColorFromHex("A7F3D0")
)

// Size is the output image size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the dashboard's chart panels.
var DefaultSize = Size{Width: 800, Height: 400}

// PostTypePie renders the category breakdown as a pie chart. Slices are
// ordered by label so repeated renders are identical.
func PostTypePie(w io.Writer, breakdown map[string]int, size Size) error {
	labels := make([]string, 0, len(breakdown))
	for label, n := range breakdown {
		if n > 0 {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return ErrNotEnoughData
	}
	sort.Strings(labels)

	values := make([]chart.Value, 0, len(labels))
	for i, label := range labels {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %d", label, breakdown[label]),
			Value: float64(breakdown[label]),
			Style: chart.Style{
				FillColor:   Palette[i%len(Palette)],
				StrokeColor: drawing.ColorWhite,
			},
		})
	}

	pie := chart.PieChart{
		Title:  "Post Type Distribution",
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render pie chart: %w", err)
	}
	return nil
}

// EngagementLine renders likes, shares and comments per post in series
// order, labelling the x axis with each point's date.
func EngagementLine(w io.Writer, series []engagement.Point, size Size) error {
	if len(series) < 2 {
		return ErrNotEnoughData
	}

	xs := make([]float64, len(series))
	likes := make([]float64, len(series))
	shares := make([]float64, len(series))
	comments := make([]float64, len(series))
	for i, p := range series {
		xs[i] = float64(i)
		likes[i] = float64(p.Likes)
		shares[i] = float64(p.Shares)
		comments[i] = float64(p.Comments)
	}

	dateLabel := func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return ""
		}
		i := int(f)
		if i < 0 || i >= len(series) || float64(i) != f {
			return ""
		}
		return series[i].Date
	}

	ch := chart.Chart{
		Title:      "Engagement Over Time",
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Date Posted", ValueFormatter: dateLabel},
		YAxis:      chart.YAxis{Name: "Engagement", ValueFormatter: compactNumber},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "Likes", XValues: xs, YValues: likes, Style: lineStyle(likesColor)},
			chart.ContinuousSeries{Name: "Shares", XValues: xs, YValues: shares, Style: lineStyle(sharesColor)},
			chart.ContinuousSeries{Name: "Comments", XValues: xs, YValues: comments, Style: lineStyle(commentsColor)},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render engagement chart: %w", err)
	}
	return nil
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
	}
}

// compactNumber prints values of 1000 and above as "1.2K".
func compactNumber(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	if f >= 1000 {
		return fmt.Sprintf("%.1fK", f/1000)
	}
	return fmt.Sprintf("%.0f", f)
}
