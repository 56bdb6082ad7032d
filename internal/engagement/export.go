package engagement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportFilename is the download name used for exported data.
const ExportFilename = "social_media_data.csv"

// Export writes ds as CSV with the fixed Header row. Fields are quoted where
// needed so values containing commas, quotes or newlines survive Ingest.
func Export(w io.Writer, ds Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range ds.Posts {
		row := []string{
			p.ID,
			p.PostType,
			strconv.Itoa(p.Likes),
			strconv.Itoa(p.Shares),
			strconv.Itoa(p.Comments),
			p.DatePosted,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write post %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
