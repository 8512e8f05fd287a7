// Package export renders day records as Markdown or CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/julianstephens/threethings/internal/models"
)

// Format is an export file format
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// CSVHeader is the first row of every CSV export
var CSVHeader = []string{"Date", "Task", "Size", "Status", "Reflection", "Encouragement", "DayRating", "DaySummary"}

// FileName returns the default export file name for date
func FileName(format Format, date string) string {
	ext := "md"
	if format == FormatCSV {
		ext = "csv"
	}
	return fmt.Sprintf("threethings_export_%s.%s", date, ext)
}

// Write renders records in format
func Write(w io.Writer, format Format, records []models.DayRecord) error {
	switch format {
	case FormatMarkdown:
		return Markdown(w, records)
	case FormatCSV:
		return CSV(w, records)
	}
	return fmt.Errorf("unsupported export format: %q", format)
}

func status(t models.Task) string {
	if t.IsDone {
		return "Done"
	}
	return "Pending"
}

func ratingText(r *bool) string {
	switch {
	case r == nil:
		return "Not rated"
	case *r:
		return "Good enough"
	}
	return "Not great"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Markdown writes one section per day and one subsection per committed task.
func Markdown(w io.Writer, records []models.DayRecord) error {
	ew := &errWriter{w: w}
	ew.printf("# Three Things Journal\n\n")
	for _, day := range records {
		ew.printf("## %s\n", day.Date)
		ew.printf("**Day rating**: %s\n", ratingText(day.DayRating))
		ew.printf("**Summary**: %s\n\n", orDefault(day.Summary(), "None"))
		for i, t := range day.Tasks {
			ew.printf("### Task %d: %s (%s)\n", i+1, t.Title, t.Size)
			ew.printf("- Status: %s\n", status(t))
			ew.printf("- Reflection: %s\n", orDefault(t.Reflection, "Not written"))
			if enc := t.EncouragementText(); enc != "" {
				ew.printf("- Encouragement: %s\n", enc)
			}
			ew.printf("\n")
		}
		ew.printf("---\n\n")
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// CSV writes CSVHeader followed by one row per committed task.
func CSV(w io.Writer, records []models.DayRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, day := range records {
		rating := ""
		if day.DayRating != nil {
			rating = strconv.FormatBool(*day.DayRating)
		}
		for _, t := range day.Tasks {
			row := []string{day.Date, t.Title, string(t.Size), status(t), t.Reflection, t.EncouragementText(), rating, day.Summary()}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
