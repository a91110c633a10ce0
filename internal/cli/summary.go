package cli

import (
	"fmt"
	"io"
	"time"
)

// Summary describes a finished fetch run for terminal output.
type Summary struct {
	Records   int
	Pages     int
	Duration  time.Duration
	Output    string
	Watermark string
	First     map[string]any
}

// printSummary writes the end-of-run block to w. The first record is
// previewed so a quick glance confirms the fetch returned what was
// expected.
func printSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintf(w, "- Records saved: %d\n", s.Records)
	fmt.Fprintf(w, "- Pages fetched: %d\n", s.Pages)
	fmt.Fprintf(w, "- Duration: %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "- Output file: %s\n", s.Output)
	if s.Watermark != "" {
		fmt.Fprintf(w, "- Newest date_filed: %s\n", s.Watermark)
	}

	if s.First == nil {
		fmt.Fprintln(w, "- No records to summarize")
		return
	}

	fmt.Fprintf(w, "- Opinion ID: %s\n", summaryField(s.First, "id"))
	fmt.Fprintf(w, "- Case URL: %s\n", summaryField(s.First, "absolute_url"))
	fmt.Fprintf(w, "- Date filed: %s\n", summaryField(s.First, "date_filed"))

	if text, ok := s.First["plain_text"].(string); ok {
		fmt.Fprintf(w, "- Opinion length: %d characters\n", len(text))
	} else {
		fmt.Fprintln(w, "- Opinion text not included (possibly filtered)")
	}
}

func summaryField(rec map[string]any, key string) string {
	if v, ok := rec[key]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return "N/A"
}
