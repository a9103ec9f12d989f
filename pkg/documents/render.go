package documents

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is an output format for rendered results.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q, must be one of: table, json, yaml", s)
	}
}

// Render writes v to w. Table output supports document summaries, a
// document with versions, and downloaded content metadata.
func Render(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		return renderTable(w, v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	switch val := v.(type) {
	case []DocumentSummary:
		writeSummaryHeader(tw)
		for _, d := range val {
			writeSummaryRow(tw, d)
		}

	case *DocumentSummaryWithVersions:
		fmt.Fprintln(tw, val.DocumentSummary.Label())
		fmt.Fprintln(tw)
		writeSummaryHeader(tw)
		writeSummaryRow(tw, val.DocumentSummary)
		fmt.Fprintln(tw)
		writeVersions(tw, val.DocumentVersions)

	case []DocumentVersion:
		writeVersions(tw, val)

	case *DocumentContent:
		fmt.Fprintln(tw, "DOCUMENT ID\tVERSION ID\tNAME\tMIME TYPE\tBYTES")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			val.DocumentID, val.VersionID, val.DocumentName, val.MimeType, val.Size())

	default:
		return fmt.Errorf("cannot render %T as a table", v)
	}

	return tw.Flush()
}

func writeSummaryHeader(w io.Writer) {
	fmt.Fprintln(w, "DOCUMENT ID\tMATTER\tTITLE\tORDER ID\tITEM\tSTATUS\tORDER DATE\tTIMESTAMP")
}

func writeSummaryRow(w io.Writer, d DocumentSummary) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
		d.DocumentID,
		d.MatterReference,
		d.Title,
		d.OrderID,
		d.ItemNumber,
		d.StatusDescription,
		formatDate(d.OrderDate, DateLayout),
		formatDate(d.TimeStamp, time.RFC3339),
	)
}

func writeVersions(w io.Writer, versions []DocumentVersion) {
	fmt.Fprintln(w, "VERSION ID\tSEQ\tNAME\tMIME TYPE\tSTATE")
	for _, v := range versions {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			v.DocumentVersionID,
			v.VersionSequence,
			v.DocumentName,
			v.MimeType,
			v.Label(),
		)
	}
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}
