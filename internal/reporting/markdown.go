package reporting

import (
	"fmt"
	"strings"

	"ztf-alert-lab/internal/domain"
)

// RenderMarkdown renders the feature table as a Markdown table.
// Undefined statistics render as "-".
func RenderMarkdown(table domain.FeatureTable) string {
	var sb strings.Builder

	cols := table.Columns()

	// Header
	sb.WriteString("| objectId |")
	for _, col := range cols {
		sb.WriteString(" ")
		sb.WriteString(col)
		sb.WriteString(" |")
	}
	sb.WriteString("\n")

	sb.WriteString("|----------|")
	for range cols {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")

	// Rows
	for _, row := range table.Rows {
		sb.WriteString("| ")
		sb.WriteString(row.ObjectID)
		sb.WriteString(" |")
		for _, col := range cols {
			if v := row.Value(col); v != nil {
				sb.WriteString(fmt.Sprintf(" %.6f |", *v))
			} else {
				sb.WriteString(" - |")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
