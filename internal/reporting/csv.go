package reporting

import (
	"fmt"
	"strings"

	"ztf-alert-lab/internal/domain"
)

// RenderCSV renders the feature table as a CSV string. Undefined
// statistics render as empty cells.
func RenderCSV(table domain.FeatureTable) string {
	var sb strings.Builder

	cols := table.Columns()

	// Header
	sb.WriteString("objectId")
	for _, col := range cols {
		sb.WriteString(",")
		sb.WriteString(col)
	}
	sb.WriteString("\n")

	// Rows
	for _, row := range table.Rows {
		sb.WriteString(row.ObjectID)
		for _, col := range cols {
			sb.WriteString(",")
			if v := row.Value(col); v != nil {
				sb.WriteString(fmt.Sprintf("%.6f", *v))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
