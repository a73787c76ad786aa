package report

import (
	"encoding/json"

	"github.com/slvDev/solwatch/internal/core/app"
)

// RenderJSON serializes the full report, indented for direct consumption.
func RenderJSON(r *app.Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
