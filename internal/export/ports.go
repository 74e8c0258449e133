// Package export defines the outbound port for pushing spending reports to
// external destinations.
package export

import (
	"context"

	"bilancio/internal/services"
)

// ReportWriter receives a finished spending report.
type ReportWriter interface {
	WriteReport(ctx context.Context, report services.SpendingReport) error
}
