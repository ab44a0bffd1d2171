// Package export builds and ships the monthly budget report.
package export

import "context"

// Ports for outbound adapters.
type (
	ReportWriter interface {
		Write(ctx context.Context, report MonthlyReport) (ref string, err error)
	}
)
