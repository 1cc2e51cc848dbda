package port

import "context"

// RecordSink is the spreadsheet that stores finished rows.
// Every call is synchronous and may fail on its own; there are no transactions.
type RecordSink interface {
	// Append writes row starting at the first column of rangeHint on sheet and
	// returns the 1-based row index that was written.
	Append(ctx context.Context, sheet, rangeHint string, row []any) (int, error)
	// CreateFromTemplate copies the template sheet under name and clears the given ranges.
	CreateFromTemplate(ctx context.Context, template, name string, clear []string) error
	ListSheetNames(ctx context.Context) ([]string, error)
	// ReadRange returns formatted cell values of rng on sheet.
	ReadRange(ctx context.Context, sheet, rng string) ([][]string, error)
	// Export returns the whole spreadsheet as an xlsx file.
	Export(ctx context.Context) ([]byte, error)
}
