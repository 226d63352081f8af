// Package fragments provides template path constants for organized template management
package fragments

// Template path constants, relative to ui/templates
const (
	// Pages
	Index = "index.html"

	// Shared building blocks
	Table   = "fragments/table.html"
	Grid    = "fragments/grid.html"
	Figure  = "fragments/figure.html"
	Message = "fragments/message.html"

	// HTMX responses
	Overview    = "fragments/overview.html"
	CountResult = "fragments/count_result.html"
	GroupResult = "fragments/group_result.html"
	ChartResult = "fragments/chart_result.html"
)

// GetAllTemplatePaths returns all template paths for registration
func GetAllTemplatePaths() []string {
	return []string{
		Index,

		Table,
		Grid,
		Figure,
		Message,

		Overview,
		CountResult,
		GroupResult,
		ChartResult,
	}
}
