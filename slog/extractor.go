package slog

import (
	"log/slog"
	"time"

	"github.com/umass-dining/dining"
)

// Ensure LoggingExtractor implements dining.MenuExtractor.
var _ dining.MenuExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a MenuExtractor with debug logging of the section
// strategy and item counts.
type LoggingExtractor struct {
	next   dining.MenuExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next dining.MenuExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// ExtractMenu delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) ExtractMenu(page *dining.MenuPage) (result *dining.ExtractResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"duration", time.Since(begin), "err", err}
		if page != nil {
			attrs = append(attrs, "hall", page.HallID, "meal", page.MealType)
		}
		if result != nil {
			attrs = append(attrs,
				"section", result.Section,
				"degraded", result.Degraded,
				"stations", result.Stations,
				"items", len(result.Items),
			)
		}
		e.logger.Debug("extract", attrs...)
	}(time.Now())
	return e.next.ExtractMenu(page)
}
