// Package pipeline wires the character-sheet extraction stages into one
// forward-only pass: PDF bytes → raw field map → canonical record.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
	"github.com/rollkeeper/rollkeeper/internal/sheet"
	"github.com/rollkeeper/rollkeeper/internal/sheet/schema"
)

// Pipeline extracts a canonical character record from an uploaded PDF.
// All stages are per-call local state; one Pipeline serves concurrent
// uploads without coordination.
type Pipeline struct {
	collector *forms.Collector
	extractor *sheet.Extractor
	validator *schema.Validator
	logger    *slog.Logger
}

// New builds a pipeline. A nil alias table uses the built-in one.
func New(logger *slog.Logger, aliases *sheet.AliasTable) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	validator, err := schema.NewValidator(logger)
	if err != nil {
		return nil, fmt.Errorf("build record validator: %w", err)
	}
	return &Pipeline{
		collector: forms.NewCollector(),
		extractor: sheet.NewExtractor(aliases, logger),
		validator: validator,
		logger:    logger,
	}, nil
}

// Run performs one extraction pass. The only error is a document that
// cannot be opened (pdferr.ErrMalformedDocument); everything past the
// collector degrades instead of failing, so a sheet with no recognizable
// fields yields an empty record.
func (p *Pipeline) Run(ctx context.Context, pdfBytes []byte) (*sheet.Record, error) {
	raw, err := p.collector.Collect(ctx, pdfBytes)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("collected form fields", "count", len(raw))

	rec := p.extractor.Extract(raw)
	return p.validator.ValidateRecord(rec), nil
}
