//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-salesdw/internal/logging"
)

// StageHook is called after each stage completes successfully. position is
// the zero-based index of the stage in the pipeline.
type StageHook func(ctx context.Context, runID uuid.UUID, position int, stats *Stats) error

// Pipeline runs dimension stages one at a time, in order, and the fact
// stage only after every dimension stage has completed.
type Pipeline struct {
	dimensions []Stage
	fact       Stage
	onStage    StageHook
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStageHook registers a hook run after each completed stage.
func WithStageHook(h StageHook) Option {
	return func(p *Pipeline) { p.onStage = h }
}

// WithProgressInterval sets the fact stage progress interval in rows.
func WithProgressInterval(rows int) Option {
	return func(p *Pipeline) { p.fact = NewFactStage(rows) }
}

// DimensionStages returns the dimension stages in load order.
func DimensionStages() []Stage {
	return []Stage{
		NewTimeStage(),
		NewProductStage(),
		NewCustomerStage(),
		NewStoreStage(),
		NewPromotionStage(),
		NewSalespersonStage(),
	}
}

// NewPipeline returns the standard warehouse load.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		dimensions: DimensionStages(),
		fact:       NewFactStage(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// newPipeline assembles a pipeline from arbitrary stages.
func newPipeline(dimensions []Stage, fact Stage, opts ...Option) *Pipeline {
	p := &Pipeline{dimensions: dimensions, fact: fact}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stages returns every stage in execution order.
func (p *Pipeline) Stages() []Stage {
	return append(append([]Stage{}, p.dimensions...), p.fact)
}

// Report summarizes a completed run.
type Report struct {
	RunID    uuid.UUID
	Stages   []*Stats
	Duration time.Duration
}

// Run executes the pipeline under a fresh run id.
func (p *Pipeline) Run(ctx context.Context, src, dw DB) (*Report, error) {
	return p.RunWithID(ctx, uuid.New(), src, dw)
}

// RunWithID executes the pipeline. The first stage error aborts the run;
// stages that already completed keep their effects.
func (p *Pipeline) RunWithID(ctx context.Context, runID uuid.UUID, src, dw DB) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: runID}

	for i, stage := range p.dimensions {
		if err := p.runStage(ctx, report, i, stage, src, dw); err != nil {
			return report, err
		}
	}

	// Every dimension stage has completed; facts may now resolve keys.
	if err := p.runStage(ctx, report, len(p.dimensions), p.fact, src, dw); err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (p *Pipeline) runStage(ctx context.Context, report *Report, position int, stage Stage, src, dw DB) error {
	logging.Info().Str("stage", stage.Name()).Msg("Starting stage")

	stats, err := stage.Load(ctx, src, dw)
	if err != nil {
		return fmt.Errorf("stage %s failed: %w", stage.Name(), err)
	}
	report.Stages = append(report.Stages, stats)

	event := logging.Info().
		Str("stage", stats.Stage).
		Int64("extracted", stats.Extracted).
		Int64("inserted", stats.Inserted).
		Int64("existing", stats.Existing).
		Int64("skipped", stats.Skipped).
		Dur("duration", stats.Duration)
	if stats.Unresolved > 0 {
		event = event.Int64("unresolved", stats.Unresolved)
	}
	event.Msg("Stage complete")

	if p.onStage != nil {
		if err := p.onStage(ctx, report.RunID, position, stats); err != nil {
			return err
		}
	}
	return nil
}
