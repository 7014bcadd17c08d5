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
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

type fakeStage struct {
	name string
	log  *[]string
	err  error
}

func (f *fakeStage) Name() string { return f.name }

func (f *fakeStage) Load(ctx context.Context, src, dw DB) (*Stats, error) {
	*f.log = append(*f.log, f.name)
	if f.err != nil {
		return nil, f.err
	}
	s := newStats(f.name)
	s.Record(Inserted, "")
	return s, nil
}

func fakeStages(log *[]string, names ...string) []Stage {
	out := make([]Stage, len(names))
	for i, n := range names {
		out[i] = &fakeStage{name: n, log: log}
	}
	return out
}

func TestPipelineOrder(t *testing.T) {
	var log []string
	p := newPipeline(fakeStages(&log, "time", "product", "customer"), &fakeStage{name: "fact", log: &log})

	report, err := p.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{"time", "product", "customer", "fact"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("stage order = %v, want %v", log, want)
	}
	if len(report.Stages) != 4 {
		t.Errorf("report has %d stages, want 4", len(report.Stages))
	}
	if report.RunID == uuid.Nil {
		t.Error("report run id should be set")
	}
}

func TestPipelineDimensionFailureBlocksFacts(t *testing.T) {
	var log []string
	boom := errors.New("connection lost")
	dims := []Stage{
		&fakeStage{name: "time", log: &log},
		&fakeStage{name: "product", log: &log, err: boom},
		&fakeStage{name: "customer", log: &log},
	}
	p := newPipeline(dims, &fakeStage{name: "fact", log: &log})

	report, err := p.Run(context.Background(), nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}

	want := []string{"time", "product"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("stages run = %v, want %v", log, want)
	}
	if len(report.Stages) != 1 {
		t.Errorf("report has %d completed stages, want 1", len(report.Stages))
	}
}

func TestPipelineStageHook(t *testing.T) {
	var log []string
	runID := uuid.New()

	type call struct {
		runID    uuid.UUID
		position int
		stage    string
	}
	var calls []call

	hook := func(ctx context.Context, id uuid.UUID, position int, stats *Stats) error {
		calls = append(calls, call{id, position, stats.Stage})
		return nil
	}
	p := newPipeline(fakeStages(&log, "time", "product"), &fakeStage{name: "fact", log: &log},
		WithStageHook(hook))

	if _, err := p.RunWithID(context.Background(), runID, nil, nil); err != nil {
		t.Fatalf("RunWithID returned error: %v", err)
	}

	want := []call{{runID, 0, "time"}, {runID, 1, "product"}, {runID, 2, "fact"}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("hook calls = %+v, want %+v", calls, want)
	}
}

func TestPipelineHookErrorAborts(t *testing.T) {
	var log []string
	hookErr := errors.New("record failed")
	hook := func(ctx context.Context, id uuid.UUID, position int, stats *Stats) error {
		return hookErr
	}
	p := newPipeline(fakeStages(&log, "time", "product"), &fakeStage{name: "fact", log: &log},
		WithStageHook(hook))

	if _, err := p.Run(context.Background(), nil, nil); !errors.Is(err, hookErr) {
		t.Fatalf("Run error = %v, want %v", err, hookErr)
	}
	if !reflect.DeepEqual(log, []string{"time"}) {
		t.Errorf("stages run = %v, want [time]", log)
	}
}

func TestNewPipelineStages(t *testing.T) {
	p := NewPipeline(WithProgressInterval(500))

	var names []string
	for _, s := range p.Stages() {
		names = append(names, s.Name())
	}
	want := []string{"time", "product", "customer", "store", "promotion", "salesperson", "fact"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("stages = %v, want %v", names, want)
	}

	fact, ok := p.fact.(*FactStage)
	if !ok || fact.progressInterval != 500 {
		t.Errorf("fact stage progress interval not applied: %+v", p.fact)
	}
}
