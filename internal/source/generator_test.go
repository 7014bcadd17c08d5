//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-salesdw/internal/normalize"
)

func TestGeneratorDeterministic(t *testing.T) {
	cfg := GeneratorConfig{Sales: 50, Seed: 42, DirtyRatio: 0.2}
	a := NewGenerator(cfg).Generate()
	b := NewGenerator(cfg).Generate()

	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different datasets")
	}
}

func TestGeneratorShape(t *testing.T) {
	d := NewGenerator(GeneratorConfig{Sales: 1000, Seed: 1}).Generate()

	if len(d.Sales) != 1000 {
		t.Errorf("sales = %d, want 1000", len(d.Sales))
	}
	if len(d.Products) != 100 {
		t.Errorf("products = %d, want 100", len(d.Products))
	}
	if len(d.Customers) != 200 {
		t.Errorf("customers = %d, want 200", len(d.Customers))
	}
	if len(d.Stores) != 5 {
		t.Errorf("stores = %d, want 5", len(d.Stores))
	}
	if err := d.Validate(); err != nil {
		t.Errorf("generated dataset is invalid: %v", err)
	}
	for i, s := range d.Sales {
		if len(s.Items) < 1 || len(s.Items) > 4 {
			t.Errorf("sale %d has %d items", i, len(s.Items))
		}
	}
}

func TestGeneratorClean(t *testing.T) {
	d := NewGenerator(GeneratorConfig{Sales: 200, Seed: 3, DirtyRatio: 0}).Generate()

	for i, p := range d.Products {
		if _, ok := normalize.Name(p.Name); !ok {
			t.Errorf("product %d has a blank name", i)
		} else if strings.TrimSpace(*p.Name) != *p.Name {
			t.Errorf("product %d name is padded: %q", i, *p.Name)
		}
	}
	for i, s := range d.Sales {
		if _, err := normalize.DatePtr(s.Date); err != nil {
			t.Errorf("sale %d date %q rejected: %v", i, normalize.Display(s.Date), err)
		}
		if s.Salesperson == nil {
			t.Errorf("sale %d has no salesperson", i)
		}
		for _, it := range s.Items {
			if *it.Quantity <= 0 {
				t.Errorf("sale %d has non-positive quantity %d", i, *it.Quantity)
			}
		}
	}
}

func TestGeneratorDirty(t *testing.T) {
	d := NewGenerator(GeneratorConfig{Sales: 200, Seed: 5, DirtyRatio: 1}).Generate()

	for i, s := range d.Sales {
		if _, err := normalize.DatePtr(s.Date); err == nil {
			t.Errorf("sale %d date %q should be invalid", i, normalize.Display(s.Date))
		}
		if s.Salesperson != nil {
			t.Errorf("sale %d should have no salesperson", i)
		}
		for _, it := range s.Items {
			if *it.Quantity >= 0 {
				t.Errorf("sale %d quantity %d should be negative", i, *it.Quantity)
			}
		}
	}
	for i, p := range d.Products {
		if _, ok := normalize.Name(p.Name); ok {
			t.Errorf("product %d name %q should be blank", i, *p.Name)
		}
	}
}

func TestScaled(t *testing.T) {
	tests := []struct {
		n, per, min, want int
	}{
		{10, 10, 10, 10},
		{1000, 10, 10, 100},
		{0, 5, 20, 20},
	}
	for _, tt := range tests {
		if got := scaled(tt.n, tt.per, tt.min); got != tt.want {
			t.Errorf("scaled(%d, %d, %d) = %d, want %d", tt.n, tt.per, tt.min, got, tt.want)
		}
	}
}
