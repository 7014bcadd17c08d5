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
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pgEdge/pgedge-salesdw/internal/datagen"
)

// Reference data
var regions = []string{"North", "Northeast", "Central-West", "Southeast", "South"}
var customerCategories = []string{"Retail", "Wholesale", "VIP", "Corporate"}
var discountTexts = []string{
	"10% off", "15% OFF", "Percentual", "percentage discount",
	"Fixed R$10", "valor fixo", "FIXED amount",
	"buy one get one", "",
}
var titleCase = cases.Title(language.Und)
var invalidDates = []string{"n/a", "N/A", "Invalid Date", "Data Inválida", "", "31/02/2024", "soon"}

// GeneratorConfig controls the size and dirtiness of generated data.
type GeneratorConfig struct {
	// Sales is the number of sale headers.
	Sales int

	// Seed makes generation reproducible; 0 picks a random seed.
	Seed uint64

	// DirtyRatio is the probability that a value is deliberately malformed.
	DirtyRatio float64

	// From and To bound sale and promotion dates.
	From time.Time
	To   time.Time
}

// Generator builds datasets that resemble what the shops send: padded
// names, missing categories, mixed date formats, invalid date markers,
// negative quantities and sales without a salesperson.
type Generator struct {
	faker *datagen.Faker
	cfg   GeneratorConfig
}

// NewGenerator creates a new source data generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.To.IsZero() {
		cfg.To = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	if cfg.From.IsZero() {
		cfg.From = cfg.To.AddDate(-2, 0, 0)
	}
	return &Generator{
		faker: datagen.NewFakerWithSeed(cfg.Seed),
		cfg:   cfg,
	}
}

// Generate builds a dataset scaled to the configured number of sales.
func (g *Generator) Generate() *Dataset {
	n := g.cfg.Sales
	d := &Dataset{}

	for i := 0; i < scaled(n, 10, 10); i++ {
		d.Products = append(d.Products, g.product())
	}
	for i := 0; i < scaled(n, 5, 20); i++ {
		d.Customers = append(d.Customers, g.customer())
	}
	for i := 0; i < scaled(n, 200, 5); i++ {
		d.Stores = append(d.Stores, g.store())
	}
	for i := 0; i < scaled(n, 100, 8); i++ {
		d.Promotions = append(d.Promotions, g.promotion())
	}
	for i := 0; i < scaled(n, 50, 10); i++ {
		d.Salespeople = append(d.Salespeople, Salesperson{Name: g.name(g.faker.Name())})
	}

	for i := 0; i < n; i++ {
		d.Sales = append(d.Sales, g.sale(d))
	}
	return d
}

// scaled returns n/per, but at least min.
func scaled(n, per, min int) int {
	if v := n / per; v > min {
		return v
	}
	return min
}

func (g *Generator) dirty() bool {
	return g.faker.Chance(g.cfg.DirtyRatio)
}

// name returns a name that is sometimes padded and sometimes blank.
func (g *Generator) name(s string) *string {
	switch {
	case g.dirty():
		return ptr(datagen.Choose(g.faker, []string{"", "   "}))
	case g.dirty():
		return ptr("  " + s + " ")
	default:
		return ptr(s)
	}
}

// text returns an optional attribute that is sometimes missing or blank.
func (g *Generator) text(s string) *string {
	switch {
	case g.dirty():
		return nil
	case g.dirty():
		return ptr(" ")
	default:
		return ptr(s)
	}
}

// date renders t in one of the accepted shapes, or an invalid marker.
func (g *Generator) date(t time.Time) *string {
	if g.dirty() {
		return ptr(datagen.Choose(g.faker, invalidDates))
	}
	layouts := []string{"2006-01-02", "02/01/2006", "2/1/2006", "2006-1-2"}
	return ptr(t.Format(datagen.Choose(g.faker, layouts)))
}

func (g *Generator) product() Product {
	return Product{
		Name:     g.name(g.faker.ProductName()),
		Category: g.text(titleCase.String(g.faker.ProductCategory())),
	}
}

func (g *Generator) customer() Customer {
	c := Customer{
		Name:     g.name(g.faker.Name()),
		Gender:   g.text(g.faker.Gender()),
		Category: g.text(datagen.Choose(g.faker, customerCategories)),
		City:     g.text(g.faker.City()),
		State:    g.text(g.faker.State()),
		Region:   g.text(datagen.Choose(g.faker, regions)),
	}
	if !g.dirty() {
		age := int32(g.faker.Int(18, 85))
		c.Age = &age
	}
	return c
}

func (g *Generator) store() Store {
	city := g.faker.City()
	return Store{
		Name:    g.name(fmt.Sprintf("%s %s", g.faker.Company(), city)),
		Manager: g.text(g.faker.Name()),
		City:    g.text(city),
		State:   g.text(g.faker.State()),
	}
}

func (g *Generator) promotion() Promotion {
	start := g.faker.DateRange(g.cfg.From, g.cfg.To)
	end := start.AddDate(0, 0, g.faker.Int(7, 60))
	p := Promotion{
		Name:         g.name(fmt.Sprintf("Promo %s", g.faker.ProductCategory())),
		DiscountType: ptr(datagen.Choose(g.faker, discountTexts)),
		StartDate:    g.date(start),
		EndDate:      g.date(end),
	}
	if g.dirty() {
		p.DiscountType = nil
	}
	return p
}

func (g *Generator) sale(d *Dataset) Sale {
	s := Sale{
		Date:     g.date(g.faker.DateRange(g.cfg.From, g.cfg.To)),
		Customer: g.pick(len(d.Customers)),
		Store:    g.pick(len(d.Stores)),
	}
	if !g.dirty() {
		s.Salesperson = g.pick(len(d.Salespeople))
	}

	items := datagen.ChooseWeighted(g.faker, []int{1, 2, 3, 4}, []int{40, 30, 20, 10})
	for i := 0; i < items; i++ {
		s.Items = append(s.Items, g.item(d))
	}
	return s
}

func (g *Generator) item(d *Dataset) SaleItem {
	qty := int32(g.faker.Int(1, 10))
	if g.dirty() {
		qty = -qty
	}
	price := g.faker.Price(1, 500)

	it := SaleItem{
		Product:   g.pick(len(d.Products)),
		Quantity:  &qty,
		UnitPrice: &price,
	}
	if g.faker.Chance(0.3) {
		it.Promotion = g.pick(len(d.Promotions))
	}
	if g.dirty() {
		it.UnitPrice = ptrDecimal(decimal.Zero)
	}
	return it
}

func (g *Generator) pick(n int) *int {
	i := g.faker.Int(0, n-1)
	return &i
}

func ptr(s string) *string { return &s }

func ptrDecimal(d decimal.Decimal) *decimal.Decimal { return &d }
