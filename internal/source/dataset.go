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
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesdw/internal/logging"
)

// Dataset is a complete set of source records. Sales reference catalog
// entries by their zero-based index; a nil reference is stored as NULL.
type Dataset struct {
	Products    []Product     `yaml:"products"`
	Customers   []Customer    `yaml:"customers"`
	Stores      []Store       `yaml:"stores"`
	Promotions  []Promotion   `yaml:"promotions"`
	Salespeople []Salesperson `yaml:"salespeople"`
	Sales       []Sale        `yaml:"sales"`
}

// Product is a catalog item. Categories are shared by name.
type Product struct {
	Name     *string `yaml:"name"`
	Category *string `yaml:"category"`
}

// Customer is a buyer with its category and location.
type Customer struct {
	Name     *string `yaml:"name"`
	Age      *int32  `yaml:"age"`
	Gender   *string `yaml:"gender"`
	Category *string `yaml:"category"`
	City     *string `yaml:"city"`
	State    *string `yaml:"state"`
	Region   *string `yaml:"region"`
}

// Store is a point of sale.
type Store struct {
	Name    *string `yaml:"name"`
	Manager *string `yaml:"manager"`
	City    *string `yaml:"city"`
	State   *string `yaml:"state"`
}

// Promotion is a discount campaign. Dates are free text.
type Promotion struct {
	Name         *string `yaml:"name"`
	DiscountType *string `yaml:"discount_type"`
	StartDate    *string `yaml:"start_date"`
	EndDate      *string `yaml:"end_date"`
}

// Salesperson is a seller.
type Salesperson struct {
	Name *string `yaml:"name"`
}

// Sale is a sale header with its line items.
type Sale struct {
	Date        *string    `yaml:"date"`
	Customer    *int       `yaml:"customer"`
	Store       *int       `yaml:"store"`
	Salesperson *int       `yaml:"salesperson"`
	Items       []SaleItem `yaml:"items"`
}

// SaleItem is one line of a sale.
type SaleItem struct {
	Product   *int             `yaml:"product"`
	Promotion *int             `yaml:"promotion"`
	Quantity  *int32           `yaml:"quantity"`
	UnitPrice *decimal.Decimal `yaml:"unit_price"`
}

// ItemCount returns the number of sale items in the dataset.
func (d *Dataset) ItemCount() int {
	n := 0
	for _, s := range d.Sales {
		n += len(s.Items)
	}
	return n
}

// Validate checks that every reference points at an existing entry.
func (d *Dataset) Validate() error {
	for i, s := range d.Sales {
		if err := checkRef("customer", s.Customer, len(d.Customers)); err != nil {
			return fmt.Errorf("sale %d: %w", i, err)
		}
		if err := checkRef("store", s.Store, len(d.Stores)); err != nil {
			return fmt.Errorf("sale %d: %w", i, err)
		}
		if err := checkRef("salesperson", s.Salesperson, len(d.Salespeople)); err != nil {
			return fmt.Errorf("sale %d: %w", i, err)
		}
		for j, it := range s.Items {
			if err := checkRef("product", it.Product, len(d.Products)); err != nil {
				return fmt.Errorf("sale %d item %d: %w", i, j, err)
			}
			if err := checkRef("promotion", it.Promotion, len(d.Promotions)); err != nil {
				return fmt.Errorf("sale %d item %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func checkRef(kind string, ref *int, n int) error {
	if ref == nil {
		return nil
	}
	if *ref < 0 || *ref >= n {
		return fmt.Errorf("%s reference %d out of range (have %d)", kind, *ref, n)
	}
	return nil
}

// Apply inserts the dataset into the source database in one transaction.
func (d *Dataset) Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid dataset: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	w := &writer{
		tx:                 tx,
		productCategories:  make(map[string]int32),
		customerCategories: make(map[string]int32),
		locations:          make(map[[3]string]int32),
	}
	if err := w.write(ctx, d); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}

	logging.Info().
		Int("products", len(d.Products)).
		Int("customers", len(d.Customers)).
		Int("stores", len(d.Stores)).
		Int("promotions", len(d.Promotions)).
		Int("salespeople", len(d.Salespeople)).
		Int("sales", len(d.Sales)).
		Int("sale_items", d.ItemCount()).
		Msg("Source data written")
	return nil
}

// writer inserts dataset rows and remembers generated ids.
type writer struct {
	tx pgx.Tx

	productCategories  map[string]int32
	customerCategories map[string]int32
	locations          map[[3]string]int32

	products    []int32
	customers   []int32
	stores      []int32
	promotions  []int32
	salespeople []int32
}

func (w *writer) write(ctx context.Context, d *Dataset) error {
	for _, p := range d.Products {
		catID, err := w.category(ctx, w.productCategories,
			"INSERT INTO product_category (name) VALUES ($1) RETURNING product_category_id", p.Category)
		if err != nil {
			return err
		}
		id, err := w.insert(ctx, "product",
			"INSERT INTO product (name, product_category_id) VALUES ($1, $2) RETURNING product_id",
			p.Name, catID)
		if err != nil {
			return err
		}
		w.products = append(w.products, id)
	}

	for _, c := range d.Customers {
		catID, err := w.category(ctx, w.customerCategories,
			"INSERT INTO customer_category (name) VALUES ($1) RETURNING customer_category_id", c.Category)
		if err != nil {
			return err
		}
		locID, err := w.location(ctx, c.City, c.State, c.Region)
		if err != nil {
			return err
		}
		id, err := w.insert(ctx, "customer", `
            INSERT INTO customer (name, age, gender, customer_category_id, location_id)
            VALUES ($1, $2, $3, $4, $5) RETURNING customer_id`,
			c.Name, c.Age, c.Gender, catID, locID)
		if err != nil {
			return err
		}
		w.customers = append(w.customers, id)
	}

	for _, s := range d.Stores {
		id, err := w.insert(ctx, "store",
			"INSERT INTO store (name, manager, city, state) VALUES ($1, $2, $3, $4) RETURNING store_id",
			s.Name, s.Manager, s.City, s.State)
		if err != nil {
			return err
		}
		w.stores = append(w.stores, id)
	}

	for _, p := range d.Promotions {
		id, err := w.insert(ctx, "promotion", `
            INSERT INTO promotion (name, discount_type, start_date, end_date)
            VALUES ($1, $2, $3, $4) RETURNING promotion_id`,
			p.Name, p.DiscountType, p.StartDate, p.EndDate)
		if err != nil {
			return err
		}
		w.promotions = append(w.promotions, id)
	}

	for _, s := range d.Salespeople {
		id, err := w.insert(ctx, "salesperson",
			"INSERT INTO salesperson (name) VALUES ($1) RETURNING salesperson_id", s.Name)
		if err != nil {
			return err
		}
		w.salespeople = append(w.salespeople, id)
	}

	progress := logging.NewProgressReporter("sale", int64(len(d.Sales)), 1000)
	for _, s := range d.Sales {
		saleID, err := w.insert(ctx, "sale", `
            INSERT INTO sale (sale_date, customer_id, store_id, salesperson_id)
            VALUES ($1, $2, $3, $4) RETURNING sale_id`,
			s.Date, ref(w.customers, s.Customer), ref(w.stores, s.Store),
			ref(w.salespeople, s.Salesperson))
		if err != nil {
			return err
		}
		for _, it := range s.Items {
			_, err := w.tx.Exec(ctx, `
                INSERT INTO sale_item (sale_id, product_id, promotion_id, quantity, unit_price)
                VALUES ($1, $2, $3, $4, $5)`,
				saleID, ref(w.products, it.Product), ref(w.promotions, it.Promotion),
				it.Quantity, it.UnitPrice)
			if err != nil {
				return fmt.Errorf("failed to insert sale_item: %w", err)
			}
		}
		progress.Update(1)
	}
	return nil
}

func (w *writer) insert(ctx context.Context, table, sql string, args ...any) (int32, error) {
	var id int32
	if err := w.tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", table, err)
	}
	return id, nil
}

// category returns the id of a named category row, creating it once.
// A nil name yields a NULL reference.
func (w *writer) category(ctx context.Context, seen map[string]int32, sql string, name *string) (*int32, error) {
	if name == nil {
		return nil, nil
	}
	if id, ok := seen[*name]; ok {
		return &id, nil
	}
	id, err := w.insert(ctx, "category", sql, *name)
	if err != nil {
		return nil, err
	}
	seen[*name] = id
	return &id, nil
}

func (w *writer) location(ctx context.Context, city, state, region *string) (*int32, error) {
	if city == nil && state == nil && region == nil {
		return nil, nil
	}
	key := [3]string{deref(city), deref(state), deref(region)}
	if id, ok := w.locations[key]; ok {
		return &id, nil
	}
	id, err := w.insert(ctx, "location",
		"INSERT INTO location (city, state, region) VALUES ($1, $2, $3) RETURNING location_id",
		city, state, region)
	if err != nil {
		return nil, err
	}
	w.locations[key] = id
	return &id, nil
}

func ref(ids []int32, idx *int) *int32 {
	if idx == nil {
		return nil
	}
	return &ids[*idx]
}

func deref(s *string) string {
	if s == nil {
		return "\x00"
	}
	return *s
}
