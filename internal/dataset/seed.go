package dataset

import (
	"fmt"
	"math/rand"
	"time"
)

// seedSales populates the demo sales table with a year of synthetic
// orders when it is empty, so a fresh install can be queried
// immediately.
func (s *Store) seedSales() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sales").Scan(&count); err != nil {
		return fmt.Errorf("counting sales rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	categories := []string{"Electronics", "Clothing", "Home", "Books"}
	products := map[string][]string{
		"Electronics": {"Laptop", "Smartphone", "Headphones", "Monitor"},
		"Clothing":    {"T-Shirt", "Jeans", "Jacket", "Sneakers"},
		"Home":        {"Sofa", "Table", "Lamp", "Rug"},
		"Books":       {"Fiction", "Non-Fiction", "Sci-Fi", "Biography"},
	}
	regions := []string{"North", "South", "East", "West"}

	rng := rand.New(rand.NewSource(42))
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO sales
		(date, product_category, product_name, quantity, unit_price, total_amount, region)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing seed insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < 365; i++ {
		date := start.AddDate(0, 0, rng.Intn(365))
		category := categories[rng.Intn(len(categories))]
		names := products[category]
		product := names[rng.Intn(len(names))]
		quantity := rng.Intn(10) + 1
		unitPrice := roundTo2(10.0 + rng.Float64()*1190.0)
		totalAmount := roundTo2(float64(quantity) * unitPrice)
		region := regions[rng.Intn(len(regions))]

		if _, err := stmt.Exec(
			date.Format("2006-01-02"), category, product,
			quantity, unitPrice, totalAmount, region,
		); err != nil {
			return fmt.Errorf("inserting seed row: %w", err)
		}
	}

	return tx.Commit()
}

func roundTo2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
