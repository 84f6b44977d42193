// Package csv seeds the component catalog from a CSV file, used to
// bootstrap fresh environments.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// expected column order of the catalog file. The specs column holds a
// JSON object matching the component's category, or is left empty.
var catalogHeader = []string{"category", "name", "brand", "price", "stock", "vendor", "image_path", "specs"}

// Loader reads catalog rows and writes them through the repository
type Loader struct {
	catalog repositories.CatalogRepository
}

// NewLoader creates a catalog loader
func NewLoader(catalog repositories.CatalogRepository) *Loader {
	return &Loader{catalog: catalog}
}

// SeedCatalog loads components from a CSV file into the catalog,
// returning the number of components created. The file must carry the
// full header and at least one data row.
func (l *Loader) SeedCatalog(ctx context.Context, filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open catalog file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog CSV: %w", err)
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("catalog CSV must have header and at least one data row")
	}
	if !validateHeader(records[0], catalogHeader) {
		return 0, fmt.Errorf("catalog CSV header mismatch. Expected: %v, Got: %v", catalogHeader, records[0])
	}

	created := 0
	for i, record := range records[1:] {
		if len(record) != len(catalogHeader) {
			return created, fmt.Errorf("catalog CSV row %d: expected %d columns, got %d", i+2, len(catalogHeader), len(record))
		}
		if err := l.seedRow(ctx, record); err != nil {
			return created, fmt.Errorf("catalog CSV row %d: %w", i+2, err)
		}
		created++
	}
	return created, nil
}

func (l *Loader) seedRow(ctx context.Context, record []string) error {
	category, err := entities.ParseSlug(record[0])
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", record[3], err)
	}
	stock, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return fmt.Errorf("invalid stock %q: %w", record[4], err)
	}

	component, err := entities.NewComponent(category, record[1], record[2], price, stock)
	if err != nil {
		return err
	}
	component.Vendor = strings.TrimSpace(record[5])
	component.ImagePath = strings.TrimSpace(record[6])

	if err := l.catalog.CreateComponent(ctx, component); err != nil {
		return err
	}

	rawSpecs := strings.TrimSpace(record[7])
	if rawSpecs == "" {
		return nil
	}
	specs, err := entities.DecodeSpecs(category, []byte(rawSpecs))
	if err != nil {
		return err
	}
	return l.catalog.UpsertSpecs(ctx, component.ID, specs)
}

func validateHeader(header, expected []string) bool {
	if len(header) != len(expected) {
		return false
	}
	for i, column := range expected {
		if strings.TrimSpace(strings.ToLower(header[i])) != column {
			return false
		}
	}
	return true
}
