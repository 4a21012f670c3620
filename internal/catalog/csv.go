// file: internal/catalog/csv.go
// version: 1.0.0
// guid: c3d4e5f6-a7b8-9c0d-1e2f-3a4b5c6d7e8f

package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	ulid "github.com/oklog/ulid/v2"
	"github.com/schollz/progressbar/v3"

	"github.com/rxscribe/rxscribe/internal/models"
)

// Catalog CSV column positions. The export carries a leading row-number
// column, so field 1 is the source ID.
const (
	colSourceID     = 1
	colManufacturer = 2
	colName         = 3
	colRxRequired   = 4
	colComposition  = 5
	colSlug         = 6
	colBrandName    = 7
	colPower        = 8
	colCategory     = 9
	colMgID         = 10
	colInternalID   = 11
	columnCount     = 12
)

// ImportCSV loads the medicine catalog from a CSV export into the store.
// Malformed rows are skipped and logged, never fatal. Returns the number of
// medicines imported.
func ImportCSV(store Store, path string, showProgress bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open catalog CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // exports have ragged trailing columns

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(-1, "importing medicines")
	}

	imported := 0
	row := 0
	for {
		row++
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[WARN] skipping unparseable row %d: %v", row, err)
			continue
		}
		if len(values) < len(header) || len(values) < columnCount {
			continue
		}

		m := medicineFromRow(values)
		if m.Name == "" {
			continue
		}

		if _, err := store.CreateMedicine(m); err != nil {
			log.Printf("[WARN] failed to import medicine row %d: %v", row, err)
			continue
		}
		imported++
		if bar != nil {
			bar.Add(1)
		}
	}

	log.Printf("Loaded %d medicines from CSV", imported)
	return imported, nil
}

func medicineFromRow(values []string) *models.Medicine {
	return &models.Medicine{
		ID:               ulid.Make().String(),
		SourceID:         strings.TrimSpace(values[colSourceID]),
		ManufacturerName: strings.TrimSpace(values[colManufacturer]),
		Name:             strings.TrimSpace(values[colName]),
		RxRequired:       optionalString(values[colRxRequired]),
		ShortComposition: optionalString(values[colComposition]),
		Slug:             optionalString(values[colSlug]),
		BrandName:        optionalString(values[colBrandName]),
		Power:            optionalString(values[colPower]),
		Category:         optionalString(values[colCategory]),
		MgID:             optionalInt(values[colMgID]),
		InternalID:       optionalInt(values[colInternalID]),
	}
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func optionalInt(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
