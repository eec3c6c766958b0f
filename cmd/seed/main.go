package main

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/ikkim/tagmanager-backend/config"
	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	"github.com/ikkim/tagmanager-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 1000
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkUpsertIgnore(products, batchSize); err != nil {
		log.Fatal("Failed to bulk import products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

// readProductsFromXLSX expects a catalog sheet with product id in the
// first column and product name in the second. The first row is a
// header and is skipped.
func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seenIDs := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 2 {
			skippedCount++
			continue
		}

		productID := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])

		if productID == "" || name == "" {
			skippedCount++
			continue
		}
		if !isValidProductName(name) {
			skippedCount++
			continue
		}
		if seenIDs[productID] {
			skippedCount++
			continue
		}
		seenIDs[productID] = true

		products = append(products, model.Product{
			ID:   productID,
			Name: name,
		})

		if len(products)%1000 == 0 {
			fmt.Printf("Processed %d products...\n", len(products))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return products, nil
}

// isValidProductName filters out junk catalog rows.
func isValidProductName(name string) bool {
	if len([]rune(name)) < 2 {
		return false
	}

	// Names that are only punctuation or symbols are not real products
	specialOnlyReg := regexp.MustCompile(`^[\p{P}\p{S}\s]+$`)
	return !specialOnlyReg.MatchString(name)
}
