package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/tagmanager-backend/internal/app/repository"
	apperrors "github.com/ikkim/tagmanager-backend/internal/errors"
	"github.com/ikkim/tagmanager-backend/internal/storage"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const exportSheetName = "Products"

// noCategoriesPlaceholder marks uncategorized products in exports so
// spreadsheet filters can pick them out.
const noCategoriesPlaceholder = "No Categories"

type exportRow struct {
	ProductID   string
	ProductName string
	Categories  string
}

type ExportService interface {
	// ExportCSV streams the catalog as CSV. A non-empty productID
	// restricts the export to that single product.
	ExportCSV(w io.Writer, productID string) error
	ExportXLSX(w io.Writer) error
	// ExportArchive builds a CSV snapshot, uploads it to object storage
	// and returns a time-limited download URL.
	ExportArchive(ctx context.Context) (*storage.ArchiveUpload, error)
}

type exportService struct {
	productRepo repository.ProductRepository
	mappingRepo repository.MappingRepository
	archive     *storage.S3Storage
}

func NewExportService(productRepo repository.ProductRepository, mappingRepo repository.MappingRepository, archive *storage.S3Storage) ExportService {
	return &exportService{
		productRepo: productRepo,
		mappingRepo: mappingRepo,
		archive:     archive,
	}
}

func (s *exportService) buildRows(productID string) ([]exportRow, error) {
	names, err := s.mappingRepo.CategoryNamesByProduct()
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "fetch export mappings")
	}

	if productID != "" {
		product, err := s.productRepo.FindByID(productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound(apperrors.ProductNotFound, "product",
					"product not found")
			}
			return nil, apperrors.ParseStoreError(err, "fetch product for export")
		}
		return []exportRow{makeExportRow(product.ID, product.Name, names[product.ID])}, nil
	}

	products, err := s.productRepo.CategorizationStatus()
	if err != nil {
		return nil, apperrors.ParseStoreError(err, "fetch products for export")
	}

	rows := make([]exportRow, 0, len(products))
	for _, product := range products {
		rows = append(rows, makeExportRow(product.ID, product.Name, names[product.ID]))
	}
	return rows, nil
}

func makeExportRow(productID, productName string, categoryNames []string) exportRow {
	categories := noCategoriesPlaceholder
	if len(categoryNames) > 0 {
		categories = strings.Join(categoryNames, ", ")
	}
	return exportRow{
		ProductID:   productID,
		ProductName: productName,
		Categories:  categories,
	}
}

func (s *exportService) ExportCSV(w io.Writer, productID string) error {
	logger.Info("Exporting catalog as CSV", map[string]interface{}{
		"product_id": productID,
	})

	rows, err := s.buildRows(productID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"product_id", "product_name", "categories"}); err != nil {
		return apperrors.NewStorage("write csv header", err)
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.ProductID, row.ProductName, row.Categories}); err != nil {
			return apperrors.NewStorage("write csv row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorage("flush csv", err)
	}

	logger.Info("CSV export completed", map[string]interface{}{
		"row_count": len(rows),
	})
	return nil
}

func (s *exportService) ExportXLSX(w io.Writer) error {
	logger.Info("Exporting catalog as XLSX", nil)

	rows, err := s.buildRows("")
	if err != nil {
		return err
	}

	file := excelize.NewFile()
	defer file.Close()

	if _, err := file.NewSheet(exportSheetName); err != nil {
		return apperrors.NewStorage("create worksheet", err)
	}
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return apperrors.NewStorage("remove default worksheet", err)
	}

	if err := file.SetSheetRow(exportSheetName, "A1",
		&[]interface{}{"product_id", "product_name", "categories"}); err != nil {
		return apperrors.NewStorage("write xlsx header", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorage("compute xlsx cell", err)
		}
		if err := file.SetSheetRow(exportSheetName, cell,
			&[]interface{}{row.ProductID, row.ProductName, row.Categories}); err != nil {
			return apperrors.NewStorage("write xlsx row", err)
		}
	}

	if err := file.Write(w); err != nil {
		return apperrors.NewStorage("write xlsx file", err)
	}

	logger.Info("XLSX export completed", map[string]interface{}{
		"row_count": len(rows),
	})
	return nil
}

func (s *exportService) ExportArchive(ctx context.Context) (*storage.ArchiveUpload, error) {
	if s.archive == nil {
		return nil, apperrors.NewStorage("archive export",
			errors.New("object storage is not configured"))
	}

	var buf strings.Builder
	if err := s.ExportCSV(&buf, ""); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/catalog-%s-%s.csv",
		time.Now().Format("20060102-150405"), uuid.New().String())

	upload, err := s.archive.UploadArchive(ctx, key, "text/csv", strings.NewReader(buf.String()))
	if err != nil {
		logger.Error("Failed to upload export archive", err, map[string]interface{}{
			"key": key,
		})
		return nil, apperrors.NewStorage("upload export archive", err)
	}

	logger.Info("Export archive uploaded", map[string]interface{}{
		"key": upload.Key,
	})
	return upload, nil
}
