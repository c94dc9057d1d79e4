package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
	csvimport "github.com/stockroom/backend/internal/infrastructure/import"
)

// ConflictMode decides what happens to a row whose SKU already exists
type ConflictMode string

const (
	// ConflictModeSkip leaves existing products untouched
	ConflictModeSkip ConflictMode = "skip"
	// ConflictModeUpdate overwrites the catalog fields of existing products
	ConflictModeUpdate ConflictMode = "update"
	// ConflictModeFail aborts the import before any write when a SKU exists
	ConflictModeFail ConflictMode = "fail"
)

// IsValid reports whether c is a known mode
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// ImportProductsRequest are the options of a product CSV import
type ImportProductsRequest struct {
	ConflictMode ConflictMode `form:"conflict_mode" binding:"omitempty,oneof=skip update fail"`
	DryRun       bool         `form:"dry_run"`
}

// ProductImportResult summarizes an import. In a dry run the counts are what
// the import would have done.
type ProductImportResult struct {
	TotalRows   int                  `json:"total_rows"`
	CreatedRows int                  `json:"created_rows"`
	UpdatedRows int                  `json:"updated_rows"`
	SkippedRows int                  `json:"skipped_rows"`
	ErrorRows   int                  `json:"error_rows"`
	StockItems  int                  `json:"stock_items_created"`
	DryRun      bool                 `json:"dry_run"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// StockCreator persists new inventory items
type StockCreator interface {
	Create(ctx context.Context, item *inventory.InventoryItem) error
}

// ProductImportService creates or updates catalog products from a CSV upload.
// A row with a quantity also opens an inventory item for a new product.
type ProductImportService struct {
	productRepo catalog.ProductRepository
	stock       StockCreator
	logger      *zap.Logger
	maxRows     int
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(productRepo catalog.ProductRepository, stock StockCreator, logger *zap.Logger) *ProductImportService {
	return &ProductImportService{
		productRepo: productRepo,
		stock:       stock,
		logger:      logger,
		maxRows:     5000,
	}
}

// Rules returns the column rules of the product CSV
func (s *ProductImportService) Rules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field("sku").Required().MaxLength(64).Unique().Build(),
		csvimport.Field("name").Required().MaxLength(200).Build(),
		csvimport.Field("price").Required().Decimal().Min(zero).Build(),
		csvimport.Field("category").MaxLength(100).Build(),
		csvimport.Field("description").MaxLength(2000).Build(),
		csvimport.Field("tags").MaxLength(500).Build(),
		csvimport.Field("external_product_id").MaxLength(64).Build(),
		csvimport.Field("quantity").Int().Min(zero).Build(),
		csvimport.Field("location").MaxLength(100).Build(),
		csvimport.Field("reorder_point").Int().Min(zero).Build(),
	}
}

type importRow struct {
	line     int
	sku      string
	details  catalog.ProductDetails
	price    decimal.Decimal
	name     string
	stock    *stockLine
	existing *catalog.Product
}

type stockLine struct {
	quantity     int
	location     string
	reorderPoint int
}

// Import validates the whole file first. Rows failing validation are reported
// and skipped; the remaining rows are written one by one.
func (s *ProductImportService) Import(ctx context.Context, r io.Reader, req ImportProductsRequest) (*ProductImportResult, error) {
	if req.ConflictMode == "" {
		req.ConflictMode = ConflictModeSkip
	}
	if !req.ConflictMode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFLICT_MODE", "conflict_mode must be skip, update or fail")
	}

	validated, err := csvimport.Validate(ctx, r, s.Rules(), csvimport.Options{MaxRows: s.maxRows})
	if err != nil {
		return nil, fileError(err)
	}

	errs := validated.Errors
	result := &ProductImportResult{
		TotalRows: validated.TotalRows,
		ErrorRows: validated.InvalidRows,
		DryRun:    req.DryRun,
	}

	rows := make([]importRow, 0, len(validated.Valid))
	for _, row := range validated.Valid {
		ir := parseImportRow(row)
		existing, err := s.productRepo.FindBySKU(ctx, ir.sku)
		switch {
		case err == nil:
			ir.existing = existing
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
		rows = append(rows, ir)
	}

	if req.ConflictMode == ConflictModeFail {
		conflicts := 0
		for _, ir := range rows {
			if ir.existing != nil {
				conflicts++
				errs.Add(csvimport.RowError{Row: ir.line, Column: "sku", Code: csvimport.CodeConflict,
					Message: "product with this SKU already exists", Value: ir.sku})
			}
		}
		if conflicts > 0 {
			result.ErrorRows += conflicts
			result.SkippedRows = len(rows) - conflicts
			finish(result, errs)
			return result, nil
		}
	}

	for _, ir := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, err := s.apply(ctx, ir, req)
		if err != nil {
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code == shared.ErrIntegrationFailed.Code {
				return nil, err
			}
			result.ErrorRows++
			errs.Add(csvimport.RowError{Row: ir.line, Code: domainErr.Code, Message: domainErr.Message, Value: ir.sku})
			continue
		}
		switch outcome {
		case outcomeCreated:
			result.CreatedRows++
			if ir.stock != nil {
				result.StockItems++
			}
		case outcomeUpdated:
			result.UpdatedRows++
		case outcomeSkipped:
			result.SkippedRows++
		}
	}

	finish(result, errs)
	s.logger.Info("Product import finished",
		zap.Bool("dry_run", req.DryRun),
		zap.String("conflict_mode", string(req.ConflictMode)),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("created", result.CreatedRows),
		zap.Int("updated", result.UpdatedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows))
	return result, nil
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeSkipped
)

func (s *ProductImportService) apply(ctx context.Context, ir importRow, req ImportProductsRequest) (outcome, error) {
	if ir.existing != nil {
		if req.ConflictMode != ConflictModeUpdate {
			return outcomeSkipped, nil
		}
		details := ir.details
		details.Name = &ir.name
		details.Price = &ir.price
		if err := ir.existing.Update(details); err != nil {
			return 0, err
		}
		if req.DryRun {
			return outcomeUpdated, nil
		}
		return outcomeUpdated, s.productRepo.Save(ctx, ir.existing)
	}

	product, err := catalog.NewProduct(ir.sku, ir.name, ir.price)
	if err != nil {
		return 0, err
	}
	if err := product.Update(ir.details); err != nil {
		return 0, err
	}
	product.Version = 1

	var item *inventory.InventoryItem
	if ir.stock != nil {
		item, err = inventory.NewInventoryItem(product.ID, ir.stock.quantity, ir.stock.location, ir.stock.reorderPoint)
		if err != nil {
			return 0, err
		}
	}
	if req.DryRun {
		return outcomeCreated, nil
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return 0, err
	}
	if item != nil {
		if err := s.stock.Create(ctx, item); err != nil {
			return 0, err
		}
	}
	return outcomeCreated, nil
}

func parseImportRow(row *csvimport.Row) importRow {
	ir := importRow{
		line:  row.Line,
		sku:   catalog.NormalizeSKU(row.Get("sku")),
		name:  row.Get("name"),
		price: decimal.RequireFromString(row.Get("price")),
	}

	if v := row.Get("description"); v != "" {
		ir.details.Description = &v
	}
	if v := row.Get("category"); v != "" {
		ir.details.Category = &v
	}
	if v := row.Get("external_product_id"); v != "" {
		ir.details.ExternalProductID = &v
	}
	if v := row.Get("tags"); v != "" {
		ir.details.Tags = strings.Split(v, ";")
	}

	if q := row.Get("quantity"); q != "" {
		ir.stock = &stockLine{location: row.Get("location")}
		ir.stock.quantity, _ = strconv.Atoi(q)
		if rp := row.Get("reorder_point"); rp != "" {
			ir.stock.reorderPoint, _ = strconv.Atoi(rp)
		}
	}
	return ir
}

func finish(result *ProductImportResult, errs *csvimport.ErrorCollection) {
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()
}

// fileError turns a file level failure into a 400
func fileError(err error) error {
	for _, known := range []error{
		csvimport.ErrEmptyFile,
		csvimport.ErrInvalidEncoding,
		csvimport.ErrMissingHeader,
		csvimport.ErrInvalidHeader,
		csvimport.ErrTooManyRows,
	} {
		if errors.Is(err, known) {
			return shared.NewDomainError("INVALID_FILE", err.Error())
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("reading product import: %w", err)
}
