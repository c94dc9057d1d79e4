package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stockroom/backend/internal/domain/shared"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"sku":        true,
	"name":       true,
	"price":      true,
	"category":   true,
}

// InventorySortFields contains allowed sort fields for inventory items
var InventorySortFields = map[string]bool{
	"created_at":        true,
	"updated_at":        true,
	"quantity":          true,
	"location":          true,
	"reorder_point":     true,
	"last_restocked_at": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"total_amount": true,
	"status":       true,
	"fulfilled_at": true,
}

// paginate applies whitelisted ordering plus offset/limit. table qualifies the
// sort column when the query joins other tables.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, table string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	if table != "" {
		field = table + "." + field
	}
	query = query.Order(fmt.Sprintf("%s %s", field, ValidateSortOrder(filter.OrderDir)))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern for LOWER(column) LIKE ?
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.ToLower(strings.TrimSpace(s)))
	return "%" + s + "%"
}
