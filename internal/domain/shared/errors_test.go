package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "Order not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))

	wrapped := fmt.Errorf("lookup: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	de, ok := AsDomainError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "Order not found", de.Message)
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 500, OrderDir: "sideways"}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 3, PageSize: 10}
	f.Normalize()
	assert.Equal(t, 20, f.Offset())
}

func TestNewPaginated_TotalPages(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func TestNewIntegrationError(t *testing.T) {
	cause := errors.New("carrier: status 503")
	err := NewIntegrationError("Shipping label request failed", cause)

	assert.ErrorIs(t, err, ErrIntegrationFailed)
	assert.ErrorIs(t, err, cause)

	de, ok := AsDomainError(err)
	assert.True(t, ok)
	assert.Equal(t, "Shipping label request failed", de.Message)
}
