package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

func TestErrores_EnvuelvenSuClase(t *testing.T) {
	assert.True(t, errors.Is(domain.ErrProductNotFound, domain.ErrNotFound))
	assert.True(t, errors.Is(domain.ErrNoSourceStock, domain.ErrNotFound))
	assert.True(t, errors.Is(domain.ErrSameLocation, domain.ErrInvalidInput))
	assert.True(t, errors.Is(domain.ErrDuplicateSKU, domain.ErrDuplicate))
	assert.True(t, errors.Is(domain.ErrInsufficientStock, domain.ErrInvalidState))
	assert.False(t, errors.Is(domain.ErrInsufficientStock, domain.ErrNotFound))
}

func TestInsufficientStock_IncluyeCantidades(t *testing.T) {
	err := domain.InsufficientStock(5, 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Contains(t, err.Error(), "disponible: 5")
	assert.Contains(t, err.Error(), "solicitado: 10")
}
