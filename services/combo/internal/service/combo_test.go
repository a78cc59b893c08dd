package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pzron/ecom-sub002/pkg/errors"
	"github.com/pzron/ecom-sub002/services/combo/internal/domain"
)

func newTestService(t *testing.T) *ComboService {
	t.Helper()
	engine, err := domain.NewEngine(domain.DefaultComboConfig())
	require.NoError(t, err)
	return NewComboService(engine, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestComboService_Discount(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Discount(context.Background(), 10000, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(2000), res.Discount)
	assert.Equal(t, 20.0, res.SavingsPercentage)
}

func TestComboService_RejectsNegativeInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Discount(ctx, -1, 3)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.Validate(ctx, 3000, -2, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.Quote(ctx, -5, 3, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestComboService_Validate(t *testing.T) {
	svc := newTestService(t)

	v, err := svc.Validate(context.Background(), 1500, 4, []string{"Electronics"})

	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Len(t, v.Errors, 1)
}

func TestComboService_Quote(t *testing.T) {
	svc := newTestService(t)

	q, err := svc.Quote(context.Background(), 10000, 3, []string{"Sports"})

	require.NoError(t, err)
	assert.Equal(t, int64(9000), q.FinalPrice)
	assert.True(t, q.FreeShipping)
}

func TestComboService_Config(t *testing.T) {
	svc := newTestService(t)

	cfg := svc.Config()
	assert.Equal(t, 3, cfg.MinProducts)
	assert.Len(t, cfg.Tiers, 3)
}
