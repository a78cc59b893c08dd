package service

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/pzron/ecom-sub002/pkg/errors"
	"github.com/pzron/ecom-sub002/pkg/logger"
	"github.com/pzron/ecom-sub002/services/combo/internal/domain"
)

var evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "combo_evaluations_total",
	Help: "Combo validations and quotes by operation and outcome.",
}, []string{"operation", "result"})

// DiscountResult is the tier outcome for a basket size.
type DiscountResult struct {
	TotalPrice        int64   `json:"total_price"`
	ProductCount      int     `json:"product_count"`
	Discount          int64   `json:"discount"`
	SavingsPercentage float64 `json:"savings_percentage"`
}

// ComboService exposes the combo engine to transports.
type ComboService struct {
	engine *domain.Engine
	logger *slog.Logger
}

// NewComboService creates a ComboService.
func NewComboService(engine *domain.Engine, logger *slog.Logger) *ComboService {
	return &ComboService{engine: engine, logger: logger}
}

// Config returns the active combo rules.
func (s *ComboService) Config() domain.ComboConfig {
	return s.engine.Config()
}

// Discount returns the tier discount for a basket.
func (s *ComboService) Discount(_ context.Context, totalPrice int64, productCount int) (DiscountResult, error) {
	if err := checkBasket(totalPrice, productCount); err != nil {
		return DiscountResult{}, err
	}
	return DiscountResult{
		TotalPrice:        totalPrice,
		ProductCount:      productCount,
		Discount:          s.engine.CalculateComboDiscount(totalPrice, productCount),
		SavingsPercentage: s.engine.ComboSavingsPercentage(productCount),
	}, nil
}

// Validate checks a basket against every combo rule.
func (s *ComboService) Validate(ctx context.Context, totalPrice int64, productCount int, categories []string) (domain.Validation, error) {
	if err := checkBasket(totalPrice, productCount); err != nil {
		return domain.Validation{}, err
	}

	v := s.engine.IsValidCombo(totalPrice, productCount, categories)
	s.record(ctx, "validate", v)
	return v, nil
}

// Quote prices a basket as a combo.
func (s *ComboService) Quote(ctx context.Context, totalPrice int64, productCount int, categories []string) (domain.Quote, error) {
	if err := checkBasket(totalPrice, productCount); err != nil {
		return domain.Quote{}, err
	}

	q := s.engine.Quote(totalPrice, productCount, categories)
	s.record(ctx, "quote", q.Validation)
	return q, nil
}

func (s *ComboService) record(ctx context.Context, op string, v domain.Validation) {
	result := "valid"
	if !v.Valid {
		result = "invalid"
		logger.WithContext(ctx, s.logger).DebugContext(ctx, "combo rejected",
			slog.String("operation", op),
			slog.Any("errors", v.Errors),
		)
	}
	evaluationsTotal.WithLabelValues(op, result).Inc()
}

func checkBasket(totalPrice int64, productCount int) error {
	if totalPrice < 0 {
		return apperrors.InvalidInput("total price must not be negative")
	}
	if productCount < 0 {
		return apperrors.InvalidInput("product count must not be negative")
	}
	return nil
}
