package billing

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// DefaultPricingConfig returns the default price per litre.
func DefaultPricingConfig() config.PricingConfig {
	return config.Default().Pricing
}

// Service prices fuel. Prices are looked up per fuel kind; a kind without a
// price is an error rather than a free fill.
type Service struct {
	prices   [domain.FuelKindCount]float64
	currency string
	log      *zap.Logger
}

func NewService(pricing config.PricingConfig, log *zap.Logger) (*Service, error) {
	if err := pricing.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{currency: pricing.Currency, log: log}
	s.prices[domain.FuelDiesel] = pricing.Diesel
	s.prices[domain.FuelGasoline] = pricing.Gasoline
	s.prices[domain.FuelLPG] = pricing.LPG
	return s, nil
}

// UnitPrice returns the price per litre of fuel.
func (s *Service) UnitPrice(fuel domain.FuelKind) (float64, error) {
	i, ok := fuel.Index()
	if !ok {
		return 0, fmt.Errorf("no price for %s", fuel)
	}
	return s.prices[i], nil
}

// CalculateCost returns litres × unit price. The cost is kept exact;
// rounding to cents is left to presentation.
func (s *Service) CalculateCost(fuel domain.FuelKind, litres float64) (unitPrice, cost float64, err error) {
	unitPrice, err = s.UnitPrice(fuel)
	if err != nil {
		return 0, 0, err
	}
	cost = litres * unitPrice

	s.log.Debug("Calculated fuel cost",
		zap.String("fuel", fuel.String()),
		zap.Float64("litres", litres),
		zap.Float64("unit_price", unitPrice),
		zap.Float64("cost", cost),
	)
	return unitPrice, cost, nil
}

func (s *Service) Currency() string {
	return s.currency
}
