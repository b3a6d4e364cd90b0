package billing

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

func TestCalculateCost(t *testing.T) {
	svc, err := NewService(config.PricingConfig{Diesel: 1.5, Gasoline: 1.25, LPG: 0.5, Currency: "GBP"}, zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tests := []struct {
		fuel   domain.FuelKind
		litres float64
		price  float64
		cost   float64
	}{
		{domain.FuelDiesel, 10, 1.5, 15},
		{domain.FuelGasoline, 4, 1.25, 5},
		{domain.FuelLPG, 0, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.fuel.String(), func(t *testing.T) {
			price, cost, err := svc.CalculateCost(tt.fuel, tt.litres)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if price != tt.price {
				t.Errorf("expected unit price %v, got %v", tt.price, price)
			}
			if cost != tt.cost {
				t.Errorf("expected cost %v, got %v", tt.cost, cost)
			}
		})
	}
}

func TestCalculateCost_KeepsFractionalCents(t *testing.T) {
	svc, err := NewService(config.PricingConfig{Diesel: 1.5, Gasoline: 1.25, LPG: 1.32, Currency: "GBP"}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, cost, err := svc.CalculateCost(domain.FuelLPG, 15.333)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if math.Abs(cost-20.23956) > 1e-9 {
		t.Errorf("expected cost 20.23956, got %v", cost)
	}
}

func TestCalculateCost_UnknownFuel(t *testing.T) {
	svc, _ := NewService(DefaultPricingConfig(), nil)

	if _, _, err := svc.CalculateCost(domain.FuelKind(9), 10); err == nil {
		t.Fatal("expected error for unknown fuel kind")
	}
}

func TestNewService_RejectsNegativePrice(t *testing.T) {
	if _, err := NewService(config.PricingConfig{Diesel: -1}, nil); err == nil {
		t.Fatal("expected error, got nil")
	}
}
