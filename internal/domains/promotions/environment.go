// Package promotions exposes the immutable environment of registered
// promotion calculators. The environment is assembled once at process
// start and injected into every component needing it, replacing ambient
// mutable registration.
package promotions

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	ordersdomain "github.com/hknkuvan/spree/internal/domains/orders/domain"
	"github.com/hknkuvan/spree/internal/domains/promotions/calculator"
)

// ErrUnknownCalculator signals a lookup for a name that was never registered.
var ErrUnknownCalculator = errors.New("unknown promotion calculator")

// Environment is the read-only registry of calculator variants, keyed by
// name. Build it once; it cannot be mutated afterwards.
type Environment struct {
	calculators map[string]calculator.Calculator
	names       []string
}

// Build assembles an environment from the given calculators. Duplicate
// names are a wiring bug and fail fast.
func Build(calculators ...calculator.Calculator) (*Environment, error) {
	env := &Environment{calculators: map[string]calculator.Calculator{}}
	for _, c := range calculators {
		if c == nil {
			return nil, errors.New("nil calculator registered")
		}
		name := c.Name()
		if _, ok := env.calculators[name]; ok {
			return nil, fmt.Errorf("calculator %q registered twice", name)
		}
		env.calculators[name] = c
		env.names = append(env.names, name)
	}
	return env, nil
}

// Default returns the environment with the stock calculator set
// registered, mirroring what ships enabled out of the box.
func Default() *Environment {
	env, err := Build(
		calculator.FlatRate{Amount: decimal.NewFromInt(5)},
		calculator.FlatPercentItemTotal{Percent: decimal.NewFromInt(10)},
		calculator.FlexiRate{FirstItem: decimal.NewFromInt(3), AdditionalItem: decimal.NewFromInt(1)},
		calculator.PerItem{Amount: decimal.NewFromInt(1)},
		calculator.TieredPercent{BasePercent: decimal.NewFromInt(5), Tiers: []calculator.Tier{
			{Threshold: decimal.NewFromInt(100), Percent: decimal.NewFromInt(10)},
			{Threshold: decimal.NewFromInt(250), Percent: decimal.NewFromInt(15)},
		}},
	)
	if err != nil {
		// Only reachable through a duplicate name in the stock set.
		panic(err)
	}
	return env
}

// Lookup resolves a registered calculator by name.
func (e *Environment) Lookup(name string) (calculator.Calculator, error) {
	c, ok := e.calculators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCalculator, name)
	}
	return c, nil
}

// Names lists registered calculator names in registration order.
func (e *Environment) Names() []string {
	return append([]string(nil), e.names...)
}

// Reconcile recomputes the order's promotion total from its applied
// calculator. Orders without a promotion resolve to a zero total; an
// unknown calculator name is surfaced as a domain error.
func (e *Environment) Reconcile(order *ordersdomain.Order) error {
	if order.AppliedPromotion == "" {
		order.PromoTotal = decimal.Zero
		return nil
	}
	c, err := e.Lookup(order.AppliedPromotion)
	if err != nil {
		return err
	}
	order.PromoTotal = c.Compute(order)
	return nil
}
