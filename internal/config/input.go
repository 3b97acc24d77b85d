package config

import (
	"fmt"
	"os"

	"github.com/mapleplan/mapleplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of scenario input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a simulation scenario from a YAML file.
func (ip *InputParser) LoadFromFile(filename string) (*domain.SimulationInputs, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.LoadFromBytes(data)
}

// LoadFromBytes parses and validates a YAML scenario document.
func (ip *InputParser) LoadFromBytes(data []byte) (*domain.SimulationInputs, error) {
	var inputs domain.SimulationInputs
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.Validate(&inputs); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	return &inputs, nil
}

// Validate checks the scenario for configurations the engine would reject
// or silently misinterpret. Age problems are reported here so the caller
// sees a reason instead of the engine's empty result sequence.
func (ip *InputParser) Validate(inputs *domain.SimulationInputs) error {
	if inputs.Person == nil {
		return fmt.Errorf("person is required")
	}
	if err := ip.validatePerson("person", inputs.Person); err != nil {
		return err
	}
	if inputs.Spouse != nil {
		if err := ip.validatePerson("spouse", inputs.Spouse); err != nil {
			return err
		}
	}

	if inputs.Policy != "" && !inputs.Policy.IsValid() {
		return fmt.Errorf("withdrawal_policy must be %q or %q, got %q",
			domain.WithdrawTaxEfficient, domain.WithdrawDeferredFirst, inputs.Policy)
	}

	if inputs.InflationRate.LessThan(decimal.NewFromFloat(-0.10)) {
		return fmt.Errorf("inflation rate cannot be less than -10%% (extreme deflation)")
	}
	if inputs.PreRetirementSpend.LessThan(decimal.Zero) || inputs.PostRetirementSpend.LessThan(decimal.Zero) {
		return fmt.Errorf("spending targets cannot be negative")
	}
	if inputs.Returns.CapitalGrowth.LessThan(decimal.NewFromInt(-1)) {
		return fmt.Errorf("capital growth cannot be less than -100%%")
	}
	if inputs.Returns.Volatility.LessThan(decimal.Zero) {
		return fmt.Errorf("volatility cannot be negative")
	}

	for i, ev := range inputs.Events {
		if ev.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("event %d (%s): amount cannot be negative (use is_expense to set direction)", i, ev.Name)
		}
		if ev.Age < 0 {
			return fmt.Errorf("event %d (%s): trigger age cannot be negative", i, ev.Name)
		}
	}

	return nil
}

func (ip *InputParser) validatePerson(label string, p *domain.Person) error {
	if p.Age < 0 || p.RetirementAge < 0 || p.DeathAge < 0 {
		return fmt.Errorf("%s: ages cannot be negative", label)
	}
	if p.RetirementAge > p.DeathAge {
		return fmt.Errorf("%s: retirement age %d is after death age %d", label, p.RetirementAge, p.DeathAge)
	}
	if p.Age > p.DeathAge {
		return fmt.Errorf("%s: current age %d is past death age %d", label, p.Age, p.DeathAge)
	}
	if p.EmploymentIncome.LessThan(decimal.Zero) {
		return fmt.Errorf("%s: employment income cannot be negative", label)
	}
	if p.RRSP.Balance.LessThan(decimal.Zero) || p.TFSA.Balance.LessThan(decimal.Zero) || p.Open.Balance.LessThan(decimal.Zero) {
		return fmt.Errorf("%s: account balances cannot be negative", label)
	}
	if p.Open.ACB.LessThan(decimal.Zero) {
		return fmt.Errorf("%s: adjusted cost base cannot be negative", label)
	}

	mixTotal := p.Open.Mix.Interest.Add(p.Open.Mix.Dividend).Add(p.Open.Mix.Capital)
	if p.Open.Balance.GreaterThan(decimal.Zero) && mixTotal.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		return fmt.Errorf("%s: open account asset mix must sum to 1.0, got %s", label, mixTotal.StringFixed(3))
	}

	if p.Melt != nil {
		if p.Melt.StartAge < 0 {
			return fmt.Errorf("%s: melt start age cannot be negative", label)
		}
		if p.Melt.AnnualAmount.LessThan(decimal.Zero) {
			return fmt.Errorf("%s: melt annual amount cannot be negative", label)
		}
	}
	return nil
}
