package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mapleplan/mapleplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ProjectionFormatter renders a deterministic projection in one output format.
type ProjectionFormatter interface {
	Name() string
	Format(results []domain.YearResult, summary domain.ProjectionSummary) ([]byte, error)
}

// NewProjectionFormatter returns the formatter for the named format.
func NewProjectionFormatter(format string) (ProjectionFormatter, error) {
	switch format {
	case "console", "table", "":
		return ConsoleProjection{}, nil
	case "csv":
		return CSVProjection{}, nil
	case "json":
		return JSONProjection{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ConsoleProjection prints a year-by-year table plus the lifetime summary.
type ConsoleProjection struct{}

func (ConsoleProjection) Name() string { return "console" }

func (ConsoleProjection) Format(results []domain.YearResult, summary domain.ProjectionSummary) ([]byte, error) {
	var b strings.Builder

	b.WriteString("HOUSEHOLD RETIREMENT PROJECTION\n")
	b.WriteString(strings.Repeat("=", 104) + "\n")
	fmt.Fprintf(&b, "%-5s %-4s %14s %14s %12s %12s %12s %14s %12s\n",
		"Year", "Age", "Gross Income", "Net Income", "Tax", "Clawback", "Spending", "Total Assets", "Shortfall")
	b.WriteString(strings.Repeat("-", 104) + "\n")

	for _, yr := range results {
		shortfall := "-"
		if yr.Deficit.GreaterThan(decimal.Zero) {
			shortfall = FormatCurrency(yr.Deficit)
		}
		fmt.Fprintf(&b, "%-5d %-4d %14s %14s %12s %12s %12s %14s %12s\n",
			yr.Year,
			yr.PrimaryAge(),
			FormatCurrency(yr.TotalGrossIncome),
			FormatCurrency(yr.TotalNetIncome),
			FormatCurrency(yr.TotalTax),
			FormatCurrency(yr.TotalOASClawback),
			FormatCurrency(yr.SpendingTarget),
			FormatCurrency(yr.TotalAssets),
			shortfall)
	}

	b.WriteString(strings.Repeat("-", 104) + "\n")
	fmt.Fprintf(&b, "Years projected:       %d\n", summary.Years)
	fmt.Fprintf(&b, "Lifetime gross income: %s\n", FormatCurrency(summary.LifetimeIncome))
	fmt.Fprintf(&b, "Lifetime tax paid:     %s\n", FormatCurrency(summary.LifetimeTax))
	fmt.Fprintf(&b, "Terminal assets:       %s\n", FormatCurrency(summary.TerminalAssets))
	fmt.Fprintf(&b, "Estimated estate tax:  %s\n", FormatCurrency(summary.EstateTax))
	fmt.Fprintf(&b, "Net estate:            %s\n", FormatCurrency(summary.NetEstate))

	return []byte(b.String()), nil
}

// CSVProjection emits one row per projection year.
type CSVProjection struct{}

func (CSVProjection) Name() string { return "csv" }

func (CSVProjection) Format(results []domain.YearResult, _ domain.ProjectionSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "PrimaryAge", "GrossIncome", "NetIncome", "Tax", "OASClawback", "SpendingTarget", "Deficit", "Surplus", "RRSPBalance", "TFSABalance", "OpenBalance", "TotalAssets"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, yr := range results {
		rrsp, tfsa, open := decimal.Zero, decimal.Zero, decimal.Zero
		for _, p := range yr.Persons {
			rrsp = rrsp.Add(p.RRSPBalance)
			tfsa = tfsa.Add(p.TFSABalance)
			open = open.Add(p.OpenBalance)
		}
		row := []string{
			fmt.Sprintf("%d", yr.Year),
			fmt.Sprintf("%d", yr.PrimaryAge()),
			yr.TotalGrossIncome.StringFixed(2),
			yr.TotalNetIncome.StringFixed(2),
			yr.TotalTax.StringFixed(2),
			yr.TotalOASClawback.StringFixed(2),
			yr.SpendingTarget.StringFixed(2),
			yr.Deficit.StringFixed(2),
			yr.Surplus.StringFixed(2),
			rrsp.StringFixed(2),
			tfsa.StringFixed(2),
			open.StringFixed(2),
			yr.TotalAssets.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSONProjection wraps the year records and summary in one document.
type JSONProjection struct{}

func (JSONProjection) Name() string { return "json" }

func (JSONProjection) Format(results []domain.YearResult, summary domain.ProjectionSummary) ([]byte, error) {
	doc := struct {
		Years   []domain.YearResult      `json:"years"`
		Summary domain.ProjectionSummary `json:"summary"`
	}{Years: results, Summary: summary}
	return json.MarshalIndent(doc, "", "  ")
}

// FormatCurrency formats a decimal as currency.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal fraction as a percentage.
func FormatPercentage(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
