package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mapleplan/mapleplan/internal/domain"
)

// MonteCarloFormatter renders a Monte Carlo batch in one output format.
type MonteCarloFormatter interface {
	Name() string
	Format(result *domain.MonteCarloResult) ([]byte, error)
}

// NewMonteCarloFormatter returns the formatter for the named format.
func NewMonteCarloFormatter(format string) (MonteCarloFormatter, error) {
	switch format {
	case "console", "table", "":
		return ConsoleMonteCarlo{}, nil
	case "csv":
		return CSVMonteCarlo{}, nil
	case "json":
		return JSONMonteCarlo{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ConsoleMonteCarlo prints the percentile bands table and headline stats.
type ConsoleMonteCarlo struct{}

func (ConsoleMonteCarlo) Name() string { return "console" }

func (ConsoleMonteCarlo) Format(result *domain.MonteCarloResult) ([]byte, error) {
	var b strings.Builder

	b.WriteString("MONTE CARLO PROJECTION\n")
	b.WriteString(strings.Repeat("=", 92) + "\n")
	fmt.Fprintf(&b, "Iterations:              %d\n", result.Iterations)
	fmt.Fprintf(&b, "Success rate:            %s\n", FormatPercentage(result.SuccessRate))
	fmt.Fprintf(&b, "Median terminal assets:  %s\n", FormatCurrency(result.MedianTerminalAssets))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-5s %-4s %14s %14s %14s %14s %14s\n",
		"Year", "Age", "P5", "P25", "P50", "P75", "P95")
	b.WriteString(strings.Repeat("-", 92) + "\n")
	for _, band := range result.Bands {
		fmt.Fprintf(&b, "%-5d %-4d %14s %14s %14s %14s %14s\n",
			band.Year, band.PrimaryAge,
			FormatCurrency(band.P5),
			FormatCurrency(band.P25),
			FormatCurrency(band.P50),
			FormatCurrency(band.P75),
			FormatCurrency(band.P95))
	}
	return []byte(b.String()), nil
}

// CSVMonteCarlo emits one row per projection year.
type CSVMonteCarlo struct{}

func (CSVMonteCarlo) Name() string { return "csv" }

func (CSVMonteCarlo) Format(result *domain.MonteCarloResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Year", "PrimaryAge", "P5", "P25", "P50", "P75", "P95"}); err != nil {
		return nil, err
	}
	for _, band := range result.Bands {
		row := []string{
			fmt.Sprintf("%d", band.Year),
			fmt.Sprintf("%d", band.PrimaryAge),
			band.P5.StringFixed(2),
			band.P25.StringFixed(2),
			band.P50.StringFixed(2),
			band.P75.StringFixed(2),
			band.P95.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSONMonteCarlo marshals the full batch result.
type JSONMonteCarlo struct{}

func (JSONMonteCarlo) Name() string { return "json" }

func (JSONMonteCarlo) Format(result *domain.MonteCarloResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
