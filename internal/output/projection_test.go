package output

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapleplan/mapleplan/internal/domain"
)

func sampleResults() ([]domain.YearResult, domain.ProjectionSummary) {
	results := []domain.YearResult{
		{
			Year:            0,
			InflationFactor: decimal.NewFromInt(1),
			Persons: []domain.PersonYear{{
				Name:        "Avery",
				Age:         65,
				RRSPBalance: decimal.NewFromInt(400000),
				TFSABalance: decimal.NewFromInt(90000),
				OpenBalance: decimal.NewFromInt(150000),
			}},
			TotalGrossIncome: decimal.NewFromInt(60000),
			TotalTax:         decimal.NewFromInt(12000),
			TotalOASClawback: decimal.NewFromInt(500),
			TotalNetIncome:   decimal.NewFromInt(48000),
			SpendingTarget:   decimal.NewFromInt(55000),
			Deficit:          decimal.NewFromInt(7000),
			TotalAssets:      decimal.NewFromInt(640000),
		},
		{
			Year:            1,
			InflationFactor: decimal.NewFromFloat(1.02),
			Persons: []domain.PersonYear{{
				Name: "Avery",
				Age:  66,
			}},
			TotalGrossIncome: decimal.NewFromInt(61000),
			TotalNetIncome:   decimal.NewFromInt(49000),
			SpendingTarget:   decimal.NewFromInt(56100),
			Surplus:          decimal.NewFromInt(2000),
			TotalAssets:      decimal.NewFromInt(630000),
		},
	}
	summary := domain.ProjectionSummary{
		Years:          2,
		LifetimeIncome: decimal.NewFromInt(121000),
		LifetimeTax:    decimal.NewFromInt(12000),
		TerminalAssets: decimal.NewFromInt(630000),
		EstateTax:      decimal.NewFromInt(100000),
		NetEstate:      decimal.NewFromInt(530000),
	}
	return results, summary
}

func TestNewProjectionFormatter(t *testing.T) {
	for _, name := range []string{"", "console", "table", "csv", "json"} {
		f, err := NewProjectionFormatter(name)
		require.NoError(t, err, name)
		require.NotNil(t, f)
	}
	_, err := NewProjectionFormatter("xml")
	assert.Error(t, err)
}

func TestConsoleProjectionFormat(t *testing.T) {
	results, summary := sampleResults()
	data, err := ConsoleProjection{}.Format(results, summary)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "HOUSEHOLD RETIREMENT PROJECTION")
	assert.Contains(t, text, "$640000.00")
	assert.Contains(t, text, "$7000.00", "a deficit year shows its shortfall")
	assert.Contains(t, text, "Net estate:")
	assert.Contains(t, text, "$530000.00")
}

func TestCSVProjectionFormat(t *testing.T) {
	results, summary := sampleResults()
	data, err := CSVProjection{}.Format(results, summary)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per year")
	assert.Equal(t, "Year", records[0][0])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "65", records[1][1])
	assert.Equal(t, "400000.00", records[1][9])
	assert.Equal(t, "640000.00", records[1][12])
}

func TestJSONProjectionFormat(t *testing.T) {
	results, summary := sampleResults()
	data, err := JSONProjection{}.Format(results, summary)
	require.NoError(t, err)

	var doc struct {
		Years   []domain.YearResult      `json:"years"`
		Summary domain.ProjectionSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Years, 2)
	assert.Equal(t, 2, doc.Summary.Years)
	assert.True(t, doc.Years[0].TotalAssets.Equal(decimal.NewFromInt(640000)))
}

func TestMonteCarloFormatters(t *testing.T) {
	result := &domain.MonteCarloResult{
		Iterations:           100,
		SuccessRate:          decimal.NewFromFloat(0.87),
		MedianTerminalAssets: decimal.NewFromInt(250000),
		Bands: []domain.YearBand{
			{
				Year:       0,
				PrimaryAge: 65,
				P5:         decimal.NewFromInt(100000),
				P25:        decimal.NewFromInt(150000),
				P50:        decimal.NewFromInt(200000),
				P75:        decimal.NewFromInt(260000),
				P95:        decimal.NewFromInt(340000),
			},
		},
	}

	console, err := ConsoleMonteCarlo{}.Format(result)
	require.NoError(t, err)
	assert.Contains(t, string(console), "87.0%")
	assert.Contains(t, string(console), "$250000.00")

	csvData, err := CSVMonteCarlo{}.Format(result)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(csvData))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "P95", records[0][6])
	assert.Equal(t, "340000.00", records[1][6])

	jsonData, err := JSONMonteCarlo{}.Format(result)
	require.NoError(t, err)
	var back domain.MonteCarloResult
	require.NoError(t, json.Unmarshal(jsonData, &back))
	assert.Equal(t, 100, back.Iterations)

	_, err = NewMonteCarloFormatter("xml")
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$1234.50", FormatCurrency(decimal.NewFromFloat(1234.5)))
	assert.Equal(t, "12.5%", FormatPercentage(decimal.NewFromFloat(0.125)))
}
