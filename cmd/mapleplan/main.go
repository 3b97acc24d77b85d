package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mapleplan/mapleplan/internal/calculation"
	"github.com/mapleplan/mapleplan/internal/config"
	"github.com/mapleplan/mapleplan/internal/domain"
	"github.com/mapleplan/mapleplan/internal/output"
	"github.com/mapleplan/mapleplan/internal/tax"
	"github.com/mapleplan/mapleplan/internal/tui"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mapleplan",
	Short: "Household retirement projection CLI",
	Long:  "Multi-decade household retirement finance projections with Canadian tax, CPP/OAS benefits, and withdrawal planning",
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "mapleplan %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.String())
			}
		},
	}
}

func newEngine(cmd *cobra.Command) *calculation.Engine {
	engine := calculation.NewEngine()
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		engine.SetLogger(simpleCLILogger{})
	}
	return engine
}

var projectCmd = &cobra.Command{
	Use:   "project [scenario-file]",
	Short: "Run a deterministic year-by-year projection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		inputs, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		engine := newEngine(cmd)
		stochastic, _ := cmd.Flags().GetBool("stochastic")
		results := engine.RunSimulation(inputs, stochastic)
		if len(results) == 0 {
			return fmt.Errorf("no projection possible for the given scenario")
		}
		summary := engine.Summarize(inputs, results)

		format, _ := cmd.Flags().GetString("format")
		f, err := output.NewProjectionFormatter(format)
		if err != nil {
			return err
		}
		data, err := f.Format(results, summary)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo [scenario-file]",
	Short: "Run a Monte Carlo batch with randomized market returns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		inputs, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		engine := newEngine(cmd)
		iterations, _ := cmd.Flags().GetInt("iterations")
		seed, _ := cmd.Flags().GetInt64("seed")
		opts := calculation.MonteCarloOptions{Iterations: iterations, Seed: seed}

		useTUI, _ := cmd.Flags().GetBool("tui")
		var result *domain.MonteCarloResult
		if useTUI {
			model := tui.NewMonteCarloModel(engine, inputs, opts)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return err
			}
			m, ok := final.(tui.MonteCarloModel)
			if !ok {
				return fmt.Errorf("unexpected TUI model type")
			}
			if m.Err() != nil {
				return m.Err()
			}
			if m.Result() == nil {
				return fmt.Errorf("simulation cancelled")
			}
			result = m.Result()
		} else {
			result = engine.RunMonteCarlo(inputs, opts)
			if result.Iterations == 0 {
				return fmt.Errorf("no projection possible for the given scenario")
			}
		}

		format, _ := cmd.Flags().GetString("format")
		f, err := output.NewMonteCarloFormatter(format)
		if err != nil {
			return err
		}
		data, err := f.Format(result)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var splitCmd = &cobra.Command{
	Use:   "split [scenario-file]",
	Short: "Find the tax-minimizing pension income split for one year",
	Long: "With a scenario file, the optimizer runs on the household's first fully retired " +
		"projection year. Without one, the per-person --income/--pension/--oas flags describe " +
		"the year directly.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine(cmd)
		province, _ := cmd.Flags().GetString("province")

		var a, b calculation.SplitProfile
		inflationFactor := decimal.NewFromInt(1)
		if len(args) == 1 {
			parser := config.NewInputParser()
			inputs, err := parser.LoadFromFile(args[0])
			if err != nil {
				return err
			}
			if inputs.Spouse == nil {
				return fmt.Errorf("income splitting requires a spouse in the scenario")
			}
			province = inputs.Province
			a, b, inflationFactor, err = firstRetiredYearProfiles(engine, inputs)
			if err != nil {
				return err
			}
		} else {
			var err error
			a, err = splitProfileFromFlags(cmd, "a")
			if err != nil {
				return err
			}
			b, err = splitProfileFromFlags(cmd, "b")
			if err != nil {
				return err
			}
		}

		result := engine.ComputeOptimalSplit(a, b, province, inflationFactor)

		if result.Amount.LessThanOrEqual(decimal.Zero) {
			fmt.Println("No pension transfer improves on the standalone taxes.")
			fmt.Printf("Combined tax: %s\n", output.FormatCurrency(result.BaselineTax))
			return nil
		}
		fmt.Printf("Transfer %s of eligible pension from %s to %s\n",
			output.FormatCurrency(result.Amount), result.FromName, result.ToName)
		fmt.Printf("Combined tax before: %s\n", output.FormatCurrency(result.BaselineTax))
		fmt.Printf("Combined tax after:  %s\n", output.FormatCurrency(result.FromTax.Add(result.ToTax)))
		fmt.Printf("Annual savings:      %s\n", output.FormatCurrency(result.Savings))
		return nil
	},
}

// firstRetiredYearProfiles projects the scenario without splitting and
// lifts both spouses' tax positions from the first year everyone is
// retired and alive.
func firstRetiredYearProfiles(engine *calculation.Engine, inputs *domain.SimulationInputs) (a, b calculation.SplitProfile, inflationFactor decimal.Decimal, err error) {
	base := *inputs
	base.SplitIncome = false
	results := engine.RunSimulation(&base, false)
	if len(results) == 0 {
		return a, b, decimal.Zero, fmt.Errorf("no projection possible for the given scenario")
	}

	retirementAge := inputs.Person.RetirementAge
	for _, yr := range results {
		if yr.PrimaryAge() < retirementAge || len(yr.Persons) != 2 {
			continue
		}
		if yr.Persons[0].Deceased || yr.Persons[1].Deceased {
			continue
		}
		profiles := [2]calculation.SplitProfile{}
		for i, py := range yr.Persons {
			pension := decimal.Zero
			if py.Age >= 65 {
				pension = py.Income.RRIFMinimum.Add(py.Income.MeltWithdraw)
			}
			profiles[i] = calculation.SplitProfile{
				Name:               py.Name,
				Age:                py.Age,
				TaxableIncome:      py.TaxableIncome,
				EligiblePension:    pension,
				OASAmount:          py.Income.OAS,
				GrossedUpDividends: py.Income.Dividends.Mul(tax.DividendGrossUp),
			}
		}
		return profiles[0], profiles[1], yr.InflationFactor, nil
	}
	return a, b, decimal.Zero, fmt.Errorf("no year found with both spouses retired and alive")
}

func splitProfileFromFlags(cmd *cobra.Command, suffix string) (calculation.SplitProfile, error) {
	name, _ := cmd.Flags().GetString("name-" + suffix)
	age, _ := cmd.Flags().GetInt("age-" + suffix)
	income, err := decimalFlag(cmd, "income-"+suffix)
	if err != nil {
		return calculation.SplitProfile{}, err
	}
	pension, err := decimalFlag(cmd, "pension-"+suffix)
	if err != nil {
		return calculation.SplitProfile{}, err
	}
	oas, err := decimalFlag(cmd, "oas-"+suffix)
	if err != nil {
		return calculation.SplitProfile{}, err
	}
	return calculation.SplitProfile{
		Name:            name,
		Age:             age,
		TaxableIncome:   income,
		EligiblePension: pension,
		OASAmount:       oas,
	}, nil
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid value for --%s: %w", name, err)
	}
	return d, nil
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	projectCmd.Flags().String("format", "console", "Output format (console, csv, json)")
	projectCmd.Flags().Bool("stochastic", false, "Randomize market returns each year")

	montecarloCmd.Flags().String("format", "console", "Output format (console, csv, json)")
	montecarloCmd.Flags().Int("iterations", calculation.DefaultMonteCarloIterations, "Number of Monte Carlo runs")
	montecarloCmd.Flags().Int64("seed", 0, "Random seed (0 picks a time-based seed)")
	montecarloCmd.Flags().Bool("tui", false, "Show an interactive progress view")

	splitCmd.Flags().String("province", "ON", "Province code for the tax tables")
	splitCmd.Flags().String("name-a", "Person A", "First person's name")
	splitCmd.Flags().Int("age-a", 65, "First person's age")
	splitCmd.Flags().String("income-a", "0", "First person's taxable income")
	splitCmd.Flags().String("pension-a", "0", "First person's eligible pension income")
	splitCmd.Flags().String("oas-a", "0", "First person's OAS received")
	splitCmd.Flags().String("name-b", "Person B", "Second person's name")
	splitCmd.Flags().Int("age-b", 65, "Second person's age")
	splitCmd.Flags().String("income-b", "0", "Second person's taxable income")
	splitCmd.Flags().String("pension-b", "0", "Second person's eligible pension income")
	splitCmd.Flags().String("oas-b", "0", "Second person's OAS received")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(montecarloCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
