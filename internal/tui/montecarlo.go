package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mapleplan/mapleplan/internal/calculation"
	"github.com/mapleplan/mapleplan/internal/domain"
	"github.com/mapleplan/mapleplan/internal/output"
)

// ProgressMsg reports Monte Carlo batch progress.
type ProgressMsg struct {
	Completed int
	Total     int
}

// CompleteMsg carries the finished batch result.
type CompleteMsg struct {
	Result *domain.MonteCarloResult
}

// ErrorMsg signals a failed batch.
type ErrorMsg struct {
	Err error
}

// MonteCarloModel drives a Monte Carlo batch with a live progress bar and
// renders the band summary when the batch completes.
type MonteCarloModel struct {
	engine *calculation.Engine
	inputs *domain.SimulationInputs
	opts   calculation.MonteCarloOptions

	bar       progress.Model
	updates   chan tea.Msg
	completed int
	total     int
	result    *domain.MonteCarloResult
	err       error
	done      bool
	width     int
}

// NewMonteCarloModel creates the model; the batch starts on Init.
func NewMonteCarloModel(engine *calculation.Engine, inputs *domain.SimulationInputs, opts calculation.MonteCarloOptions) MonteCarloModel {
	total := opts.Iterations
	if total <= 0 {
		total = calculation.DefaultMonteCarloIterations
	}
	return MonteCarloModel{
		engine:  engine,
		inputs:  inputs,
		opts:    opts,
		bar:     progress.New(progress.WithDefaultGradient()),
		updates: make(chan tea.Msg, total+1),
		total:   total,
		width:   80,
	}
}

// Init starts the batch in the background and begins draining its updates.
func (m MonteCarloModel) Init() tea.Cmd {
	return tea.Batch(m.startBatchCmd(), m.waitForUpdate())
}

func (m MonteCarloModel) startBatchCmd() tea.Cmd {
	return func() tea.Msg {
		opts := m.opts
		opts.Iterations = m.total
		opts.OnProgress = func(completed, total int) {
			m.updates <- ProgressMsg{Completed: completed, Total: total}
		}
		result := m.engine.RunMonteCarlo(m.inputs, opts)
		if result.Iterations == 0 {
			m.updates <- ErrorMsg{Err: fmt.Errorf("simulation inputs rejected")}
		} else {
			m.updates <- CompleteMsg{Result: result}
		}
		return nil
	}
}

func (m MonteCarloModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

// Update handles progress, completion, and key events.
func (m MonteCarloModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 12
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case ProgressMsg:
		m.completed = msg.Completed
		m.total = msg.Total
		return m, m.waitForUpdate()

	case CompleteMsg:
		m.result = msg.Result
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the live progress or, once done, the batch summary.
func (m MonteCarloModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Monte Carlo Projection"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		return panelStyle.Render(b.String())
	}

	if !m.done {
		percent := 0.0
		if m.total > 0 {
			percent = float64(m.completed) / float64(m.total)
		}
		b.WriteString(m.bar.ViewAs(percent))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d/%d runs", m.completed, m.total)))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("q to cancel"))
		return panelStyle.Render(b.String())
	}

	b.WriteString(fmt.Sprintf("Iterations:             %d\n", m.result.Iterations))
	b.WriteString("Success rate:           ")
	b.WriteString(statStyle.Render(output.FormatPercentage(m.result.SuccessRate)))
	b.WriteString("\n")
	b.WriteString("Median terminal assets: ")
	b.WriteString(statStyle.Render(output.FormatCurrency(m.result.MedianTerminalAssets)))
	b.WriteString("\n")
	return panelStyle.Render(b.String())
}

// Result returns the finished batch, or nil when cancelled or failed.
func (m MonteCarloModel) Result() *domain.MonteCarloResult {
	return m.result
}

// Err returns the batch error, if any.
func (m MonteCarloModel) Err() error {
	return m.err
}
