// Package tui shows planning and transfer progress in a Bubble Tea terminal UI.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/bulk-downloader/internal/download"
	"github.com/handiism/bulk-downloader/internal/mode"
	"github.com/handiism/bulk-downloader/internal/report"
	"github.com/handiism/bulk-downloader/internal/utils"
)

var (
	accent = lipgloss.Color("#4ECDC4")
	red    = lipgloss.Color("#FF6B6B")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(red)
	textStyle    = lipgloss.NewStyle().Foreground(accent)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	failStyle    = lipgloss.NewStyle().Foreground(red)
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(accent).Padding(0, 1)
)

type eventMark struct {
	mark  string
	style lipgloss.Style
}

// eventMarks decorates log lines by level.
var eventMarks = map[download.ProgressLevel]eventMark{
	download.LevelError:   {"✗", failStyle},
	download.LevelWarning: {"!", lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))},
	download.LevelSuccess: {"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))},
	download.LevelInfo:    {"›", textStyle},
	download.LevelVerbose: {"·", mutedStyle},
}

const (
	maxLogs     = 10
	maxFailures = 10

	tickInterval = 200 * time.Millisecond
)

var errCancelled = errors.New("cancelled by user")

// State is the phase the UI is in.
type State int

const (
	StatePlanning State = iota
	StateDownloading
	StateComplete
	StateError
)

// Runner is the part of app.App the UI drives.
type Runner interface {
	Plan(ctx context.Context, in mode.Inputs) (*mode.Plan, error)
	Transfer(ctx context.Context, plan *mode.Plan) report.Report
	Progress() (received int64, finished, failed, total int32)
}

// Model is the Bubble Tea model for one run.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	logs     []download.ProgressEvent
	err      error
	verbose  bool

	runner Runner
	inputs mode.Inputs
	plan   *mode.Plan
	report *report.Report

	// ctx is cancelled by esc and ctrl+c; planning and transfer both run under it.
	ctx    context.Context
	cancel context.CancelFunc

	receivedBytes int64
	finishedFiles int32
	failedFiles   int32
	totalFiles    int32
}

// NewModel creates a model that plans and transfers in with runner.
func NewModel(ctx context.Context, runner Runner, in mode.Inputs, verbose bool) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(textStyle))

	bar := progress.New(progress.WithGradient("#4ECDC4", "#95E1A3"))
	bar.Width = 50

	ctx, cancel := context.WithCancel(ctx)
	return Model{
		state:    StatePlanning,
		spinner:  sp,
		progress: bar,
		verbose:  verbose,
		runner:   runner,
		inputs:   in,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init starts the spinner and the planning step.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.planDownloads())
}

type (
	// ProgressMsg carries one transfer event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// PlanDoneMsg is sent when planning ends.
	PlanDoneMsg struct {
		Plan *mode.Plan
		Err  error
	}

	// DownloadDoneMsg is sent when every transfer has finished.
	DownloadDoneMsg struct {
		Report report.Report
	}

	// TickMsg polls the runner for counters.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = clamp(msg.Width-20, 20, 80)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = append(m.logs, msg.Event)
			if n := len(m.logs); n > maxLogs {
				m.logs = m.logs[n-maxLogs:]
			}
		}
		return m, nil

	case PlanDoneMsg:
		if m.state != StatePlanning {
			return m, nil
		}
		if msg.Err != nil {
			m.state, m.err = StateError, msg.Err
			return m, nil
		}
		m.plan = msg.Plan
		m.totalFiles = int32(len(msg.Plan.Descriptors))
		m.state = StateDownloading
		return m, tea.Batch(m.startDownload(), tick())

	case DownloadDoneMsg:
		r := msg.Report
		m.report = &r
		m.refreshProgress()
		switch {
		case m.ctx.Err() != nil:
			m.state, m.err = StateError, errCancelled
		case !r.OK():
			m.state, m.err = StateError, r.Err()
		default:
			m.state = StateComplete
		}
		return m, m.progress.SetPercent(1)

	case TickMsg:
		if m.state != StateDownloading {
			return m, nil
		}
		m.refreshProgress()
		return m, tea.Batch(m.progress.SetPercent(m.percent()), tick())

	case progress.FrameMsg:
		next, cmd := m.progress.Update(msg)
		m.progress = next.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	running := m.state == StatePlanning || m.state == StateDownloading

	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		if m.err == nil && m.report == nil {
			m.err = errCancelled
		}
		return m, tea.Quit
	case "esc":
		if running {
			m.cancel()
			m.state, m.err = StateError, errCancelled
		}
	case "v":
		m.verbose = !m.verbose
	case "q":
		if !running {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) refreshProgress() {
	if m.runner == nil {
		return
	}
	received, finished, failed, total := m.runner.Progress()
	m.receivedBytes, m.finishedFiles, m.failedFiles = received, finished, failed
	if total > 0 {
		m.totalFiles = total
	}
}

func (m Model) percent() float64 {
	if m.totalFiles == 0 {
		return 0
	}
	return float64(m.finishedFiles+m.failedFiles) / float64(m.totalFiles)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// View renders the UI.
func (m Model) View() string {
	var body, keys string
	switch m.state {
	case StatePlanning:
		body, keys = m.spinner.View()+" "+textStyle.Render(m.planningText()), "v verbose · esc cancel"
	case StateDownloading:
		body, keys = m.downloadingView(), "v verbose · esc cancel"
	case StateComplete:
		body, keys = summaryStyle.Render(fmt.Sprintf("Download Complete\n%d files, %s",
			m.finishedFiles, utils.HumanBytes(m.receivedBytes))), "q quit"
	case StateError:
		body, keys = m.errorView(), "q quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("bulk-dl"),
		"",
		body,
		"",
		mutedStyle.Render(keys),
	)
}

func (m Model) planningText() string {
	if m.inputs.URL != nil {
		return "Preparing " + m.inputs.URL.String()
	}
	return "Scanning " + m.inputs.Dir + " for URLs"
}

func (m Model) downloadingView() string {
	lines := make([]string, 0, len(m.logs)+4)
	if m.plan != nil {
		lines = append(lines, textStyle.Render(fmt.Sprintf("%s mode: %d download(s) into %s",
			m.plan.Mode, len(m.plan.Descriptors), m.plan.OutputDir)))
	}
	lines = append(lines,
		m.progress.ViewAs(m.percent()),
		fmt.Sprintf("%d/%d done, %d failed, %s received",
			m.finishedFiles+m.failedFiles, m.totalFiles, m.failedFiles, utils.HumanBytes(m.receivedBytes)),
		"",
	)
	for _, event := range m.logs {
		em, ok := eventMarks[event.Level]
		if !ok {
			em = eventMarks[download.LevelVerbose]
		}
		lines = append(lines, em.style.Render(em.mark+" "+event.Message))
	}
	return strings.Join(lines, "\n")
}

func (m Model) errorView() string {
	err := m.err
	if err == nil {
		err = errCancelled
	}
	lines := []string{failStyle.Render("Error: " + err.Error())}
	if m.report == nil || len(m.report.Failures) == 0 {
		return lines[0]
	}

	lines = append(lines, "", fmt.Sprintf("%d of %d downloads failed:", len(m.report.Failures), m.report.Total))
	for i, line := range m.report.Failures {
		if i == maxFailures {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("... and %d more", len(m.report.Failures)-maxFailures)))
			break
		}
		lines = append(lines, failStyle.Render("✗ "+line))
	}
	return strings.Join(lines, "\n")
}

// Report returns the final report, or nil if the transfer never finished.
func (m Model) Report() *report.Report {
	return m.report
}

// Err returns the error that ended the run, if any.
func (m Model) Err() error {
	return m.err
}

// planDownloads runs discovery in the background.
func (m Model) planDownloads() tea.Cmd {
	ctx, runner, in := m.ctx, m.runner, m.inputs
	return func() tea.Msg {
		plan, err := runner.Plan(ctx, in)
		return PlanDoneMsg{Plan: plan, Err: err}
	}
}

// startDownload starts the actual download in background.
func (m Model) startDownload() tea.Cmd {
	ctx, runner, plan := m.ctx, m.runner, m.plan
	return func() tea.Msg {
		return DownloadDoneMsg{Report: runner.Transfer(ctx, plan)}
	}
}

// Run starts the TUI application. newRunner receives the callback that forwards
// transfer events to the UI and must return the runner to drive.
func Run(ctx context.Context, in mode.Inputs, verbose bool, newRunner func(onProgress func(download.ProgressEvent)) (Runner, error)) (*report.Report, error) {
	var p *tea.Program
	runner, err := newRunner(func(event download.ProgressEvent) {
		p.Send(ProgressMsg{Event: event})
	})
	if err != nil {
		return nil, err
	}

	model := NewModel(ctx, runner, in, verbose)
	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, err
	}

	fm, _ := final.(Model)
	if fm.Report() == nil && fm.Err() == nil {
		return nil, errCancelled
	}
	return fm.Report(), fm.Err()
}
