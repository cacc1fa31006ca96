package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobradar/internal/model"
)

var errStopping = errors.New("stopping")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type runDoneMsg struct {
	results *model.Results
	err     error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label   string
	runFn   func(ctx context.Context) (*model.Results, error)
	ctx     context.Context
	cancel  context.CancelFunc
	frame   int
	started time.Time
	result  *model.Results
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doRun(), m.tick())
}

func (m loaderModel) doRun() tea.Cmd {
	runFn, ctx := m.runFn, m.ctx
	return func() tea.Msg {
		results, err := runFn(ctx)
		return runDoneMsg{results: results, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.result = msg.results
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// The run sees a cancelled context and still persists what it
			// processed; wait for it to return.
			m.cancel()
			m.err = errStopping
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	elapsed := time.Since(m.started).Truncate(time.Second)
	if m.err != nil {
		return fmt.Sprintf("%s Stopping %s, saving progress... (%s)\n", spinner, m.label, elapsed)
	}
	return fmt.Sprintf("%s Running %s... (%s)\n", spinner, m.label, elapsed)
}

// RunLoader shows a spinner while runFn executes. It renders inline (no alt
// screen). ctrl+c cancels the context passed to runFn; whatever runFn then
// returns is passed through.
func RunLoader(ctx context.Context, label string, runFn func(ctx context.Context) (*model.Results, error)) (*model.Results, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := loaderModel{
		label:   label,
		runFn:   runFn,
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
