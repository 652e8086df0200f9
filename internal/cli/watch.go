package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/yeoul2023/study-timer/internal/app"
	"github.com/yeoul2023/study-timer/internal/ledger"
)

var (
	clockStyle  = lipgloss.NewStyle().Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder())
	footerStyle = lipgloss.NewStyle().Faint(true)
)

var watchCmd = LeafCommand{
	Use:   "watch",
	Short: "Live timer with keyboard controls",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return runWatch(cmd, a)
		})
	},
}.Build()

// tickMsg carries the tracker's elapsed time into the program.
type tickMsg time.Duration

type watchModel struct {
	a       *app.App
	elapsed time.Duration
	message string
	width   int
}

func newWatchModel(a *app.App) watchModel {
	return watchModel{a: a, elapsed: a.Elapsed(), width: 60}
}

func (m watchModel) Init() tea.Cmd { return nil }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.elapsed = time.Duration(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "s":
			_, err := m.a.StartSession()
			m = m.after(err, "session started")
		case "p", " ":
			m = m.toggle("")
		case "e":
			res, err := m.a.EndSession()
			text := fmt.Sprintf("session ended: %s", ledger.FormatClock(res.Session.Duration()))
			if res.Celebrate {
				text += ", goal reached!"
			}
			m = m.after(err, text)
		default:
			// digits pause with the matching configured reason
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.a.Config().PauseReasons) {
				if m.a.CurrentState() == ledger.StateActive {
					m = m.toggle(m.a.Config().PauseReasons[n-1])
				}
			}
		}
	}
	return m, nil
}

// toggle starts, pauses or resumes depending on the current state.
func (m watchModel) toggle(reason string) watchModel {
	switch m.a.CurrentState() {
	case ledger.StateActive:
		text := "paused"
		if reason != "" {
			text += " (" + reason + ")"
		}
		return m.after(m.a.PauseSession(reason), text)
	case ledger.StatePaused:
		return m.after(m.a.ResumeSession(), "resumed")
	default:
		_, err := m.a.StartSession()
		return m.after(err, "session started")
	}
}

func (m watchModel) after(err error, ok string) watchModel {
	m.elapsed = m.a.Elapsed()
	if err != nil {
		m.message = err.Error()
		return m
	}
	m.message = ok
	return m
}

func (m watchModel) View() string {
	var b strings.Builder
	today := m.a.Today()
	state := m.a.CurrentState()

	b.WriteString(fmt.Sprintf("%s  %s\n\n", Primary(m.a.TodayKey()), stateLabel(state)))
	b.WriteString(clockStyle.Render(ledger.FormatClock(m.elapsed)))
	b.WriteString("\n\n")

	rate := today.Summary.CompletionRate
	b.WriteString(fmt.Sprintf("%s / %s  %s %s\n",
		ledger.FormatHours(today.Summary.ActualHours),
		ledger.FormatHours(today.GoalHours),
		Bar(float64(rate)/100, max(10, min(40, m.width-30))),
		Rate(rate, fmt.Sprintf("%d%%", rate)),
	))

	if m.message != "" {
		b.WriteString("\n" + Info(m.message) + "\n")
	}

	reasons := make([]string, len(m.a.Config().PauseReasons))
	for i, r := range m.a.Config().PauseReasons {
		reasons[i] = fmt.Sprintf("%d %s", i+1, r)
	}
	b.WriteString("\n" + footerStyle.Render("s start · p/space pause/resume · e end · q quit"))
	b.WriteString("\n" + footerStyle.Render("pause with reason: "+strings.Join(reasons, " · ")))
	b.WriteString("\n")
	return b.String()
}

func runWatch(cmd *cobra.Command, a *app.App) error {
	out := cmd.OutOrStdout()

	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		return runStatus(cmd, a)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	p := tea.NewProgram(newWatchModel(a), tea.WithAltScreen(), tea.WithOutput(out), tea.WithContext(ctx))
	a.SetTickListener(func(d time.Duration) { p.Send(tickMsg(d)) })
	defer a.SetTickListener(nil)

	jobsErr := make(chan error, 1)
	go func() {
		jobsErr <- app.RunJobs(ctx, a.Logger(), a.Jobs()...)
	}()

	_, err := p.Run()
	cancel()
	if jobErr := <-jobsErr; jobErr != nil && err == nil {
		err = jobErr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
