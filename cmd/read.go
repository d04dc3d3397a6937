package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardoracle/internal/ansiart"
	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/session"
)

var readCmd = &cobra.Command{
	Use:   "read [reading-id]",
	Short: "Do a full reading in the terminal",
	Long: `Read deals the reading's cards face down. Move with the arrow keys and pick
one card per position with enter. The result shows each card with the text for
its position and orientation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.readingArg(args)
		if err != nil {
			return err
		}

		builder := session.NewBuilder(a.catalog)
		s, err := builder.Build(cmd.Context(), id)
		if err != nil {
			return err
		}

		if err := checkPlayable(s); err != nil {
			return err
		}

		question, _ := cmd.Flags().GetString("question")
		m := newReadModel(cmd.Context(), builder, s, question)
		final, err := tea.NewProgram(m).Run()
		if err != nil {
			return err
		}
		if rm, ok := final.(readModel); ok && rm.err != nil {
			return rm.err
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(readCmd)
	readCmd.Flags().StringP("question", "q", "", "the question you are asking the cards")
}

const gridColumns = 11

// checkPlayable rejects sessions that can never be completed: no published
// positions, or fewer cards than positions.
func checkPlayable(s *session.Session) error {
	switch {
	case len(s.Positions) == 0:
		return fmt.Errorf("reading %d (%s) has no published positions", s.Reading.ID, s.Reading.Title)
	case len(s.Cards) < len(s.Positions):
		return fmt.Errorf("reading %d (%s) has %d cards for %d positions", s.Reading.ID, s.Reading.Title, len(s.Cards), len(s.Positions))
	}
	return nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cursorStyle   = cardStyle.BorderForeground(lipgloss.Color("212"))
	pickedStyle   = cardStyle.BorderForeground(lipgloss.Color("241")).Foreground(lipgloss.Color("241"))
	positionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	resultStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("86")).PaddingLeft(1).MarginBottom(1)
)

type readModel struct {
	ctx      context.Context
	builder  *session.Builder
	session  *session.Session
	question string

	cursor int
	picked []oracle.PickedCard
	result *session.Result
	err    error
	width  int
}

func newReadModel(ctx context.Context, b *session.Builder, s *session.Session, question string) readModel {
	return readModel{ctx: ctx, builder: b, session: s, question: question, width: 80}
}

func (m readModel) Init() tea.Cmd { return nil }

func (m readModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if m.result != nil || m.err != nil {
			return m, tea.Quit
		}
		n := len(m.session.Cards)
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "left", "h":
			if n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
			}
		case "right", "l":
			if n > 0 {
				m.cursor = (m.cursor + 1) % n
			}
		case "up", "k":
			if m.cursor-gridColumns >= 0 {
				m.cursor -= gridColumns
			}
		case "down", "j":
			if m.cursor+gridColumns < n {
				m.cursor += gridColumns
			}
		case "enter", " ":
			m = m.pick()
		}
	}
	return m, nil
}

// pick takes the card under the cursor for the next open position and
// submits once every position is filled.
func (m readModel) pick() readModel {
	if len(m.session.Cards) == 0 || len(m.picked) >= len(m.session.Positions) || m.isPicked(m.cursor) {
		return m
	}
	m.picked = append(m.picked, m.session.Cards[m.cursor])
	if len(m.picked) < len(m.session.Positions) {
		return m
	}

	picks := make([]string, len(m.picked))
	var reverse []string
	for i, p := range m.picked {
		picks[i] = strconv.FormatUint(uint64(p.CardID), 10)
		if p.IsReversed {
			reverse = append(reverse, picks[i])
		}
	}
	m.result, m.err = m.builder.Submit(m.ctx, session.Submission{
		ReadingID: m.session.Reading.ID,
		Picks:     strings.Join(picks, ","),
		Reverse:   strings.Join(reverse, ","),
		Question:  m.question,
	})
	return m
}

func (m readModel) isPicked(i int) bool {
	for _, p := range m.picked {
		if p.CardID == m.session.Cards[i].CardID {
			return true
		}
	}
	return false
}

func (m readModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.session.Reading.Title))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(fmt.Sprintf("Could not finish the reading: %v\n", m.err))
	case m.result != nil:
		b.WriteString(m.resultView())
		b.WriteString(helpStyle.Render("press any key to exit"))
	default:
		b.WriteString(m.pickView())
	}
	b.WriteString("\n")
	return b.String()
}

func (m readModel) pickView() string {
	var b strings.Builder
	remaining := len(m.session.Positions) - len(m.picked)
	if remaining == 1 {
		b.WriteString("Next select 1 card.")
	} else {
		b.WriteString(fmt.Sprintf("Next select %d cards.", remaining))
	}
	if len(m.picked) < len(m.session.Positions) {
		b.WriteString(" " + positionStyle.Render(m.session.Positions[len(m.picked)].Title))
	}
	b.WriteString("\n\n")

	var rows []string
	var row []string
	for i := range m.session.Cards {
		style := cardStyle
		label := "✦"
		switch {
		case m.isPicked(i):
			style = pickedStyle
			label = "·"
		case i == m.cursor:
			style = cursorStyle
		}
		row = append(row, style.Render(label))
		if len(row) == gridColumns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→/↑/↓ move • enter pick • q quit"))
	return b.String()
}

func (m readModel) resultView() string {
	var b strings.Builder
	if m.result.Question != "" {
		b.WriteString(positionStyle.Render(m.result.Question))
		b.WriteString("\n\n")
	}

	width := max(m.width-4, 20)
	for _, p := range m.result.Picks {
		title := p.Card.Title
		if p.Reversed {
			title += " (Reversed)"
		}
		lines := []string{positionStyle.Render(p.Position.Title), titleStyle.Render(title)}
		if text := plainText(p.Text); text != "" {
			lines = append(lines, ansiart.Wrap(text, width)...)
		}
		b.WriteString(resultStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}
