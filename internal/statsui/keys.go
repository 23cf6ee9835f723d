package statsui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/stepcost/internal/model"
	"github.com/verte-zerg/stepcost/internal/stats"
	"github.com/verte-zerg/stepcost/internal/store"
)

const defaultKeys = 5

// keyPicker owns the keys drawn on the Key Curves tab. Without a custom
// selection it follows the most pressed keys.
type keyPicker struct {
	input      textinput.Model
	open       bool
	custom     bool
	keys       []string
	perSession map[int64]map[string]model.KeyAggregate
	err        string
}

func newKeyPicker(initial string) keyPicker {
	p := keyPicker{input: newInput("Keys: ")}
	p.input.Placeholder = "A, Space, OemPeriod"
	p.keys = parseKeys(initial)
	p.custom = len(p.keys) > 0
	return p
}

func (p *keyPicker) follow(aggs []model.KeyAggregate) {
	if !p.custom {
		p.keys = stats.TopKeysByFrequency(aggs, defaultKeys)
	}
}

func (p *keyPicker) start() tea.Cmd {
	p.open = true
	p.input.SetValue(strings.Join(p.keys, ", "))
	return p.input.Focus()
}

// update handles one key and reports whether the selection was applied.
func (p *keyPicker) update(msg tea.KeyMsg, aggs []model.KeyAggregate) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		p.open = false
		return false, nil
	case tea.KeyEnter:
		p.open = false
		p.keys = parseKeys(p.input.Value())
		p.custom = len(p.keys) > 0
		p.follow(aggs)
		return true, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return false, cmd
}

func (p *keyPicker) load(ctx context.Context, st *store.Store, sessions []model.SessionAggregate) {
	p.err = ""
	p.perSession = nil
	if len(sessions) == 0 || len(p.keys) == 0 {
		return
	}
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	perSession, err := st.ListKeyStatsForSessions(ctx, ids, p.keys)
	if err != nil {
		p.err = err.Error()
		return
	}
	p.perSession = perSession
}

func (p *keyPicker) resize(width int) {
	p.input.Width = max(10, modalWidth(width)-6-lipgloss.Width(p.input.Prompt))
}

func (p *keyPicker) modal(width, height int) string {
	body := strings.Join([]string{
		cardValueStyle.Render("Select Keys"),
		p.input.View(),
		headerStyle.Render("Key names separated by commas or spaces. Empty follows the most pressed."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}, "\n")
	box := modalStyle.Width(modalWidth(width)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

// parseKeys splits key names on commas and whitespace. Digits become D0-D9.
func parseKeys(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	seen := map[string]bool{}
	for _, f := range fields {
		if len(f) == 1 && f[0] >= '0' && f[0] <= '9' {
			f = "D" + f
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
