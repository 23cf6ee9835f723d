package statsui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/stepcost/internal/model"
)

const dateLayout = "2006-01-02"

type filterField int

const (
	fieldLayout filterField = iota
	fieldSince
	fieldLast
	fieldWindow
	fieldCount
)

type filterValues [fieldCount]string

var filterPrompts = filterValues{
	fieldLayout: "Layout: ",
	fieldSince:  "Since (YYYY-MM-DD): ",
	fieldLast:   "Last sessions: ",
	fieldWindow: "Curve window: ",
}

// filterForm edits the history filters in place of the tab body.
type filterForm struct {
	inputs [fieldCount]textinput.Model
	focus  filterField
	open   bool
	err    string
}

func newFilterForm() filterForm {
	var f filterForm
	for i := range f.inputs {
		f.inputs[i] = newInput(filterPrompts[i])
	}
	return f
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (f *filterForm) start(cfg model.StatsConfig) tea.Cmd {
	f.open = true
	f.err = ""
	f.inputs[fieldLayout].SetValue(cfg.Layout)
	f.inputs[fieldSince].SetValue("")
	if cfg.Since != nil {
		f.inputs[fieldSince].SetValue(cfg.Since.Format(dateLayout))
	}
	f.inputs[fieldLast].SetValue("")
	if cfg.Last > 0 {
		f.inputs[fieldLast].SetValue(strconv.Itoa(cfg.Last))
	}
	f.inputs[fieldWindow].SetValue(strconv.Itoa(cfg.CurveWindow))
	return f.setFocus(fieldLayout)
}

func (f *filterForm) setFocus(field filterField) tea.Cmd {
	f.focus = (field + fieldCount) % fieldCount
	var cmd tea.Cmd
	for i := range f.inputs {
		if filterField(i) == f.focus {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func (f *filterForm) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-lipgloss.Width(f.inputs[i].Prompt)-2)
	}
}

func (f *filterForm) values() filterValues {
	var v filterValues
	for i, input := range f.inputs {
		v[i] = strings.TrimSpace(input.Value())
	}
	return v
}

// update handles one key. It returns the new filters and true once the form
// is submitted with valid values.
func (f *filterForm) update(msg tea.KeyMsg, keys string) (model.StatsConfig, bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		f.open = false
		return model.StatsConfig{}, false, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(f.values(), keys)
		if err != nil {
			f.err = err.Error()
			return model.StatsConfig{}, false, nil
		}
		f.open = false
		f.err = ""
		return cfg, true, nil
	case tea.KeyTab, tea.KeyDown:
		return model.StatsConfig{}, false, f.setFocus(f.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return model.StatsConfig{}, false, f.setFocus(f.focus - 1)
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return model.StatsConfig{}, false, cmd
}

func (f *filterForm) view() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range f.inputs {
		lines = append(lines, input.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func parseFilter(v filterValues, keys string) (model.StatsConfig, error) {
	cfg := model.StatsConfig{Layout: v[fieldLayout], Keys: keys}
	if v[fieldSince] != "" {
		since, err := time.ParseInLocation(dateLayout, v[fieldSince], time.Local)
		if err != nil {
			return model.StatsConfig{}, errors.New("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &since
	}
	if v[fieldLast] != "" {
		last, err := strconv.Atoi(v[fieldLast])
		if err != nil || last < 0 {
			return model.StatsConfig{}, errors.New("invalid last value (use 0 or a positive integer)")
		}
		cfg.Last = last
	}
	if v[fieldWindow] != "" {
		window, err := strconv.Atoi(v[fieldWindow])
		if err != nil || window < 1 {
			return model.StatsConfig{}, errors.New("invalid curve window (use an integer >= 1)")
		}
		cfg.CurveWindow = window
	}
	return cfg, nil
}

// filterSummary is the one-line description shown under the tabs.
func filterSummary(cfg model.StatsConfig) string {
	layoutName, since, last := "any", "any", "all"
	if cfg.Layout != "" {
		layoutName = cfg.Layout
	}
	if cfg.Since != nil {
		since = cfg.Since.Format(dateLayout)
	}
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	return "Settings: layout=" + layoutName + "  since=" + since + "  last=" + last +
		"  window=" + strconv.Itoa(cfg.CurveWindow)
}
