package tester

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/keytester/internal/output"
	"github.com/marcus/keytester/internal/selection"
	"github.com/marcus/keytester/pkg/tester/keymap"
)

// chrome is the number of rows used by everything except the card body
const chrome = 10

// renderView renders the full screen
func (m Model) renderView() string {
	if m.Width < MinWidth || m.Height < MinHeight {
		return fmt.Sprintf("Terminal too small (%dx%d). Need at least %dx%d.",
			m.Width, m.Height, MinWidth, MinHeight)
	}

	var body string
	switch {
	case m.Dialog != nil:
		body = activePanelStyle.Width(m.Width - 2).Render(m.Dialog.Form.View())
	case m.ShowHelp:
		body = panelStyle.Width(m.Width - 2).Render(m.Keymap.GenerateHelp())
	default:
		body = m.renderTester()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		m.renderFooter(),
	)
}

// renderHeader renders the title bar with the active base directory
func (m Model) renderHeader() string {
	title := titleStyle.Render("KeyTester")
	dir := subtleStyle.Render(m.Config.BaseDir())
	line := title + "  " + dir
	return ansi.Truncate(line, m.Width, "…")
}

// renderTester renders the key cap next to the switch card
func (m Model) renderTester() string {
	key := m.Selection.Key()
	capStyle := keyCapStyle
	label := strings.ToUpper(key)
	if key == "" {
		capStyle = idleKeyCapStyle
		label = "?"
	}
	keyCap := lipgloss.JoinVertical(lipgloss.Center,
		capStyle.Width(5).Render(label),
		stateBadge.Render(m.Selection.State().String()),
	)

	card := panelStyle.
		Width(m.cardWidth() + 2).
		Render(panelTitleStyle.Render(m.cardTitle()) + "\n" + m.Card.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, keyCap, " ", card)
}

// cardTitle names what the card shows
func (m Model) cardTitle() string {
	switch m.Selection.State() {
	case selection.Bound:
		id, _ := m.Selection.SwitchID()
		return id
	case selection.Unbound:
		return "Key " + strings.ToUpper(m.Selection.Key())
	default:
		return "Switch"
	}
}

// renderStatus renders the last error or confirmation
func (m Model) renderStatus() string {
	var s string
	switch {
	case m.Err != nil:
		s = errStyle.Render("Error: " + m.Err.Error())
	case m.Status != "":
		s = okStyle.Render(m.Status)
	default:
		return ""
	}
	return ansi.Truncate(s, m.Width, "…")
}

// renderFooter renders the key hints for the current context
func (m Model) renderFooter() string {
	ctx := m.currentContext()
	hint := m.Keymap.ShortHelp(ctx)
	if ctx == keymap.ContextMain {
		hint = "Ctrl+H help · " + hint
	}
	return ansi.Truncate(helpStyle.Render(hint), m.Width, "…")
}

// updateCard re-renders the card content for the current selection
func (m *Model) updateCard() {
	m.Card.SetContent(m.cardContent())
	m.Card.GotoTop()
}

// cardContent builds the card body: the switch markdown, or an empty state
func (m Model) cardContent() string {
	switch m.Selection.State() {
	case selection.Idle:
		return emptyStyle.Render("Press a key to see its switch.")
	case selection.Unbound:
		s := emptyStyle.Render(output.NoInformation)
		if m.Selection.Dangling() {
			id, _ := m.Selection.SwitchID()
			s += "\n" + warnStyle.Render("Bound to missing switch: "+id)
		}
		return s
	}

	id, _ := m.Selection.SwitchID()
	rec, _ := m.Selection.Record()
	md := output.SwitchMarkdown(id, rec, m.boundKeys(id), m.Catalog.ImagePath(rec))
	rendered, err := output.RenderMarkdownWithWidth(md, m.cardWidth())
	if err != nil {
		m.Logger.Debug("markdown render failed", "err", err)
		return md
	}
	return rendered
}

// resizeCard fits the card viewport to the window
func (m *Model) resizeCard() {
	m.Card.Width = m.cardWidth()
	h := m.Height - chrome
	if h < 3 {
		h = 3
	}
	m.Card.Height = h
	m.Card.SetContent(m.cardContent())
}

// cardWidth is the inner width of the card panel
func (m Model) cardWidth() int {
	// key cap column, gap, and panel border/padding
	w := m.Width - 9 - 1 - 6
	if w < 20 {
		w = 20
	}
	return w
}

// dialogWidth is the width given to huh forms
func (m Model) dialogWidth() int {
	return m.Width - 6
}
