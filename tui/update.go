package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const tabCount = 3

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, tickCmd()
		case "j", "down":
			if m.selectedRow < m.rowCount()-1 {
				m.selectedRow++
			}
			maxVisible := m.visibleRows()
			if m.selectedRow >= m.scroll+maxVisible {
				m.scroll = m.selectedRow - maxVisible + 1
			}
		case "k", "up":
			if m.selectedRow > 0 {
				m.selectedRow--
			}
			if m.selectedRow < m.scroll {
				m.scroll = m.selectedRow
			}
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			m.selectedRow = 0
			m.scroll = 0
		case "a":
			m.activeTab = 1
			m.selectedRow = 0
			m.scroll = 0
		case "h":
			m.activeTab = 2
			m.selectedRow = 0
			m.scroll = 0
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		m.lastRefresh = time.Time(msg)
		return m, tickCmd()
	}

	return m, nil
}

// rowCount is the number of selectable rows on the active tab
func (m Model) rowCount() int {
	switch m.activeTab {
	case 1:
		return len(m.apps)
	case 2:
		return len(m.runs)
	}
	return 0
}

func (m Model) visibleRows() int {
	rows := m.height - 8
	if rows < 3 {
		rows = 3
	}
	return rows
}
