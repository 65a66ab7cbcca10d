package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riptano/argus/internal/model"
)

var (
	docStyle   = lipgloss.NewStyle().Margin(1, 2)
	staleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// sortCycle is the order the "s" key rotates through.
var sortCycle = []string{"key", "priority", "updated", "assignee", "status"}

type issueItem struct {
	issue model.Issue
}

func (i issueItem) Title() string {
	title := fmt.Sprintf("%s  %s", i.issue.Key, i.issue.FieldOrEmpty("summary"))
	if i.issue.Stale {
		return staleStyle.Render(title + " (stale)")
	}
	return title
}

func (i issueItem) Description() string {
	parts := []string{
		i.issue.Connection,
		i.issue.FieldOrEmpty("status"),
		i.issue.FieldOrEmpty("priority"),
		i.issue.FieldOrEmpty("assignee"),
	}
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " | ")
}

func (i issueItem) FilterValue() string {
	return i.issue.Key + " " + i.issue.FieldOrEmpty("summary") + " " + i.issue.FieldOrEmpty("assignee")
}

// IssueBrowserModel is a filterable issue list. Enter selects an issue
// and quits; the caller decides what to do with the selection (usually
// open it in a web browser).
type IssueBrowserModel struct {
	list     list.Model
	issues   []model.Issue
	sortIdx  int
	selected *model.Issue
	quitting bool
}

// NewIssueBrowser builds a browser over already-resolved issues.
func NewIssueBrowser(title string, issues []model.Issue) IssueBrowserModel {
	items := make([]list.Item, len(issues))
	for i, issue := range issues {
		items[i] = issueItem{issue: issue}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = extraHelpKeys
	l.AdditionalFullHelpKeys = extraHelpKeys

	return IssueBrowserModel{list: l, issues: issues}
}

func (m IssueBrowserModel) Init() tea.Cmd {
	return nil
}

func (m IssueBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)

		return m, nil

	case tea.KeyMsg:
		// let the list's filter input consume keys while active
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true

			return m, tea.Quit

		case "enter":
			if item, ok := m.list.SelectedItem().(issueItem); ok {
				m.selected = &item.issue
			}

			return m, tea.Quit

		case "s":
			m.sortIdx = (m.sortIdx + 1) % len(sortCycle)

			return m, m.resort()
		}
	}

	var cmd tea.Cmd

	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m IssueBrowserModel) View() string {
	if m.quitting {
		return ""
	}

	return docStyle.Render(m.list.View())
}

// Selected returns the issue chosen with enter, or nil.
func (m IssueBrowserModel) Selected() *model.Issue {
	return m.selected
}

func (m *IssueBrowserModel) resort() tea.Cmd {
	field := sortCycle[m.sortIdx]
	sorted := make([]model.Issue, len(m.issues))
	copy(sorted, m.issues)
	sort.SliceStable(sorted, func(a, b int) bool {
		if c := model.CompareField(&sorted[a], &sorted[b], field); c != 0 {
			return c < 0
		}
		return sorted[a].Key < sorted[b].Key
	})

	items := make([]list.Item, len(sorted))
	for i, issue := range sorted {
		items[i] = issueItem{issue: issue}
	}

	m.list.Title = fmt.Sprintf("%s (sorted by %s)", baseTitle(m.list.Title), field)

	return m.list.SetItems(items)
}

func extraHelpKeys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open issue")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
	}
}

func baseTitle(title string) string {
	if i := strings.Index(title, " (sorted by "); i >= 0 {
		return title[:i]
	}
	return title
}
