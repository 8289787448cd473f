// Package tui contains the interactive views of the devtracker client: the
// onboarding forms and the project browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devtracker/devtracker-cli/internal/api"
	"github.com/devtracker/devtracker-cli/internal/errors"
	"github.com/devtracker/devtracker-cli/internal/session"
)

// debounceInterval is how long the search box must be quiet before a
// search request is issued.
const debounceInterval = 300 * time.Millisecond

// Searcher is the slice of the API the browser uses.
type Searcher interface {
	ListProjects(ctx context.Context) ([]api.Project, error)
	SearchProjects(ctx context.Context, keyword string) ([]api.Project, error)
}

// ProjectsLoadedMsg carries the initial unfiltered project list.
type ProjectsLoadedMsg struct {
	Projects []api.Project
	Err      error
}

// DebounceMsg fires when the search box has been quiet long enough.
// Seq identifies the keystroke generation that scheduled it.
type DebounceMsg struct {
	Seq int
}

// SearchResultMsg carries one search response. Seq identifies the request
// generation; results from superseded generations are discarded no matter
// the order they arrive in.
type SearchResultMsg struct {
	Seq      int
	Projects []api.Project
	Err      error
}

// BrowseModel is the bubbletea model for the project browser.
type BrowseModel struct {
	searcher Searcher
	sessions session.Store
	styles   Styles

	input   textinput.Model
	spin    spinner.Model
	loading bool

	all      []api.Project // unfiltered /project/all result
	visible  []api.Project // what the list shows right now
	selected int
	errMsg   string
	authGone bool

	// seq is the generation of the newest keystroke; only the matching
	// debounce tick issues a request and only the matching response is
	// applied. cancel aborts the superseded in-flight request.
	seq    int
	cancel context.CancelFunc

	chosen   *api.Project
	quitting bool
	width    int
}

// NewBrowseModel creates the project browser.
func NewBrowseModel(searcher Searcher, sessions session.Store) BrowseModel {
	input := textinput.New()
	input.Placeholder = "Search projects..."
	input.Prompt = "🔍 "
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return BrowseModel{
		searcher: searcher,
		sessions: sessions,
		styles:   DefaultStyles(),
		input:    input,
		spin:     spin,
		loading:  true,
	}
}

// Chosen returns the project selected before quitting, if any.
func (m BrowseModel) Chosen() *api.Project {
	return m.chosen
}

// Err returns the terminal error message, if any.
func (m BrowseModel) Err() string {
	return m.errMsg
}

// Init loads the unfiltered project list.
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		textinput.Blink,
		func() tea.Msg {
			projects, err := m.searcher.ListProjects(context.Background())
			return ProjectsLoadedMsg{Projects: projects, Err: err}
		},
	)
}

// Update handles messages and updates the model state.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ProjectsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.applyError(msg.Err)
			return m, nil
		}
		m.all = msg.Projects
		m.visible = msg.Projects
		m.selected = 0
		return m, nil

	case DebounceMsg:
		// A newer keystroke owns the search now.
		if msg.Seq != m.seq {
			return m, nil
		}
		return m.startSearch()

	case SearchResultMsg:
		// Superseded request; a fresher one is the source of truth.
		if msg.Seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.applyError(msg.Err)
			return m, nil
		}
		m.errMsg = ""
		m.visible = msg.Projects
		m.selected = 0
		return m, nil
	}

	return m, nil
}

func (m BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down":
		if m.selected < len(m.visible)-1 {
			m.selected++
		}
		return m, nil

	case "enter":
		if m.selected < len(m.visible) {
			p := m.visible[m.selected]
			m.chosen = &p
			if m.sessions != nil {
				_ = m.sessions.SetLastProjectID(p.ProjectID)
			}
		}
		m.quitting = true
		return m, tea.Quit
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	after := m.input.Value()

	if before == after {
		return m, cmd
	}

	// Every edit starts a new generation and invalidates whatever is in
	// flight for the old one.
	m.seq++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if strings.TrimSpace(after) == "" {
		m.loading = false
		m.visible = m.all
		m.selected = 0
		return m, cmd
	}

	seq := m.seq
	debounce := tea.Tick(debounceInterval, func(time.Time) tea.Msg {
		return DebounceMsg{Seq: seq}
	})
	return m, tea.Batch(cmd, debounce)
}

// startSearch issues the search request for the current generation.
func (m BrowseModel) startSearch() (tea.Model, tea.Cmd) {
	keyword := strings.TrimSpace(m.input.Value())
	if keyword == "" {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.loading = true

	seq := m.seq
	searcher := m.searcher
	return m, func() tea.Msg {
		projects, err := searcher.SearchProjects(ctx, keyword)
		if ctx.Err() != nil {
			// Cancelled because a newer request superseded this one; the
			// sequence check would discard it anyway.
			return SearchResultMsg{Seq: seq, Err: ctx.Err()}
		}
		return SearchResultMsg{Seq: seq, Projects: projects, Err: err}
	}
}

func (m *BrowseModel) applyError(err error) {
	if errors.IsAuthorization(err) {
		m.authGone = true
		m.errMsg = "Session rejected. Run 'devtracker auth login' to authenticate again."
		return
	}
	m.errMsg = err.Error()
}

// View renders the browser.
func (m BrowseModel) View() string {
	if m.quitting {
		if m.chosen != nil {
			return m.styles.Success.Render("Selected: "+m.chosen.ProjectName) + "\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("DevTracker Projects"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.authGone:
		b.WriteString(m.styles.Error.Render(m.errMsg))
	case m.errMsg != "":
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Press esc to leave and try again."))
	case m.loading:
		b.WriteString(m.spin.View())
		b.WriteString(" Loading...")
	case len(m.visible) == 0:
		b.WriteString(m.styles.Muted.Render("No projects found"))
	default:
		keyword := strings.TrimSpace(m.input.Value())
		for i, p := range m.visible {
			line := m.renderProject(p, keyword)
			if i == m.selected {
				line = m.styles.Selected.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("↑/↓ select • enter open • esc quit"))
	b.WriteString("\n")
	return b.String()
}

// renderProject renders one row, highlighting the keyword match.
func (m BrowseModel) renderProject(p api.Project, keyword string) string {
	name := p.ProjectName
	if start, end, ok := matchRange(name, keyword); ok {
		name = name[:start] + m.styles.Highlight.Render(name[start:end]) + name[end:]
	}

	status := ""
	if p.Status != "" {
		status = "  " + m.styles.Badge.Render(p.Status)
	}
	return fmt.Sprintf("%s%s", name, status)
}

// matchRange locates the first case-insensitive occurrence of keyword in
// name. The comparison walks whole runes, so the returned byte offsets
// always sit on rune boundaries, even when lowercasing changes a rune's
// encoded length (e.g. U+0130 lowers from two bytes to one).
func matchRange(name, keyword string) (start, end int, ok bool) {
	if keyword == "" {
		return 0, 0, false
	}

	target := strings.ToLower(keyword)
	nameRunes := []rune(name)
	kwLen := len([]rune(keyword))

	for i := 0; i+kwLen <= len(nameRunes); i++ {
		window := string(nameRunes[i : i+kwLen])
		if strings.ToLower(window) == target {
			start = len(string(nameRunes[:i]))
			return start, start + len(window), true
		}
	}
	return 0, 0, false
}
