package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtracker/devtracker-cli/internal/api"
	"github.com/devtracker/devtracker-cli/internal/errors"
	"github.com/devtracker/devtracker-cli/internal/session"
)

type fakeSearcher struct{}

func (fakeSearcher) ListProjects(ctx context.Context) ([]api.Project, error) {
	return []api.Project{}, nil
}

func (fakeSearcher) SearchProjects(ctx context.Context, keyword string) ([]api.Project, error) {
	return []api.Project{}, nil
}

func loaded(t *testing.T, m BrowseModel, projects []api.Project) BrowseModel {
	t.Helper()
	next, _ := m.Update(ProjectsLoadedMsg{Projects: projects})
	return next.(BrowseModel)
}

func typeRunes(t *testing.T, m BrowseModel, s string) BrowseModel {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(BrowseModel)
	}
	return m
}

func TestBrowse_InitialLoadPopulatesList(t *testing.T) {
	m := NewBrowseModel(fakeSearcher{}, nil)
	assert.True(t, m.loading)

	m = loaded(t, m, []api.Project{{ProjectID: 1, ProjectName: "one"}})
	assert.False(t, m.loading)
	require.Len(t, m.visible, 1)
	assert.Equal(t, "one", m.visible[0].ProjectName)
}

func TestBrowse_TypingBumpsGeneration(t *testing.T) {
	m := NewBrowseModel(fakeSearcher{}, nil)
	m = loaded(t, m, nil)

	assert.Zero(t, m.seq)
	m = typeRunes(t, m, "abc")
	assert.Equal(t, 3, m.seq, "every edit starts a new generation")
}

func TestBrowse_StaleDebounceIgnored(t *testing.T) {
	m := NewBrowseModel(fakeSearcher{}, nil)
	m = loaded(t, m, nil)
	m = typeRunes(t, m, "ab")

	next, cmd := m.Update(DebounceMsg{Seq: 1})
	m = next.(BrowseModel)
	assert.Nil(t, cmd, "a superseded debounce tick must not start a search")
	assert.False(t, m.loading)

	next, cmd = m.Update(DebounceMsg{Seq: m.seq})
	m = next.(BrowseModel)
	assert.NotNil(t, cmd, "the current debounce tick starts the search")
	assert.True(t, m.loading)
}

func TestBrowse_StaleResultsDiscardedRegardlessOfOrder(t *testing.T) {
	m := NewBrowseModel(fakeSearcher{}, nil)
	m = loaded(t, m, nil)

	m = typeRunes(t, m, "a") // generation 1
	m = typeRunes(t, m, "b") // generation 2

	fresh := []api.Project{{ProjectID: 2, ProjectName: "fresh"}}
	stale := []api.Project{{ProjectID: 1, ProjectName: "stale"}}

	// The fresh response arrives first.
	next, _ := m.Update(SearchResultMsg{Seq: 2, Projects: fresh})
	m = next.(BrowseModel)
	require.Len(t, m.visible, 1)
	assert.Equal(t, "fresh", m.visible[0].ProjectName)

	// The stale response arrives late and must not overwrite it.
	next, _ = m.Update(SearchResultMsg{Seq: 1, Projects: stale})
	m = next.(BrowseModel)
	require.Len(t, m.visible, 1)
	assert.Equal(t, "fresh", m.visible[0].ProjectName)
}

func TestBrowse_StaleErrorDiscarded(t *testing.T) {
	m := NewBrowseModel(fakeSearcher{}, nil)
	m = loaded(t, m, nil)
	m = typeRunes(t, m, "ab")

	next, _ := m.Update(SearchResultMsg{Seq: 1, Err: context.Canceled})
	m = next.(BrowseModel)
	assert.Empty(t, m.errMsg, "a superseded failure must not surface")
}

func TestBrowse_ClearedInputRestoresFullList(t *testing.T) {
	all := []api.Project{{ProjectID: 1, ProjectName: "one"}, {ProjectID: 2, ProjectName: "two"}}

	m := NewBrowseModel(fakeSearcher{}, nil)
	m = loaded(t, m, all)
	m = typeRunes(t, m, "x")

	next, _ := m.Update(SearchResultMsg{Seq: m.seq, Projects: []api.Project{}})
	m = next.(BrowseModel)
	assert.Empty(t, m.visible)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(BrowseModel)
	assert.Len(t, m.visible, 2, "an empty search box shows the unfiltered list")
}

func TestBrowse_EnterRecordsLastProject(t *testing.T) {
	store := session.NewFileStore(t.TempDir())

	m := NewBrowseModel(fakeSearcher{}, store)
	m = loaded(t, m, []api.Project{
		{ProjectID: 1, ProjectName: "one"},
		{ProjectID: 2, ProjectName: "two"},
	})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(BrowseModel)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(BrowseModel)

	require.NotNil(t, m.Chosen())
	assert.Equal(t, int64(2), m.Chosen().ProjectID)

	id, ok := store.LastProjectID()
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestBrowse_HighlightSurvivesCaseLengthChange(t *testing.T) {
	// U+0130 lowercases from two bytes to one; a byte-offset highlight
	// would slice past the end of the name and panic the view.
	m := NewBrowseModel(fakeSearcher{}, nil)
	m = loaded(t, m, []api.Project{{ProjectID: 1, ProjectName: "hi"}})
	m = typeRunes(t, m, "İ")

	assert.NotPanics(t, func() { _ = m.View() })
}

func TestMatchRange(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		keyword   string
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{"ascii match", "billing revamp", "bill", 0, 4, true},
		{"case insensitive", "Billing", "bill", 0, 4, true},
		{"mid string", "the billing app", "BILL", 4, 8, true},
		{"no match", "payments", "bill", 0, 0, false},
		{"empty keyword", "billing", "", 0, 0, false},
		{"keyword longer than name", "hi", "high", 0, 0, false},
		{"shrinking rune in keyword", "hi", "İ", 1, 2, true},
		{"multibyte name", "Señor proyecto", "SEÑOR", 0, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := matchRange(tt.target, tt.keyword)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantStart, start)
				assert.Equal(t, tt.wantEnd, end)
			}
		})
	}
}

func TestBrowse_AuthorizationErrorSurfaced(t *testing.T) {
	m := NewBrowseModel(fakeSearcher{}, nil)

	next, _ := m.Update(ProjectsLoadedMsg{Err: errors.NewSessionExpiredError()})
	m = next.(BrowseModel)

	assert.True(t, m.authGone)
	assert.Contains(t, m.Err(), "auth login")
}
