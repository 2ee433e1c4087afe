package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dsjohal14/quicksearch/internal/suggest"
	"github.com/dsjohal14/quicksearch/internal/widget"
)

const suggestBody = `{"results":[{"id":"1","name":"Wool Hat","price":"$19.00","image":"/h.jpg","url":"/wool-hat.html"},` +
	`{"id":"2","name":"Sun Hat","price":"$24.00","image":"/s.jpg","url":"/sun-hat.html"}],"info":{"size":2,"url":"/catalogsearch/result?q=hat"}}`

func TestSuggestCommand(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(suggestBody))
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--api", srv.URL, "suggest", "wool", "hat"})

	if err := root.Execute(); err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if gotQuery != "wool hat" {
		t.Errorf("expected query 'wool hat', got %q", gotQuery)
	}
	if !strings.Contains(out.String(), "Wool Hat") || !strings.Contains(out.String(), "2 result(s)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestCatalogImportCommand(t *testing.T) {
	dir := t.TempDir()
	feed := filepath.Join(dir, "feed.jsonl")
	if err := os.WriteFile(feed, []byte(`{"id":"1","name":"Wool Hat","price":1900}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"catalog", "import", feed})

	if err := root.Execute(); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out.String(), "imported 1 product(s)") {
		t.Errorf("unexpected output: %s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "products.jsonl")); err != nil {
		t.Errorf("catalog not written: %v", err)
	}
}

func TestWidgetKey(t *testing.T) {
	tests := []struct {
		in   tea.KeyType
		want widget.Key
		ok   bool
	}{
		{tea.KeyHome, widget.KeyHome, true},
		{tea.KeyEnd, widget.KeyEnd, true},
		{tea.KeyEsc, widget.KeyEscape, true},
		{tea.KeyEnter, widget.KeyEnter, true},
		{tea.KeyUp, widget.KeyUp, true},
		{tea.KeyDown, widget.KeyDown, true},
		{tea.KeyRunes, widget.KeyOther, false},
	}

	for _, tt := range tests {
		got, ok := widgetKey(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("widgetKey(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

type stepTimer struct {
	f       func()
	stopped bool
}

func (s *stepTimer) Stop() bool {
	was := !s.stopped
	s.stopped = true
	return was
}

type stepClock struct{ timers []*stepTimer }

func (c *stepClock) AfterFunc(_ time.Duration, f func()) widget.Handle {
	t := &stepTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *stepClock) fire() {
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

type staticFetcher struct{ queries []string }

func (f *staticFetcher) Fetch(_ context.Context, q string) (suggest.Response, error) {
	f.queries = append(f.queries, q)
	return suggest.Response{
		Results: []suggest.Item{{ID: "1", Name: "Wool Hat", Price: "$19.00"}, {ID: "2", Name: "Sun Hat", Price: "$24.00"}},
		Info:    suggest.Info{Size: 2, URL: "/catalogsearch/result?q=" + q},
	}, nil
}

func TestTUIModel(t *testing.T) {
	clock := &stepClock{}
	fetcher := &staticFetcher{}

	var submitted string
	m := newTUIModel()
	w, err := widget.New(widget.DefaultOptions(), fetcher, widget.Inline,
		widget.WithClock(clock),
		widget.WithSpawn(func(f func()) { f() }),
		widget.WithSubmit(func(v string) { submitted = v }),
	)
	if err != nil {
		t.Fatal(err)
	}
	m.w = w
	m.Init()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hat")})
	if len(fetcher.queries) != 0 {
		t.Fatal("lookup must wait for the debounce delay")
	}
	clock.fire()
	if len(fetcher.queries) != 1 || fetcher.queries[0] != "hat" {
		t.Fatalf("expected one lookup for hat, got %v", fetcher.queries)
	}

	if view := m.View(); !strings.Contains(view, "View All Results: 2") || !strings.Contains(view, "Sun Hat") {
		t.Errorf("dropdown not drawn:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.input.Value() != "Sun Hat" {
		t.Errorf("selection should overwrite the input, got %q", m.input.Value())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if submitted != "Sun Hat" {
		t.Errorf("expected Sun Hat submitted, got %q", submitted)
	}

	m.Update(tea.MouseMsg{X: 2, Y: firstItemRow, Action: tea.MouseActionMotion})
	if sel := m.w.View().Selected; sel != 0 {
		t.Errorf("hover should select row 0, got %d", sel)
	}
	m.Update(tea.MouseMsg{X: 2, Y: 20, Action: tea.MouseActionMotion})
	if sel := m.w.View().Selected; sel != -1 {
		t.Errorf("leaving the hovered row should clear selection, got %d", sel)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.w.View().Visible {
		t.Error("escape should hide the dropdown")
	}

	ran := false
	m.Update(dispatchMsg{f: func() { ran = true }})
	if !ran {
		t.Error("dispatched callbacks should run on update")
	}
}
