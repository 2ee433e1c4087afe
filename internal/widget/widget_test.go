package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dsjohal14/quicksearch/internal/suggest"
)

type fakeTimer struct {
	at      time.Duration
	f       func()
	fired   bool
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Handle {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	for _, t := range append([]*fakeTimer(nil), c.timers...) {
		if !t.fired && !t.stopped && t.at <= c.now {
			t.fired = true
			t.f()
		}
	}
}

type fakeFetcher struct {
	queries []string
	err     error
}

func (f *fakeFetcher) Fetch(_ context.Context, query string) (suggest.Response, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return suggest.Response{}, f.err
	}
	return responseFor(query, 8), nil
}

func responseFor(query string, n int) suggest.Response {
	items := make([]suggest.Item, n)
	for i := range items {
		items[i] = suggest.Item{
			ID:    fmt.Sprintf("%d", i+1),
			Name:  fmt.Sprintf("%s %d", query, i+1),
			Price: "$10.00",
			Image: "https://shop.test/media/a.jpg",
			URL:   fmt.Sprintf("https://shop.test/p-%d.html", i+1),
		}
	}
	return suggest.Format(items, suggest.Query{Text: query}, urlBuilder{})
}

type urlBuilder struct{}

func (urlBuilder) Build(text string) string { return "https://shop.test/catalogsearch/result?q=" + text }

func newTestWidget(t *testing.T, fetcher Fetcher, options ...Option) (*Widget, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	opts := append([]Option{WithClock(clock), WithSpawn(func(f func()) { f() })}, options...)
	w, err := New(DefaultOptions(), fetcher, Inline, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, clock
}

// typeAndWait enters value and lets the debounce delay pass
func typeAndWait(w *Widget, clock *fakeClock, value string) {
	w.Input(value)
	clock.Advance(DefaultOptions().Timeout)
}

func TestNewDefaults(t *testing.T) {
	w, _ := newTestWidget(t, &fakeFetcher{})
	v := w.View()

	if !v.Form.SubmitDisabled {
		t.Error("submit should start disabled")
	}
	if v.Field.Autocomplete != "off" {
		t.Errorf("expected autocomplete off, got %q", v.Field.Autocomplete)
	}
	if v.State != NoList || v.Visible {
		t.Errorf("unexpected initial view %+v", v)
	}
}

func TestDebounceIssuesSingleLookup(t *testing.T) {
	fetcher := &fakeFetcher{}
	w, clock := newTestWidget(t, fetcher)

	for _, value := range []string{"sh", "sho", "shoe"} {
		w.Input(value)
		clock.Advance(500 * time.Millisecond)
	}
	if len(fetcher.queries) != 0 {
		t.Fatalf("no lookup expected within the delay, got %v", fetcher.queries)
	}

	clock.Advance(time.Second)
	if len(fetcher.queries) != 1 || fetcher.queries[0] != "shoe" {
		t.Fatalf("expected exactly one lookup for shoe, got %v", fetcher.queries)
	}

	clock.Advance(10 * time.Second)
	if len(fetcher.queries) != 1 {
		t.Errorf("cancelled timers must not fire, got %v", fetcher.queries)
	}
}

func TestShortValueSuppressesLookup(t *testing.T) {
	fetcher := &fakeFetcher{}
	w, clock := newTestWidget(t, fetcher)

	typeAndWait(w, clock, "shoe")
	w.KeyDown(KeyDown)
	typeAndWait(w, clock, "s")

	if len(fetcher.queries) != 1 {
		t.Fatalf("short value must not issue a lookup, got %v", fetcher.queries)
	}

	v := w.View()
	if v.State != NoList || v.Visible {
		t.Errorf("expected hidden NoList, got state %v visible %v", v.State, v.Visible)
	}
	if v.Field.AriaHasPopup || v.Field.ActiveDescendant != "" {
		t.Errorf("expected accessibility attributes cleared, got %+v", v.Field)
	}
	if v.Form.SubmitDisabled {
		t.Error("non-empty value should leave submit enabled")
	}
}

func TestLookupRendersDropdown(t *testing.T) {
	w, clock := newTestWidget(t, &fakeFetcher{})

	w.Input("shoe")
	if !w.debounce.Pending() {
		t.Fatal("expected a pending lookup")
	}
	clock.Advance(DefaultOptions().Timeout)

	v := w.View()
	if !v.Visible || v.State != ListNoSelection {
		t.Fatalf("expected visible list, got state %v visible %v", v.State, v.Visible)
	}
	if v.Form.Loading || v.Form.SubmitDisabled {
		t.Errorf("expected loading cleared and submit enabled, got %+v", v.Form)
	}
	if !v.Field.AriaHasPopup {
		t.Error("expected aria-haspopup with rows rendered")
	}
	if len(v.Elements) != suggest.MaxResultDisplay {
		t.Fatalf("expected %d rows, got %d", suggest.MaxResultDisplay, len(v.Elements))
	}
	if v.Elements[2].ID != "qs-option-2" || v.Elements[2].Name != "shoe 3" {
		t.Errorf("unexpected row %+v", v.Elements[2])
	}
	if v.Info.Size != 8 {
		t.Errorf("expected size 8, got %d", v.Info.Size)
	}
	if !strings.Contains(string(v.HTML), "View All Results: 8") {
		t.Errorf("missing view all row in %s", v.HTML)
	}
}

func TestEmptyResultsClearPopupFlag(t *testing.T) {
	fetcher := fetcherFunc(func(_ context.Context, q string) (suggest.Response, error) {
		return responseFor(q, 0), nil
	})
	w, clock := newTestWidget(t, fetcher)

	typeAndWait(w, clock, "zzz")

	v := w.View()
	if v.Field.AriaHasPopup {
		t.Error("aria-haspopup should be false without rows")
	}
	if !v.Visible || v.State != ListNoSelection {
		t.Errorf("view all row is still shown, got visible %v state %v", v.Visible, v.State)
	}
	w.KeyDown(KeyDown)
	if w.View().State != ListNoSelection {
		t.Error("DOWN on an empty list should not select")
	}
}

type fetcherFunc func(ctx context.Context, q string) (suggest.Response, error)

func (f fetcherFunc) Fetch(ctx context.Context, q string) (suggest.Response, error) { return f(ctx, q) }

func TestKeyboardNavigation(t *testing.T) {
	tests := []struct {
		name     string
		keys     []Key
		want     int
		wantName string
	}{
		{"down selects first", []Key{KeyDown}, 0, "shoe 1"},
		{"down twice", []Key{KeyDown, KeyDown}, 1, "shoe 2"},
		{"down wraps from last", []Key{KeyEnd, KeyDown}, 0, "shoe 1"},
		{"up wraps from first", []Key{KeyHome, KeyUp}, 4, "shoe 5"},
		{"up moves back", []Key{KeyEnd, KeyUp}, 3, "shoe 4"},
		{"home", []Key{KeyDown, KeyDown, KeyHome}, 0, "shoe 1"},
		{"end", []Key{KeyEnd}, 4, "shoe 5"},
		{"up without selection is a no-op", []Key{KeyUp}, -1, "shoe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, clock := newTestWidget(t, &fakeFetcher{})
			typeAndWait(w, clock, "shoe")

			for _, k := range tt.keys {
				if !w.KeyDown(k) {
					t.Fatalf("key %v should be consumed", k)
				}
			}

			v := w.View()
			if v.Selected != tt.want {
				t.Errorf("expected selection %d, got %d", tt.want, v.Selected)
			}
			if v.Field.Value != tt.wantName {
				t.Errorf("expected value %q, got %q", tt.wantName, v.Field.Value)
			}
			if tt.want >= 0 {
				if v.Field.ActiveDescendant != OptionID(tt.want) {
					t.Errorf("expected active descendant %s, got %s", OptionID(tt.want), v.Field.ActiveDescendant)
				}
				if !strings.Contains(string(v.HTML), `class="qs-option selected" id="`+OptionID(tt.want)+`"`) {
					t.Errorf("selected row not marked in %s", v.HTML)
				}
			}
		})
	}
}

func TestOtherKeysPropagate(t *testing.T) {
	w, _ := newTestWidget(t, &fakeFetcher{})
	if w.KeyDown(KeyOther) {
		t.Error("unhandled keys must propagate")
	}
}

func TestEscapeAlwaysResets(t *testing.T) {
	setups := map[string]func(w *Widget, clock *fakeClock){
		"no list":      func(*Widget, *fakeClock) {},
		"list":         func(w *Widget, c *fakeClock) { typeAndWait(w, c, "shoe") },
		"selected":     func(w *Widget, c *fakeClock) { typeAndWait(w, c, "shoe"); w.KeyDown(KeyEnd) },
		"closed list":  func(w *Widget, c *fakeClock) { typeAndWait(w, c, "shoe"); w.Close() },
		"hovered item": func(w *Widget, c *fakeClock) { typeAndWait(w, c, "shoe"); w.Hover(3) },
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			w, clock := newTestWidget(t, &fakeFetcher{})
			setup(w, clock)

			w.KeyDown(KeyEscape)

			v := w.View()
			if v.State != NoList || v.Visible {
				t.Errorf("expected hidden NoList, got state %v visible %v", v.State, v.Visible)
			}
			if v.HTML != "" || len(v.Elements) != 0 {
				t.Error("expected no rows after escape")
			}
			if v.Field.ActiveDescendant != "" {
				t.Errorf("active descendant should be cleared, got %q", v.Field.ActiveDescendant)
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	var submitted []string
	w, clock := newTestWidget(t, &fakeFetcher{}, WithSubmit(func(v string) { submitted = append(submitted, v) }))

	for _, value := range []string{"", "   "} {
		w.field.Value = value
		if _, ok := w.Submit(); ok {
			t.Errorf("submit of %q should be cancelled", value)
		}
	}
	if len(submitted) != 0 {
		t.Fatalf("cancelled submissions must not run, got %v", submitted)
	}

	typeAndWait(w, clock, "shoe")
	w.Hover(2)

	value, ok := w.Submit()
	if !ok || value != "shoe 3" {
		t.Errorf("expected selection name to be submitted, got %q %v", value, ok)
	}
	if w.View().Field.Value != "shoe 3" {
		t.Errorf("selection should overwrite the input, got %q", w.View().Field.Value)
	}
	if w.View().Field.AriaHasPopup {
		t.Error("submit should clear aria-haspopup")
	}

	w.KeyDown(KeyEscape)
	w.field.Value = "boots"
	w.KeyDown(KeyEnter)

	if len(submitted) != 2 || submitted[1] != "boots" {
		t.Errorf("expected enter to submit raw value, got %v", submitted)
	}
}

func TestPointerSelection(t *testing.T) {
	w, clock := newTestWidget(t, &fakeFetcher{})
	typeAndWait(w, clock, "shoe")

	w.Hover(1)
	w.Hover(3)
	v := w.View()
	if v.Selected != 3 || v.Field.ActiveDescendant != "qs-option-3" {
		t.Fatalf("hover should select row 3, got %d %s", v.Selected, v.Field.ActiveDescendant)
	}
	if v.Field.Value != "shoe" {
		t.Errorf("hover must not overwrite the input, got %q", v.Field.Value)
	}

	w.MouseOut(1)
	if w.View().Selected != 3 {
		t.Error("leaving an unselected row must keep the selection")
	}

	w.MouseOut(3)
	if v := w.View(); v.Selected != -1 || v.State != ListNoSelection {
		t.Errorf("leaving the selected row should clear it, got %d %v", v.Selected, v.State)
	}
}

func TestCloseAndDocumentClick(t *testing.T) {
	w, clock := newTestWidget(t, &fakeFetcher{})
	typeAndWait(w, clock, "shoe")

	w.DocumentClick(true)
	if !w.View().Visible {
		t.Error("click inside the form must keep the dropdown")
	}

	w.DocumentClick(false)
	if w.View().Visible {
		t.Error("click outside the form should hide the dropdown")
	}

	typeAndWait(w, clock, "shoes")
	w.Close()
	if w.View().Visible {
		t.Error("close should hide the dropdown")
	}
}

func TestStaleResponseDropped(t *testing.T) {
	var pending []func()
	fetcher := &fakeFetcher{}
	w, clock := newTestWidget(t, fetcher, WithSpawn(func(f func()) { pending = append(pending, f) }))

	typeAndWait(w, clock, "sho")
	typeAndWait(w, clock, "shoes")
	if len(pending) != 2 {
		t.Fatalf("expected two in-flight lookups, got %d", len(pending))
	}

	// Newer lookup completes first
	pending[1]()
	if v := w.View(); v.Form.Loading || v.Elements[0].Name != "shoes 1" {
		t.Fatalf("expected shoes rendered, got %+v", v.Elements)
	}

	pending[0]()
	if v := w.View(); v.Elements[0].Name != "shoes 1" {
		t.Errorf("stale response overwrote the dropdown: %+v", v.Elements)
	}
}

func TestResponseAfterShortValueDropped(t *testing.T) {
	var pending []func()
	w, clock := newTestWidget(t, &fakeFetcher{}, WithSpawn(func(f func()) { pending = append(pending, f) }))

	typeAndWait(w, clock, "shoe")
	typeAndWait(w, clock, "")
	if len(pending) != 1 {
		t.Fatalf("expected one in-flight lookup, got %d", len(pending))
	}
	if v := w.View(); v.Form.Loading {
		t.Error("loading should clear once the value is too short")
	}

	pending[0]()
	v := w.View()
	if v.Visible || v.State != NoList || len(v.Elements) != 0 {
		t.Errorf("late response reopened the dropdown: visible %v state %v", v.Visible, v.State)
	}
	if !v.Form.SubmitDisabled || v.Form.Loading {
		t.Errorf("expected submit disabled and not loading, got %+v", v.Form)
	}
	if v.Field.AriaHasPopup {
		t.Error("aria-haspopup should stay false")
	}
}

func TestOlderResponseKeepsLoading(t *testing.T) {
	var pending []func()
	w, clock := newTestWidget(t, &fakeFetcher{}, WithSpawn(func(f func()) { pending = append(pending, f) }))

	typeAndWait(w, clock, "sho")
	typeAndWait(w, clock, "shoes")

	pending[0]()
	v := w.View()
	if !v.Visible || v.Elements[0].Name != "sho 1" {
		t.Fatalf("older response should render while nothing newer has, got %+v", v.Elements)
	}
	if !v.Form.Loading || !v.Form.SubmitDisabled {
		t.Errorf("latest lookup still in flight, got %+v", v.Form)
	}

	pending[1]()
	if v := w.View(); v.Form.Loading || v.Elements[0].Name != "shoes 1" {
		t.Errorf("latest response should finish loading, got %+v", v)
	}
}

func TestNetworkErrorRecovers(t *testing.T) {
	fetcher := &fakeFetcher{}
	w, clock := newTestWidget(t, fetcher)

	typeAndWait(w, clock, "shoe")
	w.KeyDown(KeyDown)

	fetcher.err = errors.New("connection refused")
	typeAndWait(w, clock, "shoes")

	v := w.View()
	if v.Form.Loading {
		t.Error("loading must be cleared after a failed lookup")
	}
	if v.Form.SubmitDisabled {
		t.Error("submit should be re-enabled for a non-empty value")
	}
	if v.Visible || v.State != NoList {
		t.Errorf("expected hidden NoList, got visible %v state %v", v.Visible, v.State)
	}
	if v.Field.AriaHasPopup || v.Field.ActiveDescendant != "" {
		t.Errorf("expected accessibility attributes cleared, got %+v", v.Field)
	}
}

func TestStopCancelsPendingLookup(t *testing.T) {
	fetcher := &fakeFetcher{}
	w, clock := newTestWidget(t, fetcher)

	w.Input("shoe")
	w.Stop()
	clock.Advance(time.Minute)

	if len(fetcher.queries) != 0 {
		t.Errorf("stopped widget must not look up, got %v", fetcher.queries)
	}
}

func TestFocus(t *testing.T) {
	w, _ := newTestWidget(t, &fakeFetcher{})
	w.Focus()
	if !w.View().Form.LabelActive {
		t.Error("focus should activate the label")
	}
}
