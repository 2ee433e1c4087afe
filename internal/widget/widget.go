package widget

import (
	"context"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/dsjohal14/quicksearch/internal/suggest"
	"github.com/rs/zerolog"
)

// Field is the view state of the search input
type Field struct {
	Value            string
	Autocomplete     string
	AriaHasPopup     bool
	ActiveDescendant string
}

// Form is the view state of the search form
type Form struct {
	Loading        bool
	SubmitDisabled bool
	LabelActive    bool
}

// View is a snapshot of everything a host needs to draw the widget
type View struct {
	Field    Field
	Form     Form
	Visible  bool
	State    State
	Selected int
	Info     suggest.Info
	Results  []suggest.Item
	Elements []Element
	HTML     template.HTML
}

// Option customizes a Widget
type Option func(*Widget)

// WithClock replaces the wall clock used for debouncing
func WithClock(c Clock) Option {
	return func(w *Widget) { w.clock = c }
}

// WithSpawn replaces how lookups are started. The default runs each in a
// new goroutine.
func WithSpawn(spawn func(func())) Option {
	return func(w *Widget) { w.spawn = spawn }
}

// WithLogger sets the widget logger
func WithLogger(l zerolog.Logger) Option {
	return func(w *Widget) { w.logger = l }
}

// WithSubmit sets the callback run when a submission proceeds
func WithSubmit(fn func(value string)) Option {
	return func(w *Widget) { w.onSubmit = fn }
}

// Widget is the quick search box
type Widget struct {
	opts     Options
	fetcher  Fetcher
	renderer *Renderer
	nav      *Navigator
	debounce *Debouncer
	clock    Clock
	post     Dispatcher
	spawn    func(func())
	onSubmit func(string)
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	field    Field
	form     Form
	visible  bool
	response *suggest.Response

	// seq numbers issued lookups; rendered is the highest one drawn or
	// superseded by a suppressed lookup
	seq      uint64
	rendered uint64
}

// New creates a widget. post must deliver callbacks to the goroutine that
// drives the widget.
func New(opts Options, fetcher Fetcher, post Dispatcher, options ...Option) (*Widget, error) {
	opts = opts.withDefaults()

	renderer, err := NewRenderer(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Widget{
		opts:     opts,
		fetcher:  fetcher,
		renderer: renderer,
		nav:      NewNavigator(),
		post:     post,
		spawn:    func(f func()) { go f() },
		logger:   zerolog.Nop(),
		ctx:      ctx,
		cancel:   cancel,
		field:    Field{Autocomplete: opts.Autocomplete},
		form:     Form{SubmitDisabled: true},
	}
	for _, o := range options {
		o(w)
	}
	w.debounce = NewDebouncer(w.clock, opts.Timeout, post)

	return w, nil
}

// Stop cancels the pending lookup timer and any in-flight requests
func (w *Widget) Stop() {
	w.debounce.Cancel()
	w.cancel()
}

// Focus marks the search label active
func (w *Widget) Focus() {
	w.form.LabelActive = true
}

// Input handles a value-changing input event. The lookup is deferred until
// the debounce delay passes without another input.
func (w *Widget) Input(value string) {
	w.field.Value = value
	w.debounce.Schedule(w.lookup)
}

func isEmpty(value string) bool {
	return strings.TrimSpace(value) == ""
}

func (w *Widget) lookup() {
	value := w.field.Value
	w.form.SubmitDisabled = isEmpty(value)

	if utf8.RuneCountInString(value) < w.opts.MinSearchLength {
		// lookups still in flight belong to a value that is gone
		w.seq++
		w.rendered = w.seq
		w.form.Loading = false
		w.nav.FullReset()
		w.visible = false
		w.field.AriaHasPopup = false
		w.field.ActiveDescendant = ""
		return
	}

	w.form.Loading = true
	w.form.SubmitDisabled = true

	w.seq++
	seq := w.seq
	ctx := w.ctx

	w.logger.Debug().Uint64("seq", seq).Str("query", value).Msg("lookup issued")

	w.spawn(func() {
		resp, err := w.fetcher.Fetch(ctx, value)
		w.post(func() { w.complete(seq, value, resp, err) })
	})
}

func (w *Widget) complete(seq uint64, query string, resp suggest.Response, err error) {
	if err == nil && seq < w.rendered {
		w.logger.Debug().Uint64("seq", seq).Uint64("rendered", w.rendered).Msg("stale suggestions dropped")
		return
	}

	var dropdown Dropdown
	if err == nil {
		dropdown, err = w.renderer.Render(resp, -1)
	}

	if err != nil {
		w.logger.Warn().Err(err).Str("query", query).Msg("suggestion lookup failed")
		if seq != w.seq {
			return
		}
		w.form.Loading = false
		w.form.SubmitDisabled = isEmpty(w.field.Value)
		w.visible = false
		w.nav.FullReset()
		w.field.AriaHasPopup = false
		w.field.ActiveDescendant = ""
		return
	}

	w.rendered = seq
	w.response = &resp
	w.visible = true
	w.nav.SetList(dropdown.Elements)
	w.field.ActiveDescendant = ""
	w.field.AriaHasPopup = len(dropdown.Elements) > 0

	if seq == w.seq {
		w.form.Loading = false
		w.form.SubmitDisabled = false
	}
}

// KeyDown handles a navigation key. It reports whether the key was
// consumed; unhandled keys should take their default action.
func (w *Widget) KeyDown(k Key) bool {
	switch k {
	case KeyHome:
		w.keySelect(w.nav.First())
	case KeyEnd:
		w.keySelect(w.nav.Last())
	case KeyEscape:
		w.nav.FullReset()
		w.visible = false
		w.field.ActiveDescendant = ""
	case KeyEnter:
		w.Submit()
	case KeyDown:
		w.keySelect(w.nav.Next())
	case KeyUp:
		w.keySelect(w.nav.Prev())
	default:
		return false
	}
	return true
}

func (w *Widget) keySelect(el Element, ok bool) {
	if !ok {
		return
	}
	w.field.Value = el.Name
	w.field.ActiveDescendant = el.ID
}

// Hover highlights row i under the pointer
func (w *Widget) Hover(i int) {
	if el, ok := w.nav.Select(i); ok {
		w.field.ActiveDescendant = el.ID
	}
}

// MouseOut handles the pointer leaving row i
func (w *Widget) MouseOut(i int) {
	w.nav.Leave(i)
}

// Close hides the dropdown, as the close control does
func (w *Widget) Close() {
	w.visible = false
}

// DocumentClick hides the dropdown when the click landed outside the form
func (w *Widget) DocumentClick(insideForm bool) {
	if !insideForm {
		w.visible = false
	}
}

// Submit runs the submit flow. It returns the submitted value and false
// when the submission was cancelled because the input is empty.
func (w *Widget) Submit() (string, bool) {
	w.field.AriaHasPopup = false

	if isEmpty(w.field.Value) {
		return "", false
	}
	if el, ok := w.nav.Selected(); ok {
		w.field.Value = el.Name
	}

	if w.onSubmit != nil {
		w.onSubmit(w.field.Value)
	}
	return w.field.Value, true
}

// View returns a snapshot of the widget state
func (w *Widget) View() View {
	v := View{
		Field:    w.field,
		Form:     w.form,
		Visible:  w.visible,
		State:    w.nav.State(),
		Selected: w.nav.SelectedIndex(),
		Elements: w.nav.Items(),
	}

	if w.response != nil && w.nav.State() != NoList {
		v.Info = w.response.Info
		v.Results = w.response.Results
		if dd, err := w.renderer.Render(*w.response, v.Selected); err == nil {
			v.HTML = dd.HTML
		}
	}
	return v
}
