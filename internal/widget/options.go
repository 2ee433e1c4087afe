// Package widget implements the quick search box: debounced lookups against
// the suggestion endpoint, dropdown rendering and keyboard/pointer navigation.
//
// A Widget is not safe for concurrent use. Every method must run on the
// goroutine behind its Dispatcher; timers and network completions are posted
// back there.
package widget

import "time"

// Options configure a Widget
type Options struct {
	// Timeout is the debounce delay between the last keystroke and the lookup
	Timeout time.Duration

	// MinSearchLength is the minimum value length (in runes) that issues a
	// lookup. Zero uses the default; a negative value disables the minimum.
	MinSearchLength int

	// SelectClass marks the highlighted row in rendered markup
	SelectClass string

	// Autocomplete is the browser autocomplete attribute set on the field
	Autocomplete string

	// URL is the suggestion endpoint
	URL string

	// ItemTemplate renders one suggestion row (html/template syntax)
	ItemTemplate string

	// ResultsTemplate renders the leading "view all results" row (html/template syntax)
	ResultsTemplate string
}

// DefaultItemTemplate renders one suggestion row
const DefaultItemTemplate = `<li class="{{.RowClass}}" id="{{.OptionID}}" role="option" data-url="{{.URL}}">` +
	`<div class="qs-option-image"><a href="{{.URL}}" title="{{.Name}}"><img src="{{.Image}}" title="{{.Name}}" /></a></div>` +
	`<div class="qs-option-description">` +
	`<span class="qs-option-title"><a href="{{.URL}}" title="{{.Name}}">{{.Name}}</a></span>` +
	`{{if .Reviews}}<div class="qs-option-reviews">{{.Reviews}}</div>{{end}}` +
	`<span class="qs-option-price">{{.Price}}</span>` +
	`</div></li>`

// DefaultResultsTemplate renders the "view all results" row with its close control
const DefaultResultsTemplate = `<li class="full-search">` +
	`<a href="{{.URL}}" title="View full list"><span>View All Results: {{.Size}}</span></a>` +
	`<button id="btn-quicksearch-close" class="action close" data-action="close" type="button" title="Close"></button>` +
	`</li>`

// DefaultOptions returns the stock widget configuration
func DefaultOptions() Options {
	return Options{
		Timeout:         1500 * time.Millisecond,
		MinSearchLength: 2,
		SelectClass:     "selected",
		Autocomplete:    "off",
		URL:             "/search/ajax/suggest",
		ItemTemplate:    DefaultItemTemplate,
		ResultsTemplate: DefaultResultsTemplate,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	switch {
	case o.MinSearchLength == 0:
		o.MinSearchLength = def.MinSearchLength
	case o.MinSearchLength < 0:
		o.MinSearchLength = 0
	}
	if o.SelectClass == "" {
		o.SelectClass = def.SelectClass
	}
	if o.Autocomplete == "" {
		o.Autocomplete = def.Autocomplete
	}
	if o.URL == "" {
		o.URL = def.URL
	}
	if o.ItemTemplate == "" {
		o.ItemTemplate = def.ItemTemplate
	}
	if o.ResultsTemplate == "" {
		o.ResultsTemplate = def.ResultsTemplate
	}
	return o
}

// Key is a navigation key delivered to KeyDown
type Key int

// Keys handled by the widget. Anything else is KeyOther and propagates.
const (
	KeyOther Key = iota
	KeyHome
	KeyEnd
	KeyEscape
	KeyEnter
	KeyUp
	KeyDown
)

func (k Key) String() string {
	switch k {
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyEscape:
		return "escape"
	case KeyEnter:
		return "enter"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	default:
		return "other"
	}
}
