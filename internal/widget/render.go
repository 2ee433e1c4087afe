package widget

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/dsjohal14/quicksearch/internal/suggest"
)

// OptionID returns the DOM id of the row at index
func OptionID(index int) string {
	return "qs-option-" + strconv.Itoa(index)
}

// Dropdown is a rendered suggestion list
type Dropdown struct {
	HTML     template.HTML
	Info     suggest.Info
	Elements []Element
}

type itemData struct {
	Index    int
	OptionID string
	RowClass string
	Name     string
	URL      string
	Image    string
	Price    string
	Reviews  template.HTML
}

// Renderer turns suggestion responses into dropdown markup
type Renderer struct {
	item        *template.Template
	results     *template.Template
	selectClass string
}

// NewRenderer parses the item and results templates
func NewRenderer(opts Options) (*Renderer, error) {
	opts = opts.withDefaults()

	item, err := template.New("item").Parse(opts.ItemTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item template: %w", err)
	}
	results, err := template.New("results").Parse(opts.ResultsTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results template: %w", err)
	}

	return &Renderer{item: item, results: results, selectClass: opts.SelectClass}, nil
}

// Render builds the dropdown for resp. The row at selected, if any, carries
// the select class; pass -1 for none.
func (r *Renderer) Render(resp suggest.Response, selected int) (Dropdown, error) {
	var buf bytes.Buffer
	buf.WriteString(`<ul role="listbox">`)

	if err := r.results.Execute(&buf, resp.Info); err != nil {
		return Dropdown{}, fmt.Errorf("failed to render results row: %w", err)
	}

	elements := make([]Element, 0, len(resp.Results))
	for i, it := range resp.Results {
		data := itemData{
			Index:    i,
			OptionID: OptionID(i),
			RowClass: "qs-option",
			Name:     it.Name,
			URL:      it.URL,
			Image:    it.Image,
			Price:    it.Price,
			// Review markup is produced server side
			Reviews: template.HTML(it.Reviews),
		}
		if i == selected {
			data.RowClass += " " + r.selectClass
		}
		if err := r.item.Execute(&buf, data); err != nil {
			return Dropdown{}, fmt.Errorf("failed to render item %s: %w", it.ID, err)
		}
		elements = append(elements, Element{Index: i, ID: data.OptionID, Name: it.Name, URL: it.URL})
	}

	buf.WriteString(`</ul>`)

	return Dropdown{
		HTML:     template.HTML(buf.String()),
		Info:     resp.Info,
		Elements: elements,
	}, nil
}
