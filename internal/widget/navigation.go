package widget

// State is the navigation state of the dropdown
type State int

// Navigation states
const (
	NoList State = iota
	ListNoSelection
	ListSelected
)

func (s State) String() string {
	switch s {
	case ListNoSelection:
		return "list"
	case ListSelected:
		return "selected"
	default:
		return "no-list"
	}
}

// Element is one selectable dropdown row
type Element struct {
	Index int
	ID    string // DOM id, qs-option-<index>
	Name  string
	URL   string
}

// Navigator tracks the selectable rows and the highlighted one.
// The selection always refers to a row of the current list.
type Navigator struct {
	items    []Element
	hasList  bool
	selected int
}

// NewNavigator returns a navigator in the NoList state
func NewNavigator() *Navigator {
	return &Navigator{selected: -1}
}

// State returns the current state
func (n *Navigator) State() State {
	switch {
	case !n.hasList:
		return NoList
	case n.selected < 0:
		return ListNoSelection
	default:
		return ListSelected
	}
}

// SetList replaces the rows and clears the selection
func (n *Navigator) SetList(items []Element) {
	n.items = append([]Element(nil), items...)
	n.hasList = true
	n.selected = -1
}

// Items returns the current rows
func (n *Navigator) Items() []Element {
	return n.items
}

// SoftReset clears the selection and keeps the list
func (n *Navigator) SoftReset() {
	n.selected = -1
}

// FullReset clears the selection and the list
func (n *Navigator) FullReset() {
	n.items = nil
	n.hasList = false
	n.selected = -1
}

// Selected returns the highlighted row
func (n *Navigator) Selected() (Element, bool) {
	if n.selected < 0 || n.selected >= len(n.items) {
		return Element{}, false
	}
	return n.items[n.selected], true
}

// SelectedIndex returns the highlighted position, or -1
func (n *Navigator) SelectedIndex() int {
	return n.selected
}

// Select highlights row i
func (n *Navigator) Select(i int) (Element, bool) {
	if !n.hasList || i < 0 || i >= len(n.items) {
		return Element{}, false
	}
	n.selected = i
	return n.items[i], true
}

// First highlights the first row
func (n *Navigator) First() (Element, bool) {
	return n.Select(0)
}

// Last highlights the last row
func (n *Navigator) Last() (Element, bool) {
	return n.Select(len(n.items) - 1)
}

// Next moves down one row, wrapping from the last to the first.
// With nothing selected it highlights the first row.
func (n *Navigator) Next() (Element, bool) {
	if !n.hasList || len(n.items) == 0 {
		return Element{}, false
	}
	if n.selected < 0 || n.selected == len(n.items)-1 {
		return n.First()
	}
	return n.Select(n.selected + 1)
}

// Prev moves up one row, wrapping from the first to the last.
// With nothing selected it does nothing.
func (n *Navigator) Prev() (Element, bool) {
	if !n.hasList || n.selected < 0 {
		return Element{}, false
	}
	if n.selected == 0 {
		return n.Last()
	}
	return n.Select(n.selected - 1)
}

// Leave handles the pointer leaving row i. The selection is cleared only
// when i is the highlighted row.
func (n *Navigator) Leave(i int) bool {
	if n.selected < 0 || n.selected != i {
		return false
	}
	n.selected = -1
	return true
}
