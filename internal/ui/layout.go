package ui

// Layout is which panels surround the particle field.
type Layout int

const (
	LayoutCards Layout = iota
	LayoutField
)

// Next cycles to the next layout.
func (l Layout) Next() Layout {
	switch l {
	case LayoutCards:
		return LayoutField
	default:
		return LayoutCards
	}
}

// String returns the name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutField:
		return "field"
	default:
		return "cards"
	}
}

const (
	headerRows = 1
	statusRows = 1
	cardRows   = 6
	minField   = 3
)

// fieldRows returns how many terminal rows the canvas gets.
func (l Layout) fieldRows(height int) int {
	rows := height - headerRows - statusRows
	if l == LayoutCards {
		rows -= cardRows
	}
	if rows < minField {
		rows = minField
	}
	return rows
}
