package analysis

import "fmt"

// Category is the bucket a component record is sorted into.
type Category int

const (
	CategoryConfirmed Category = iota
	CategoryNotVisible
	CategoryNote
)

// Categories lists every category in rendering order.
var Categories = []Category{CategoryConfirmed, CategoryNotVisible, CategoryNote}

func (c Category) String() string {
	switch c {
	case CategoryConfirmed:
		return "confirmed"
	case CategoryNotVisible:
		return "not_visible"
	case CategoryNote:
		return "note"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Label is the human heading used by text renderers.
func (c Category) Label() string {
	switch c {
	case CategoryConfirmed:
		return "Confirmed"
	case CategoryNotVisible:
		return "Not Visible"
	case CategoryNote:
		return "Note"
	default:
		return c.String()
	}
}

func (c Category) MarshalText() ([]byte, error) {
	switch c {
	case CategoryConfirmed, CategoryNotVisible, CategoryNote:
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf("unknown category %d", int(c))
}

func (c *Category) UnmarshalText(b []byte) error {
	switch string(b) {
	case "confirmed":
		*c = CategoryConfirmed
	case "not_visible":
		*c = CategoryNotVisible
	case "note":
		*c = CategoryNote
	default:
		return fmt.Errorf("unknown category %q", string(b))
	}
	return nil
}
