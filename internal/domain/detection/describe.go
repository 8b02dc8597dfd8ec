package detection

import (
	"fmt"
	"strings"
)

const maxListed = 3

// Label is the component name with its type appended when the type is known.
func (d Detection) Label() string {
	if d.Type != "" && d.Type != Unknown {
		return fmt.Sprintf("%s (%s)", d.Class, d.Type)
	}
	return d.Class
}

// Describe builds the one-line summary shown above the detailed analysis.
func Describe(ds []Detection) string {
	if len(ds) == 0 {
		return "No hardware components detected in the image."
	}
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		parts = append(parts, d.Label())
	}
	if len(parts) <= maxListed {
		return "I identified: " + strings.Join(parts, ", ") + "."
	}
	return fmt.Sprintf("I identified %d components: %s, and %d more.",
		len(parts), strings.Join(parts[:maxListed], ", "), len(parts)-maxListed)
}
