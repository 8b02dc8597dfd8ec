// Package detection parses the component listing a vision model returns for
// the detection prompt and derives upgrade guidance from it.
package detection

import (
	"regexp"
	"strings"
)

// BlockSeparator divides one component block from the next.
const BlockSeparator = "---"

const (
	Unknown     = "Unknown"
	DefaultSize = "Medium"
)

const (
	confidenceDetailed = 0.9
	confidenceBasic    = 0.7
)

// Detection is a single component reported by the model.
type Detection struct {
	Class      string  `json:"class"`
	Type       string  `json:"type"`
	Position   string  `json:"position"`
	Size       string  `json:"size"`
	Details    string  `json:"details"`
	Confidence float64 `json:"confidence"`
}

var (
	rxComponent = fieldPattern("COMPONENT")
	rxType      = fieldPattern("TYPE")
	rxPosition  = fieldPattern("POSITION")
	rxSize      = fieldPattern("SIZE")
	rxDetails   = fieldPattern("DETAILS")
)

func fieldPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + key + `:\s*([^\n]+)`)
}

// Parse reads "KEY: value" blocks separated by "---". Blocks without a
// COMPONENT line are skipped.
func Parse(text string) []Detection {
	out := make([]Detection, 0)
	for _, block := range strings.Split(text, BlockSeparator) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		class, ok := field(rxComponent, block)
		if !ok {
			continue
		}
		d := Detection{
			Class:    class,
			Type:     fieldOr(rxType, block, Unknown),
			Position: fieldOr(rxPosition, block, Unknown),
			Size:     fieldOr(rxSize, block, DefaultSize),
			Details:  fieldOr(rxDetails, block, ""),
		}
		d.Confidence = confidenceBasic
		if d.Details != "" {
			d.Confidence = confidenceDetailed
		}
		out = append(out, d)
	}
	return out
}

func field(rx *regexp.Regexp, block string) (string, bool) {
	m := rx.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func fieldOr(rx *regexp.Regexp, block, def string) string {
	if v, ok := field(rx, block); ok {
		return v
	}
	return def
}

// Classes returns the component names in detection order.
func Classes(ds []Detection) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Class)
	}
	return out
}
