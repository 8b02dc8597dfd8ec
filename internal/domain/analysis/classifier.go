package analysis

import (
	"strings"
	"unicode"
)

const (
	bulletMarker   = "*"
	emphasisMarker = "**"
	fieldSeparator = ":"
)

const confirmedKeyword = "confirmed"

// notVisibleKeywords are matched against the lowercased status text.
var notVisibleKeywords = []string{
	"not visible",
	"not explicitly visible",
	"obscured",
	"not detected",
	"likely present",
}

// Record is one component line pulled out of the model output.
type Record struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Category Category `json:"category"`
}

// Result partitions the records of one analysis text by category.
// Each slice keeps the order the lines appeared in the text.
type Result struct {
	Confirmed  []Record `json:"confirmed"`
	NotVisible []Record `json:"notVisible"`
	Notes      []Record `json:"notes"`
}

// NewResult returns a result with empty, non-nil slices.
func NewResult() Result {
	return Result{
		Confirmed:  []Record{},
		NotVisible: []Record{},
		Notes:      []Record{},
	}
}

// Len is the total number of records across all categories.
func (r Result) Len() int {
	return len(r.Confirmed) + len(r.NotVisible) + len(r.Notes)
}

// In returns the records of a single category.
func (r Result) In(c Category) []Record {
	switch c {
	case CategoryConfirmed:
		return r.Confirmed
	case CategoryNotVisible:
		return r.NotVisible
	case CategoryNote:
		return r.Notes
	}
	return nil
}

func (r *Result) add(rec Record) {
	switch rec.Category {
	case CategoryConfirmed:
		r.Confirmed = append(r.Confirmed, rec)
	case CategoryNotVisible:
		r.NotVisible = append(r.NotVisible, rec)
	default:
		r.Notes = append(r.Notes, rec)
	}
}

// entry is a bullet line that carried a name/status pair.
type entry struct {
	name   string
	status string
}

// Classify turns the free-text analysis of a vision model into categorized
// component records. Only "* name: status" bullet lines produce records;
// everything else is skipped. It never fails: unusable input yields an
// empty result.
func Classify(text string) Result {
	res := NewResult()
	for _, line := range strings.Split(text, "\n") {
		e, ok := parseEntry(line)
		if !ok {
			continue
		}
		res.add(Record{
			Name:     e.name,
			Status:   e.status,
			Category: ClassifyStatus(e.status),
		})
	}
	return res
}

// ClassifyStatus assigns a category from a status description.
// "confirmed" wins over the not-visible phrases; anything else is a note.
func ClassifyStatus(status string) Category {
	s := strings.ToLower(status)
	if strings.Contains(s, confirmedKeyword) {
		return CategoryConfirmed
	}
	for _, kw := range notVisibleKeywords {
		if strings.Contains(s, kw) {
			return CategoryNotVisible
		}
	}
	return CategoryNote
}

func parseEntry(line string) (entry, bool) {
	trimmed, ok := filterLine(line)
	if !ok {
		return entry{}, false
	}
	content, ok := bulletContent(trimmed)
	if !ok {
		return entry{}, false
	}
	name, status, ok := splitFields(content)
	if !ok {
		return entry{}, false
	}
	return entry{name: name, status: status}, true
}

// filterLine trims the line and drops blank or icon-only lines.
func filterLine(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if t == "" || !hasAlphanumeric(t) {
		return "", false
	}
	return t, true
}

func hasAlphanumeric(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// bulletContent strips a single leading "*" list marker. A line opening
// with "**" is an emphasis run, not a bullet.
func bulletContent(line string) (string, bool) {
	if !strings.HasPrefix(line, bulletMarker) || strings.HasPrefix(line, emphasisMarker) {
		return "", false
	}
	return strings.TrimSpace(line[len(bulletMarker):]), true
}

// splitFields cuts at the first colon. Markers are removed after trimming,
// so unbalanced "**" never matters.
func splitFields(content string) (name, status string, ok bool) {
	before, after, found := strings.Cut(content, fieldSeparator)
	if !found {
		return "", "", false
	}
	name = stripEmphasis(strings.TrimSpace(before))
	status = stripEmphasis(strings.TrimSpace(after))
	return name, status, true
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, emphasisMarker, "")
}
