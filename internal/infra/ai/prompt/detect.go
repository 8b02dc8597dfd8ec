package prompt

import (
	"fmt"
	"strings"
)

// GetDetectionPrompt asks for one COMPONENT/TYPE/POSITION block per part,
// separated by "---", which detection.Parse reads back.
func GetDetectionPrompt() string {
	return `List all hardware components visible. For each:
COMPONENT: [name]
TYPE: [details]
POSITION: [location]
SIZE: [small|medium|large]
DETAILS: [visible model numbers or brand names, if any]
Separate components with a line containing only ---`
}

// GetAnalysisPrompt builds the detailed-analysis request. The reply is
// expected as "* **Component**: status" bullets so it can be classified.
func GetAnalysisPrompt(detected []string) string {
	list := "none"
	if len(detected) > 0 {
		list = strings.Join(detected, ", ")
	}
	return fmt.Sprintf(`You are a hardware upgrade expert assistant.

I detected these components: %s

Now provide detailed information:
1. Confirm component identifications
2. Specify exact types/form factors (DDR4/DDR5, M.2 2280, SO-DIMM, etc.)
3. Any visible model numbers or brand names
4. Compatibility notes and upgrade recommendations
5. Condition assessment

Write one bullet per component as "* **Component**: status". Say "Confirmed" when
the part is clearly visible, "Not visible" or "Obscured" when it is not.

Keep response clear and helpful.`, list)
}
