package detection

import (
	"fmt"
	"strings"
)

// UpgradeCategory groups components by the upgrade procedure that applies.
type UpgradeCategory string

const (
	UpgradeRAM     UpgradeCategory = "RAM_UPGRADE"
	UpgradeBattery UpgradeCategory = "BATTERY_REPLACEMENT"
	UpgradeSSD     UpgradeCategory = "SSD_UPGRADE"
	UpgradeWiFi    UpgradeCategory = "WIFI_CARD_REPLACEMENT"
	UpgradeScrew   UpgradeCategory = "FASTENER"
	UpgradeOther   UpgradeCategory = "OTHER_COMPONENT"
)

// Action values carried by a Recommendation.
const (
	ActionUpgrade     = "upgrade_available"
	ActionReplacement = "replacement_available"
	ActionTool        = "tool_required"
)

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CategoryFor maps a component name to its upgrade category.
func CategoryFor(name string) UpgradeCategory {
	n := strings.ToLower(name)
	switch {
	case containsAny(n, "ram", "memory"):
		return UpgradeRAM
	case containsAny(n, "battery"):
		return UpgradeBattery
	case containsAny(n, "ssd", "storage", "drive"):
		return UpgradeSSD
	case containsAny(n, "wifi", "nic", "network"):
		return UpgradeWiFi
	case containsAny(n, "screw"):
		return UpgradeScrew
	default:
		return UpgradeOther
	}
}

// Recommendation is the next-step guidance for one detected component.
type Recommendation struct {
	Component string   `json:"component"`
	Action    string   `json:"action"`
	Message   string   `json:"message"`
	NextSteps []string `json:"next_steps"`
}

// RecommendationFor returns guidance for components we have a procedure for.
// The keyword set is narrower than CategoryFor: a generic "drive" or
// "network" gets a category but no procedure.
func RecommendationFor(name, position string) (Recommendation, bool) {
	n := strings.ToLower(name)
	rec := Recommendation{Component: name}
	switch {
	case containsAny(n, "ram", "memory"):
		rec.Action = ActionUpgrade
		rec.Message = fmt.Sprintf("I can help you upgrade this RAM module. Located at: %s.", position)
		rec.NextSteps = []string{
			"Identify exact RAM type (DDR3/DDR4/DDR5)",
			"Check motherboard compatibility",
			"Follow RAM installation procedure",
		}
	case containsAny(n, "battery"):
		rec.Action = ActionReplacement
		rec.Message = fmt.Sprintf("I can guide you through battery replacement. Located at: %s.", position)
		rec.NextSteps = []string{
			"Power off and unplug device",
			"Disconnect battery cable",
			"Remove battery carefully",
			"Install new battery",
		}
	case containsAny(n, "ssd", "storage"):
		rec.Action = ActionUpgrade
		rec.Message = fmt.Sprintf("I can help you upgrade this storage drive. Located at: %s.", position)
		rec.NextSteps = []string{
			`Identify SSD form factor (M.2/2.5"/etc)`,
			"Check interface type (SATA/NVMe)",
			"Follow SSD installation procedure",
		}
	case containsAny(n, "wifi", "nic"):
		rec.Action = ActionUpgrade
		rec.Message = fmt.Sprintf("I can help you upgrade this WiFi card. Located at: %s.", position)
		rec.NextSteps = []string{
			"Identify card form factor (M.2/Mini PCIe)",
			"Disconnect antenna cables carefully",
			"Follow WiFi card replacement procedure",
		}
	case containsAny(n, "screw"):
		rec.Action = ActionTool
		rec.Message = fmt.Sprintf("Screw identified at: %s. Ensure you have the right screwdriver.", position)
		rec.NextSteps = []string{
			"Use appropriate screwdriver size",
			"Remove screw carefully",
			"Store screw safely for reassembly",
		}
	default:
		return Recommendation{}, false
	}
	return rec, true
}

// ComponentInfo is the structured view of a detection handed to the
// assistant and the UI.
type ComponentInfo struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Position        string          `json:"position"`
	Size            string          `json:"size"`
	Details         string          `json:"details"`
	UpgradeCategory UpgradeCategory `json:"upgrade_category"`
}

// StructuredData bundles components and recommendations for one image.
type StructuredData struct {
	Summary         string           `json:"summary"`
	Components      []ComponentInfo  `json:"components"`
	Recommendations []Recommendation `json:"recommendations"`
	TotalCount      int              `json:"total_count,omitempty"`
}

// Structure builds the structured instructions for a set of detections.
// Component IDs are 1-based and follow detection order.
func Structure(ds []Detection) StructuredData {
	out := StructuredData{
		Components:      []ComponentInfo{},
		Recommendations: []Recommendation{},
	}
	if len(ds) == 0 {
		out.Summary = "No components detected"
		return out
	}
	for i, d := range ds {
		out.Components = append(out.Components, ComponentInfo{
			ID:              i + 1,
			Name:            d.Class,
			Type:            d.Type,
			Position:        d.Position,
			Size:            d.Size,
			Details:         d.Details,
			UpgradeCategory: CategoryFor(d.Class),
		})
		if rec, ok := RecommendationFor(d.Class, d.Position); ok {
			out.Recommendations = append(out.Recommendations, rec)
		}
	}
	out.Summary = fmt.Sprintf("Detected %d hardware component(s)", len(ds))
	out.TotalCount = len(ds)
	return out
}
