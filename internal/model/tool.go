package model

// Tool is a catalog entry that can be reserved.
type Tool struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"`
	Condition       string `json:"condition,omitempty"`
	IsAvailable     bool   `json:"is_available"`
	ImageURL        string `json:"image_url,omitempty"`
	WearLevel       string `json:"wear_level,omitempty"`
	LastMaintenance string `json:"last_maintenance,omitempty"`
	OwnerID         *int64 `json:"owner_id,omitempty"`
}

// ToolInput is the body of admin create and update calls.
type ToolInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Condition   string `json:"condition,omitempty"`
}

// CategoryAll selects every category in the catalog.
const CategoryAll = "All"

// Categories lists the catalog categories offered for filtering.
var Categories = []string{
	CategoryAll,
	"Power Tools",
	"Hand Tools",
	"Garden Tools",
	"Measurement Tools",
	"Safety Equipment",
}

// Tool conditions, shared by the catalog and the return form.
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
)

// Conditions lists the valid tool conditions, best first.
var Conditions = []string{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}

// UsageReport is the admin usage summary.
type UsageReport struct {
	TotalTools         int `json:"total_tools"`
	AvailableTools     int `json:"available_tools"`
	ReservedTools      int `json:"reserved_tools"`
	ActiveReservations int `json:"active_reservations"`
	TotalUsers         int `json:"total_users"`
}
