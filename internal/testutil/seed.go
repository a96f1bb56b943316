package testutil

import (
	"fmt"

	"github.com/erazemk/toolshed/internal/model"
)

// SampleTools is the catalog Seed installs.
var SampleTools = []model.Tool{
	{Name: "Cordless Drill", Description: "18V drill with two batteries", Category: "Power Tools", Condition: model.ConditionGood},
	{Name: "Circular Saw", Description: "185mm blade, dust bag included", Category: "Power Tools", Condition: model.ConditionFair},
	{Name: "Claw Hammer", Description: "16oz steel hammer", Category: "Hand Tools", Condition: model.ConditionExcellent},
	{Name: "Socket Set", Description: "40 piece metric set", Category: "Hand Tools", Condition: model.ConditionGood},
	{Name: "Hedge Trimmer", Description: "Electric, 55cm blade", Category: "Garden Tools", Condition: model.ConditionGood},
	{Name: "Wheelbarrow", Description: "90 litre, pneumatic tyre", Category: "Garden Tools", Condition: model.ConditionFair},
	{Name: "Laser Level", Description: "Self-levelling cross line laser", Category: "Measurement Tools", Condition: model.ConditionExcellent},
	{Name: "Safety Goggles", Description: "Anti-fog, pack of two", Category: "Safety Equipment", Condition: model.ConditionGood},
}

// Seed creates an admin and a regular account with the given password and
// installs SampleTools.
func Seed(b *Backend, password string) error {
	if _, err := b.AddUser("admin", password, model.RoleAdmin); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if _, err := b.AddUser("demo", password, model.RoleUser); err != nil {
		return fmt.Errorf("seeding demo user: %w", err)
	}
	for _, t := range SampleTools {
		b.AddTool(t)
	}
	return nil
}
