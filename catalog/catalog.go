// Package catalog holds the plan tiers and purchasable add-ons offered by the dashboard.
package catalog

import (
	"errors"
	"fmt"

	"github.com/notblessy/studio-core/model"
)

const (
	AddOnImagePack       = "image_pack"
	AddOnDocumentPack    = "document_pack"
	AddOnStarterBundle   = "starter_bundle"
	AddOnCoderPackage    = "coder_package"
	AddOnDatabasePackage = "database_package"
)

// MaxDocuments is the document quota of the largest tier.
const MaxDocuments = 32

// DowngradeWarning is shown before moving a paid subscription to the free tier.
const DowngradeWarning = "Downgrading to the Free plan removes add-ons purchased under the Enterprise plan. " +
	"Add-ons purchased under the Builder plan are retained."

var ErrUnknownAddOn = errors.New("unknown add-on")

var plans = []model.Plan{
	{
		ID:          model.PlanFree,
		Name:        "Free",
		Price:       0,
		AnnualPrice: 0,
		Documents:   6,
		Features: []string{
			"6 AI-generated documents",
			"1 project",
			"Community support",
		},
	},
	{
		ID:          model.PlanBuilder,
		Name:        "Builder",
		Price:       29,
		AnnualPrice: 24,
		Documents:   16,
		Features: []string{
			"16 AI-generated documents",
			"Unlimited projects",
			"Image generation",
			"Email support",
		},
	},
	{
		ID:          model.PlanEnterprise,
		Name:        "Enterprise",
		Price:       99,
		AnnualPrice: 82,
		Documents:   32,
		Features: []string{
			"32 AI-generated documents",
			"Unlimited projects",
			"Priority image generation",
			"Dedicated success manager",
		},
	},
}

var addOns = []model.AddOn{
	{
		Type:         AddOnImagePack,
		Name:         "Image Pack",
		Price:        5,
		Quantity:     50,
		Description:  "50 additional image generations",
		ImageCredits: 50,
	},
	{
		Type:            AddOnDocumentPack,
		Name:            "Document Pack",
		Price:           10,
		Quantity:        5,
		Description:     "5 additional documents for one project",
		DocumentCredits: 5,
	},
	{
		Type:            AddOnStarterBundle,
		Name:            "Starter Bundle",
		Price:           13,
		Quantity:        1,
		Description:     "5 documents and 50 images at a discount",
		DocumentCredits: 5,
		ImageCredits:    50,
	},
	{
		Type:        AddOnCoderPackage,
		Name:        "Coder Package",
		Price:       19,
		Quantity:    1,
		Description: "Generated source code scaffolding for your project",
		OnlyOn:      []model.PlanTier{model.PlanFree},
		Includes:    []string{AddOnDatabasePackage},
	},
	{
		Type:        AddOnDatabasePackage,
		Name:        "Database Package",
		Price:       9,
		Quantity:    1,
		Description: "Generated database schema and migrations",
	},
}

// Plans returns the tiers in ascending order.
func Plans() []model.Plan {
	out := make([]model.Plan, len(plans))
	for i, p := range plans {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}

func Plan(tier model.PlanTier) (model.Plan, bool) {
	for _, p := range Plans() {
		if p.ID == tier {
			return p, true
		}
	}
	return model.Plan{}, false
}

// DocumentQuota returns the document quota of a tier. Unknown tiers get the free quota.
func DocumentQuota(tier model.PlanTier) int {
	if p, ok := Plan(tier); ok {
		return p.Documents
	}
	return plans[0].Documents
}

// rank orders tiers; unknown tiers rank as free.
func rank(tier model.PlanTier) int {
	for i, p := range plans {
		if p.ID == tier {
			return i
		}
	}
	return 0
}

func AddOns() []model.AddOn {
	out := make([]model.AddOn, len(addOns))
	for i, a := range addOns {
		a.OnlyOn = append([]model.PlanTier(nil), a.OnlyOn...)
		a.Includes = append([]string(nil), a.Includes...)
		out[i] = a
	}
	return out
}

func AddOn(addOnType string) (model.AddOn, bool) {
	for _, a := range AddOns() {
		if a.Type == addOnType {
			return a, true
		}
	}
	return model.AddOn{}, false
}

func offeredOn(a model.AddOn, tier model.PlanTier) bool {
	if len(a.OnlyOn) == 0 {
		return true
	}
	for _, t := range a.OnlyOn {
		if t == tier {
			return true
		}
	}
	return false
}

// Offered lists the add-ons presented on a tier given the add-ons already owned.
// An owned add-on is always listed, even when its tier no longer offers it.
func Offered(tier model.PlanTier, owned []string) []model.AddOnOffer {
	have := make(map[string]bool, len(owned))
	included := make(map[string]bool)
	for _, t := range owned {
		have[t] = true
		if a, ok := AddOn(t); ok {
			for _, inc := range a.Includes {
				included[inc] = true
			}
		}
	}

	var offers []model.AddOnOffer
	for _, a := range AddOns() {
		if !offeredOn(a, tier) && !have[a.Type] {
			continue
		}
		offers = append(offers, model.AddOnOffer{
			AddOn:    a,
			Owned:    have[a.Type],
			Included: included[a.Type],
		})
	}
	return offers
}

// ValidateSelection checks the add-ons picked during onboarding against a tier.
func ValidateSelection(tier model.PlanTier, selected []string) error {
	if !tier.Valid() {
		return fmt.Errorf("unknown plan %q", tier)
	}

	seen := make(map[string]bool, len(selected))
	for _, t := range selected {
		a, ok := AddOn(t)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAddOn, t)
		}
		if seen[t] {
			return fmt.Errorf("add-on %q selected twice", t)
		}
		seen[t] = true
		if !offeredOn(a, tier) {
			return fmt.Errorf("add-on %q is not available on the %s plan", t, tier)
		}
	}
	return nil
}

// IsDowngrade reports whether moving from one tier to another lowers the tier.
func IsDowngrade(from, to model.PlanTier) bool {
	return rank(to) < rank(from)
}

// RequiresDowngradeConfirmation is true exactly when a paid subscription is moved to free.
func RequiresDowngradeConfirmation(selected, current model.PlanTier) bool {
	return selected == model.PlanFree && current != model.PlanFree
}
