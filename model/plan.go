package model

type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanBuilder    PlanTier = "builder"
	PlanEnterprise PlanTier = "enterprise"
)

// Valid reports whether t is one of the three known tiers.
func (t PlanTier) Valid() bool {
	switch t {
	case PlanFree, PlanBuilder, PlanEnterprise:
		return true
	}
	return false
}

type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleAnnual  BillingCycle = "annual"
)

type Plan struct {
	ID          PlanTier `json:"id"`
	Name        string   `json:"name"`
	Price       int      `json:"price"`       // USD per month
	AnnualPrice int      `json:"annualPrice"` // USD per month, billed yearly
	Documents   int      `json:"documents"`
	Features    []string `json:"features"`
}

type ChangePlanRequest struct {
	SelectedPlan     PlanTier     `json:"selectedPlan" validate:"required,oneof=free builder enterprise"`
	BillingCycle     BillingCycle `json:"billingCycle" validate:"omitempty,oneof=monthly annual"`
	ConfirmDowngrade bool         `json:"confirmDowngrade,omitempty"`
}

// UpstreamChangePlanRequest is the body of PUT /api/user/plan.
type UpstreamChangePlanRequest struct {
	SelectedPlan PlanTier     `json:"selectedPlan"`
	BillingCycle BillingCycle `json:"billingCycle"`
}

type PlanResponse struct {
	CurrentPlan  PlanTier     `json:"current_plan"`
	BillingCycle BillingCycle `json:"billing_cycle"`
	Plans        []Plan       `json:"plans"`
	Downgrades   []PlanTier   `json:"downgrades"` // tiers below the current one
}

type DowngradeConfirmation struct {
	RequiresConfirmation bool     `json:"requiresConfirmation"`
	CurrentPlan          PlanTier `json:"currentPlan"`
	SelectedPlan         PlanTier `json:"selectedPlan"`
	Warning              string   `json:"warning"`
}
