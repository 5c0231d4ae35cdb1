package model

type OnboardingFlow string

const (
	OnboardingStandard OnboardingFlow = "standard"
	OnboardingPricing  OnboardingFlow = "pricing"
)

type OnboardingRequest struct {
	SelectedPlan PlanTier     `json:"selectedPlan" validate:"required,oneof=free builder enterprise"`
	BillingCycle BillingCycle `json:"billingCycle" validate:"omitempty,oneof=monthly annual"`
	AddOns       []string     `json:"addOns"`
}

// UpstreamOnboardingRequest is the body posted to both onboarding endpoints.
type UpstreamOnboardingRequest struct {
	SelectedPlan        PlanTier     `json:"selectedPlan"`
	BillingCycle        BillingCycle `json:"billingCycle"`
	AddOns              []string     `json:"addOns"`
	OnboardingCompleted bool         `json:"onboardingCompleted"`
}

type OnboardingResult struct {
	User    *User    `json:"user,omitempty"`
	Billing *Billing `json:"billing,omitempty"`
}
