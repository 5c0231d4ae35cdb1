package model

type Project struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Region      string `json:"region"`
	Status      string `json:"status"`
	LastUpdated string `json:"lastUpdated"`

	// Only some backend responses carry these.
	Subscription    PlanTier `json:"subscription,omitempty"`
	BaseDocuments   int      `json:"baseDocuments,omitempty"`
	UsedDocuments   int      `json:"usedDocuments,omitempty"`
	DocumentCredits int      `json:"documentCredits,omitempty"`
}

type UpdateProjectRequest struct {
	ProjectName        string `json:"project_name" validate:"required"`
	ProjectDescription string `json:"project_description"`
}

// UsageBar is the derived document-usage progress bar of a project.
type UsageBar struct {
	Tier          PlanTier       `json:"tier"`
	Used          int            `json:"used"`
	Total         int            `json:"total"`
	Credits       int            `json:"credits"`
	Remaining     int            `json:"remaining"`
	UsedPercent   int            `json:"usedPercent"`
	FillPercent   float64        `json:"fillPercent"`
	Segments      []UsageSegment `json:"segments"`
	CreditOverlay *UsageOverlay  `json:"creditOverlay,omitempty"`
}

type UsageSegment struct {
	Tier   PlanTier `json:"tier"`
	Start  float64  `json:"start"`
	Width  float64  `json:"width"`
	Active bool     `json:"active"`
}

type UsageOverlay struct {
	Start float64 `json:"start"`
	Width float64 `json:"width"`
}

type ProjectResponse struct {
	Project Project  `json:"project"`
	Usage   UsageBar `json:"usage"`
}
