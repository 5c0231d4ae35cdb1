// Package usage derives the document-usage progress bar shown on a project overview.
package usage

import (
	"math"

	"github.com/notblessy/studio-core/catalog"
	"github.com/notblessy/studio-core/model"
)

// DefaultTotal is used when a project reports neither a total nor a base quota.
const DefaultTotal = 6

type Input struct {
	Tier    model.PlanTier
	Used    int
	Total   int // documents available; 0 falls back to Base, then DefaultTotal
	Base    int
	Credits int // purchased document credits
}

// FromProject builds the input from the optional usage fields of a project.
func FromProject(p model.Project) Input {
	tier := p.Subscription
	if !tier.Valid() {
		tier = model.PlanFree
	}
	return Input{
		Tier:    tier,
		Used:    p.UsedDocuments,
		Base:    p.BaseDocuments,
		Credits: p.DocumentCredits,
	}
}

// UsedPercent returns min(100, round(100*used/total)) clamped to [0, 100].
// A non-positive total reads as empty when nothing is used and full otherwise.
func UsedPercent(used, total int) int {
	if total <= 0 {
		if used > 0 {
			return 100
		}
		return 0
	}

	if used <= 0 {
		return 0
	}
	// Round half up in integers so exact halves such as 23/40 are not lost.
	pct := (200*used + total) / (2 * total)
	if pct > 100 {
		return 100
	}
	return pct
}

func widthOf(docs int) float64 {
	return float64(docs) / float64(catalog.MaxDocuments) * 100
}

// Segments splits the bar into one background segment per tier, sized by the
// quota each tier adds over the previous one.
func Segments(tier model.PlanTier) []model.UsageSegment {
	if !tier.Valid() {
		tier = model.PlanFree
	}
	plans := catalog.Plans()
	segs := make([]model.UsageSegment, 0, len(plans))

	prev := 0
	active := true
	for _, p := range plans {
		segs = append(segs, model.UsageSegment{
			Tier:   p.ID,
			Start:  widthOf(prev),
			Width:  widthOf(p.Documents - prev),
			Active: active,
		})
		if p.ID == tier {
			active = false
		}
		prev = p.Documents
	}
	return segs
}

func Compute(in Input) model.UsageBar {
	tier := in.Tier
	if !tier.Valid() {
		tier = model.PlanFree
	}

	total := in.Total
	if total == 0 {
		total = in.Base
	}
	if total == 0 {
		total = DefaultTotal
	}

	used := in.Used
	if used < 0 {
		used = 0
	}
	credits := in.Credits
	if credits < 0 {
		credits = 0
	}

	bar := model.UsageBar{
		Tier:        tier,
		Used:        used,
		Total:       total,
		Credits:     credits,
		UsedPercent: UsedPercent(used, total),
		FillPercent: math.Min(100, widthOf(used)),
		Segments:    Segments(tier),
	}

	if remaining := total + credits - used; remaining > 0 {
		bar.Remaining = remaining
	}

	if credits > 0 {
		start := math.Min(100, widthOf(catalog.DocumentQuota(tier)))
		bar.CreditOverlay = &model.UsageOverlay{
			Start: start,
			Width: math.Min(100-start, widthOf(credits)),
		}
	}

	return bar
}
