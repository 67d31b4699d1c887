package service

import (
	"fmt"

	"github.com/skilledge/skilledge-server/internal/model"
)

// AwardPolicy decides when a completed module earns points.
type AwardPolicy string

const (
	// AwardFirstCompletion awards points only when a module transitions from
	// absent or incomplete to completed. Replayed queue entries earn nothing.
	AwardFirstCompletion AwardPolicy = "first_completion"
	// AwardPerChange awards points for every complete_module entry processed,
	// so a duplicated entry is awarded twice. Kept for clients that depend
	// on the at-least-once behaviour of older servers.
	AwardPerChange AwardPolicy = "per_change"
)

// DefaultPointsPerModule is the award for one completed module.
const DefaultPointsPerModule = 10

// ParseAwardPolicy validates a policy name.
func ParseAwardPolicy(s string) (AwardPolicy, error) {
	switch p := AwardPolicy(s); p {
	case AwardFirstCompletion, AwardPerChange:
		return p, nil
	case "":
		return AwardFirstCompletion, nil
	default:
		return "", fmt.Errorf("unknown award policy %q", s)
	}
}

// BadgeLabel is the badge granted for completing moduleID.
func BadgeLabel(moduleID string) string {
	return "Completed: " + moduleID
}

// Merger applies change batches to user records. It holds no state besides
// its configuration and never touches storage.
type Merger struct {
	policy AwardPolicy
	points int
}

func NewMerger(policy AwardPolicy, pointsPerModule int) *Merger {
	if policy == "" {
		policy = AwardFirstCompletion
	}
	if pointsPerModule <= 0 {
		pointsPerModule = DefaultPointsPerModule
	}
	return &Merger{policy: policy, points: pointsPerModule}
}

// Policy returns the configured award policy.
func (m *Merger) Policy() AwardPolicy {
	return m.policy
}

// Apply merges path and changes into user in batch order. A non-nil path
// replaces the stored one unconditionally; completed modules are then
// flagged in whichever path the user holds.
func (m *Merger) Apply(user *model.User, path *model.Path, changes model.Changes) model.MergeResult {
	user.Normalize()

	if path != nil {
		p := path.Clone()
		user.Path = &p
	}

	var res model.MergeResult
	for _, ch := range changes {
		c, ok := ch.(model.CompleteModule)
		if !ok {
			res.Ignored++
			continue
		}

		transitioned := user.CompleteModule(c.ModuleID)
		if user.Path != nil {
			user.Path.MarkModule(c.ModuleID)
		}
		if transitioned || m.policy == AwardPerChange {
			user.Points += m.points
			res.Awarded += m.points
		}
		if label := BadgeLabel(c.ModuleID); user.AddBadge(label) {
			res.Badges = append(res.Badges, label)
		}
		res.ModuleID = c.ModuleID
		res.Applied++
	}

	res.User = user.Clone()
	return res
}
