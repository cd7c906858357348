// Package upgrade plans env.yaml field writes for one invocation. A
// plan is a pure function of the projected cluster state and the
// resolved target version; nothing is carried over between runs, so
// repeated invocations converge and then go quiet.
package upgrade

import (
	"github.com/keboola/gke-upgrade-tool/internal/envfile"
	"github.com/keboola/gke-upgrade-tool/internal/gke"
)

// ControlPlaneSubject names the control plane in plan steps; node pool
// steps carry the pool name instead.
const ControlPlaneSubject = "control plane"

// Action is what a plan step does to its subject.
type Action int

const (
	// ActionNone means the subject is already at the target.
	ActionNone Action = iota
	// ActionUpgrade writes a version field.
	ActionUpgrade
	// ActionSwitch flips an active-slot marker.
	ActionSwitch
)

// Step is one per-subject outcome of a plan.
type Step struct {
	Subject string
	Slot    envfile.Slot // affected slot; empty for the control plane
	Action  Action
	From    string
	To      string
}

// Plan is the full edit set for one invocation, alongside the
// per-subject outcomes used for reporting.
type Plan struct {
	Target gke.Version // zero when no version resolution was involved
	Steps  []Step
	Fields []envfile.Field
}

// UpToDate reports whether the plan writes nothing.
func (p *Plan) UpToDate() bool {
	return len(p.Fields) == 0
}

// PlanUpgrade plans the upgrade-mode writes toward target: the control
// plane when it differs, and each pool's standby slot when that slot
// differs. The active slot's version is never written here; it keeps
// serving on its known-good version until an external rollout promotes
// the standby. Invoked again after such a promotion, the same rule
// converges whichever slot is still behind.
func PlanUpgrade(state *envfile.ClusterState, target gke.Version) *Plan {
	plan := &Plan{Target: target}

	if state.ControlPlane.Equal(target) {
		plan.Steps = append(plan.Steps, Step{
			Subject: ControlPlaneSubject,
			Action:  ActionNone,
			From:    state.ControlPlane.String(),
			To:      target.String(),
		})
	} else {
		plan.Steps = append(plan.Steps, Step{
			Subject: ControlPlaneSubject,
			Action:  ActionUpgrade,
			From:    state.ControlPlane.String(),
			To:      target.String(),
		})
		plan.Fields = append(plan.Fields, envfile.Field{
			Key:   envfile.ControlPlaneKey,
			Value: target.String(),
		})
	}

	for _, pool := range state.Pools {
		standby := pool.Standby()
		current := pool.Versions[standby]
		step := Step{
			Subject: pool.Pool.Name,
			Slot:    standby,
			From:    current.String(),
			To:      target.String(),
		}
		if current.Equal(target) {
			step.Action = ActionNone
		} else {
			step.Action = ActionUpgrade
			plan.Fields = append(plan.Fields, envfile.Field{
				Key:   pool.Pool.VersionKey(standby),
				Value: target.String(),
			})
		}
		plan.Steps = append(plan.Steps, step)
	}

	return plan
}

// PlanSwitch plans an active-slot flip for every pool. No version
// field is touched and no version resolution happens; the flip always
// applies, so running it twice restores the original designation.
func PlanSwitch(state *envfile.ClusterState) *Plan {
	plan := &Plan{}

	for _, pool := range state.Pools {
		next := pool.Active.Other()
		plan.Steps = append(plan.Steps, Step{
			Subject: pool.Pool.Name,
			Slot:    next,
			Action:  ActionSwitch,
			From:    string(pool.Active),
			To:      string(next),
		})
		plan.Fields = append(plan.Fields, envfile.Field{
			Key:   pool.Pool.ActiveKey(),
			Value: string(next),
		})
	}

	return plan
}
