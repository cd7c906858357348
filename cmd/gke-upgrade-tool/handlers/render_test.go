package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/gke-upgrade-tool/internal/envfile"
	"github.com/keboola/gke-upgrade-tool/internal/gke"
	"github.com/keboola/gke-upgrade-tool/internal/upgrade"
)

func fixtureState(t *testing.T) *envfile.ClusterState {
	t.Helper()
	doc, err := envfile.Load(writeEnvFixture(t))
	require.NoError(t, err)
	state, err := envfile.ReadState(doc)
	require.NoError(t, err)
	return state
}

func TestRenderUpgradePlan(t *testing.T) {
	state := fixtureState(t)
	target := gke.MustParseVersion("1.28.15-gke.2169000")
	plan := upgrade.PlanUpgrade(state, target)

	out := renderPlan(state, plan, false)

	assert.Contains(t, out, "GKE Control Plane")
	assert.Contains(t, out, "Upgraded to 1.28.15-gke.2169000")
	assert.Contains(t, out, "MAIN")
	assert.Contains(t, out, "ECK")
	assert.Contains(t, out, `Upgraded standby pool "b" to 1.28.15-gke.2169000`)
	assert.Contains(t, out, `Upgraded standby pool "a" to 1.28.15-gke.2169000`)
	assert.Contains(t, out, "Control plane and standby nodepools upgraded.")
}

func TestRenderUpgradePlanUpToDate(t *testing.T) {
	state := fixtureState(t)
	target := state.ControlPlane
	plan := upgrade.PlanUpgrade(state, target)

	out := renderPlan(state, plan, false)

	assert.Contains(t, out, "Already at 1.27.16-gke.2703000")
	assert.Contains(t, out, "Everything is already up-to-date. Nothing to do.")
}

func TestRenderUpgradePlanDryRun(t *testing.T) {
	state := fixtureState(t)
	plan := upgrade.PlanUpgrade(state, gke.MustParseVersion("1.28.15-gke.2169000"))

	out := renderPlan(state, plan, true)

	assert.Contains(t, out, "Would upgrade to 1.28.15-gke.2169000")
	assert.Contains(t, out, "Dry run: no fields were written.")
}

func TestRenderSwitchPlan(t *testing.T) {
	state := fixtureState(t)
	plan := upgrade.PlanSwitch(state)

	out := renderPlan(state, plan, false)

	assert.Contains(t, out, "Switching Active Nodepools")
	assert.Contains(t, out, "MAIN")
	assert.Contains(t, out, "a -> ")
	assert.Contains(t, out, "All active nodepools switched.")
}
