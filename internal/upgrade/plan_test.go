package upgrade

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/gke-upgrade-tool/internal/envfile"
	"github.com/keboola/gke-upgrade-tool/internal/gke"
)

func poolState(name string, active envfile.Slot, versionA, versionB string) envfile.PoolState {
	return envfile.PoolState{
		Pool:   envfile.NodePool{Name: name},
		Active: active,
		Versions: map[envfile.Slot]gke.Version{
			envfile.SlotA: gke.MustParseVersion(versionA),
			envfile.SlotB: gke.MustParseVersion(versionB),
		},
	}
}

func fieldKeys(plan *Plan) []string {
	keys := make([]string, 0, len(plan.Fields))
	for _, f := range plan.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

func TestPlanUpgradeFirstRunTouchesControlPlaneAndStandby(t *testing.T) {
	state := &envfile.ClusterState{
		ControlPlane: gke.MustParseVersion("1.27.16-gke.2703000"),
		Pools: []envfile.PoolState{
			poolState("MAIN", envfile.SlotA, "1.27.16-gke.2703000", "1.27.16-gke.2703000"),
		},
	}
	target := gke.MustParseVersion("1.28.15-gke.2169000")

	plan := PlanUpgrade(state, target)

	assert.Equal(t, []string{
		"KUBERNETES_VERSION",
		"MAIN_NODE_POOL_B_KUBERNETES_VERSION",
	}, fieldKeys(plan))
	assert.False(t, plan.UpToDate())

	// The active slot's version field is never part of the edit set.
	for _, f := range plan.Fields {
		assert.NotEqual(t, "MAIN_NODE_POOL_A_KUBERNETES_VERSION", f.Key)
	}
}

func TestPlanUpgradeConvergesAfterPromotion(t *testing.T) {
	// The rollout pipeline promoted slot b; slot a is now standby and
	// still behind. The same rule converges it.
	state := &envfile.ClusterState{
		ControlPlane: gke.MustParseVersion("1.28.15-gke.2169000"),
		Pools: []envfile.PoolState{
			poolState("MAIN", envfile.SlotB, "1.27.16-gke.2703000", "1.28.15-gke.2169000"),
		},
	}
	target := gke.MustParseVersion("1.28.15-gke.2169000")

	plan := PlanUpgrade(state, target)

	assert.Equal(t, []string{"MAIN_NODE_POOL_A_KUBERNETES_VERSION"}, fieldKeys(plan))
}

func TestPlanUpgradeFullyUpToDate(t *testing.T) {
	state := &envfile.ClusterState{
		ControlPlane: gke.MustParseVersion("1.28.15-gke.2169000"),
		Pools: []envfile.PoolState{
			poolState("MAIN", envfile.SlotB, "1.28.15-gke.2169000", "1.28.15-gke.2169000"),
			poolState("ECK", envfile.SlotA, "1.28.15-gke.2169000", "1.28.15-gke.2169000"),
		},
	}
	target := gke.MustParseVersion("1.28.15-gke.2169000")

	plan := PlanUpgrade(state, target)

	assert.True(t, plan.UpToDate())
	assert.Empty(t, plan.Fields)
	// Up to date means no writes at all, in particular no slot swap.
	for _, step := range plan.Steps {
		assert.Equal(t, ActionNone, step.Action)
	}
}

func TestPlanSwitchFlipsEveryPool(t *testing.T) {
	state := &envfile.ClusterState{
		ControlPlane: gke.MustParseVersion("1.28.15-gke.2169000"),
		Pools: []envfile.PoolState{
			poolState("MAIN", envfile.SlotA, "1.28.15-gke.2169000", "1.28.15-gke.2169000"),
			poolState("ECK", envfile.SlotB, "1.28.15-gke.2169000", "1.28.15-gke.2169000"),
		},
	}

	plan := PlanSwitch(state)

	require.Len(t, plan.Fields, 2)
	assert.Equal(t, envfile.Field{Key: "MAIN_NODE_POOL_ACTIVE", Value: "b"}, plan.Fields[0])
	assert.Equal(t, envfile.Field{Key: "ECK_NODE_POOL_ACTIVE", Value: "a"}, plan.Fields[1])
	assert.True(t, plan.Target.IsZero())
	for _, step := range plan.Steps {
		assert.Equal(t, ActionSwitch, step.Action)
	}
}

const planFixture = `KUBERNETES_VERSION: "1.27.16-gke.2703000"
MAIN_NODE_POOL_ACTIVE: "a"
MAIN_NODE_POOL_A_KUBERNETES_VERSION: "1.27.16-gke.2703000"
MAIN_NODE_POOL_B_KUBERNETES_VERSION: "1.27.16-gke.2703000"
`

func loadFixture(t *testing.T) *envfile.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte(planFixture), 0o644))
	doc, err := envfile.Load(path)
	require.NoError(t, err)
	return doc
}

// applyPlan mirrors what the upgrade handler does: plan against the
// current projection, patch, and report the number of changed fields.
func applyUpgrade(t *testing.T, doc *envfile.Document, target gke.Version) int {
	t.Helper()
	state, err := envfile.ReadState(doc)
	require.NoError(t, err)
	changed, err := doc.Patch(PlanUpgrade(state, target).Fields)
	require.NoError(t, err)
	return changed
}

func TestUpgradeIsIdempotent(t *testing.T) {
	doc := loadFixture(t)
	target := gke.MustParseVersion("1.28.15-gke.2169000")

	assert.Equal(t, 2, applyUpgrade(t, doc, target))
	assert.Equal(t, 0, applyUpgrade(t, doc, target))
}

func TestUpgradeConvergesOverThreeRuns(t *testing.T) {
	doc := loadFixture(t)
	target := gke.MustParseVersion("1.28.15-gke.2169000")

	// Run 1: control plane and standby slot b.
	assert.Equal(t, 2, applyUpgrade(t, doc, target))

	// External rollout promotes slot b.
	changed, err := doc.Patch([]envfile.Field{{Key: "MAIN_NODE_POOL_ACTIVE", Value: "b"}})
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	// Run 2: the previously active slot a is now standby and behind.
	assert.Equal(t, 1, applyUpgrade(t, doc, target))

	// Run 3: nothing left to do.
	assert.Equal(t, 0, applyUpgrade(t, doc, target))

	state, err := envfile.ReadState(doc)
	require.NoError(t, err)
	assert.True(t, state.ControlPlane.Equal(target))
	for _, pool := range state.Pools {
		assert.True(t, pool.Versions[envfile.SlotA].Equal(target))
		assert.True(t, pool.Versions[envfile.SlotB].Equal(target))
	}
}

func TestSwitchTwiceRestoresDesignation(t *testing.T) {
	doc := loadFixture(t)

	for range 2 {
		state, err := envfile.ReadState(doc)
		require.NoError(t, err)
		_, err = doc.Patch(PlanSwitch(state).Fields)
		require.NoError(t, err)
	}

	state, err := envfile.ReadState(doc)
	require.NoError(t, err)
	assert.Equal(t, envfile.SlotA, state.Pools[0].Active)
}
