package envfile

import (
	"fmt"
	"strings"

	"github.com/keboola/gke-upgrade-tool/internal/gke"
)

// Stable key contract shared with the provisioning templates that
// consume env.yaml.
const (
	// ControlPlaneKey holds the control plane GKE version.
	ControlPlaneKey = "KUBERNETES_VERSION"

	activeKeySuffix = "_NODE_POOL_ACTIVE"
)

// Slot is one of the two blue/green node pool slots.
type Slot string

const (
	SlotA Slot = "a"
	SlotB Slot = "b"
)

// ParseSlot parses an active-slot marker value.
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case SlotA, SlotB:
		return Slot(s), nil
	default:
		return "", fmt.Errorf("invalid node pool slot %q, expected %q or %q", s, SlotA, SlotB)
	}
}

// Other returns the opposite slot.
func (s Slot) Other() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

func (s Slot) upper() string {
	if s == SlotA {
		return "A"
	}
	return "B"
}

// NodePool identifies one upgradeable node pool pair (e.g. MAIN, ECK)
// and owns the key names of its three env.yaml fields.
type NodePool struct {
	Name string
}

// ActiveKey is the key marking which slot serves traffic.
func (p NodePool) ActiveKey() string {
	return p.Name + activeKeySuffix
}

// VersionKey is the key holding the GKE version of one slot.
func (p NodePool) VersionKey(s Slot) string {
	return fmt.Sprintf("%s_NODE_POOL_%s_KUBERNETES_VERSION", p.Name, s.upper())
}

// PoolState is the projected state of one node pool pair.
type PoolState struct {
	Pool     NodePool
	Active   Slot
	Versions map[Slot]gke.Version
}

// Standby returns the slot not serving traffic.
func (p PoolState) Standby() Slot {
	return p.Active.Other()
}

// ClusterState is the upgrade-relevant projection of one env.yaml,
// rebuilt from the document on every invocation and never persisted.
type ClusterState struct {
	ControlPlane gke.Version
	Pools        []PoolState
}

// ReadState projects the document into a ClusterState. Node pools are
// discovered by their *_NODE_POOL_ACTIVE marker keys; every discovered
// pool must carry parsable versions for both slots.
func ReadState(doc *Document) (*ClusterState, error) {
	cp, err := readVersion(doc, ControlPlaneKey)
	if err != nil {
		return nil, err
	}
	state := &ClusterState{ControlPlane: cp}

	for _, key := range doc.Keys() {
		name, found := strings.CutSuffix(key, activeKeySuffix)
		if !found || name == "" {
			continue
		}
		pool := NodePool{Name: name}

		rawActive, err := doc.Get(key)
		if err != nil {
			return nil, err
		}
		active, err := ParseSlot(rawActive)
		if err != nil {
			return nil, &MalformedDocumentError{Path: doc.Path(), Reason: fmt.Sprintf("key %s: %v", key, err)}
		}

		versions := make(map[Slot]gke.Version, 2)
		for _, slot := range []Slot{SlotA, SlotB} {
			v, err := readVersion(doc, pool.VersionKey(slot))
			if err != nil {
				return nil, err
			}
			versions[slot] = v
		}

		state.Pools = append(state.Pools, PoolState{Pool: pool, Active: active, Versions: versions})
	}

	return state, nil
}

// readVersion reads and parses one version-valued key.
func readVersion(doc *Document, key string) (gke.Version, error) {
	raw, err := doc.Get(key)
	if err != nil {
		return gke.Version{}, err
	}
	v, err := gke.ParseVersion(raw)
	if err != nil {
		return gke.Version{}, &MalformedDocumentError{Path: doc.Path(), Reason: fmt.Sprintf("key %s: %v", key, err)}
	}
	return v, nil
}

// HighestVersion returns the highest version present across the
// control plane and every slot of every pool. It pins the stack to its
// current minor line when the operator does not name one.
func (s *ClusterState) HighestVersion() gke.Version {
	highest := s.ControlPlane
	for _, pool := range s.Pools {
		for _, v := range pool.Versions {
			if highest.LessThan(v) {
				highest = v
			}
		}
	}
	return highest
}
