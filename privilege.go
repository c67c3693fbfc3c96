package meetsync

import (
	"strings"

	"github.com/anumularoots-svg/pro-sub003/models"
	"github.com/anumularoots-svg/pro-sub003/utils"
)

// Capability is a bit set of actions the local user may perform.
type Capability uint32

const (
	// CapHostPrivileges allows force-muting, spotlighting, pinning, volume and recording control.
	CapHostPrivileges Capability = 1 << iota
	// CapMakeCoHost allows granting the co-host role.
	CapMakeCoHost
	// CapRemoveCoHost allows revoking the co-host role.
	CapRemoveCoHost
	// CapShareScreenDirectly allows starting a screen share without approval.
	CapShareScreenDirectly
	// CapRemoveParticipant allows removing participants from the meeting.
	CapRemoveParticipant
	// CapApproveScreenShare allows deciding on screen share requests.
	CapApproveScreenShare
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapHostPrivileges, "host privileges"},
	{CapMakeCoHost, "make co-host"},
	{CapRemoveCoHost, "remove co-host"},
	{CapShareScreenDirectly, "share screen directly"},
	{CapRemoveParticipant, "remove participant"},
	{CapApproveScreenShare, "approve screen share"},
}

// Has reports whether every bit of other is set.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// String returns a comma separated list of the capability names.
func (c Capability) String() string {
	var names []string
	for _, cn := range capabilityNames {
		if c.Has(cn.c) {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// Privileges are the role and capabilities derived for the local user.
//
// They hold no state of their own and are recomputed from the current flags on every
// reconciliation pass.
type Privileges struct {
	EffectiveRole          models.Role
	HasHostPrivileges      bool
	CanMakeCoHost          bool
	CanRemoveCoHost        bool
	CanShareScreenDirectly bool
}

// DerivePrivileges computes the privileges of a user.
//
// Args:
//   - isHost: The user created the meeting.
//   - isCoHost: The co-host registry lists the user.
//   - coHostPrivilegesActive: A co-host grant was received but not yet confirmed by the registry.
//
// Returns:
//   - Privileges: The derived privileges.
func DerivePrivileges(isHost, isCoHost, coHostPrivilegesActive bool) Privileges {
	hostPrivileges := isHost || isCoHost || coHostPrivilegesActive

	return Privileges{
		EffectiveRole:     models.DeriveRole(isHost, isCoHost || coHostPrivilegesActive),
		HasHostPrivileges: hostPrivileges,
		// Co-hosts cannot create or remove other co-hosts.
		CanMakeCoHost:          isHost,
		CanRemoveCoHost:        isHost,
		CanShareScreenDirectly: hostPrivileges,
	}
}

// Capabilities returns the privileges as a bit set.
func (p Privileges) Capabilities() (c Capability) {
	if p.HasHostPrivileges {
		c |= CapHostPrivileges | CapRemoveParticipant | CapApproveScreenShare
	}
	if p.CanMakeCoHost {
		c |= CapMakeCoHost
	}
	if p.CanRemoveCoHost {
		c |= CapRemoveCoHost
	}
	if p.CanShareScreenDirectly {
		c |= CapShareScreenDirectly
	}
	return
}

// CapabilityChanges computes the capabilities gained and lost between two privilege sets.
func CapabilityChanges(old, new Privileges) (added, removed Capability) {
	return utils.ComputeFlagChanges(old.Capabilities(), new.Capabilities())
}

// CanTarget reports whether an actor with the given privileges may apply a privileged
// action to the target participant.
//
// Nobody may target the host and co-hosts may not target other co-hosts.
func (p Privileges) CanTarget(target models.Participant) bool {
	if !p.HasHostPrivileges || target.IsHost {
		return false
	}
	if target.IsCoHost && p.EffectiveRole != models.RoleHost {
		return false
	}
	return true
}
