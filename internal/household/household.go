// Package household implements the Household aggregate: its roommates, its
// pending invitations and the single admin role, plus the User side of each
// membership.
package household

import (
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// State is the membership-size lifecycle of a household.
type State string

const (
	StatePopulated  State = "populated"
	StateLastMember State = "last_member"
	StateDeletable  State = "deletable"
)

// Roommate is the membership record linking a user to a household.
// Its identity is the (household, user) pair.
type Roommate struct {
	householdID uuid.UUID
	userID      uuid.UUID
	role        Role
	seq         int64
	joinedAt    time.Time
}

// NewRoommate returns an unregistered, non-admin roommate record.
func NewRoommate(householdID, userID uuid.UUID) *Roommate {
	return &Roommate{householdID: householdID, userID: userID, role: RoleUser}
}

func (r *Roommate) HouseholdID() uuid.UUID { return r.householdID }
func (r *Roommate) UserID() uuid.UUID      { return r.userID }
func (r *Roommate) Role() Role             { return r.role }
func (r *Roommate) IsAdmin() bool          { return r.role == RoleAdmin }
func (r *Roommate) JoinedAt() time.Time    { return r.joinedAt }

// Seq orders roommates by joining; lower joined earlier.
func (r *Roommate) Seq() int64 { return r.seq }

// Invitation is a pending membership offer for the (household, user) pair.
type Invitation struct {
	householdID uuid.UUID
	userID      uuid.UUID
	createdAt   time.Time
}

func (i *Invitation) HouseholdID() uuid.UUID { return i.householdID }
func (i *Invitation) UserID() uuid.UUID      { return i.userID }
func (i *Invitation) CreatedAt() time.Time   { return i.createdAt }

// Household owns its roommates and invitations, both keyed by user id.
type Household struct {
	id          uuid.UUID
	name        string
	roommates   map[uuid.UUID]*Roommate
	invitations map[uuid.UUID]*Invitation
	nextSeq     int64
	dissolved   bool
	createdAt   time.Time
}

// New creates a household with founder as its admin.
func New(name string, founder *User) (*Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, aggregate.Fail(ErrInvalidHouseholdName, "new household", "")
	}
	if founder == nil {
		return nil, aggregate.Fail(ErrMissingUser, "new household", "founder")
	}
	if !founder.enabled {
		return nil, aggregate.Fail(ErrUserDisabled, "new household", founder.id.String())
	}

	h := &Household{
		id:          uuid.New(),
		name:        name,
		roommates:   make(map[uuid.UUID]*Roommate),
		invitations: make(map[uuid.UUID]*Invitation),
		createdAt:   time.Now().UTC(),
	}
	r := h.admit(founder.id)
	r.role = RoleAdmin
	founder.memberships[h.id] = struct{}{}
	return h, nil
}

func (h *Household) ID() uuid.UUID        { return h.id }
func (h *Household) Name() string         { return h.name }
func (h *Household) CreatedAt() time.Time { return h.createdAt }
func (h *Household) Len() int             { return len(h.roommates) }

// State reports where the household is in its membership lifecycle.
func (h *Household) State() State {
	switch {
	case h.dissolved || len(h.roommates) == 0:
		return StateDeletable
	case len(h.roommates) == 1:
		return StateLastMember
	default:
		return StatePopulated
	}
}

// Rename changes the household name.
func (h *Household) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return aggregate.Fail(ErrInvalidHouseholdName, "rename household", "")
	}
	h.name = name
	return nil
}

// Roommate looks up the roommate record of a user.
func (h *Household) Roommate(userID uuid.UUID) (*Roommate, bool) {
	r, ok := h.roommates[userID]
	return r, ok
}

// HasRoommate reports whether the user is a member.
func (h *Household) HasRoommate(userID uuid.UUID) bool {
	_, ok := h.roommates[userID]
	return ok
}

// Invitation looks up the pending invitation of a user.
func (h *Household) Invitation(userID uuid.UUID) (*Invitation, bool) {
	inv, ok := h.invitations[userID]
	return inv, ok
}

// Admin returns the admin roommate, or nil for a household being deleted.
func (h *Household) Admin() *Roommate {
	for _, r := range h.roommates {
		if r.role == RoleAdmin {
			return r
		}
	}
	return nil
}

// Roommates returns the members in joining order.
func (h *Household) Roommates() []*Roommate {
	out := make([]*Roommate, 0, len(h.roommates))
	for _, r := range h.roommates {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Invitations returns pending invitations, oldest first.
func (h *Household) Invitations() []*Invitation {
	out := make([]*Invitation, 0, len(h.invitations))
	for _, inv := range h.invitations {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].createdAt.Before(out[j].createdAt)
		}
		return out[i].userID.String() < out[j].userID.String()
	})
	return out
}

// AddRoommate registers r on the household side. Roommates always join with
// the user role; use Service.ConvertInvitationToRoommate to keep the user
// side in step.
func (h *Household) AddRoommate(r *Roommate) error {
	const op = "add roommate"
	if r == nil {
		return aggregate.Fail(ErrInvalidRoommate, op, "nil roommate")
	}
	if h.dissolved {
		return aggregate.Fail(ErrDissolved, op, h.id.String())
	}
	if r.householdID != h.id {
		return aggregate.Fail(ErrForeignRoommate, op, r.householdID.String())
	}
	if _, ok := h.roommates[r.userID]; ok {
		return aggregate.Fail(ErrAlreadyMember, op, r.userID.String())
	}
	if _, ok := h.invitations[r.userID]; ok {
		return aggregate.Fail(ErrInvitationPending, op, r.userID.String())
	}
	h.register(r)
	return nil
}

// RemoveRoommate removes a member. Removing the admin hands admin rights to
// the successor first. The last roommate can only leave by deleting the
// household.
func (h *Household) RemoveRoommate(userID uuid.UUID) (*Roommate, error) {
	const op = "remove roommate"
	r, ok := h.roommates[userID]
	if !ok {
		return nil, aggregate.Fail(ErrRoommateNotFound, op, userID.String())
	}
	if len(h.roommates) == 1 {
		return nil, aggregate.Fail(ErrLastRoommate, op, h.id.String())
	}
	if r.role == RoleAdmin {
		swapAdmin(r, h.successor(userID))
	}
	delete(h.roommates, userID)
	return r, nil
}

// Invite creates a pending invitation and registers it on both the
// household and the user.
func (h *Household) Invite(u *User) (*Invitation, error) {
	const op = "invite"
	if u == nil {
		return nil, aggregate.Fail(ErrMissingUser, op, "")
	}
	if h.dissolved {
		return nil, aggregate.Fail(ErrDissolved, op, h.id.String())
	}
	if _, ok := h.roommates[u.id]; ok {
		return nil, aggregate.Fail(ErrAlreadyMember, op, u.id.String())
	}
	if _, ok := h.invitations[u.id]; ok {
		return nil, aggregate.Fail(ErrAlreadyInvited, op, u.id.String())
	}
	if !u.enabled {
		return nil, aggregate.Fail(ErrUserDisabled, op, u.id.String())
	}
	inv := &Invitation{householdID: h.id, userID: u.id, createdAt: time.Now().UTC()}
	h.invitations[u.id] = inv
	u.invitations[h.id] = struct{}{}
	return inv, nil
}

// RemoveInvitation drops a pending invitation from the household side.
func (h *Household) RemoveInvitation(userID uuid.UUID) (*Invitation, error) {
	inv, ok := h.invitations[userID]
	if !ok {
		return nil, aggregate.Fail(ErrInvitationNotFound, "remove invitation", userID.String())
	}
	delete(h.invitations, userID)
	return inv, nil
}

func (h *Household) admit(userID uuid.UUID) *Roommate {
	r := NewRoommate(h.id, userID)
	h.register(r)
	return r
}

// swapAdmin moves the admin role from one roommate to another.
func swapAdmin(from, to *Roommate) {
	from.role = RoleUser
	to.role = RoleAdmin
}

func (h *Household) register(r *Roommate) {
	h.nextSeq++
	r.seq = h.nextSeq
	r.joinedAt = time.Now().UTC()
	h.roommates[r.userID] = r
}

// successor picks the roommate who takes over admin rights when the current
// admin goes: the earliest joined member other than exclude.
func (h *Household) successor(exclude uuid.UUID) *Roommate {
	var next *Roommate
	for id, r := range h.roommates {
		if id == exclude {
			continue
		}
		if next == nil || r.seq < next.seq {
			next = r
		}
	}
	return next
}
