package household

import (
	"fmt"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/google/uuid"
)

// UserSnapshot is the persisted form of a User.
type UserSnapshot struct {
	ID            uuid.UUID
	Email         string
	Name          string
	PasswordHash  string
	Enabled       bool
	CreatedAt     time.Time
	HouseholdIDs  []uuid.UUID
	InvitationIDs []uuid.UUID
}

func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:            u.id,
		Email:         u.email,
		Name:          u.name,
		PasswordHash:  u.passwordHash,
		Enabled:       u.enabled,
		CreatedAt:     u.createdAt,
		HouseholdIDs:  u.HouseholdIDs(),
		InvitationIDs: u.InvitationIDs(),
	}
}

// RestoreUser rebuilds a User loaded from storage.
func RestoreUser(s UserSnapshot) *User {
	u := &User{
		id:           s.ID,
		email:        s.Email,
		name:         s.Name,
		passwordHash: s.PasswordHash,
		enabled:      s.Enabled,
		createdAt:    s.CreatedAt,
		memberships:  make(map[uuid.UUID]struct{}, len(s.HouseholdIDs)),
		invitations:  make(map[uuid.UUID]struct{}, len(s.InvitationIDs)),
	}
	for _, id := range s.HouseholdIDs {
		u.memberships[id] = struct{}{}
	}
	for _, id := range s.InvitationIDs {
		u.invitations[id] = struct{}{}
	}
	return u
}

type RoommateSnapshot struct {
	UserID   uuid.UUID
	Role     Role
	Seq      int64
	JoinedAt time.Time
}

type InvitationSnapshot struct {
	UserID    uuid.UUID
	CreatedAt time.Time
}

// HouseholdSnapshot is the persisted form of a Household.
type HouseholdSnapshot struct {
	ID          uuid.UUID
	Name        string
	NextSeq     int64
	CreatedAt   time.Time
	Roommates   []RoommateSnapshot
	Invitations []InvitationSnapshot
}

func (h *Household) Snapshot() HouseholdSnapshot {
	s := HouseholdSnapshot{
		ID:        h.id,
		Name:      h.name,
		NextSeq:   h.nextSeq,
		CreatedAt: h.createdAt,
	}
	for _, r := range h.Roommates() {
		s.Roommates = append(s.Roommates, RoommateSnapshot{
			UserID:   r.userID,
			Role:     r.role,
			Seq:      r.seq,
			JoinedAt: r.joinedAt,
		})
	}
	for _, inv := range h.Invitations() {
		s.Invitations = append(s.Invitations, InvitationSnapshot{
			UserID:    inv.userID,
			CreatedAt: inv.createdAt,
		})
	}
	return s
}

// RestoreHousehold rebuilds a Household loaded from storage and refuses one
// that breaks the membership invariants.
func RestoreHousehold(s HouseholdSnapshot) (*Household, error) {
	const op = "restore household"
	h := &Household{
		id:          s.ID,
		name:        s.Name,
		nextSeq:     s.NextSeq,
		createdAt:   s.CreatedAt,
		roommates:   make(map[uuid.UUID]*Roommate, len(s.Roommates)),
		invitations: make(map[uuid.UUID]*Invitation, len(s.Invitations)),
	}

	admins := 0
	for _, rs := range s.Roommates {
		if _, dup := h.roommates[rs.UserID]; dup {
			return nil, aggregate.Fail(ErrCorruptHousehold, op, fmt.Sprintf("duplicate roommate %s", rs.UserID))
		}
		if rs.Seq <= 0 || rs.Seq > s.NextSeq {
			return nil, aggregate.Fail(ErrCorruptHousehold, op, fmt.Sprintf("roommate %s has sequence %d", rs.UserID, rs.Seq))
		}
		switch rs.Role {
		case RoleAdmin:
			admins++
		case RoleUser:
		default:
			return nil, aggregate.Fail(ErrCorruptHousehold, op, fmt.Sprintf("unknown role %q", rs.Role))
		}
		h.roommates[rs.UserID] = &Roommate{
			householdID: s.ID,
			userID:      rs.UserID,
			role:        rs.Role,
			seq:         rs.Seq,
			joinedAt:    rs.JoinedAt,
		}
	}
	if len(h.roommates) > 0 && admins != 1 {
		return nil, aggregate.Fail(ErrCorruptHousehold, op, fmt.Sprintf("%d admins", admins))
	}

	for _, is := range s.Invitations {
		if _, ok := h.roommates[is.UserID]; ok {
			return nil, aggregate.Fail(ErrCorruptHousehold, op, fmt.Sprintf("user %s is both roommate and invited", is.UserID))
		}
		h.invitations[is.UserID] = &Invitation{householdID: s.ID, userID: is.UserID, createdAt: is.CreatedAt}
	}
	return h, nil
}
