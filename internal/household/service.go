package household

import (
	"sort"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/google/uuid"
)

// Service holds the membership rules that span a household and its users.
// Every method validates before it mutates, so a failed call leaves both
// sides untouched.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// TransferAdminRights demotes oldAdmin and promotes newAdmin. Apart from
// removing the admin from a populated household, it is the only operation
// that changes a role.
func (s *Service) TransferAdminRights(oldAdmin, newAdmin *Roommate) error {
	const op = "transfer admin rights"
	if oldAdmin == nil || newAdmin == nil {
		return aggregate.Fail(ErrInvalidRoommate, op, "nil roommate")
	}
	if oldAdmin.householdID != newAdmin.householdID {
		return aggregate.Fail(ErrCrossHouseholdTransfer, op, "")
	}
	if oldAdmin.role != RoleAdmin {
		return aggregate.Fail(ErrNotAdmin, op, oldAdmin.userID.String())
	}
	swapAdmin(oldAdmin, newAdmin)
	return nil
}

// TransferAdmin is TransferAdminRights addressed by user ids within h.
func (s *Service) TransferAdmin(h *Household, fromUserID, toUserID uuid.UUID) error {
	const op = "transfer admin rights"
	if h == nil {
		return aggregate.Fail(ErrMissingHousehold, op, "")
	}
	from, ok := h.roommates[fromUserID]
	if !ok {
		return aggregate.Fail(ErrRoommateNotFound, op, fromUserID.String())
	}
	to, ok := h.roommates[toUserID]
	if !ok {
		return aggregate.Fail(ErrRoommateNotFound, op, toUserID.String())
	}
	return s.TransferAdminRights(from, to)
}

// ConvertInvitationToRoommate accepts u's invitation to h: the invitation
// leaves both sides and the roommate joins both sides in the same step.
func (s *Service) ConvertInvitationToRoommate(h *Household, u *User) (*Roommate, error) {
	const op = "accept invitation"
	if h == nil {
		return nil, aggregate.Fail(ErrMissingHousehold, op, "")
	}
	if u == nil {
		return nil, aggregate.Fail(ErrMissingUser, op, "")
	}
	if h.dissolved {
		return nil, aggregate.Fail(ErrDissolved, op, h.id.String())
	}
	if _, ok := h.invitations[u.id]; !ok {
		return nil, aggregate.Fail(ErrInvitationNotFound, op, u.id.String())
	}
	if _, ok := u.invitations[h.id]; !ok {
		return nil, aggregate.Fail(ErrInvitationNotFound, op, "user holds no invitation to "+h.id.String())
	}
	if _, ok := h.roommates[u.id]; ok {
		return nil, aggregate.Fail(ErrAlreadyMember, op, u.id.String())
	}
	if !u.enabled {
		return nil, aggregate.Fail(ErrUserDisabled, op, u.id.String())
	}

	delete(h.invitations, u.id)
	delete(u.invitations, h.id)
	r := h.admit(u.id)
	u.memberships[h.id] = struct{}{}
	return r, nil
}

// DeclineInvitation is the invitee turning the invitation down.
func (s *Service) DeclineInvitation(h *Household, u *User) error {
	return s.withdraw("decline invitation", h, u)
}

// RevokeInvitation is the household withdrawing the invitation.
func (s *Service) RevokeInvitation(h *Household, u *User) error {
	return s.withdraw("revoke invitation", h, u)
}

func (s *Service) withdraw(op string, h *Household, u *User) error {
	if h == nil {
		return aggregate.Fail(ErrMissingHousehold, op, "")
	}
	if u == nil {
		return aggregate.Fail(ErrMissingUser, op, "")
	}
	if _, err := h.RemoveInvitation(u.id); err != nil {
		return err
	}
	delete(u.invitations, h.id)
	return nil
}

// RemoveMember removes a roommate from both sides. When the admin is removed
// the successor's user id is returned.
func (s *Service) RemoveMember(h *Household, u *User) (uuid.UUID, error) {
	const op = "remove member"
	if h == nil {
		return uuid.Nil, aggregate.Fail(ErrMissingHousehold, op, "")
	}
	if u == nil {
		return uuid.Nil, aggregate.Fail(ErrMissingUser, op, "")
	}
	admin := h.Admin()
	if _, err := h.RemoveRoommate(u.id); err != nil {
		return uuid.Nil, err
	}
	delete(u.memberships, h.id)
	if admin != nil && admin.userID == u.id {
		return h.Admin().userID, nil
	}
	return uuid.Nil, nil
}

// LeaveResult describes what happened when a roommate left.
type LeaveResult struct {
	// NewAdmin is set when the leaving roommate was the admin.
	NewAdmin uuid.UUID
	// MustDissolve is set when the leaver is the last roommate; nothing was
	// changed and the household has to go through Dissolve.
	MustDissolve bool
}

// Leave removes u from h. An admin leaving a populated household first hands
// admin rights to the successor.
func (s *Service) Leave(h *Household, u *User) (LeaveResult, error) {
	const op = "leave household"
	if h == nil {
		return LeaveResult{}, aggregate.Fail(ErrMissingHousehold, op, "")
	}
	if u == nil {
		return LeaveResult{}, aggregate.Fail(ErrMissingUser, op, "")
	}
	if _, ok := h.roommates[u.id]; !ok {
		return LeaveResult{}, aggregate.Fail(ErrRoommateNotFound, op, u.id.String())
	}
	if len(h.roommates) == 1 {
		return LeaveResult{MustDissolve: true}, nil
	}

	next, err := s.RemoveMember(h, u)
	if err != nil {
		return LeaveResult{}, err
	}
	return LeaveResult{NewAdmin: next}, nil
}

// Dissolve is the first step of deleting h: every invitation is stripped from
// its invited user and every membership from its member before the household
// record may be removed. users must hold every invited and member user.
func (s *Service) Dissolve(h *Household, users map[uuid.UUID]*User) error {
	const op = "dissolve household"
	if h == nil {
		return aggregate.Fail(ErrMissingHousehold, op, "")
	}
	for id := range h.invitations {
		if users[id] == nil {
			return aggregate.Fail(ErrMissingUser, op, "invited user "+id.String())
		}
	}
	for id := range h.roommates {
		if users[id] == nil {
			return aggregate.Fail(ErrMissingUser, op, "member "+id.String())
		}
	}

	for id := range h.invitations {
		delete(users[id].invitations, h.id)
		delete(h.invitations, id)
	}
	for id := range h.roommates {
		delete(users[id].memberships, h.id)
		delete(h.roommates, id)
	}
	h.dissolved = true
	return nil
}

// AdminTransfer records an automatic hand-over of admin rights.
type AdminTransfer struct {
	HouseholdID uuid.UUID
	From        uuid.UUID
	To          uuid.UUID
}

// OffboardResult lists the household-side effects of removing a user.
type OffboardResult struct {
	// RemovedFrom holds households that lost u as a roommate and live on.
	RemovedFrom []uuid.UUID
	// ToDissolve holds households where u was the last roommate.
	ToDissolve []uuid.UUID
	// Uninvited holds households whose invitation to u was dropped.
	Uninvited      []uuid.UUID
	AdminTransfers []AdminTransfer
}

// OffboardUser detaches u from every household it belongs or is invited to.
// households must hold all of them. Households where u is the last member
// are left untouched and reported in ToDissolve.
func (s *Service) OffboardUser(u *User, households map[uuid.UUID]*Household) (OffboardResult, error) {
	const op = "offboard user"
	if u == nil {
		return OffboardResult{}, aggregate.Fail(ErrMissingUser, op, "")
	}
	memberOf := u.HouseholdIDs()
	invitedTo := u.InvitationIDs()
	for _, id := range append(append([]uuid.UUID{}, memberOf...), invitedTo...) {
		if households[id] == nil {
			return OffboardResult{}, aggregate.Fail(ErrMissingHousehold, op, id.String())
		}
	}

	var res OffboardResult
	for _, id := range invitedTo {
		delete(households[id].invitations, u.id)
		delete(u.invitations, id)
		res.Uninvited = append(res.Uninvited, id)
	}

	for _, id := range memberOf {
		h := households[id]
		if _, ok := h.roommates[u.id]; !ok {
			// Stale user-side mirror; drop it.
			delete(u.memberships, id)
			continue
		}
		if len(h.roommates) == 1 {
			res.ToDissolve = append(res.ToDissolve, id)
			continue
		}
		next, err := s.RemoveMember(h, u)
		if err != nil {
			return res, err
		}
		if next != uuid.Nil {
			res.AdminTransfers = append(res.AdminTransfers, AdminTransfer{HouseholdID: id, From: u.id, To: next})
		}
		res.RemovedFrom = append(res.RemovedFrom, id)
	}
	sortIDs(res.RemovedFrom)
	sortIDs(res.ToDissolve)
	return res, nil
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
