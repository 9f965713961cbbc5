package household

import "github.com/dukerupert/householder/internal/aggregate"

var (
	ErrInvalidHouseholdName    = aggregate.New(aggregate.KindInvalidArgument, "household name is required")
	ErrInvalidRoommate         = aggregate.New(aggregate.KindInvalidArgument, "invalid roommate")
	ErrInvalidUser             = aggregate.New(aggregate.KindInvalidArgument, "invalid user")
	ErrMissingUser             = aggregate.New(aggregate.KindInvalidArgument, "user not supplied")
	ErrMissingHousehold        = aggregate.New(aggregate.KindInvalidArgument, "household not supplied")
	ErrRoommateNotFound        = aggregate.New(aggregate.KindNotFound, "roommate not found")
	ErrInvitationNotFound      = aggregate.New(aggregate.KindNotFound, "invitation not found")
	ErrForeignRoommate         = aggregate.New(aggregate.KindForeignReference, "roommate belongs to another household")
	ErrCrossHouseholdTransfer  = aggregate.New(aggregate.KindForeignReference, "admin rights can only move within one household")
	ErrCrossHouseholdReference = aggregate.New(aggregate.KindForeignReference, "referenced entity belongs to another household")
	ErrAlreadyMember           = aggregate.New(aggregate.KindIllegalState, "user is already a roommate")
	ErrAlreadyInvited          = aggregate.New(aggregate.KindIllegalState, "user is already invited")
	ErrInvitationPending       = aggregate.New(aggregate.KindIllegalState, "user has a pending invitation")
	ErrLastRoommate            = aggregate.New(aggregate.KindIllegalState, "the last roommate cannot be removed; delete the household instead")
	ErrNotAdmin                = aggregate.New(aggregate.KindIllegalState, "roommate is not the admin")
	ErrDissolved               = aggregate.New(aggregate.KindIllegalState, "household is being deleted")
	ErrUserDisabled            = aggregate.New(aggregate.KindIllegalState, "user is disabled")
	ErrUserAlreadyEnabled      = aggregate.New(aggregate.KindIllegalState, "user is already enabled")
	ErrUserAlreadyDisabled     = aggregate.New(aggregate.KindIllegalState, "user is already disabled")
	ErrCorruptHousehold        = aggregate.New(aggregate.KindIllegalState, "stored household violates its invariants")
)
