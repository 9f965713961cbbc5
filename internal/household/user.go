package household

import (
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/google/uuid"
)

// User is a person who can belong to households. It mirrors, by household
// id, the roommate and invitation records the households hold for it.
type User struct {
	id           uuid.UUID
	email        string
	name         string
	passwordHash string
	enabled      bool
	createdAt    time.Time

	memberships map[uuid.UUID]struct{}
	invitations map[uuid.UUID]struct{}
}

// NewUser validates and creates an enabled user.
func NewUser(email, name, passwordHash string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, aggregate.Fail(ErrInvalidUser, "new user", "name is required")
	}
	if passwordHash == "" {
		return nil, aggregate.Fail(ErrInvalidUser, "new user", "password hash is required")
	}
	return &User{
		id:           uuid.New(),
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		enabled:      true,
		createdAt:    time.Now().UTC(),
		memberships:  make(map[uuid.UUID]struct{}),
		invitations:  make(map[uuid.UUID]struct{}),
	}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", aggregate.Fail(ErrInvalidUser, "email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", aggregate.Fail(ErrInvalidUser, "email", "malformed email "+email)
	}
	return email, nil
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) Name() string         { return u.name }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Enabled() bool        { return u.enabled }
func (u *User) CreatedAt() time.Time { return u.createdAt }

// Rename changes the display name.
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return aggregate.Fail(ErrInvalidUser, "rename user", "name is required")
	}
	u.name = name
	return nil
}

// ChangeEmail replaces the login email.
func (u *User) ChangeEmail(email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	u.email = email
	return nil
}

// ChangePasswordHash stores a new password hash produced by the caller.
func (u *User) ChangePasswordHash(hash string) error {
	if hash == "" {
		return aggregate.Fail(ErrInvalidUser, "change password", "password hash is required")
	}
	u.passwordHash = hash
	return nil
}

func (u *User) Enable() error {
	if u.enabled {
		return aggregate.Fail(ErrUserAlreadyEnabled, "enable user", u.id.String())
	}
	u.enabled = true
	return nil
}

func (u *User) Disable() error {
	if !u.enabled {
		return aggregate.Fail(ErrUserAlreadyDisabled, "disable user", u.id.String())
	}
	u.enabled = false
	return nil
}

// IsMemberOf reports whether u is a roommate of the household.
func (u *User) IsMemberOf(householdID uuid.UUID) bool {
	_, ok := u.memberships[householdID]
	return ok
}

// IsInvitedTo reports whether u holds a pending invitation to the household.
func (u *User) IsInvitedTo(householdID uuid.UUID) bool {
	_, ok := u.invitations[householdID]
	return ok
}

// HouseholdIDs lists the households u belongs to.
func (u *User) HouseholdIDs() []uuid.UUID {
	return sortedIDs(u.memberships)
}

// InvitationIDs lists the households u is invited to.
func (u *User) InvitationIDs() []uuid.UUID {
	return sortedIDs(u.invitations)
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
