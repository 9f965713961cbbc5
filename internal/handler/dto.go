package handler

import (
	"time"

	"github.com/dukerupert/householder/internal/app"
	"github.com/dukerupert/householder/internal/chore"
	"github.com/dukerupert/householder/internal/household"
	"github.com/dukerupert/householder/internal/ledger"
	"github.com/dukerupert/householder/internal/money"
	"github.com/dukerupert/householder/internal/shopping"
	"github.com/dukerupert/householder/internal/store"
	"github.com/google/uuid"
)

type moneyDTO struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

func toMoney(m money.Money) moneyDTO {
	return moneyDTO{Amount: m.Amount(), Currency: m.Currency().Code(), Formatted: m.Format(true)}
}

type userDTO struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	Name          string      `json:"name"`
	Enabled       bool        `json:"enabled"`
	HouseholdIDs  []uuid.UUID `json:"household_ids"`
	InvitationIDs []uuid.UUID `json:"invitation_ids"`
	CreatedAt     time.Time   `json:"created_at"`
}

func toUser(u *household.User) userDTO {
	return userDTO{
		ID:            u.ID(),
		Email:         u.Email(),
		Name:          u.Name(),
		Enabled:       u.Enabled(),
		HouseholdIDs:  nonNil(u.HouseholdIDs()),
		InvitationIDs: nonNil(u.InvitationIDs()),
		CreatedAt:     u.CreatedAt(),
	}
}

type roommateDTO struct {
	UserID   uuid.UUID      `json:"user_id"`
	Name     string         `json:"name,omitempty"`
	Role     household.Role `json:"role"`
	JoinedAt time.Time      `json:"joined_at"`
}

type invitationDTO struct {
	HouseholdID uuid.UUID `json:"household_id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toInvitation(inv *household.Invitation, users map[uuid.UUID]*household.User) invitationDTO {
	dto := invitationDTO{HouseholdID: inv.HouseholdID(), UserID: inv.UserID(), CreatedAt: inv.CreatedAt()}
	if u := users[inv.UserID()]; u != nil {
		dto.Name = u.Name()
	}
	return dto
}

type householdDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	State       household.State `json:"state"`
	AdminID     uuid.UUID       `json:"admin_id"`
	Roommates   []roommateDTO   `json:"roommates"`
	Invitations []invitationDTO `json:"invitations"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toHousehold(h *household.Household, users map[uuid.UUID]*household.User) householdDTO {
	dto := householdDTO{
		ID:          h.ID(),
		Name:        h.Name(),
		State:       h.State(),
		Roommates:   []roommateDTO{},
		Invitations: []invitationDTO{},
		CreatedAt:   h.CreatedAt(),
	}
	if admin := h.Admin(); admin != nil {
		dto.AdminID = admin.UserID()
	}
	for _, r := range h.Roommates() {
		rd := roommateDTO{UserID: r.UserID(), Role: r.Role(), JoinedAt: r.JoinedAt()}
		if u := users[r.UserID()]; u != nil {
			rd.Name = u.Name()
		}
		dto.Roommates = append(dto.Roommates, rd)
	}
	for _, inv := range h.Invitations() {
		dto.Invitations = append(dto.Invitations, toInvitation(inv, users))
	}
	return dto
}

type householdSummaryDTO struct {
	ID      uuid.UUID      `json:"id"`
	Name    string         `json:"name"`
	Role    household.Role `json:"role"`
	Members int            `json:"members"`
}

func toSummaries(in []store.HouseholdSummary) []householdSummaryDTO {
	out := make([]householdSummaryDTO, 0, len(in))
	for _, hs := range in {
		out = append(out, householdSummaryDTO{ID: hs.ID, Name: hs.Name, Role: hs.Role, Members: hs.Members})
	}
	return out
}

type transactionDTO struct {
	ID              uuid.UUID   `json:"id"`
	AccountID       uuid.UUID   `json:"account_id"`
	Kind            ledger.Kind `json:"kind"`
	Amount          moneyDTO    `json:"amount"`
	Description     string      `json:"description"`
	Date            string      `json:"date"`
	Source          string      `json:"source,omitempty"`
	Recipient       string      `json:"recipient,omitempty"`
	RoommateID      *uuid.UUID  `json:"roommate_id"`
	ShoppingSpreeID *uuid.UUID  `json:"shopping_spree_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

func toTransaction(t *ledger.Transaction) transactionDTO {
	return transactionDTO{
		ID:              t.ID(),
		AccountID:       t.AccountID(),
		Kind:            t.Kind(),
		Amount:          toMoney(t.Amount()),
		Description:     t.Description(),
		Date:            formatDate(t.Date()),
		Source:          t.Source(),
		Recipient:       t.Recipient(),
		RoommateID:      uuidPtr(t.RoommateID()),
		ShoppingSpreeID: uuidPtr(t.ShoppingSpreeID()),
		CreatedAt:       t.CreatedAt(),
	}
}

type accountDTO struct {
	ID             uuid.UUID        `json:"id"`
	HouseholdID    uuid.UUID        `json:"household_id"`
	Name           string           `json:"name"`
	OpeningBalance moneyDTO         `json:"opening_balance"`
	Balance        moneyDTO         `json:"balance"`
	Transactions   []transactionDTO `json:"transactions,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// toAccount renders acc; withTransactions adds the full ledger.
func toAccount(acc *ledger.Account, withTransactions bool) accountDTO {
	dto := accountDTO{
		ID:             acc.ID(),
		HouseholdID:    acc.HouseholdID(),
		Name:           acc.Name(),
		OpeningBalance: toMoney(acc.OpeningBalance()),
		Balance:        toMoney(acc.Balance()),
		CreatedAt:      acc.CreatedAt(),
	}
	if withTransactions {
		dto.Transactions = []transactionDTO{}
		for _, t := range acc.Transactions() {
			dto.Transactions = append(dto.Transactions, toTransaction(t))
		}
	}
	return dto
}

type itemDTO struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Quantity int            `json:"quantity"`
	Picked   bool           `json:"picked"`
	Aisle    shopping.Aisle `json:"aisle"`
}

func toItem(it *shopping.Item) itemDTO {
	return itemDTO{ID: it.ID(), Name: it.Name(), Quantity: it.Quantity(), Picked: it.Picked(), Aisle: it.Aisle()}
}

type listDTO struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID uuid.UUID `json:"household_id"`
	Name        string    `json:"name"`
	Items       []itemDTO `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
}

func toList(l *shopping.List) listDTO {
	dto := listDTO{ID: l.ID(), HouseholdID: l.HouseholdID(), Name: l.Name(), Items: []itemDTO{}, CreatedAt: l.CreatedAt()}
	for _, it := range l.Items() {
		dto.Items = append(dto.Items, toItem(it))
	}
	return dto
}

type spreeItemDTO struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type spreeDTO struct {
	ID                uuid.UUID      `json:"id"`
	HouseholdID       uuid.UUID      `json:"household_id"`
	AccountID         uuid.UUID      `json:"account_id"`
	RoommateID        *uuid.UUID     `json:"roommate_id"`
	Date              string         `json:"date"`
	Items             []spreeItemDTO `json:"items"`
	ShoppingExpenseID *uuid.UUID     `json:"shopping_expense_id"`
	CreatedAt         time.Time      `json:"created_at"`
}

func toSpree(s *shopping.Spree) spreeDTO {
	dto := spreeDTO{
		ID:                s.ID(),
		HouseholdID:       s.HouseholdID(),
		AccountID:         s.AccountID(),
		RoommateID:        uuidPtr(s.RoommateUserID()),
		Date:              formatDate(s.Date()),
		Items:             []spreeItemDTO{},
		ShoppingExpenseID: uuidPtr(s.ShoppingExpenseID()),
		CreatedAt:         s.CreatedAt(),
	}
	for _, it := range s.Items() {
		dto.Items = append(dto.Items, spreeItemDTO{Name: it.Name, Quantity: it.Quantity})
	}
	return dto
}

type taskDTO struct {
	ID              uuid.UUID    `json:"id"`
	HouseholdID     uuid.UUID    `json:"household_id"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Points          int          `json:"points"`
	AssigneeID      *uuid.UUID   `json:"assignee_id"`
	DueDate         string       `json:"due_date,omitempty"`
	Repeat          string       `json:"repeat,omitempty"`
	RepeatText      string       `json:"repeat_text,omitempty"`
	Status          chore.Status `json:"status"`
	LastCompletedBy *uuid.UUID   `json:"last_completed_by,omitempty"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

func toTask(t *chore.Task, today time.Time) taskDTO {
	dto := taskDTO{
		ID:              t.ID(),
		HouseholdID:     t.HouseholdID(),
		Title:           t.Title(),
		Description:     t.Description(),
		Points:          t.Points(),
		AssigneeID:      uuidPtr(t.AssigneeUserID()),
		DueDate:         formatDate(t.DueDate()),
		Status:          t.Status(today),
		LastCompletedBy: uuidPtr(t.LastCompletedBy()),
		CreatedAt:       t.CreatedAt(),
	}
	if r := t.Repeat(); !r.IsZero() {
		dto.Repeat = r.String()
		dto.RepeatText = r.Describe()
	}
	if at := t.CompletedAt(); !at.IsZero() {
		dto.CompletedAt = &at
	}
	return dto
}

type deletionReportDTO struct {
	RemovedFrom          []uuid.UUID `json:"removed_from"`
	Dissolved            []uuid.UUID `json:"dissolved"`
	Uninvited            []uuid.UUID `json:"uninvited"`
	DetachedTransactions int         `json:"detached_transactions"`
	DetachedSprees       int         `json:"detached_sprees"`
	DetachedTasks        int         `json:"detached_tasks"`
}

func toDeletionReport(rep app.DeletionReport) deletionReportDTO {
	return deletionReportDTO{
		RemovedFrom:          nonNil(rep.RemovedFrom),
		Dissolved:            nonNil(rep.Dissolved),
		Uninvited:            nonNil(rep.Uninvited),
		DetachedTransactions: rep.DetachedTransactions,
		DetachedSprees:       rep.DetachedSprees,
		DetachedTasks:        rep.DetachedTasks,
	}
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
