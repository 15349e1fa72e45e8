package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type UserRole string

const (
	RoleOwner     UserRole = "owner"
	RolePetsitter UserRole = "petsitter"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleOwner || r == RolePetsitter
}

type OrderStatus string

const (
	OrderOpen       OrderStatus = "open"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCanceled   OrderStatus = "canceled"
)

// Valid reports whether s is one of the four order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderOpen, OrderInProgress, OrderCompleted, OrderCanceled:
		return true
	}
	return false
}

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
	ProposalCanceled ProposalStatus = "canceled"
)

// Valid reports whether s is a known proposal status.
func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalPending, ProposalAccepted, ProposalRejected, ProposalCanceled:
		return true
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// User is the full profile returned by /users/{id}.
type User struct {
	ID              int64    `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Role            UserRole `json:"role"`
	OwnerRating     float64  `json:"owner_rating"`
	PetsitterRating float64  `json:"petsitter_rating"`
}

// UserPublic is the denormalized summary embedded in orders and messages.
type UserPublic struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
}

// Order is a care order. Dates are kept as the server formats them.
type Order struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	Status      OrderStatus `json:"status"`
	OwnerID     int64       `json:"owner_id"`
	Owner       *UserPublic `json:"owner,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

// OrderDraft is the create/edit form for an order, before normalization.
type OrderDraft struct {
	Title       string
	Description string
	StartDate   string
	EndDate     string
	Status      OrderStatus
}

// OrderPayload is the body sent on create; dates are canonical instants.
type OrderPayload struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	Status      OrderStatus `json:"status"`
}

// OrderPatch is a partial update; nil fields are omitted.
type OrderPatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	StartDate   *string      `json:"start_date,omitempty"`
	EndDate     *string      `json:"end_date,omitempty"`
	Status      *OrderStatus `json:"status,omitempty"`
}

// OrderFilters selects and sorts the order listing.
type OrderFilters struct {
	Status    OrderStatus
	DateFrom  string
	DateTo    string
	SortOrder SortOrder
	Skip      int
	Limit     int
}

type Message struct {
	ID        int64       `json:"id"`
	OrderID   int64       `json:"order_id"`
	SenderID  int64       `json:"sender_id,omitempty"`
	Sender    *UserPublic `json:"sender,omitempty"`
	Content   string      `json:"content"`
	CreatedAt string      `json:"created_at,omitempty"`
}

// SenderName returns the embedded sender username, if any.
func (m Message) SenderName() string {
	if m.Sender == nil {
		return ""
	}
	return m.Sender.Username
}

// Price is a decimal amount that may arrive as a JSON number or string.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p == "" {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(string(p))), nil
}

// Float parses the price; ok is false for empty or malformed values.
func (p Price) Float() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(p)), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type Proposal struct {
	ID          int64          `json:"id"`
	OrderID     int64          `json:"order_id,omitempty"`
	PetsitterID int64          `json:"petsitter_id,omitempty"`
	Price       Price          `json:"price"`
	Comment     *string        `json:"comment"`
	Status      ProposalStatus `json:"status"`
}

type ProposalPayload struct {
	OrderID     int64   `json:"order_id"`
	PetsitterID int64   `json:"petsitter_id"`
	Price       Price   `json:"price"`
	Comment     *string `json:"comment,omitempty"`
}

type ProposalPatch struct {
	Price   *Price          `json:"price,omitempty"`
	Comment *string         `json:"comment,omitempty"`
	Status  *ProposalStatus `json:"status,omitempty"`
}
