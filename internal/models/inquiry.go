package models

import (
	"time"
)

// InquiryKind distinguishes one-shot messages from appointment negotiations.
type InquiryKind string

const (
	InquiryKindMessage     InquiryKind = "message"
	InquiryKindAppointment InquiryKind = "appointment"
)

// IsValid reports whether the kind is one of the known values.
func (k InquiryKind) IsValid() bool {
	return k == InquiryKindMessage || k == InquiryKindAppointment
}

// InquiryStatus is the negotiation state of an appointment inquiry.
// Message inquiries carry no status.
type InquiryStatus string

const (
	StatusPending        InquiryStatus = "pending"
	StatusProposed       InquiryStatus = "proposed"
	StatusBuyerAccepted  InquiryStatus = "buyer_accepted"
	StatusBuyerRejected  InquiryStatus = "buyer_rejected"
	StatusSellerRejected InquiryStatus = "seller_rejected"
)

// IsTerminal reports whether no further transition may leave this status.
func (s InquiryStatus) IsTerminal() bool {
	switch s {
	case StatusBuyerAccepted, StatusBuyerRejected, StatusSellerRejected:
		return true
	default:
		return false
	}
}

// IsValid reports whether the status is one of the known values.
func (s InquiryStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProposed, StatusBuyerAccepted, StatusBuyerRejected, StatusSellerRejected:
		return true
	default:
		return false
	}
}

// Actor is the side of the negotiation performing an action.
type Actor string

const (
	ActorBuyer  Actor = "buyer"
	ActorSeller Actor = "seller"
)

// Action is a negotiation step requested by one of the parties.
type Action string

const (
	ActionAcceptRequested Action = "accept_requested" // seller
	ActionPropose         Action = "propose"          // seller
	ActionReject          Action = "reject"           // seller or buyer
	ActionAccept          Action = "accept"           // buyer
)

// Slot is the buyer's requested visit time. Date is YYYY-MM-DD, Time is HH:MM.
type Slot struct {
	Date  string `bson:"date" json:"date"`
	Time  string `bson:"time" json:"time"`
	Place string `bson:"place,omitempty" json:"place,omitempty"`
}

// ProposedSlot is the seller's counter-offer, or the accepted requested slot.
// Once an appointment leaves pending, the confirmed schedule is read from here.
type ProposedSlot struct {
	Date  string `bson:"date" json:"date"`
	Time  string `bson:"time" json:"time"`
	Place string `bson:"place,omitempty" json:"place,omitempty"`
	Note  string `bson:"note,omitempty" json:"note,omitempty"` // seller note
}

// HistoryEntry records a single applied transition.
type HistoryEntry struct {
	At      time.Time     `bson:"at" json:"at"`
	ActorID string        `bson:"actor_id" json:"actor_id"`
	Actor   Actor         `bson:"actor" json:"actor"`
	Action  Action        `bson:"action" json:"action"`
	From    InquiryStatus `bson:"from" json:"from"`
	To      InquiryStatus `bson:"to" json:"to"`
	Note    string        `bson:"note,omitempty" json:"note,omitempty"`
}

// Inquiry is one buyer's contact with a seller about a property.
// Only appointment inquiries take part in the negotiation state machine.
type Inquiry struct {
	ID              string         `bson:"_id" json:"id"`
	BuyerID         string         `bson:"buyer_id" json:"buyer_id"`
	SellerID        string         `bson:"seller_id" json:"seller_id"`
	PropertyID      string         `bson:"property_id" json:"property_id"`
	Kind            InquiryKind    `bson:"kind" json:"kind"`
	Message         string         `bson:"message" json:"message"`
	BuyerEmail      string         `bson:"buyer_email,omitempty" json:"buyer_email,omitempty"` // Reply-to, taken from the directory
	Status          InquiryStatus  `bson:"status,omitempty" json:"status,omitempty"`
	Active          bool           `bson:"active" json:"active"` // Backs the partial unique index on (buyer, property, kind)
	Requested       *Slot          `bson:"requested,omitempty" json:"requested,omitempty"`
	Proposed        *ProposedSlot  `bson:"proposed,omitempty" json:"proposed,omitempty"`
	BuyerNote       string         `bson:"buyer_note,omitempty" json:"buyer_note,omitempty"`
	RejectionReason string         `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	History         []HistoryEntry `bson:"history,omitempty" json:"history,omitempty"`
	CreatedAt       time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at" json:"updated_at"`
}

// IsAppointment reports whether the inquiry participates in the state machine.
func (i *Inquiry) IsAppointment() bool {
	return i.Kind == InquiryKindAppointment
}

// InquiryPatch is the complete set of fields a transition may write.
// Nil pointers leave the stored value untouched.
type InquiryPatch struct {
	Status          InquiryStatus
	Active          bool
	Proposed        *ProposedSlot
	BuyerNote       *string
	RejectionReason *string
	History         HistoryEntry
	UpdatedAt       time.Time
}

// Apply writes the patch onto an in-memory copy of an inquiry.
func (p *InquiryPatch) Apply(inq *Inquiry) {
	inq.Status = p.Status
	inq.Active = p.Active
	if p.Proposed != nil {
		proposed := *p.Proposed
		inq.Proposed = &proposed
	}
	if p.BuyerNote != nil {
		inq.BuyerNote = *p.BuyerNote
	}
	if p.RejectionReason != nil {
		inq.RejectionReason = *p.RejectionReason
	}
	inq.History = append(inq.History, p.History)
	inq.UpdatedAt = p.UpdatedAt
}

// InquiryFilter selects inquiries for inbox listings.
type InquiryFilter struct {
	SellerID string
	BuyerID  string
	Kind     InquiryKind
	Status   InquiryStatus
	Limit    int
}
