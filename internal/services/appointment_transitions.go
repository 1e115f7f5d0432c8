package services

import (
	"slices"
	"strings"
	"time"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

const (
	slotDateLayout = "2006-01-02"
	slotTimeLayout = "15:04"
)

// ActionPayload carries the optional inputs of a negotiation step.
// Which fields matter depends on the action.
type ActionPayload struct {
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
	Place  string `json:"place,omitempty"`
	Note   string `json:"note,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type transitionKey struct {
	from   models.InquiryStatus
	actor  models.Actor
	action models.Action
}

// appointmentTransitions is the complete set of allowed moves.
var appointmentTransitions = map[transitionKey]models.InquiryStatus{
	{models.StatusPending, models.ActorSeller, models.ActionAcceptRequested}: models.StatusProposed,
	{models.StatusPending, models.ActorSeller, models.ActionPropose}:         models.StatusProposed,
	{models.StatusPending, models.ActorSeller, models.ActionReject}:          models.StatusSellerRejected,
	{models.StatusProposed, models.ActorBuyer, models.ActionAccept}:          models.StatusBuyerAccepted,
	{models.StatusProposed, models.ActorBuyer, models.ActionReject}:          models.StatusBuyerRejected,
}

var actorActions = map[models.Actor][]models.Action{
	models.ActorSeller: {models.ActionAcceptRequested, models.ActionPropose, models.ActionReject},
	models.ActorBuyer:  {models.ActionAccept, models.ActionReject},
}

func actorMayPerform(actor models.Actor, action models.Action) bool {
	return slices.Contains(actorActions[actor], action)
}

func isKnownAction(action models.Action) bool {
	switch action {
	case models.ActionAcceptRequested, models.ActionPropose, models.ActionReject, models.ActionAccept:
		return true
	default:
		return false
	}
}

// NextStatus looks up the transition table. ok is false when the move is not allowed.
func NextStatus(from models.InquiryStatus, actor models.Actor, action models.Action) (models.InquiryStatus, bool) {
	next, ok := appointmentTransitions[transitionKey{from, actor, action}]
	return next, ok
}

// ValidateTransition decides whether actor may apply action to inq and, if so,
// returns the patch to persist. It performs no I/O and never mutates inq.
// fallbackPlace is the property address used when no meeting place is given.
func ValidateTransition(inq *models.Inquiry, actor models.Actor, actingUserID string, action models.Action, payload ActionPayload, fallbackPlace string, now time.Time) (*models.InquiryPatch, error) {
	if inq.Status.IsTerminal() {
		return nil, newError(KindInvalidTransition, "inquiry is already %s", inq.Status)
	}
	next, ok := NextStatus(inq.Status, actor, action)
	if !ok {
		return nil, newError(KindInvalidTransition, "%s cannot %s while inquiry is %s", actor, action, inq.Status)
	}

	patch := &models.InquiryPatch{
		Status:    next,
		Active:    !next.IsTerminal(),
		UpdatedAt: now.UTC(),
		History: models.HistoryEntry{
			At:      now.UTC(),
			ActorID: actingUserID,
			Actor:   actor,
			Action:  action,
			From:    inq.Status,
			To:      next,
		},
	}

	switch action {
	case models.ActionAcceptRequested:
		if inq.Requested == nil || inq.Requested.Date == "" || inq.Requested.Time == "" {
			return nil, newError(KindMissingSlot, "inquiry has no requested date and time")
		}
		place := firstNonEmpty(payload.Place, inq.Requested.Place, fallbackPlace)
		patch.Proposed = &models.ProposedSlot{
			Date:  inq.Requested.Date,
			Time:  inq.Requested.Time,
			Place: place,
			Note:  strings.TrimSpace(payload.Note),
		}
		patch.History.Note = patch.Proposed.Note

	case models.ActionPropose:
		date, clock := strings.TrimSpace(payload.Date), strings.TrimSpace(payload.Time)
		if date == "" || clock == "" {
			return nil, newError(KindMissingSlot, "propose needs both date and time")
		}
		if err := validateSlot(date, clock); err != nil {
			return nil, err
		}
		patch.Proposed = &models.ProposedSlot{
			Date:  date,
			Time:  clock,
			Place: firstNonEmpty(payload.Place, fallbackPlace),
			Note:  strings.TrimSpace(payload.Note),
		}
		patch.History.Note = patch.Proposed.Note

	case models.ActionReject:
		if actor == models.ActorSeller {
			reason := strings.TrimSpace(payload.Reason)
			if reason == "" {
				return nil, newError(KindMissingReason, "seller must give a reason to reject")
			}
			patch.RejectionReason = &reason
			patch.History.Note = reason
		} else {
			setBuyerNote(patch, payload.Note)
		}

	case models.ActionAccept:
		setBuyerNote(patch, payload.Note)
	}

	return patch, nil
}

func setBuyerNote(patch *models.InquiryPatch, note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	patch.BuyerNote = &note
	patch.History.Note = note
}

// validateSlot checks a YYYY-MM-DD date and a 24h HH:MM time.
func validateSlot(date, clock string) error {
	if len(date) != len(slotDateLayout) {
		return newError(KindValidation, "date %q must be YYYY-MM-DD", date)
	}
	if _, err := time.Parse(slotDateLayout, date); err != nil {
		return newError(KindValidation, "date %q must be YYYY-MM-DD", date)
	}
	if len(clock) != len(slotTimeLayout) {
		return newError(KindValidation, "time %q must be HH:MM", clock)
	}
	if _, err := time.Parse(slotTimeLayout, clock); err != nil {
		return newError(KindValidation, "time %q must be HH:MM", clock)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
