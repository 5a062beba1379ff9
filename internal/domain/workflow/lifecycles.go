package workflow

import (
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
)

// Offer lifecycle states and triggers.
const (
	OfferDraft     = State(entity.OfferStatusDraft)
	OfferPublished = State(entity.OfferStatusPublished)
	OfferClosed    = State(entity.OfferStatusClosed)
	OfferCancelled = State(entity.OfferStatusCancelled)

	TriggerPublish = Trigger("PUBLISH")
	TriggerClose   = Trigger("CLOSE")
	TriggerCancel  = Trigger("CANCEL")
)

// Application lifecycle states and triggers.
const (
	ApplicationPending   = State(entity.ApplicationStatusPending)
	ApplicationReviewing = State(entity.ApplicationStatusReviewing)
	ApplicationAccepted  = State(entity.ApplicationStatusAccepted)
	ApplicationRejected  = State(entity.ApplicationStatusRejected)
	ApplicationWithdrawn = State(entity.ApplicationStatusWithdrawn)

	TriggerStartReview = Trigger("START_REVIEW")
	TriggerAccept      = Trigger("ACCEPT")
	TriggerReject      = Trigger("REJECT")
	TriggerWithdraw    = Trigger("WITHDRAW")
)

// Logbook entry lifecycle states and triggers.
const (
	LogbookPending           = State(entity.LogbookStatusPending)
	LogbookApproved          = State(entity.LogbookStatusApproved)
	LogbookRevisionRequested = State(entity.LogbookStatusRevisionRequested)

	TriggerApprove         = Trigger("APPROVE")
	TriggerRequestRevision = Trigger("REQUEST_REVISION")
	TriggerResubmit        = Trigger("RESUBMIT")
)

// NewOfferMachine builds the offer publication lifecycle positioned at the
// given current status: draft -> published -> {closed, cancelled}. Draft
// offers may also be cancelled outright.
func NewOfferMachine(current State) StateMachine {
	builder := NewBuilder()

	builder.Configure(OfferDraft).
		Permit(TriggerPublish, OfferPublished).
		Permit(TriggerCancel, OfferCancelled)

	builder.Configure(OfferPublished).
		Permit(TriggerClose, OfferClosed).
		Permit(TriggerCancel, OfferCancelled)

	return builder.Build(current)
}

// NewApplicationMachine builds the application lifecycle positioned at the
// given current status: pending -> reviewing -> {accepted, rejected}, with
// withdrawal allowed from any non-accepted state. Direct pending -> accepted
// and pending -> rejected are permitted; review is optional.
func NewApplicationMachine(current State) StateMachine {
	builder := NewBuilder()

	builder.Configure(ApplicationPending).
		Permit(TriggerStartReview, ApplicationReviewing).
		Permit(TriggerAccept, ApplicationAccepted).
		Permit(TriggerReject, ApplicationRejected).
		Permit(TriggerWithdraw, ApplicationWithdrawn)

	builder.Configure(ApplicationReviewing).
		Permit(TriggerAccept, ApplicationAccepted).
		Permit(TriggerReject, ApplicationRejected).
		Permit(TriggerWithdraw, ApplicationWithdrawn)

	return builder.Build(current)
}

// NewLogbookMachine builds the logbook entry approval lifecycle positioned at
// the given current status. A student edit fires RESUBMIT, returning the entry
// to pending; approval is terminal.
func NewLogbookMachine(current State) StateMachine {
	builder := NewBuilder()

	builder.Configure(LogbookPending).
		Permit(TriggerApprove, LogbookApproved).
		Permit(TriggerRequestRevision, LogbookRevisionRequested).
		Permit(TriggerResubmit, LogbookPending)

	builder.Configure(LogbookRevisionRequested).
		Permit(TriggerApprove, LogbookApproved).
		Permit(TriggerRequestRevision, LogbookRevisionRequested).
		Permit(TriggerResubmit, LogbookPending)

	return builder.Build(current)
}

// ApplicationTriggerFor maps a requested target status onto the trigger that
// produces it. Unknown targets return ErrUnknownStatus.
func ApplicationTriggerFor(targetStatus string) (Trigger, error) {
	switch targetStatus {
	case entity.ApplicationStatusReviewing:
		return TriggerStartReview, nil
	case entity.ApplicationStatusAccepted:
		return TriggerAccept, nil
	case entity.ApplicationStatusRejected:
		return TriggerReject, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownStatus, targetStatus)
	}
}

// OfferTriggerFor maps a requested target status onto the trigger that
// produces it. Unknown targets return ErrUnknownStatus.
func OfferTriggerFor(targetStatus string) (Trigger, error) {
	switch targetStatus {
	case entity.OfferStatusPublished:
		return TriggerPublish, nil
	case entity.OfferStatusClosed:
		return TriggerClose, nil
	case entity.OfferStatusCancelled:
		return TriggerCancel, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownStatus, targetStatus)
	}
}

// LogbookTriggerFor maps a requested review outcome onto the trigger that
// produces it. Unknown targets return ErrUnknownStatus.
func LogbookTriggerFor(targetStatus string) (Trigger, error) {
	switch targetStatus {
	case entity.LogbookStatusApproved:
		return TriggerApprove, nil
	case entity.LogbookStatusRevisionRequested:
		return TriggerRequestRevision, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownStatus, targetStatus)
	}
}
