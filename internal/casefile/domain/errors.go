package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds surfaced by the case engine. Callers match them with
// errors.Is; the detail types below carry the unmet condition so staff can
// remediate instead of seeing a generic failure.
var (
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrPreconditionUnmet      = errors.New("precondition unmet")
	ErrCaseSuspended          = errors.New("case is suspended")
	ErrCaseClosed             = errors.New("case is closed")
	ErrConcurrentModification = errors.New("case modified concurrently")
	ErrInvalidDeadline        = errors.New("invalid deadline")
	ErrCaseNotFound           = errors.New("case not found")
	ErrDocumentNotFound       = errors.New("document not found")
	ErrRequirementNotFound    = errors.New("requirement not found")

	ErrDocumentNotUnderReview  = errors.New("document is not under review")
	ErrDocumentAlreadyApproved = errors.New("document already approved")
	ErrDocumentNotSubmitted    = errors.New("document not submitted")
	ErrRejectReasonRequired    = errors.New("rejection reason is required")

	ErrRequirementNotOpen = errors.New("requirement is not open")
	ErrRequirementClosed  = errors.New("requirement already closed")
)

// TransitionError reports an edge absent from the adjacency table.
type TransitionError struct {
	From TechnicalStatus
	To   TechnicalStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// Unwrap makes errors.Is(err, ErrInvalidTransition) hold.
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// PreconditionError reports which gate blocked a transition.
type PreconditionError struct {
	Reason           string
	MissingDocuments []string
	OpenRequirements int
}

func (e *PreconditionError) Error() string {
	var b strings.Builder
	b.WriteString("precondition unmet: ")
	b.WriteString(e.Reason)
	if len(e.MissingDocuments) > 0 {
		b.WriteString(" (missing documents: ")
		b.WriteString(strings.Join(e.MissingDocuments, ", "))
		b.WriteString(")")
	}
	if e.OpenRequirements > 0 {
		fmt.Fprintf(&b, " (%d open requirements)", e.OpenRequirements)
	}
	return b.String()
}

// Unwrap makes errors.Is(err, ErrPreconditionUnmet) hold.
func (e *PreconditionError) Unwrap() error { return ErrPreconditionUnmet }
