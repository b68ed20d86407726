package domain

import "errors"

// Sentinel error kinds of the billing module, matched with errors.Is at the
// edges.
var (
	ErrContractNotFound       = errors.New("contract not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidContractStatus  = errors.New("contract status does not allow this operation")
	ErrInvalidContractTerms   = errors.New("invalid contract terms")
	ErrSignedDocumentRequired = errors.New("signed document reference is required")
	ErrActiveContractExists   = errors.New("opportunity already has an active contract")
	ErrContractNotSigned      = errors.New("contract is not signed")
	ErrAlreadySuspended       = errors.New("contract already suspended")
	ErrNotSuspended           = errors.New("contract is not suspended")
	ErrAlreadyGenerated       = errors.New("installments already generated")
	ErrInvalidPaymentStatus   = errors.New("payment status does not allow this operation")
	ErrInvalidPaymentAmount   = errors.New("invalid payment amount")
	ErrConcurrentModification = errors.New("contract modified concurrently")
)
