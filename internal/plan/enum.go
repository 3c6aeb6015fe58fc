package plan

import "github.com/elevohq/elevo-backend/internal/apperr"

type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusProcessing        Status = "PROCESSING"
	StatusPending           Status = "PENDING"
	StatusApproved          Status = "APPROVED"
	StatusNeedsRevision     Status = "NEEDS_REVISION"
	StatusRejected          Status = "REJECTED"
	StatusPendingCompletion Status = "PENDING_COMPLETION"
	StatusCompleted         Status = "COMPLETED"
)

var AllStatuses = []Status{
	StatusDraft,
	StatusProcessing,
	StatusPending,
	StatusApproved,
	StatusNeedsRevision,
	StatusRejected,
	StatusPendingCompletion,
	StatusCompleted,
}

func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// transitions is the full set of legal edges. Anything absent fails with
// InvalidTransition; REJECTED and COMPLETED are terminal.
var transitions = map[Status][]Status{
	StatusDraft:             {StatusPending},
	StatusProcessing:        {StatusDraft, StatusPending},
	StatusPending:           {StatusApproved, StatusRejected, StatusNeedsRevision},
	StatusNeedsRevision:     {StatusPending},
	StatusApproved:          {StatusPendingCompletion},
	StatusPendingCompletion: {StatusCompleted, StatusNeedsRevision},
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition is the single gate every status write goes through.
func Transition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return &apperr.InvalidTransitionError{From: string(from), To: string(to)}
	}
	return nil
}

type ResourceStatus string

const (
	ResourcePending    ResourceStatus = "PENDING"
	ResourceInProgress ResourceStatus = "IN_PROGRESS"
	ResourceCompleted  ResourceStatus = "COMPLETED"
)

var AllResourceStatuses = []ResourceStatus{
	ResourcePending,
	ResourceInProgress,
	ResourceCompleted,
}

func (s ResourceStatus) IsValid() bool {
	for _, v := range AllResourceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type VerificationMethod string

const (
	VerificationNone        VerificationMethod = "NONE"
	VerificationQuiz        VerificationMethod = "QUIZ"
	VerificationManual      VerificationMethod = "MANUAL"
	VerificationCertificate VerificationMethod = "CERTIFICATE"
)

var AllVerificationMethods = []VerificationMethod{
	VerificationNone,
	VerificationQuiz,
	VerificationManual,
	VerificationCertificate,
}

func (m VerificationMethod) IsValid() bool {
	for _, v := range AllVerificationMethods {
		if m == v {
			return true
		}
	}
	return false
}
