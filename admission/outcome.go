package admission

// Status tags the result of an admission attempt.
type Status int

const (
	// StatusClaimed: this call transitioned the code from unclaimed to claimed.
	StatusClaimed Status = iota
	// StatusAlreadyClaimedOrInvalid covers both "code does not exist" and
	// "code already claimed". Callers must not be able to tell them apart.
	StatusAlreadyClaimedOrInvalid
	StatusJoinedWaitlist
	StatusAlreadyOnWaitlist
	// StatusTransientFailure: storage-layer failure worth retrying
	// (timeout, lost connection, contention).
	StatusTransientFailure
	// StatusPermanentFailure: failure that retrying cannot fix.
	StatusPermanentFailure
)

func (s Status) String() string {
	switch s {
	case StatusClaimed:
		return "claimed"
	case StatusAlreadyClaimedOrInvalid:
		return "already_claimed_or_invalid"
	case StatusJoinedWaitlist:
		return "joined_waitlist"
	case StatusAlreadyOnWaitlist:
		return "already_on_waitlist"
	case StatusTransientFailure:
		return "transient_failure"
	case StatusPermanentFailure:
		return "permanent_failure"
	}
	return "unknown"
}

// Outcome is the single result representation used by the ledger and the
// retrier. Failures travel as values, never as panics, so the retry loop
// sees every failure the same way.
type Outcome struct {
	Status Status
	Err    error // cause, set only for the failure statuses
}

// Failed reports whether the outcome is an infrastructure failure rather
// than a business result.
func (o Outcome) Failed() bool {
	return o.Status == StatusTransientFailure || o.Status == StatusPermanentFailure
}

func Claimed() Outcome                 { return Outcome{Status: StatusClaimed} }
func AlreadyClaimedOrInvalid() Outcome { return Outcome{Status: StatusAlreadyClaimedOrInvalid} }
func JoinedWaitlist() Outcome          { return Outcome{Status: StatusJoinedWaitlist} }
func AlreadyOnWaitlist() Outcome       { return Outcome{Status: StatusAlreadyOnWaitlist} }

func TransientFailure(err error) Outcome {
	return Outcome{Status: StatusTransientFailure, Err: err}
}
func PermanentFailure(err error) Outcome {
	return Outcome{Status: StatusPermanentFailure, Err: err}
}
