package admission

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/ptminh/auth-server/models"
)

var errEmptyInput = errors.New("admission: empty code or identifier")

// Ledger owns all reads and writes of invite codes and waitlist entries.
// No other code path touches those tables: every mutation goes through the
// store's atomic conditional update or unique constraint, never a
// read-then-write sequence, so correctness holds across any number of
// concurrent handlers and server instances.
type Ledger struct {
	db      *gorm.DB
	retrier *Retrier
}

func NewLedger(db *gorm.DB, config RetryConfig) *Ledger {
	return &Ledger{db: db, retrier: NewRetrier(config)}
}

// ClaimCode spends an invite code for the given claimant. The guard
// `claimed_by IS NULL` and the update run as one statement; RowsAffected
// decides the winner. Zero rows means claimed-or-invalid, deliberately
// indistinguishable so the endpoint cannot be used to probe which codes
// exist.
//
// A successful claim is a commitment: if account creation fails afterwards
// the code stays claimed.
func (l *Ledger) ClaimCode(ctx context.Context, code, claimant string) Outcome {
	if code == "" || claimant == "" {
		return PermanentFailure(errEmptyInput)
	}
	return l.retrier.Do(func() Outcome {
		now := time.Now()
		res := l.db.WithContext(ctx).
			Model(&models.InviteCode{}).
			Where("code = ? AND claimed_by IS NULL", code).
			Updates(map[string]interface{}{"claimed_by": claimant, "claimed_at": now})
		if res.Error != nil {
			return classify(res.Error)
		}
		if res.RowsAffected == 0 {
			return AlreadyClaimedOrInvalid()
		}
		return Claimed()
	})
}

// JoinWaitlist inserts the email and lets the unique constraint decide
// whether it was already there. No existence pre-check.
func (l *Ledger) JoinWaitlist(ctx context.Context, email string) Outcome {
	if email == "" {
		return PermanentFailure(errEmptyInput)
	}
	return l.retrier.Do(func() Outcome {
		err := l.db.WithContext(ctx).Create(&models.WaitlistEntry{Email: email}).Error
		if err == nil {
			return JoinedWaitlist()
		}
		if isDuplicateKey(err) {
			return AlreadyOnWaitlist()
		}
		return classify(err)
	})
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// classify maps a storage error to a transient or permanent failure.
// Transient: anything a healthy store would have served — timeouts, dead
// connections, serialization/deadlock aborts, resource exhaustion.
// Everything else is permanent and surfaced without retry.
func classify(err error) Outcome {
	if errors.Is(err, context.Canceled) {
		return PermanentFailure(err)
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.EOF) {
		return TransientFailure(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return TransientFailure(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			strings.HasPrefix(pgErr.Code, "53"), // insufficient resources
			strings.HasPrefix(pgErr.Code, "57"), // operator intervention
			pgErr.Code == "40001",               // serialization failure
			pgErr.Code == "40P01":               // deadlock detected
			return TransientFailure(err)
		}
		return PermanentFailure(err)
	}
	return PermanentFailure(err)
}
