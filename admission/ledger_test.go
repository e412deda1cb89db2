package admission

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ptminh/auth-server/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.InviteCode{}, &models.WaitlistEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: sqlite serializes writers anyway, this keeps the
	// concurrency tests free of lock errors
	sqlDB.SetMaxOpenConns(1)

	return db
}

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	db := newTestDB(t)
	return NewLedger(db, testRetryConfig(3)), db
}

func seedCode(t *testing.T, db *gorm.DB, code string) {
	t.Helper()
	require.NoError(t, db.Create(&models.InviteCode{Code: code}).Error)
}

func TestClaimCodeExactlyOnceConcurrent(t *testing.T) {
	ledger, db := newTestLedger(t)
	seedCode(t, db, "golden-ticket")

	const workers = 16
	outcomes := make([]Outcome, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			claimant := fmt.Sprintf("user%d@example.com", i)
			outcomes[i] = ledger.ClaimCode(context.Background(), "golden-ticket", claimant)
		}(i)
	}
	wg.Wait()

	claimed, rejected := 0, 0
	winner := -1
	for i, out := range outcomes {
		switch out.Status {
		case StatusClaimed:
			claimed++
			winner = i
		case StatusAlreadyClaimedOrInvalid:
			rejected++
		default:
			t.Fatalf("unexpected outcome %s (%v)", out.Status, out.Err)
		}
	}
	assert.Equal(t, 1, claimed, "exactly one caller wins the code")
	assert.Equal(t, workers-1, rejected)

	var row models.InviteCode
	require.NoError(t, db.First(&row, "code = ?", "golden-ticket").Error)
	require.NotNil(t, row.ClaimedBy)
	assert.Equal(t, fmt.Sprintf("user%d@example.com", winner), *row.ClaimedBy)
	require.NotNil(t, row.ClaimedAt)
}

func TestClaimCodeReclaimRejected(t *testing.T) {
	ledger, db := newTestLedger(t)
	seedCode(t, db, "one-shot")

	out := ledger.ClaimCode(context.Background(), "one-shot", "first@example.com")
	require.Equal(t, StatusClaimed, out.Status)

	// same claimant, same code: still spent
	out = ledger.ClaimCode(context.Background(), "one-shot", "first@example.com")
	assert.Equal(t, StatusAlreadyClaimedOrInvalid, out.Status)

	out = ledger.ClaimCode(context.Background(), "one-shot", "second@example.com")
	assert.Equal(t, StatusAlreadyClaimedOrInvalid, out.Status)

	var row models.InviteCode
	require.NoError(t, db.First(&row, "code = ?", "one-shot").Error)
	require.NotNil(t, row.ClaimedBy)
	assert.Equal(t, "first@example.com", *row.ClaimedBy, "claim is never reassigned")
}

func TestClaimCodeUnknownCode(t *testing.T) {
	ledger, _ := newTestLedger(t)

	out := ledger.ClaimCode(context.Background(), "does-not-exist", "a@example.com")
	// indistinguishable from an already-claimed code
	assert.Equal(t, StatusAlreadyClaimedOrInvalid, out.Status)
}

func TestClaimCodeEmptyInput(t *testing.T) {
	ledger, _ := newTestLedger(t)

	out := ledger.ClaimCode(context.Background(), "", "a@example.com")
	assert.Equal(t, StatusPermanentFailure, out.Status)
	assert.Error(t, out.Err)

	out = ledger.ClaimCode(context.Background(), "some-code", "")
	assert.Equal(t, StatusPermanentFailure, out.Status)
}

func TestClaimSurvivesDownstreamFailure(t *testing.T) {
	ledger, db := newTestLedger(t)
	seedCode(t, db, "committed")

	out := ledger.ClaimCode(context.Background(), "committed", "user@example.com")
	require.Equal(t, StatusClaimed, out.Status)

	// downstream account creation fails here; the claim is a commitment
	// and the code is not returned to the pool
	out = ledger.ClaimCode(context.Background(), "committed", "user@example.com")
	assert.Equal(t, StatusAlreadyClaimedOrInvalid, out.Status)
}

func TestJoinWaitlistConcurrentDedup(t *testing.T) {
	ledger, db := newTestLedger(t)

	const workers = 16
	outcomes := make([]Outcome, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = ledger.JoinWaitlist(context.Background(), "eager@example.com")
		}(i)
	}
	wg.Wait()

	joined, already := 0, 0
	for _, out := range outcomes {
		switch out.Status {
		case StatusJoinedWaitlist:
			joined++
		case StatusAlreadyOnWaitlist:
			already++
		default:
			t.Fatalf("unexpected outcome %s (%v)", out.Status, out.Err)
		}
	}
	assert.Equal(t, 1, joined)
	assert.Equal(t, workers-1, already)

	var count int64
	require.NoError(t, db.Model(&models.WaitlistEntry{}).
		Where("email = ?", "eager@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestJoinWaitlistSequentialDuplicate(t *testing.T) {
	ledger, _ := newTestLedger(t)

	out := ledger.JoinWaitlist(context.Background(), "dup@example.com")
	require.Equal(t, StatusJoinedWaitlist, out.Status)

	out = ledger.JoinWaitlist(context.Background(), "dup@example.com")
	assert.Equal(t, StatusAlreadyOnWaitlist, out.Status)
}

func TestJoinWaitlistEmptyInput(t *testing.T) {
	ledger, _ := newTestLedger(t)

	out := ledger.JoinWaitlist(context.Background(), "")
	assert.Equal(t, StatusPermanentFailure, out.Status)
}

func TestJoinWaitlistDistinctEmails(t *testing.T) {
	ledger, db := newTestLedger(t)

	for i := 0; i < 5; i++ {
		out := ledger.JoinWaitlist(context.Background(), fmt.Sprintf("user%d@example.com", i))
		require.Equal(t, StatusJoinedWaitlist, out.Status)
	}

	var count int64
	require.NoError(t, db.Model(&models.WaitlistEntry{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestClaimCodeCancelledContext(t *testing.T) {
	ledger, db := newTestLedger(t)
	seedCode(t, db, "ctx-code")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	out := ledger.ClaimCode(ctx, "ctx-code", "user@example.com")
	// cancelled work is not retried
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StatusPermanentFailure, out.Status)
}
