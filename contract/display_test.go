package contract_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/staffing-engine/contract"
)

// =============================================================================
// DERIVED DISPLAY STATUS TESTS
// =============================================================================

func TestDeriveDisplayStatus_PastExpiry_DisplaysExpired(t *testing.T) {
	// GIVEN: An active contract whose expiry date passed yesterday
	// WHEN: Deriving the display status
	// THEN: Displayed expired while the stored status stays active

	c := activeContract(t)
	c.ExpiryDate = datePtr(2025, time.May, 31)

	display := contract.DeriveDisplayStatus(c, june1)

	assert.Equal(t, contract.StatusExpired, display)
	assert.Equal(t, contract.StatusActive, c.Status, "stored status is never rewritten by reads")
	assert.True(t, contract.NeedsExpiryTransition(c, june1))
}

func TestDeriveDisplayStatus_ExpiryToday_NotExpired(t *testing.T) {
	// GIVEN: A contract expiring today
	// WHEN: Deriving display status
	// THEN: Still shown as stored; expiry means strictly past the date

	c := activeContract(t)
	c.ExpiryDate = datePtr(2025, time.June, 1)

	assert.Equal(t, contract.StatusActive, contract.DeriveDisplayStatus(c, june1))
	assert.False(t, contract.NeedsExpiryTransition(c, june1))
}

func TestDeriveDisplayStatus_TerminalStatus_Unchanged(t *testing.T) {
	// GIVEN: A terminated contract with a long-passed expiry date
	// WHEN: Deriving display status
	// THEN: Terminated wins; terminal statuses never derive to expired

	c := activeContract(t)
	c.ExpiryDate = datePtr(2025, time.January, 1)
	assert.NoError(t, c.Terminate("morgan", june1))

	assert.Equal(t, contract.StatusTerminated, contract.DeriveDisplayStatus(c, june1))
	assert.False(t, contract.NeedsExpiryTransition(c, june1))
}

func TestDeriveDisplayStatus_NoExpiryDate_Unchanged(t *testing.T) {
	c := activeContract(t)
	c.ExpiryDate = nil

	assert.Equal(t, contract.StatusActive, contract.DeriveDisplayStatus(c, june1))
}

// =============================================================================
// EXPIRING SOON TESTS
// =============================================================================

func TestExpiringSoon_InsideNoticeWindow(t *testing.T) {
	c := activeContract(t)
	c.RenewalNoticeDays = 30

	cases := []struct {
		name   string
		expiry *time.Time
		want   bool
	}{
		{"15 days out", datePtr(2025, time.June, 16), true},
		{"today", datePtr(2025, time.June, 1), true},
		{"exactly 30 days out", datePtr(2025, time.July, 1), true},
		{"31 days out", datePtr(2025, time.July, 2), false},
		{"already past", datePtr(2025, time.May, 31), false},
		{"no expiry", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c.ExpiryDate = tc.expiry
			assert.Equal(t, tc.want, c.ExpiringSoon(june1))
		})
	}
}

func TestExpiringSoon_DefaultNoticeWindow(t *testing.T) {
	// GIVEN: A contract without its own notice window
	// WHEN: Checking 25 days before expiry
	// THEN: The 30-day default applies

	c := activeContract(t)
	c.RenewalNoticeDays = 0
	c.ExpiryDate = datePtr(2025, time.June, 26)

	assert.True(t, c.ExpiringSoon(june1))
}

func TestExpiringSoon_TerminalNeverFlags(t *testing.T) {
	c := activeContract(t)
	c.ExpiryDate = datePtr(2025, time.June, 16)
	assert.NoError(t, c.Supersede(june1))

	assert.False(t, c.ExpiringSoon(june1))
}
