package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/staffing-engine/core"
)

// =============================================================================
// CLOCK AND DATE ARITHMETIC TESTS
// =============================================================================

func TestFixedClock(t *testing.T) {
	clock := core.NewFixedClock(2025, time.June, 1)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), clock.Now())
}

func TestDateOf_TruncatesToMidnightUTC(t *testing.T) {
	late := time.Date(2025, time.June, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), core.DateOf(late))
}

func TestDaysBetween_CalendarDays(t *testing.T) {
	// GIVEN: Two instants 1 second apart across midnight
	// WHEN: Counting days between them
	// THEN: One calendar day; comparisons ignore time of day

	before := time.Date(2025, time.June, 1, 23, 59, 59, 0, time.UTC)
	after := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, core.DaysBetween(before, after))
	assert.Equal(t, -1, core.DaysBetween(after, before))
	assert.Equal(t, 0, core.DaysBetween(before, before))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, core.DaysUntil(now, expiry))
}

// =============================================================================
// ERROR KIND TESTS
// =============================================================================

func TestStructuredErrors_UnwrapToSentinels(t *testing.T) {
	marginErr := &core.InvalidMarginError{TargetMarginPct: "120"}
	assert.ErrorIs(t, marginErr, core.ErrInvalidMarginInput)

	transErr := &core.TransitionError{EntityKind: "contract", From: "draft", To: "active"}
	assert.ErrorIs(t, transErr, core.ErrPreconditionFailed)

	statusErr := &core.UnknownStatusError{EntityKind: "contract", Value: "bogus"}
	assert.ErrorIs(t, statusErr, core.ErrUnknownStatus)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, core.IsNotFound(core.ErrNotFound))
	assert.False(t, core.IsNotFound(core.ErrPreconditionFailed))
	assert.True(t, core.IsConflict(core.ErrConcurrentModification))
	assert.False(t, core.IsConflict(core.ErrNotFound))
	assert.True(t, core.IsClientError(&core.TransitionError{}))
	assert.True(t, core.IsClientError(&core.InvalidMarginError{}))
}

// =============================================================================
// VERSION CHAIN TESTS
// =============================================================================

type testVersion struct {
	number int
	label  string
}

func (v testVersion) VersionNumber() int { return v.number }

func TestVersionChain_LatestAndAt(t *testing.T) {
	chain, err := core.NewVersionChain(
		testVersion{1, "original"},
		testVersion{2, "amended"},
		testVersion{3, "renewal"},
	)
	require.NoError(t, err)

	latest, ok := chain.Latest()
	require.True(t, ok)
	assert.Equal(t, "renewal", latest.label)

	v2, ok := chain.At(2)
	require.True(t, ok)
	assert.Equal(t, "amended", v2.label)

	_, ok = chain.At(4)
	assert.False(t, ok)
	assert.Equal(t, 3, chain.Len())
}

func TestVersionChain_NonContiguous_Rejected(t *testing.T) {
	// GIVEN: Versions 1 and 3 with a gap
	// WHEN: Building a chain
	// THEN: PreconditionFailed; version history has no holes

	_, err := core.NewVersionChain(testVersion{1, "a"}, testVersion{3, "c"})

	assert.ErrorIs(t, err, core.ErrPreconditionFailed)
}

func TestVersionChain_Append(t *testing.T) {
	chain, err := core.NewVersionChain(testVersion{1, "original"})
	require.NoError(t, err)

	require.NoError(t, chain.Append(testVersion{2, "amended"}))
	assert.Equal(t, 2, chain.Len())

	err = chain.Append(testVersion{5, "skipped ahead"})
	assert.ErrorIs(t, err, core.ErrPreconditionFailed)
}

func TestVersionChain_Empty(t *testing.T) {
	chain, err := core.NewVersionChain[testVersion]()
	require.NoError(t, err)

	_, ok := chain.Latest()
	assert.False(t, ok)
}
