package streamflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scheduleFixture() *StreamState {
	return &StreamState{
		Magic:              0x66727473,
		Version:            2,
		StartTime:          1_000,
		NetAmountDeposited: 1_000_000,
		Period:             100,
		AmountPerPeriod:    10_000,
		Cliff:              2_000,
		CliffAmount:        100_000,
	}
}

func TestLockedBeforeCliff(t *testing.T) {
	s := scheduleFixture()
	require.Equal(t, uint64(1_000_000), s.LockedAt(500))
	require.Equal(t, uint64(1_000_000), s.LockedAt(1_999))
}

func TestLockedAtCliffReleasesCliffAmount(t *testing.T) {
	s := scheduleFixture()
	require.Equal(t, uint64(900_000), s.LockedAt(2_000))
}

func TestLockedMidSchedule(t *testing.T) {
	s := scheduleFixture()
	// 5 full periods past the cliff: 100k cliff + 5 * 10k released.
	require.Equal(t, uint64(850_000), s.LockedAt(2_500))
	// A partial period releases nothing extra.
	require.Equal(t, uint64(850_000), s.LockedAt(2_599))
}

func TestLockedFullyVested(t *testing.T) {
	s := scheduleFixture()
	// 90 periods past the cliff vests the full deposit.
	require.Equal(t, uint64(0), s.LockedAt(11_000))
	require.Equal(t, uint64(0), s.LockedAt(1_000_000_000))
}

func TestLockedCanceledStream(t *testing.T) {
	s := scheduleFixture()
	s.CanceledAt = 2_200
	require.Equal(t, uint64(890_000), s.LockedAt(2_199))
	require.Equal(t, uint64(0), s.LockedAt(2_200))
}

func TestLockedEndedStream(t *testing.T) {
	s := scheduleFixture()
	s.EndTime = 3_000
	require.Equal(t, uint64(0), s.LockedAt(3_000))
}

func TestLockedZeroPeriodOnlyCliffVests(t *testing.T) {
	s := scheduleFixture()
	s.Period = 0
	require.Equal(t, uint64(900_000), s.LockedAt(10_000_000))
}

func TestLockedNegativeNowTreatedAsZero(t *testing.T) {
	s := scheduleFixture()
	require.Equal(t, uint64(1_000_000), s.LockedAt(-5))
}

func TestDecodeStreamRejectsGarbage(t *testing.T) {
	_, err := DecodeStream([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidStreamAccount)

	_, err = DecodeStream(make([]byte, 1024))
	require.ErrorIs(t, err, ErrInvalidStreamAccount)
}
