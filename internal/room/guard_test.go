package room

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuardGlobalCeiling(t *testing.T) {
	guard := newAdmissionGuard(3, 10)

	for i := 0; i < 3; i++ {
		require.NoError(t, guard.admit(fmt.Sprintf("10.0.0.%d", i)))
	}
	require.ErrorIs(t, guard.admit("10.0.0.9"), ErrRoomFull)

	guard.release("10.0.0.0")
	require.NoError(t, guard.admit("10.0.0.9"))
}

func TestGuardPerOriginCeiling(t *testing.T) {
	guard := newAdmissionGuard(100, 5)

	for i := 0; i < 5; i++ {
		require.NoError(t, guard.admit("192.168.1.1"))
	}
	require.ErrorIs(t, guard.admit("192.168.1.1"), ErrOriginLimited)

	// A different origin is unaffected.
	require.NoError(t, guard.admit("192.168.1.2"))
}

func TestGuardReleaseDropsEmptyOrigins(t *testing.T) {
	guard := newAdmissionGuard(10, 5)

	require.NoError(t, guard.admit("1.2.3.4"))
	guard.release("1.2.3.4")

	_, tracked := guard.perOrigin["1.2.3.4"]
	require.False(t, tracked)
	require.Zero(t, guard.total)

	// Releasing an unknown origin must not underflow.
	guard.release("5.6.7.8")
	require.Zero(t, guard.total)
}
