package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration_Transition(t *testing.T) {
	tests := []struct {
		from    RegistrationStatus
		to      RegistrationStatus
		allowed bool
	}{
		{RegStatusPending, RegStatusApproved, true},
		{RegStatusPending, RegStatusRejected, true},
		{RegStatusPending, RegStatusCancelled, true},
		{RegStatusPending, RegStatusAttended, false},
		{RegStatusPending, RegStatusNoShow, false},
		{RegStatusApproved, RegStatusCancelled, true},
		{RegStatusApproved, RegStatusAttended, true},
		{RegStatusApproved, RegStatusNoShow, true},
		{RegStatusApproved, RegStatusRejected, false},
		{RegStatusApproved, RegStatusPending, false},
		{RegStatusRejected, RegStatusApproved, false},
		{RegStatusCancelled, RegStatusApproved, false},
		{RegStatusAttended, RegStatusCancelled, false},
		{RegStatusNoShow, RegStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			reg := &Registration{Status: tt.from}
			err := reg.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, reg.Status)
			} else {
				require.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, reg.Status, "status must not change on a rejected transition")
			}
		})
	}
}

func TestRegistration_CheckIn(t *testing.T) {
	now := time.Now()
	reg := &Registration{Status: RegStatusApproved}

	require.NoError(t, reg.CheckIn(now))
	assert.True(t, reg.Attendance.CheckedIn)
	require.NotNil(t, reg.Attendance.CheckedInAt)
	assert.Equal(t, now, *reg.Attendance.CheckedInAt)

	err := reg.CheckIn(now.Add(time.Minute))
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Equal(t, now, *reg.Attendance.CheckedInAt, "first check-in time is kept")
}

func TestRegistration_CheckOut(t *testing.T) {
	t.Run("before check-in mutates nothing", func(t *testing.T) {
		reg := &Registration{Status: RegStatusApproved}
		err := reg.CheckOut(time.Now())
		require.ErrorIs(t, err, ErrNotCheckedIn)
		assert.False(t, reg.Attendance.CheckedOut)
		assert.Nil(t, reg.Attendance.CheckedOutAt)
		assert.Zero(t, reg.Attendance.DurationMinutes)
	})

	t.Run("duration is floored to whole minutes", func(t *testing.T) {
		checkIn := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		reg := &Registration{Status: RegStatusApproved}
		require.NoError(t, reg.CheckIn(checkIn))

		// 2 minutes 5 seconds later
		checkOut := checkIn.Add(2*time.Minute + 5*time.Second)
		require.NoError(t, reg.CheckOut(checkOut))

		assert.True(t, reg.Attendance.CheckedOut)
		require.NotNil(t, reg.Attendance.CheckedOutAt)
		assert.Equal(t, checkOut, *reg.Attendance.CheckedOutAt)
		assert.Equal(t, 2, reg.Attendance.DurationMinutes)
	})

	t.Run("sub-minute attendance is zero minutes", func(t *testing.T) {
		checkIn := time.Now()
		reg := &Registration{Status: RegStatusApproved}
		require.NoError(t, reg.CheckIn(checkIn))
		require.NoError(t, reg.CheckOut(checkIn.Add(59*time.Second)))
		assert.Equal(t, 0, reg.Attendance.DurationMinutes)
	})
}
