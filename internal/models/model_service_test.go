package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oceanview/backend/pkg/types"
)

func pendingRegistration() *ServiceRegistration {
	return &ServiceRegistration{ID: "reg-1", Status: types.RegistrationStatusWaitingForApproval}
}

func TestServiceRegistration_ApproveOnce(t *testing.T) {
	reg := pendingRegistration()
	require.NoError(t, reg.Approve())
	require.Equal(t, types.RegistrationStatusApproved, reg.Status)
	require.NotNil(t, reg.PreviousStatus)
	require.Equal(t, types.RegistrationStatusWaitingForApproval, *reg.PreviousStatus)

	// A second decision on a closed registration fails without mutating it.
	require.ErrorIs(t, reg.Approve(), ErrAlreadyApprovedOrClosed)
	require.ErrorIs(t, reg.Reject(), ErrAlreadyApprovedOrClosed)
	require.Equal(t, types.RegistrationStatusApproved, reg.Status)
}

func TestServiceRegistration_RejectClosesForGood(t *testing.T) {
	reg := pendingRegistration()
	require.NoError(t, reg.Reject())
	require.Equal(t, types.RegistrationStatusRejected, reg.Status)

	require.ErrorIs(t, reg.Approve(), ErrAlreadyApprovedOrClosed)
	require.ErrorIs(t, reg.Cancel(), ErrNotCancelable)
}

func TestServiceRegistration_Cancel(t *testing.T) {
	t.Run("from pending", func(t *testing.T) {
		reg := pendingRegistration()
		require.NoError(t, reg.Cancel())
		require.Equal(t, types.RegistrationStatusCanceled, reg.Status)
		require.False(t, reg.WasApproved())
	})

	t.Run("from approved keeps the approval visible", func(t *testing.T) {
		reg := pendingRegistration()
		require.NoError(t, reg.Approve())
		require.NoError(t, reg.Cancel())
		require.Equal(t, types.RegistrationStatusCanceled, reg.Status)
		require.True(t, reg.WasApproved())
	})

	t.Run("twice fails", func(t *testing.T) {
		reg := pendingRegistration()
		require.NoError(t, reg.Cancel())
		require.ErrorIs(t, reg.Cancel(), ErrNotCancelable)
	})
}

func TestReissueCard_SingleDecision(t *testing.T) {
	rc := &ReissueCard{Status: types.RegistrationStatusWaitingForApproval}
	require.NoError(t, rc.Approve())
	require.ErrorIs(t, rc.Approve(), ErrAlreadyApprovedOrClosed)
	require.ErrorIs(t, rc.Reject(), ErrAlreadyApprovedOrClosed)

	rc = &ReissueCard{Status: types.RegistrationStatusWaitingForApproval}
	require.NoError(t, rc.Reject())
	require.ErrorIs(t, rc.Approve(), ErrAlreadyApprovedOrClosed)
}
