package recovery_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/recovery"
	"github.com/trackvision/portal-web/session"
	"github.com/trackvision/portal-web/storage"
	"github.com/trackvision/portal-web/users"
)

type call struct {
	op    string
	email string
	arg   string
}

type fakeGateway struct {
	calls     []call
	forgotErr error
	verifyErr error
	resetErr  error
}

func (g *fakeGateway) ForgotPassword(_ context.Context, email string) error {
	g.calls = append(g.calls, call{op: "forgot", email: email})
	return g.forgotErr
}

func (g *fakeGateway) VerifyOTP(_ context.Context, email, otp string) error {
	g.calls = append(g.calls, call{op: "verify", email: email, arg: otp})
	return g.verifyErr
}

func (g *fakeGateway) ResetPassword(_ context.Context, email, newPassword string) error {
	g.calls = append(g.calls, call{op: "reset", email: email, arg: newPassword})
	return g.resetErr
}

func newFlow(t *testing.T) (*recovery.Flow, *fakeGateway, storage.Store) {
	t.Helper()
	store := storage.Scoped(storage.NewInMemoryRepo(), "browser-1")
	gw := &fakeGateway{}
	return recovery.New(store, gw), gw, store
}

func requireState(t *testing.T, f *recovery.Flow, want recovery.State) {
	t.Helper()
	got, err := f.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFlow_HappyPath(t *testing.T) {
	f, gw, _ := newFlow(t)
	ctx := context.Background()
	requireState(t, f, recovery.StateIdle)

	state, err := f.RequestOTP(ctx, " a@x.com ")
	require.NoError(t, err)
	require.Equal(t, recovery.StateOtpRequested, state)
	requireState(t, f, recovery.StateOtpRequested)

	email, ok := f.Email(ctx)
	require.True(t, ok)
	require.Equal(t, "a@x.com", email)

	state, err = f.VerifyOTP(ctx, "123456")
	require.NoError(t, err)
	require.Equal(t, recovery.StateOtpVerified, state)
	requireState(t, f, recovery.StateOtpVerified)

	state, err = f.ResetPassword(ctx, "n3w-secret")
	require.NoError(t, err)
	require.Equal(t, recovery.StateCompleted, state)
	requireState(t, f, recovery.StateIdle)

	_, ok = f.Email(ctx)
	require.False(t, ok, "pending email cleared after reset")

	require.Equal(t, []call{
		{op: "forgot", email: "a@x.com"},
		{op: "verify", email: "a@x.com", arg: "123456"},
		{op: "reset", email: "a@x.com", arg: "n3w-secret"},
	}, gw.calls)
}

func TestFlow_OutOfOrder(t *testing.T) {
	t.Run("reset before any request", func(t *testing.T) {
		f, gw, _ := newFlow(t)
		_, err := f.ResetPassword(context.Background(), "pw1234")
		require.ErrorIs(t, err, errors.ErrNoPendingReset)
		require.Empty(t, gw.calls, "nothing sent to the backend")
	})

	t.Run("verify before any request", func(t *testing.T) {
		f, gw, _ := newFlow(t)
		_, err := f.VerifyOTP(context.Background(), "123456")
		require.ErrorIs(t, err, errors.ErrNoPendingReset)
		require.Empty(t, gw.calls)
	})

	t.Run("reset before verify", func(t *testing.T) {
		f, gw, _ := newFlow(t)
		ctx := context.Background()
		_, err := f.RequestOTP(ctx, "a@x.com")
		require.NoError(t, err)

		state, err := f.ResetPassword(ctx, "pw1234")
		require.ErrorIs(t, err, errors.ErrRecoveryOutOfOrder)
		require.Equal(t, recovery.StateOtpRequested, state)
		require.Len(t, gw.calls, 1)
	})

	t.Run("verify twice", func(t *testing.T) {
		f, gw, _ := newFlow(t)
		ctx := context.Background()
		_, err := f.RequestOTP(ctx, "a@x.com")
		require.NoError(t, err)
		_, err = f.VerifyOTP(ctx, "111111")
		require.NoError(t, err)

		_, err = f.VerifyOTP(ctx, "111111")
		require.ErrorIs(t, err, errors.ErrRecoveryOutOfOrder)
		require.Len(t, gw.calls, 2)
	})
}

func TestFlow_FailuresKeepState(t *testing.T) {
	apiErr := fmt.Errorf("backend said no")

	t.Run("request failure stays idle", func(t *testing.T) {
		f, gw, _ := newFlow(t)
		gw.forgotErr = apiErr
		state, err := f.RequestOTP(context.Background(), "a@x.com")
		require.ErrorIs(t, err, apiErr)
		require.Equal(t, recovery.StateIdle, state)
		requireState(t, f, recovery.StateIdle)
	})

	t.Run("wrong otp stays requested and allows retry", func(t *testing.T) {
		f, gw, _ := newFlow(t)
		ctx := context.Background()
		_, err := f.RequestOTP(ctx, "a@x.com")
		require.NoError(t, err)

		gw.verifyErr = apiErr
		state, err := f.VerifyOTP(ctx, "000000")
		require.ErrorIs(t, err, apiErr)
		require.Equal(t, recovery.StateOtpRequested, state)
		requireState(t, f, recovery.StateOtpRequested)

		gw.verifyErr = nil
		state, err = f.VerifyOTP(ctx, "123456")
		require.NoError(t, err)
		require.Equal(t, recovery.StateOtpVerified, state)
	})

	t.Run("reset failure stays verified", func(t *testing.T) {
		f, gw, _ := newFlow(t)
		ctx := context.Background()
		_, err := f.RequestOTP(ctx, "a@x.com")
		require.NoError(t, err)
		_, err = f.VerifyOTP(ctx, "123456")
		require.NoError(t, err)

		gw.resetErr = apiErr
		state, err := f.ResetPassword(ctx, "pw1234")
		require.ErrorIs(t, err, apiErr)
		require.Equal(t, recovery.StateOtpVerified, state)
		requireState(t, f, recovery.StateOtpVerified)
	})

	t.Run("failed new request keeps earlier flow", func(t *testing.T) {
		f, gw, _ := newFlow(t)
		ctx := context.Background()
		_, err := f.RequestOTP(ctx, "a@x.com")
		require.NoError(t, err)
		_, err = f.VerifyOTP(ctx, "123456")
		require.NoError(t, err)

		gw.forgotErr = apiErr
		state, err := f.RequestOTP(ctx, "b@x.com")
		require.Error(t, err)
		require.Equal(t, recovery.StateOtpVerified, state)
		email, _ := f.Email(ctx)
		require.Equal(t, "a@x.com", email)
	})
}

func TestFlow_RestartAndAbandon(t *testing.T) {
	f, _, _ := newFlow(t)
	ctx := context.Background()

	_, err := f.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = f.VerifyOTP(ctx, "123456")
	require.NoError(t, err)

	state, err := f.RequestOTP(ctx, "b@x.com")
	require.NoError(t, err)
	require.Equal(t, recovery.StateOtpRequested, state)
	email, _ := f.Email(ctx)
	require.Equal(t, "b@x.com", email)

	require.NoError(t, f.Abandon(ctx))
	require.NoError(t, f.Abandon(ctx))
	requireState(t, f, recovery.StateIdle)
}

func TestFlow_NeverTouchesSession(t *testing.T) {
	f, _, store := newFlow(t)
	ctx := context.Background()

	sessions := session.New(store)
	_, err := sessions.Establish(ctx, session.LoginResult{
		User:    &users.User{ID: 1, Email: "a@x.com", Role: users.RoleUser},
		Access:  "a",
		Refresh: "r",
	})
	require.NoError(t, err)

	_, err = f.RequestOTP(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = f.VerifyOTP(ctx, "123456")
	require.NoError(t, err)
	_, err = f.ResetPassword(ctx, "pw1234")
	require.NoError(t, err)
	require.NoError(t, f.Abandon(ctx))

	_, ok := sessions.Current(ctx)
	require.True(t, ok)
}

func TestFlow_NoSessionFromFailedRecovery(t *testing.T) {
	f, gw, store := newFlow(t)
	ctx := context.Background()
	gw.resetErr = fmt.Errorf("expired")

	_, _ = f.ResetPassword(ctx, "pw1234")
	_, ok := session.New(store).Current(ctx)
	require.False(t, ok)
}

func TestState_String(t *testing.T) {
	require.Equal(t, "idle", recovery.StateIdle.String())
	require.Equal(t, "completed", recovery.StateCompleted.String())
}
