// Package recovery drives the forgot-password sequence: request an OTP, verify it, then set a
// new password. Progress is kept in the browser's client storage between page requests.
package recovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/storage"
)

// Client storage keys owned by the recovery flow.
const (
	KeyEmail = "email"
	KeyStep  = "recovery_step"
)

const (
	stepOtpRequested = "otp_requested"
	stepOtpVerified  = "otp_verified"
)

type State int

const (
	StateIdle State = iota
	StateOtpRequested
	StateOtpVerified
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOtpRequested:
		return "otp_requested"
	case StateOtpVerified:
		return "otp_verified"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Gateway is the part of the backend API the flow calls.
type Gateway interface {
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
}

type Flow struct {
	store storage.Store
	gw    Gateway
}

func New(store storage.Store, gw Gateway) *Flow {
	return &Flow{store: store, gw: gw}
}

// State reads the persisted step. Completed is never persisted; a finished flow reads as Idle.
func (f *Flow) State(ctx context.Context) (State, error) {
	email, ok, err := f.store.Get(ctx, KeyEmail)
	if err != nil {
		return StateIdle, errors.Wrapf(err, "[recovery State] failed to read pending email")
	}
	if !ok || email == "" {
		return StateIdle, nil
	}

	step, _, err := f.store.Get(ctx, KeyStep)
	if err != nil {
		return StateIdle, errors.Wrapf(err, "[recovery State] failed to read recovery step")
	}
	if step == stepOtpVerified {
		return StateOtpVerified, nil
	}
	return StateOtpRequested, nil
}

// Email returns the address undergoing recovery, if any.
func (f *Flow) Email(ctx context.Context) (string, bool) {
	email, ok, err := f.store.Get(ctx, KeyEmail)
	if err != nil {
		log.Warn().Err(err).Msg("recovery: client storage read failed")
		return "", false
	}
	return email, ok && email != ""
}

// RequestOTP asks the backend to send an OTP to email. It may be called from any state and
// restarts the flow on success; on failure the previous state is kept.
func (f *Flow) RequestOTP(ctx context.Context, email string) (State, error) {
	email = strings.TrimSpace(email)
	if err := f.gw.ForgotPassword(ctx, email); err != nil {
		return f.stateAfterFailure(ctx), err
	}

	if err := f.store.Set(ctx, map[string]string{KeyEmail: email, KeyStep: stepOtpRequested}); err != nil {
		return StateIdle, errors.Wrapf(err, "[recovery RequestOTP] failed to persist pending email")
	}
	return StateOtpRequested, nil
}

// VerifyOTP checks otp against the pending email. Only legal in OtpRequested.
func (f *Flow) VerifyOTP(ctx context.Context, otp string) (State, error) {
	state, err := f.State(ctx)
	if err != nil {
		return state, err
	}
	switch state {
	case StateIdle:
		return state, errors.ErrNoPendingReset
	case StateOtpVerified:
		return state, fmt.Errorf("%w: otp already verified", errors.ErrRecoveryOutOfOrder)
	}

	email, _ := f.Email(ctx)
	if err := f.gw.VerifyOTP(ctx, email, strings.TrimSpace(otp)); err != nil {
		return StateOtpRequested, err
	}

	if err := f.store.Set(ctx, map[string]string{KeyStep: stepOtpVerified}); err != nil {
		return StateOtpRequested, errors.Wrapf(err, "[recovery VerifyOTP] failed to persist step")
	}
	return StateOtpVerified, nil
}

// ResetPassword sets the new password for the pending email and ends the flow. Only legal in
// OtpVerified.
func (f *Flow) ResetPassword(ctx context.Context, newPassword string) (State, error) {
	state, err := f.State(ctx)
	if err != nil {
		return state, err
	}
	switch state {
	case StateIdle:
		return state, errors.ErrNoPendingReset
	case StateOtpRequested:
		return state, fmt.Errorf("%w: otp not verified", errors.ErrRecoveryOutOfOrder)
	}

	email, _ := f.Email(ctx)
	if err := f.gw.ResetPassword(ctx, email, newPassword); err != nil {
		return StateOtpVerified, err
	}

	if err := f.store.Remove(ctx, KeyEmail, KeyStep); err != nil {
		log.Err(err).Msg("recovery: password reset but pending email not cleared")
	}
	return StateCompleted, nil
}

// Abandon drops any pending flow.
func (f *Flow) Abandon(ctx context.Context) error {
	if err := f.store.Remove(ctx, KeyEmail, KeyStep); err != nil {
		return errors.Wrapf(err, "[recovery Abandon] failed to clear pending email")
	}
	return nil
}

func (f *Flow) stateAfterFailure(ctx context.Context) State {
	state, err := f.State(ctx)
	if err != nil {
		return StateIdle
	}
	return state
}
