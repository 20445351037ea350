package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"taxly/models"
)

func newWatcherEnv() *testEnv {
	env := newTestEnv()
	env.ctrl.PollInterval = 10 * time.Millisecond
	return env
}

func TestWatchVerificationDeliversResult(t *testing.T) {
	env := newWatcherEnv()
	ctx := context.Background()
	env.seed(t, &models.FlowSnapshot{
		FlowID:      "f1",
		CurrentStep: models.StepEmailVerification,
		Data:        models.RegistrationData{Email: "jo@taxly.ai"},
	})

	watcher, err := env.ctrl.WatchVerification(ctx, "f1")
	if err != nil {
		t.Fatalf("WatchVerification failed: %v", err)
	}
	defer watcher.Stop()

	// Let a few polls observe "not yet", then flip to verified.
	time.Sleep(35 * time.Millisecond)
	env.accounts.setStatus(&models.VerificationStatus{Verified: true, UserID: "u1", Token: "tok1"})

	select {
	case snap := <-watcher.Result():
		if snap.CurrentStep != models.StepPersonalInfo {
			t.Errorf("step = %s, want %s", snap.CurrentStep, models.StepPersonalInfo)
		}
		if snap.UserID != "u1" {
			t.Errorf("userID = %s, want u1", snap.UserID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never delivered a result")
	}

	select {
	case <-watcher.Done():
	case <-time.After(time.Second):
		t.Fatal("watcher did not tear down after delivering")
	}
}

func TestWatchVerificationStopCancelsTimers(t *testing.T) {
	env := newWatcherEnv()
	ctx := context.Background()
	env.seed(t, &models.FlowSnapshot{
		FlowID:      "f1",
		CurrentStep: models.StepEmailVerification,
		Data:        models.RegistrationData{Email: "jo@taxly.ai"},
	})

	watcher, err := env.ctrl.WatchVerification(ctx, "f1")
	if err != nil {
		t.Fatalf("WatchVerification failed: %v", err)
	}

	watcher.Stop()

	select {
	case <-watcher.Done():
	case <-time.After(time.Second):
		t.Fatal("Stop did not tear the watcher down")
	}
	select {
	case snap := <-watcher.Result():
		t.Fatalf("unexpected result after Stop: step %s", snap.CurrentStep)
	default:
	}
}

func TestWatchVerificationParentContextCancel(t *testing.T) {
	env := newWatcherEnv()
	ctx, cancel := context.WithCancel(context.Background())
	env.seed(t, &models.FlowSnapshot{
		FlowID:      "f1",
		CurrentStep: models.StepEmailVerification,
		Data:        models.RegistrationData{Email: "jo@taxly.ai"},
	})

	watcher, err := env.ctrl.WatchVerification(ctx, "f1")
	if err != nil {
		t.Fatalf("WatchVerification failed: %v", err)
	}

	cancel()
	select {
	case <-watcher.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not stop the watcher")
	}
}

func TestWatchVerificationOffStep(t *testing.T) {
	env := newWatcherEnv()
	ctx := context.Background()
	env.seed(t, &models.FlowSnapshot{FlowID: "f1", CurrentStep: models.StepPlanSelection})

	if _, err := env.ctrl.WatchVerification(ctx, "f1"); !errors.Is(err, ErrNotAwaitingVerification) {
		t.Fatalf("error = %v, want ErrNotAwaitingVerification", err)
	}
}

func TestWatcherCooldownCountsDown(t *testing.T) {
	env := newWatcherEnv()
	ctx := context.Background()
	env.seed(t, &models.FlowSnapshot{
		FlowID:           "f1",
		CurrentStep:      models.StepEmailVerification,
		Data:             models.RegistrationData{Email: "jo@taxly.ai"},
		VerificationSent: true,
		LastSentAt:       time.Now().UnixMilli(),
	})

	watcher, err := env.ctrl.WatchVerification(ctx, "f1")
	if err != nil {
		t.Fatalf("WatchVerification failed: %v", err)
	}
	defer watcher.Stop()

	remaining := watcher.CooldownRemaining()
	if remaining <= 0 || remaining > env.ctrl.Cooldown {
		t.Errorf("initial cooldown = %v, want within (0, %v]", remaining, env.ctrl.Cooldown)
	}
}
