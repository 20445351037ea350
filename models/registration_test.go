package models

import (
	"testing"
	"time"
)

func TestCooldownRemaining(t *testing.T) {
	// Millisecond-aligned so elapsed times come out exact.
	now := time.UnixMilli(time.Now().UnixMilli())
	window := 60 * time.Second

	cases := []struct {
		name       string
		lastSentAt int64
		want       time.Duration
	}{
		{"never sent", 0, 0},
		{"just sent", now.UnixMilli(), window},
		{"halfway", now.Add(-30 * time.Second).UnixMilli(), 30 * time.Second},
		{"expired", now.Add(-2 * time.Minute).UnixMilli(), 0},
		{"exactly at boundary", now.Add(-window).UnixMilli(), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := FlowSnapshot{LastSentAt: tc.lastSentAt}
			got := snap.CooldownRemaining(now, window)
			if got != tc.want {
				t.Errorf("CooldownRemaining = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCooldownSurvivesReload(t *testing.T) {
	// The countdown is derived from the persisted send time, so a reload
	// twenty seconds in leaves forty seconds on the clock.
	sent := time.Now().Add(-20 * time.Second)
	snap := FlowSnapshot{LastSentAt: sent.UnixMilli()}

	got := snap.CooldownRemaining(time.Now(), 60*time.Second)
	if got < 39*time.Second || got > 40*time.Second {
		t.Errorf("CooldownRemaining after reload = %v, want about 40s", got)
	}
}
