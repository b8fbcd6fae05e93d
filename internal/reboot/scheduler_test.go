package reboot

import (
	"testing"
	"time"
)

func TestParsePolicyDaily(t *testing.T) {
	p := ParsePolicy("04:00")
	if p.Kind != Daily || p.Hour != 4 || p.Minute != 0 {
		t.Fatalf("got %+v", p)
	}
}

func TestParsePolicyIntervalUnits(t *testing.T) {
	cases := map[string]int64{
		"2h": 120,
		"1d": 1440,
		"1w": 10080,
		"1m": 43200,
		"3":  3 * 1440,
	}
	for raw, want := range cases {
		p := ParsePolicy(raw)
		if p.Kind != Interval || p.IntervalMinutes != want {
			t.Errorf("ParsePolicy(%q) = %+v, want IntervalMinutes=%d", raw, p, want)
		}
	}
}

func TestParsePolicyDisabled(t *testing.T) {
	for _, raw := range []string{"", "garbage", "25:00", "1x"} {
		if ParsePolicy(raw).Kind != Disabled {
			t.Errorf("ParsePolicy(%q) should be disabled", raw)
		}
	}
}

func TestParsePolicyOverflowRejected(t *testing.T) {
	p := ParsePolicy("99999999999999999999d")
	if p.Kind != Disabled {
		t.Fatalf("overflow interval should be rejected, got %+v", p)
	}
}

func TestSchedulerDailyFires(t *testing.T) {
	s := NewScheduler("04:00")
	wall := time.Date(2026, 1, 1, 4, 0, 0, 0, time.UTC)
	if !s.Fire(100, wall) {
		t.Fatalf("expected fire at 04:00")
	}
	if s.Fire(100, wall.Add(time.Minute)) {
		t.Fatalf("should not fire at 04:01")
	}
}

func TestSchedulerIntervalFires(t *testing.T) {
	s := NewScheduler("2h")
	if s.Fire(0, time.Now()) {
		t.Fatalf("should never fire at uptime 0")
	}
	if !s.Fire(120, time.Now()) {
		t.Fatalf("expected fire at 120 minutes uptime (2h)")
	}
	if s.Fire(119, time.Now()) {
		t.Fatalf("should not fire at 119 minutes")
	}
}

func TestSchedulerDisabledNeverFires(t *testing.T) {
	s := NewScheduler("")
	if s.Fire(1440, time.Now()) {
		t.Fatalf("disabled scheduler should never fire")
	}
}

func TestShouldCheckGate(t *testing.T) {
	if !ShouldCheck(0) || !ShouldCheck(60) || !ShouldCheck(120) {
		t.Fatalf("expected minute boundaries to pass the gate")
	}
	if ShouldCheck(1) || ShouldCheck(59) {
		t.Fatalf("expected non-boundaries to fail the gate")
	}
}
