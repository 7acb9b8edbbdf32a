package config

import (
	"testing"
	"time"
)

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("GC_TEST_KEY", "value")
	if got := envOrDefault("GC_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("expected env value, got %s", got)
	}
	if got := envOrDefault("GC_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestDurationEnvOrDefault(t *testing.T) {
	t.Setenv("GC_TEST_DUR", "2m")
	if got := durationEnvOrDefault("GC_TEST_DUR", time.Second); got != 2*time.Minute {
		t.Fatalf("expected 2m, got %s", got)
	}

	t.Setenv("GC_TEST_DUR", "-5s")
	if got := durationEnvOrDefault("GC_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("expected fallback for non-positive duration, got %s", got)
	}
}

func TestIntEnvOrDefault(t *testing.T) {
	t.Setenv("GC_TEST_INT", "8080")
	if got := intEnvOrDefault("GC_TEST_INT", 1); got != 8080 {
		t.Fatalf("expected 8080, got %d", got)
	}

	t.Setenv("GC_TEST_INT", "zero")
	if got := intEnvOrDefault("GC_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback, got %d", got)
	}
}

func TestBoolEnvOrDefault(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "YES": true,
		"0": false, "false": false, "no": false,
		"sometimes": true, // falls back to default
	}
	for raw, want := range cases {
		t.Setenv("GC_TEST_BOOL", raw)
		if got := boolEnvOrDefault("GC_TEST_BOOL", true); got != want {
			t.Fatalf("%q: expected %v, got %v", raw, want, got)
		}
	}
}
