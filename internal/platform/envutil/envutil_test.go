package envutil

import (
	"testing"
	"time"
)

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("TEST_TTL", "90")
	if got := Duration("TEST_TTL", time.Minute); got != 90*time.Second {
		t.Fatalf("seconds: got=%s", got)
	}
	t.Setenv("TEST_TTL", "5m")
	if got := Duration("TEST_TTL", time.Minute); got != 5*time.Minute {
		t.Fatalf("go syntax: got=%s", got)
	}
	t.Setenv("TEST_TTL", "soon")
	if got := Duration("TEST_TTL", time.Minute); got != time.Minute {
		t.Fatalf("fallback: got=%s", got)
	}
}

func TestListDropsBlanks(t *testing.T) {
	t.Setenv("TEST_LIST", " a, ,b ,")
	got := List("TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected list: %#v", got)
	}
}

func TestBoolDefaults(t *testing.T) {
	t.Setenv("TEST_FLAG", "")
	if !Bool("TEST_FLAG", true) {
		t.Fatal("expected default true")
	}
	t.Setenv("TEST_FLAG", "off")
	if Bool("TEST_FLAG", true) {
		t.Fatal("expected false")
	}
}
