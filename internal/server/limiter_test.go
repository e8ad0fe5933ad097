package server

import (
	"testing"
	"time"
)

func TestLimiter_PerClient(t *testing.T) {
	l := NewLimiter(1, 2)
	at := time.Now()

	for i := 0; i < 2; i++ {
		if !l.allowAt("10.0.0.1", at) {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if l.allowAt("10.0.0.1", at) {
		t.Error("request beyond burst allowed")
	}
	if !l.allowAt("10.0.0.2", at) {
		t.Error("second client denied by first client's bucket")
	}
	if !l.allowAt("10.0.0.1", at.Add(time.Second)) {
		t.Error("request denied after refill")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow("client") {
			t.Fatalf("request %d denied with limiting disabled", i)
		}
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l := NewLimiter(10, 10)
	start := time.Now()
	l.allowAt("old", start)
	l.allowAt("new", start.Add(time.Minute))

	if n := l.Sweep(start.Add(30 * time.Second)); n != 1 {
		t.Errorf("Sweep() removed %d, want 1", n)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}
