package compiler

import (
	"testing"
	"time"
)

// collect drains firings for window and returns how many of them settle.
func collect(d *debouncer, window time.Duration) map[string]int {
	settled := make(map[string]int)
	deadline := time.After(window)
	for {
		select {
		case f := <-d.fire:
			if d.settle(f) {
				settled[f.name]++
			}
		case <-deadline:
			return settled
		}
	}
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(20*time.Millisecond, done)
	defer d.stop()

	for i := 0; i < 5; i++ {
		d.touch("room01.tmx")
	}
	d.touch("room02.tmx")

	got := collect(d, 200*time.Millisecond)
	if got["room01.tmx"] != 1 || got["room02.tmx"] != 1 || len(got) != 2 {
		t.Errorf("settled = %v, want one per file", got)
	}
}

func TestDebouncerDropsTimerFiredBeforeTouch(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(time.Millisecond, done)
	defer d.stop()

	d.touch("room01.tmx")
	// Nobody reads d.fire yet, so the first timer fires and blocks on send.
	time.Sleep(30 * time.Millisecond)
	d.touch("room01.tmx")

	if got := collect(d, 200*time.Millisecond); got["room01.tmx"] != 1 {
		t.Errorf("room01.tmx settled %d times, want 1", got["room01.tmx"])
	}
}

func TestDebouncerSettleGenerations(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(time.Hour, done)
	defer d.stop()

	d.touch("a.tmx")
	d.touch("a.tmx")

	if d.settle(firing{name: "a.tmx", gen: 1}) {
		t.Error("superseded generation settled")
	}
	if !d.settle(firing{name: "a.tmx", gen: 2}) {
		t.Error("latest generation did not settle")
	}
	if d.settle(firing{name: "a.tmx", gen: 2}) {
		t.Error("generation settled twice")
	}
	if d.settle(firing{name: "b.tmx", gen: 1}) {
		t.Error("untouched file settled")
	}
}
