package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case term := <-ch:
		return term
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for settled term")
		return ""
	}
}

func assertQuiet(t *testing.T, ch <-chan string, d time.Duration) {
	t.Helper()
	select {
	case term, ok := <-ch:
		if ok {
			t.Fatalf("unexpected settled term %q", term)
		}
	case <-time.After(d):
	}
}

func TestDebouncerEmitsLastInput(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	for _, term := range []string{"i", "in", "inc", "ince"} {
		d.Input(term)
	}

	assert.Equal(t, "ince", receive(t, d.Settled()))
	assertQuiet(t, d.Settled(), 100*time.Millisecond)
}

func TestDebouncerSkipsRepeatedTerm(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Input("dune")
	assert.Equal(t, "dune", receive(t, d.Settled()))

	d.Input("dun")
	d.Input("dune")
	assertQuiet(t, d.Settled(), 100*time.Millisecond)

	d.Input("")
	assert.Equal(t, "", receive(t, d.Settled()))
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(time.Second)
	d.Input("pending")
	d.Stop()
	d.Stop()
	d.Input("after stop")

	_, ok := <-d.Settled()
	require.False(t, ok)
}

func TestDebouncerDefaultWindow(t *testing.T) {
	d := NewDebouncer(0)
	defer d.Stop()
	assert.Equal(t, DebounceWindow, d.window)
}
