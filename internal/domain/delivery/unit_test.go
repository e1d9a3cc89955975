package delivery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// funcRuntime adapts a function to Runtime so tests can make the enqueue
// fail or panic on demand.
type funcRuntime func(ctx context.Context, req RenderRequest) error

func (f funcRuntime) EnqueueRender(ctx context.Context, req RenderRequest) error {
	return f(ctx, req)
}

func waitForState(t *testing.T, u *Unit, want UnitState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if u.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("unit state = %q, want %q", u.State(), want)
}

func TestUnit_RendersAfterDebounce(t *testing.T) {
	queue := NewCommandQueue()
	unit := NewUnit(queue, RenderRequest{Slot: "1234", Format: "auto", Responsive: true}, "")

	if unit.State() != StateIdle {
		t.Fatalf("new unit state = %q, want idle", unit.State())
	}

	unit.Mount(context.Background(), 10*time.Millisecond)
	waitForState(t, unit, StateRendered)

	cmds := queue.Commands()
	if len(cmds) != 1 {
		t.Fatalf("queue has %d commands, want 1", len(cmds))
	}
	if cmds[0].Slot != "1234" {
		t.Errorf("enqueued slot = %q, want 1234", cmds[0].Slot)
	}
	if cmds[0].ContainerID != unit.ContainerID() {
		t.Errorf("enqueued container %q does not match unit %q", cmds[0].ContainerID, unit.ContainerID())
	}
}

func TestUnit_RuntimeErrorBecomesState(t *testing.T) {
	failing := funcRuntime(func(context.Context, RenderRequest) error {
		return errors.New("runtime rejected")
	})
	unit := NewUnit(failing, RenderRequest{Slot: "1"}, "fallback content")

	unit.Mount(context.Background(), time.Millisecond)
	waitForState(t, unit, StateErrored)

	if unit.Fallback() != "fallback content" {
		t.Errorf("errored unit must expose fallback content")
	}
}

func TestUnit_RuntimePanicBecomesState(t *testing.T) {
	panicking := funcRuntime(func(context.Context, RenderRequest) error {
		panic("runtime exploded")
	})
	unit := NewUnit(panicking, RenderRequest{Slot: "1"}, "")

	// must not panic the caller
	unit.Mount(context.Background(), time.Millisecond)
	waitForState(t, unit, StateErrored)
}

func TestUnit_NilRuntime(t *testing.T) {
	unit := NewUnit(nil, RenderRequest{Slot: "1"}, "")
	unit.Mount(context.Background(), time.Millisecond)
	waitForState(t, unit, StateErrored)
}

func TestUnit_CloseCancelsPendingRender(t *testing.T) {
	queue := NewCommandQueue()
	unit := NewUnit(queue, RenderRequest{Slot: "1"}, "")

	unit.Mount(context.Background(), 50*time.Millisecond)
	unit.Close()

	time.Sleep(150 * time.Millisecond)
	if got := len(queue.Commands()); got != 0 {
		t.Errorf("enqueue fired after Close, %d commands", got)
	}
	if unit.State() != StateIdle {
		t.Errorf("closed unit state = %q, want idle", unit.State())
	}
}

func TestUnit_MountIsIdempotent(t *testing.T) {
	queue := NewCommandQueue()
	unit := NewUnit(queue, RenderRequest{Slot: "1"}, "")

	unit.Mount(context.Background(), time.Millisecond)
	waitForState(t, unit, StateRendered)
	unit.Mount(context.Background(), time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	if got := len(queue.Commands()); got != 1 {
		t.Errorf("re-mount enqueued again, %d commands", got)
	}
}

func TestUnit_ContainerIDsUnique(t *testing.T) {
	queue := NewCommandQueue()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		unit := NewUnit(queue, RenderRequest{Slot: "1"}, "")
		id := unit.ContainerID()
		if !strings.HasPrefix(id, "ad-unit-") {
			t.Fatalf("container id %q missing prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate container id %q", id)
		}
		seen[id] = true
	}
}

func TestCommandQueue_ConcurrentEnqueue(t *testing.T) {
	queue := NewCommandQueue()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				queue.EnqueueRender(context.Background(), RenderRequest{Slot: "x"})
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	if got := len(queue.Commands()); got != 1000 {
		t.Errorf("queue has %d commands, want 1000", got)
	}
}
