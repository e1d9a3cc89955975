package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UnitState tracks a render unit through its lifecycle
type UnitState string

const (
	StateIdle      UnitState = "idle"
	StateRequested UnitState = "requested"
	StateRendered  UnitState = "rendered"
	StateErrored   UnitState = "errored"
)

// Unit drives one ad container through its render lifecycle. Mounting
// schedules a debounced enqueue against the runtime; a successful enqueue
// moves the unit to Rendered, any failure or panic moves it to Errored.
// Errored is terminal and the unit exposes its fallback content. Rendered
// means the runtime accepted the request, not that a creative filled.
type Unit struct {
	mu          sync.Mutex
	state       UnitState
	containerID string
	req         RenderRequest
	runtime     Runtime
	timer       *time.Timer
	closed      bool
	fallback    string
}

// NewUnit creates an idle unit for the given render request. The request's
// container id is assigned here so every unit on a page is unique.
func NewUnit(runtime Runtime, req RenderRequest, fallback string) *Unit {
	id := "ad-unit-" + uuid.NewString()
	req.ContainerID = id
	return &Unit{
		state:       StateIdle,
		containerID: id,
		req:         req,
		runtime:     runtime,
		fallback:    fallback,
	}
}

// Mount schedules the render enqueue after the debounce delay. Calling
// Mount on a unit that already left Idle is a no-op.
func (u *Unit) Mount(ctx context.Context, debounce time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed || u.state != StateIdle {
		return
	}
	u.timer = time.AfterFunc(debounce, func() {
		u.fire(ctx)
	})
}

func (u *Unit) fire(ctx context.Context) {
	u.mu.Lock()
	if u.closed || u.state != StateIdle {
		u.mu.Unlock()
		return
	}
	u.state = StateRequested
	runtime := u.runtime
	req := u.req
	u.mu.Unlock()

	err := safeEnqueue(ctx, runtime, req)

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("container", u.containerID).Msg("Ad render request failed")
		u.state = StateErrored
		return
	}
	u.state = StateRendered
}

// safeEnqueue converts runtime panics into errors so no failure escapes
// the unit.
func safeEnqueue(ctx context.Context, r Runtime, req RenderRequest) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("ad runtime panic: %v", rec)
		}
	}()
	if r == nil {
		return fmt.Errorf("ad runtime unavailable")
	}
	return r.EnqueueRender(ctx, req)
}

// Close cancels a pending debounce timer, so a closed unit never starts
// its render request. Cancellation is a no-op when the timer has already
// fired; an in-flight enqueue runs to completion but its outcome no longer
// changes the unit's state.
func (u *Unit) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
}

// State returns the unit's current lifecycle state
func (u *Unit) State() UnitState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// ContainerID returns the unit's DOM container id
func (u *Unit) ContainerID() string {
	return u.containerID
}

// Fallback returns the content to show while the unit is not Rendered.
// Empty when the surface has no fallback configured.
func (u *Unit) Fallback() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == StateRendered {
		return ""
	}
	return u.fallback
}
