package delivery

import (
	"context"
	"sync"
)

// RenderRequest is what a unit hands to the external ad runtime
type RenderRequest struct {
	ContainerID string `json:"container_id"`
	Slot        string `json:"slot"`
	Format      string `json:"format"`
	Responsive  bool   `json:"responsive"`
	ClientID    string `json:"client_id,omitempty"`
}

// Runtime abstracts the external ad runtime's command queue
type Runtime interface {
	EnqueueRender(ctx context.Context, req RenderRequest) error
}

// CommandQueue mirrors the push-based command list ad runtimes expose.
// The underlying list is initialized lazily and exactly once, no matter
// how many units enqueue concurrently.
type CommandQueue struct {
	once sync.Once
	mu   sync.Mutex
	cmds []RenderRequest
}

func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

func (q *CommandQueue) init() {
	q.once.Do(func() {
		q.cmds = make([]RenderRequest, 0, 8)
	})
}

func (q *CommandQueue) EnqueueRender(_ context.Context, req RenderRequest) error {
	q.init()
	q.mu.Lock()
	q.cmds = append(q.cmds, req)
	q.mu.Unlock()
	return nil
}

// Commands returns a copy of everything enqueued so far
func (q *CommandQueue) Commands() []RenderRequest {
	q.init()
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]RenderRequest, len(q.cmds))
	copy(out, q.cmds)
	return out
}
