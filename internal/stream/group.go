package stream

import "sync"

// Group is an index of child subscriptions keyed by id, for dynamic fan-in
// joins over a changing set of sources. Sync diffs the wanted id set against
// the running children: new ids are started, vanished ids are cancelled.
// StopAll cancels everything; a Group must always be StopAll'd when its
// parent subscription is torn down, otherwise child queries leak.
type Group struct {
	mu       sync.Mutex
	children map[string]func()
	stopped  bool
}

func NewGroup() *Group {
	return &Group{children: make(map[string]func())}
}

// Sync reconciles the running children with ids. start is invoked for each
// new id and must return the child's cancel function.
func (g *Group) Sync(ids []string, start func(id string) (cancel func())) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	for id, cancel := range g.children {
		if !want[id] {
			cancel()
			delete(g.children, id)
		}
	}
	for _, id := range ids {
		if _, ok := g.children[id]; !ok {
			g.children[id] = start(id)
		}
	}
}

// StopAll cancels every child and refuses further Syncs.
func (g *Group) StopAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	for id, cancel := range g.children {
		cancel()
		delete(g.children, id)
	}
}

func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.children)
}
