package marketplace

import (
	"fmt"
	"sync"
)

// guard admits one state changing operation at a time. A call made while an
// operation is executing is refused, whichever context it carries, so that a
// contract called back during a settlement cannot act on half applied state.
type guard struct {
	mu      sync.Mutex
	current string
}

func (g *guard) enter(operation string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current != "" {
		return nil, fmt.Errorf("%w: %s while %s is executing", ErrReentrantCall, operation, g.current)
	}
	g.current = operation

	return g.exit, nil
}

func (g *guard) exit() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.current = ""
}
