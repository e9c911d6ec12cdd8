package services

import (
	"fmt"
	"sync"
)

// OperationGuard is a per-tenant advisory lock. A capture never reads a
// half-restored table and a restore never races another restore on the
// same tenant. Locks are in-process only; the engine runs as a single
// instance per deployment.
type OperationGuard struct {
	mu   sync.Mutex
	held map[string]string // tenant id -> operation name
}

func NewOperationGuard() *OperationGuard {
	return &OperationGuard{held: make(map[string]string)}
}

// Acquire takes the tenant's lock or fails with ErrTenantBusy naming
// the operation that holds it.
func (g *OperationGuard) Acquire(tenantID, op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if current, ok := g.held[tenantID]; ok {
		return fmt.Errorf("%w (%s)", ErrTenantBusy, current)
	}
	g.held[tenantID] = op
	return nil
}

func (g *OperationGuard) Release(tenantID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, tenantID)
}
