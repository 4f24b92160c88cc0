package distributor

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// vaultLocks serializes invocations per vault. The on-chain host
// guarantees exclusive mutable access to a vault's checkpoint for one
// transaction; off-chain the engine has to provide that boundary
// itself.
type vaultLocks struct {
	mu    sync.Mutex
	locks map[solana.PublicKey]*sync.Mutex
}

// acquire locks the vault's mutex and returns its unlock func.
func (v *vaultLocks) acquire(vault solana.PublicKey) func() {
	v.mu.Lock()
	if v.locks == nil {
		v.locks = make(map[solana.PublicKey]*sync.Mutex)
	}
	l, ok := v.locks[vault]
	if !ok {
		l = &sync.Mutex{}
		v.locks[vault] = l
	}
	v.mu.Unlock()

	l.Lock()
	return l.Unlock
}
