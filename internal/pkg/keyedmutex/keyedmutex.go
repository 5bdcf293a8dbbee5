package keyedmutex

import (
	"fmt"
	"sync"
)

// KeyedMutex provides one mutex per key so that check-then-write
// sequences on a single entity serialize while unrelated entities
// proceed in parallel. Mutexes are created on first use and never
// removed; the key space (member and loan IDs) is bounded.
type KeyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

// New creates an empty keyed mutex
func New() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the mutex for key and returns its unlock function
func (m *KeyedMutex) Lock(key string) func() {
	v, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// MemberKey builds the lock key guarding a member's balance
func MemberKey(memberID uint) string {
	return fmt.Sprintf("member:%d", memberID)
}

// LoanKey builds the lock key guarding a loan's remaining balance
func LoanKey(loanID uint) string {
	return fmt.Sprintf("loan:%d", loanID)
}
