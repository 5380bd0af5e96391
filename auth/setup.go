package auth

import "sync/atomic"

// SetupState caches whether an admin account exists. It starts false, flips
// to true once, and is never reset. It only saves a database round trip; the
// unique username index is what stops two concurrent setups from both winning.
type SetupState struct {
	adminExists atomic.Bool
}

func (s *SetupState) AdminExists() bool {
	return s.adminExists.Load()
}

func (s *SetupState) MarkAdminExists() {
	s.adminExists.Store(true)
}
