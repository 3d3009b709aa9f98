package controller

import (
	"golang.org/x/sync/semaphore"

	"github.com/tphakala/retinascan/internal/errors"
)

// Action names a guarded user action.
type Action string

const (
	ActionCheckAuth Action = "check-auth"
	ActionLogin     Action = "login"
	ActionRegister  Action = "register"
	ActionLogout    Action = "logout"
	ActionAnalyze   Action = "analyze"
)

// ErrBusy is returned when the same action is already in flight.
var ErrBusy = errors.Newf("action already in progress").
	Component("controller").
	Category(errors.CategoryState).
	Build()

// guards holds one single-slot semaphore per action.
type guards map[Action]*semaphore.Weighted

func newGuards() guards {
	g := make(guards)
	for _, a := range []Action{ActionCheckAuth, ActionLogin, ActionRegister, ActionLogout, ActionAnalyze} {
		g[a] = semaphore.NewWeighted(1)
	}
	return g
}

// tryAcquire never blocks. The returned release must be called exactly once.
func (g guards) tryAcquire(a Action) (release func(), ok bool) {
	sem := g[a]
	if !sem.TryAcquire(1) {
		return nil, false
	}
	return func() { sem.Release(1) }, true
}
