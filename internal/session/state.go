package session

import (
	"fmt"

	"github.com/libradesk/libradesk/internal/model"
)

// State is the single source of truth for "who is logged in".
// Authenticated is true iff Token is present and not yet proven expired.
type State struct {
	Identity      *model.Identity
	Token         string
	Authenticated bool
	Loading       bool
	Err           string
}

// action is a sealed tagged union; reduce switches over every variant so
// adding one without handling it panics loudly in tests.
type action interface{ isAction() }

type authStarted struct{}

type authSucceeded struct {
	token    string
	identity model.Identity
}

type authFailed struct{ msg string }

type loggedOut struct{}

type decodeFailed struct{ msg string }

func (authStarted) isAction()   {}
func (authSucceeded) isAction() {}
func (authFailed) isAction()    {}
func (loggedOut) isAction()     {}
func (decodeFailed) isAction()  {}

// reduce is the only way session state changes; every transition replaces
// the whole state so a failure can never leave it half-updated.
func reduce(s State, a action) State {
	switch a := a.(type) {
	case authStarted:
		return State{Loading: true}
	case authSucceeded:
		identity := a.identity
		return State{
			Identity:      &identity,
			Token:         a.token,
			Authenticated: true,
		}
	case authFailed:
		return State{Err: a.msg}
	case loggedOut:
		return State{}
	case decodeFailed:
		// distinct from "no session": the error survives so the caller
		// can surface why the restored session was rejected
		return State{Err: a.msg}
	default:
		panic(fmt.Sprintf("session: unknown action %T", a))
	}
}
