// Package login is a worked example extent, a direct port of the reference
// runtime's canonical LoginExtent sample: a login form wired up as a small
// behavior graph instead of as a tangle of view-controller callbacks. It
// exists to exercise internal/bg end to end (state coalescing, a moment
// click signal, a derived-validity behavior, and a side effect that
// simulates an asynchronous network call) and is demonstrated by
// cmd/bgdemo.
package login

import (
	"strings"

	"github.com/behaviorgraph/bg/internal/bg"
)

// Extent is a login form: two text fields, a submit click, and the
// derived state a view would bind to (field validity, whether the submit
// button should be enabled, and whether a login attempt is in flight).
type Extent struct {
	*bg.Extent

	Email    *bg.State[string]
	Password *bg.State[string]

	LoginClick *bg.Resource

	EmailValid    *bg.State[bool]
	PasswordValid *bg.State[bool]
	LoginEnabled  *bg.State[bool]
	LoggingIn     *bg.State[bool]

	// AuthResult is fed directly from the action that completes the
	// simulated network call; it has no supplier behavior, the same way
	// LoginClick doesn't, so the action queued by the authenticate side
	// effect can update it without going through a behavior.
	AuthResult *bg.Moment[bool]

	LoginComplete *bg.Moment[bool]

	// AuthenticateFunc performs the actual login check. It is called from
	// a SideEffect, never from a behavior's run block, since it may block.
	AuthenticateFunc func(email, password string) bool
}

// New builds a login extent attached to g but does not add it to the
// graph; call AddToGraph once its AuthenticateFunc (and any other wiring)
// is set.
func New(g *bg.Graph, debugName string) *Extent {
	e := &Extent{
		Extent:           bg.NewExtent(g, debugName),
		AuthenticateFunc: func(email, password string) bool { return email != "" && password != "" },
	}

	e.Email = bg.NewState(e.Extent, "", debugName+".email")
	e.Password = bg.NewState(e.Extent, "", debugName+".password")
	e.LoginClick = bg.NewResource(e.Extent, debugName+".loginClick")
	e.EmailValid = bg.NewState(e.Extent, false, debugName+".emailValid")
	e.PasswordValid = bg.NewState(e.Extent, false, debugName+".passwordValid")
	e.LoginEnabled = bg.NewState(e.Extent, false, debugName+".loginEnabled")
	e.LoggingIn = bg.NewState(e.Extent, false, debugName+".loggingIn")
	e.AuthResult = bg.NewMoment[bool](e.Extent, debugName+".authResult")
	e.LoginComplete = bg.NewMoment[bool](e.Extent, debugName+".loginComplete")

	e.Extent.NewBehavior(
		[]bg.Node{e.Email},
		[]bg.Node{e.EmailValid},
		func() { e.EmailValid.UpdateValue(isValidEmail(e.Email.Value())) },
		debugName+".emailValidBehavior",
	)

	e.Extent.NewBehavior(
		[]bg.Node{e.Password},
		[]bg.Node{e.PasswordValid},
		func() { e.PasswordValid.UpdateValue(len(e.Password.Value()) >= 8) },
		debugName+".passwordValidBehavior",
	)

	e.Extent.NewBehavior(
		[]bg.Node{e.EmailValid, e.PasswordValid, e.LoggingIn},
		[]bg.Node{e.LoginEnabled},
		func() {
			e.LoginEnabled.UpdateValue(e.EmailValid.Value() && e.PasswordValid.Value() && !e.LoggingIn.Value())
		},
		debugName+".loginEnabledBehavior",
	)

	// loggingIn is the single supplier for LoggingIn: a click starts it (this
	// checks EmailValid/PasswordValid directly rather than the derived
	// LoginEnabled, which is itself one of this behavior's subsequents), and
	// an auth result, success or failure, ends it.
	e.Extent.NewBehavior(
		[]bg.Node{e.LoginClick, e.AuthResult, e.EmailValid, e.PasswordValid},
		[]bg.Node{e.LoggingIn},
		func() {
			if e.LoginClick.JustUpdated() && e.EmailValid.Value() && e.PasswordValid.Value() && !e.LoggingIn.Value() {
				e.LoggingIn.UpdateValue(true)
			}
			if e.AuthResult.JustUpdated() {
				e.LoggingIn.UpdateValue(false)
			}
		},
		debugName+".loggingInBehavior",
	)

	e.Extent.NewBehavior(
		[]bg.Node{e.AuthResult},
		[]bg.Node{e.LoginComplete},
		func() {
			if e.AuthResult.JustUpdated() {
				e.LoginComplete.UpdateValue(e.AuthResult.Value())
			}
		},
		debugName+".loginCompleteBehavior",
	)

	e.Extent.NewBehavior(
		[]bg.Node{e.LoggingIn, e.Email, e.Password},
		nil,
		func() {
			if !e.LoggingIn.JustUpdatedTo(true) {
				return
			}
			email, password := e.Email.Value(), e.Password.Value()
			e.SideEffect(debugName+".authenticate", func() {
				success := e.AuthenticateFunc(email, password)
				e.Action(debugName+".authResult", false, func() {
					e.AuthResult.UpdateValue(success)
				})
			})
		},
		debugName+".authenticateBehavior",
	)

	return e
}

func isValidEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && strings.IndexByte(s[at+1:], '.') > 0
}
