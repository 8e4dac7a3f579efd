package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behaviorgraph/bg/internal/bg"
)

// newTestExtent builds and admits a login extent, wiring a recorder
// behavior that appends every LoginComplete firing to *completions — moments
// clear once their event ends, so tests that care whether/how LoginComplete
// fired must observe it from within the same event, not by reading
// e.LoginComplete.Value() afterward.
func newTestExtent(t *testing.T, g *bg.Graph, authenticate func(email, password string) bool, completions *[]bool) *Extent {
	t.Helper()
	var e *Extent
	g.Action("setup", func() {
		e = New(g, "login")
		if authenticate != nil {
			e.AuthenticateFunc = authenticate
		}
		if completions != nil {
			e.NewBehavior([]bg.Node{e.LoginComplete}, nil, func() {
				if e.LoginComplete.JustUpdated() {
					*completions = append(*completions, e.LoginComplete.Value())
				}
			}, "recorder")
		}
		e.AddToGraph()
	})
	return e
}

func TestValidityTracksFieldContents(t *testing.T) {
	g := bg.NewGraph()
	e := newTestExtent(t, g, nil, nil)

	assert.False(t, e.EmailValid.Value())
	assert.False(t, e.LoginEnabled.Value())

	g.Action("type email", func() { e.Email.UpdateValue("a@b.com") })
	assert.True(t, e.EmailValid.Value())
	assert.False(t, e.LoginEnabled.Value(), "password is still empty")

	g.Action("type password", func() { e.Password.UpdateValue("longenough") })
	assert.True(t, e.PasswordValid.Value())
	assert.True(t, e.LoginEnabled.Value())
}

func TestSuccessfulLoginCompletes(t *testing.T) {
	g := bg.NewGraph()
	var completions []bool
	e := newTestExtent(t, g, func(email, password string) bool { return true }, &completions)

	g.Action("fill form", func() {
		e.Email.UpdateValue("a@b.com")
		e.Password.UpdateValue("longenough")
	})
	require.True(t, e.LoginEnabled.Value())

	g.Action("click", func() { e.LoginClick.Update() })
	require.Equal(t, []bool{true}, completions, "the simulated network call should complete within the same drain")
	assert.False(t, e.LoggingIn.Value(), "loggingIn should have been cleared once the result came back")
	assert.True(t, e.LoginEnabled.Value(), "a successful attempt should leave the form enabled again")
}

func TestFailedLoginReEnablesForm(t *testing.T) {
	g := bg.NewGraph()
	var completions []bool
	e := newTestExtent(t, g, func(email, password string) bool { return false }, &completions)

	g.Action("fill form", func() {
		e.Email.UpdateValue("a@b.com")
		e.Password.UpdateValue("longenough")
	})
	g.Action("click", func() { e.LoginClick.Update() })

	require.Equal(t, []bool{false}, completions)
	assert.False(t, e.LoggingIn.Value())
	assert.True(t, e.LoginEnabled.Value(), "a failed attempt should leave the form usable again")
}

func TestClickIsIgnoredWhileFormInvalid(t *testing.T) {
	g := bg.NewGraph()
	called := false
	e := newTestExtent(t, g, func(email, password string) bool { called = true; return true }, nil)

	g.Action("click with empty form", func() { e.LoginClick.Update() })
	assert.False(t, called, "authenticate must not run for an invalid form")
	assert.False(t, e.LoggingIn.Value())
}
