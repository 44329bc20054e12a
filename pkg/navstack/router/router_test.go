package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
)

type screenKey struct {
	Name string
}

func (screenKey) Kind() string { return "screen" }

type otherKey struct{}

func (otherKey) Kind() string { return "other" }

func TestRunUnregisteredScreen(t *testing.T) {
	c := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	err := New(c).Run(navstack.Push(otherKey{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `screen "other" not registered`)
}

func TestRunScreenError(t *testing.T) {
	boom := errors.New("boom")
	c := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	r := New(c).Register("screen", func(navstack.Instruction) (Outcome, error) {
		return Outcome{}, boom
	})

	err := r.Run(navstack.Push(screenKey{"a"}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Backstack().Len(), "the backstack is left alone")
}

func TestRunEmptyHost(t *testing.T) {
	c := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	assert.NoError(t, New(c).Run(navstack.Instruction{}))
}

func TestRunResumesExistingBackstack(t *testing.T) {
	c := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	c.Open(navstack.Push(screenKey{"a"}))
	c.Open(navstack.Push(screenKey{"b"}))

	var shown []string
	r := New(c).Register("screen", func(in navstack.Instruction) (Outcome, error) {
		shown = append(shown, in.Key().(screenKey).Name)
		return Back(), nil
	})

	require.NoError(t, r.Run(navstack.Instruction{}))
	assert.Equal(t, []string{"b", "a"}, shown)
}

func TestRunStopsWhenParentCloses(t *testing.T) {
	closed := false
	c := navstack.NewContainer(navstack.ContainerConfig{
		ID:            "main",
		EmptyBehavior: navstack.CloseParent(),
		OnCloseParent: func(*navstack.Container) { closed = true },
	})

	shows := 0
	r := New(c).Register("screen", func(navstack.Instruction) (Outcome, error) {
		shows++
		return Back(), nil
	})

	require.NoError(t, r.Run(navstack.Push(screenKey{"root"})))
	assert.True(t, closed)
	assert.Equal(t, 1, shows)
	assert.Equal(t, 1, c.Backstack().Len(), "the last entry stays while the parent closes")
}

func TestRunCancelledCloseShowsScreenAgain(t *testing.T) {
	veto := true
	c := navstack.NewContainer(navstack.ContainerConfig{
		ID: "main",
		Interceptors: []navstack.Interceptor{navstack.NewInterceptor(navstack.InterceptorFuncs{
			Name: "unsaved changes",
			OnClose: func(*navstack.InterceptContext, navstack.Instruction) navstack.CloseOutcome {
				if veto {
					veto = false
					return navstack.CancelClose()
				}
				return navstack.AllowClose()
			},
		})},
	})

	shows := 0
	r := New(c).Register("screen", func(navstack.Instruction) (Outcome, error) {
		shows++
		return Back(), nil
	})

	require.NoError(t, r.Run(navstack.Push(screenKey{"editor"})))
	assert.Equal(t, 2, shows)
	assert.True(t, c.Backstack().IsEmpty())
}

func TestStayRefreshesResume(t *testing.T) {
	c := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})

	var seen []int
	r := New(c).Register("screen", func(in navstack.Instruction) (Outcome, error) {
		page, _ := Resume[int](in)
		seen = append(seen, page)
		if page < 2 {
			return Stay().WithResume(page + 1), nil
		}
		return Exit(), nil
	})

	require.NoError(t, r.Run(navstack.Push(screenKey{"pager"})))
	assert.Equal(t, []int{0, 1, 2}, seen)

	in, _ := c.Active()
	page, ok := Resume[int](in)
	assert.True(t, ok)
	assert.Equal(t, 2, page)

	_, ok = Resume[string](in)
	assert.False(t, ok, "wrong type")
}

func TestRunFaultIsReturned(t *testing.T) {
	c := navstack.NewContainer(navstack.ContainerConfig{
		ID:           "main",
		ErrorHandler: func(error) {},
		Interceptors: []navstack.Interceptor{navstack.NewInterceptor(navstack.InterceptorFuncs{
			Name:  "broken",
			Match: func(in navstack.Instruction) bool { return in.Key().Kind() == "other" },
			OnOpen: func(*navstack.InterceptContext, navstack.Instruction) navstack.OpenOutcome {
				panic("broken")
			},
		})},
	})

	r := New(c).Register("screen", func(navstack.Instruction) (Outcome, error) {
		return Open(navstack.Push(otherKey{})), nil
	})

	err := r.Run(navstack.Push(screenKey{"a"}))
	require.Error(t, err)
	assert.True(t, navstack.IsInterceptorFault(err))
}
