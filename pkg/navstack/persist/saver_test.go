package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/flow"
)

type emailKey struct{}

func (emailKey) Kind() string { return "email" }

type planKey struct {
	Email string `json:"email"`
}

func (planKey) Kind() string { return "plan" }

func signupSteps(s *flow.Scope) flow.Outcome[string] {
	email := flow.Open[string](s, emailKey{})
	e, ok := email.Value()
	if !ok {
		return flow.Halt[string](email)
	}
	plan := flow.Open[string](s, planKey{Email: e}, flow.DependsOn(e))
	p, ok := plan.Value()
	if !ok {
		return flow.Halt[string](plan)
	}
	return flow.Resolved(e + ":" + p)
}

func signupCodec() *Codec {
	c := newCodec()
	RegisterKey[emailKey](c)
	RegisterKey[planKey](c)
	return c
}

func activeID(t *testing.T, c *navstack.Container) string {
	t.Helper()
	in, ok := c.Active()
	require.True(t, ok, "backstack is empty")
	return in.ID()
}

func TestSaverRestoresBackstack(t *testing.T) {
	c := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	c.Open(navstack.Push(homeKey{}))
	c.Open(navstack.Push(detailKey{ID: 1}))

	saver := NewSaver(newCodec(), func(id string) (*navstack.Container, bool) {
		return c, id == "main"
	})
	blob, err := saver.Save("main")
	require.NoError(t, err)

	var mounted []string
	c2 := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	c2.AddObserver(navstack.ObserverFuncs{OnTransition: func(_ *navstack.Container, tr navstack.Transition) {
		for _, in := range tr.Added {
			mounted = append(mounted, in.Key().Kind())
		}
	}})
	restorer := NewSaver(newCodec(), func(id string) (*navstack.Container, bool) {
		return c2, id == "main"
	})
	require.NoError(t, restorer.Restore("main", blob))

	assert.Equal(t, c.Backstack().IDs(), c2.Backstack().IDs())
	assert.Equal(t, []string{"home", "detail"}, mounted, "one commit mounting the whole stack")
}

func TestSaverUnknownContainer(t *testing.T) {
	saver := NewSaver(newCodec(), func(string) (*navstack.Container, bool) { return nil, false })

	_, err := saver.Save("missing")
	assert.ErrorIs(t, err, navstack.ErrNotFound)
	assert.ErrorIs(t, saver.Restore("missing", []byte(`{}`)), navstack.ErrNotFound)
}

func TestSaverRejectsNewerVersion(t *testing.T) {
	c := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	saver := NewSaver(newCodec(), func(string) (*navstack.Container, bool) { return c, true })

	err := saver.Restore("main", []byte(`{"version":2,"container":"main","backstack":[]}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestSaverRestoresFlow(t *testing.T) {
	c := navstack.NewContainer(navstack.ContainerConfig{ID: "signup"})
	m := flow.New(c, signupSteps, flow.Options[string]{ID: "signup-flow"})
	require.NoError(t, m.Start())
	c.CompleteWithResult(activeID(t, c), "a@b.c")
	require.Equal(t, 2, c.Backstack().Len())

	saver := NewSaver(signupCodec(), func(string) (*navstack.Container, bool) { return c, true })
	saver.AttachFlow("signup", m)
	blob, err := saver.Save("signup")
	require.NoError(t, err)

	// A fresh process: new container, new manager with the same id.
	c2 := navstack.NewContainer(navstack.ContainerConfig{ID: "signup"})
	var completed []string
	m2 := flow.New(c2, signupSteps, flow.Options[string]{
		ID:          "signup-flow",
		OnCompleted: func(v string) { completed = append(completed, v) },
	})
	restorer := NewSaver(signupCodec(), func(string) (*navstack.Container, bool) { return c2, true })
	restorer.AttachFlow("signup", m2)
	require.NoError(t, restorer.Restore("signup", blob))

	assert.Equal(t, c.Backstack().IDs(), c2.Backstack().IDs(), "restored instructions are reused by the flow")
	assert.Equal(t, m.Steps(), m2.Steps())

	in, _ := c2.Active()
	assert.Equal(t, planKey{Email: "a@b.c"}, in.Key())

	res := c2.CompleteWithResult(in.ID(), "pro")
	assert.Equal(t, navstack.StatusDelivered, res.Status)
	assert.Equal(t, []string{"a@b.c:pro"}, completed)
}

func TestSaverWithSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "nav.db"))
	require.NoError(t, err)
	defer store.Close()

	c := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	c.Open(navstack.Push(homeKey{}))
	saver := NewSaver(newCodec(), func(string) (*navstack.Container, bool) { return c, true })

	ctx := context.Background()
	require.NoError(t, saver.SaveTo(ctx, store, "main"))

	c2 := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	restorer := NewSaver(newCodec(), func(string) (*navstack.Container, bool) { return c2, true })
	require.NoError(t, restorer.RestoreFrom(ctx, store, "main"))
	assert.Equal(t, c.Backstack().IDs(), c2.Backstack().IDs())

	err = restorer.RestoreFrom(ctx, store, "other")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
