package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeComponent struct {
	name     string
	requires []string
	started  bool
	startErr error
	stopErr  error
	log      *[]string
}

func (c *fakeComponent) Name() string     { return c.name }
func (c *fakeComponent) Requires() []string { return c.requires }
func (c *fakeComponent) Start(ctx context.Context) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.started = true
	*c.log = append(*c.log, "start:"+c.name)
	return nil
}
func (c *fakeComponent) Stop(ctx context.Context) error {
	if c.stopErr != nil {
		return c.stopErr
	}
	c.started = false
	*c.log = append(*c.log, "stop:"+c.name)
	return nil
}

func TestStartAllOrdersByDependency(t *testing.T) {
	var log []string
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "view", requires: []string{"cache"}, log: &log}))
	require.NoError(t, m.Register(&fakeComponent{name: "cache", requires: []string{"config"}, log: &log}))
	require.NoError(t, m.Register(&fakeComponent{name: "config", log: &log}))

	require.NoError(t, m.StartAll(context.Background()))
	require.True(t, m.Started())
	require.Equal(t, []string{"start:config", "start:cache", "start:view"}, log)
}

func TestStopAllReversesStartOrder(t *testing.T) {
	var log []string
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "view", requires: []string{"cache"}, log: &log}))
	require.NoError(t, m.Register(&fakeComponent{name: "cache", log: &log}))

	require.NoError(t, m.StartAll(context.Background()))
	log = nil
	require.NoError(t, m.StopAll(context.Background()))
	require.Equal(t, []string{"stop:view", "stop:cache"}, log)
	require.False(t, m.Started())
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "a"}))
	err := m.Register(&fakeComponent{name: "a"})
	require.Error(t, err)
}

func TestStartAllDetectsMissingDependency(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "view", requires: []string{"cache"}}))
	err := m.StartAll(context.Background())
	require.Error(t, err)
}

func TestStartAllDetectsCircularDependency(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "a", requires: []string{"b"}}))
	require.NoError(t, m.Register(&fakeComponent{name: "b", requires: []string{"a"}}))
	err := m.StartAll(context.Background())
	require.Error(t, err)
}

func TestStartAllPropagatesComponentError(t *testing.T) {
	var log []string
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "broken", startErr: errBoom, log: &log}))
	err := m.StartAll(context.Background())
	require.Error(t, err)
	var cerr *ComponentError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "broken", cerr.Component)
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestStopAllContinuesPastFailures(t *testing.T) {
	var log []string
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "a", log: &log}))
	require.NoError(t, m.Register(&fakeComponent{name: "b", stopErr: errBoom, log: &log}))

	require.NoError(t, m.StartAll(context.Background()))
	err := m.StopAll(context.Background())
	require.Error(t, err)
	require.Contains(t, log, "stop:a")
}
