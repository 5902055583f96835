package renderstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestFrameIndexAdvances(t *testing.T) {
	c := New()
	for want := uint32(1); want <= 5; want++ {
		f := c.Begin()
		assert.Equal(t, want, f.Index)
		assert.False(t, f.Reset)
		c.Complete()
	}
	assert.EqualValues(t, 6, c.FrameIndex())
	assert.EqualValues(t, 5, c.Frames())
}

func TestResetSnapsToOne(t *testing.T) {
	c := New()
	for i := 0; i < 9; i++ {
		c.Begin()
		c.Complete()
	}
	require.EqualValues(t, 10, c.FrameIndex())

	c.RequestReset()
	f := c.Begin()
	assert.True(t, f.Reset)
	assert.EqualValues(t, 10, f.Index)
	c.Complete()
	assert.EqualValues(t, 1, c.FrameIndex())

	f = c.Begin()
	assert.False(t, f.Reset)
	assert.EqualValues(t, 1, f.Index)
	c.Complete()
	assert.EqualValues(t, 2, c.FrameIndex())
}

func TestResetIsEdgeTriggered(t *testing.T) {
	c := New()

	// several requests before a frame collapse into one reset
	c.RequestReset()
	c.SceneChanged()
	f := c.Begin()
	assert.True(t, f.Reset)
	assert.False(t, c.ResetPending())

	// a request during the frame applies to the next one
	c.RequestReset()
	c.Complete()
	assert.EqualValues(t, 1, c.FrameIndex())

	f = c.Begin()
	assert.True(t, f.Reset)
	c.Complete()

	f = c.Begin()
	assert.False(t, f.Reset)
	c.Complete()
	assert.EqualValues(t, 2, c.FrameIndex())
}

func TestCompleteWithoutBegin(t *testing.T) {
	c := New()
	c.Complete()
	assert.EqualValues(t, 1, c.FrameIndex())
	assert.Zero(t, c.Frames())
}

func TestToggles(t *testing.T) {
	c := New()
	assert.True(t, c.Flags().SceneCamera)

	assert.False(t, c.ToggleCamera())
	assert.True(t, c.ResetPending())
	c.Begin()
	c.Complete()

	assert.True(t, c.ToggleWireframe())
	assert.True(t, c.ToggleNormals())
	assert.True(t, c.ToggleGlobalAxis())
	c.SetGUIFocused(true)
	assert.False(t, c.ResetPending())

	f := c.Begin()
	assert.Equal(t, Flags{Wireframe: true, Normals: true, GlobalAxis: true, GUIFocused: true}, f.Flags)
}

func TestFlagsSnapshot(t *testing.T) {
	c := New()
	f := c.Begin()
	c.ToggleWireframe()
	assert.False(t, f.Wireframe)
	assert.True(t, c.Flags().Wireframe)
}

func TestTiming(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	c := newWithClock(clock.now)

	clock.t = clock.t.Add(16 * time.Millisecond)
	f := c.Begin()
	assert.Equal(t, 16*time.Millisecond, f.Delta)

	clock.t = clock.t.Add(11 * time.Millisecond)
	c.Begin()
	assert.Equal(t, 11*time.Millisecond, c.Delta())
	assert.Equal(t, 27*time.Millisecond, c.Elapsed())
}
