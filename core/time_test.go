// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestTimeDelta(t *testing.T) {
	c := qt.New(t)
	ts := NewTime(TimeConfiguration{FramesPerSecond: 60, EventPollDelay: 5})
	defer ts.Stop()

	start := time.Unix(1000, 0)
	current := start
	ts.now = func() time.Time { return current }

	c.Assert(ts.Delta(), qt.Equals, float32(0))
	current = start.Add(500 * time.Millisecond)
	c.Assert(ts.Delta(), qt.Equals, float32(0.5))
	current = current.Add(250 * time.Millisecond)
	c.Assert(ts.Delta(), qt.Equals, float32(0.25))
	c.Assert(ts.Fps(), qt.Equals, 60)
}

func TestTimeTickers(t *testing.T) {
	c := qt.New(t)
	ts := NewTime(TimeConfiguration{FramesPerSecond: 0, EventPollDelay: 0})
	defer ts.Stop()

	select {
	case <-ts.FpsTicker().C:
	case <-time.After(time.Second):
		c.Fatal("fps ticker did not fire")
	}
	select {
	case <-ts.EventTicker().C:
	case <-time.After(time.Second):
		c.Fatal("event ticker did not fire")
	}
}
