package search

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_RunsOnlyLastCall(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var last atomic.Int32
	var runs atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			runs.Add(1)
			last.Store(n)
		})
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())

	d.Trigger(func() { runs.Add(1) })
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_StopIgnoresLaterTriggers(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	d.Stop()

	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
