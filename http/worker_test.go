package http

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := NewPool(4)

	var counter atomic.Int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			counter.Add(1)
		})
	}
	pool.Close()

	assert.Equal(t, int64(100), counter.Load())
}

func TestPoolCloseWaitsForInFlightJobs(t *testing.T) {
	pool := NewPool(2)

	var finished atomic.Bool
	pool.Submit(func() {
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})
	pool.Close()

	assert.True(t, finished.Load())
}

func TestPoolSizeFloor(t *testing.T) {
	pool := NewPool(0)

	done := make(chan struct{})
	pool.Submit(func() { close(done) })
	<-done
	pool.Close()
}
