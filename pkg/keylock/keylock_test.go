package keylock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLock_SerializesSameKey(t *testing.T) {
	kl := New()

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("doctor:1")
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestLock_OppositeOrderDoesNotDeadlock(t *testing.T) {
	kl := New()
	done := make(chan struct{})

	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				unlock := kl.Lock("doctor:1", "patient:2")
				unlock()
			}()
			go func() {
				defer wg.Done()
				unlock := kl.Lock("patient:2", "doctor:1")
				unlock()
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock: locks were not released")
	}
}

func TestLock_DuplicateKeysAndCleanup(t *testing.T) {
	kl := New()

	unlock := kl.Lock("doctor:1", "doctor:1")
	unlock()

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.Empty(t, kl.locks)
}
