package txlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameKeySerializes(t *testing.T) {
	km := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("tx-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	km := New()

	unlockA := km.Lock("tx-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("tx-b")
		unlockB()
		close(done)
	}()

	<-done
}

func TestEntriesAreReleased(t *testing.T) {
	km := New()

	unlock := km.Lock("tx-1")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}
