package importer

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportLock(t *testing.T) {
	var l ImportLock

	assert.True(t, l.TryAcquire())
	assert.True(t, l.Held())
	assert.False(t, l.TryAcquire())

	l.Release()
	assert.False(t, l.Held())
	assert.True(t, l.TryAcquire())
	l.Release()
}

func TestImportLock_Concurrent(t *testing.T) {
	var l ImportLock
	var acquired atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire() {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired.Load())
}
