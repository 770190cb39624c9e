package coalescer

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 32

type call struct {
	wg   sync.WaitGroup
	val  []byte
	err  error
	dups int
}

type shard struct {
	sync.Mutex
	calls map[string]*call
}

// Coalescer collapses concurrent loads of the same key into one call.
type Coalescer struct {
	shards [shardCount]shard
}

func NewCoalescer() *Coalescer {
	c := &Coalescer{}
	for i := range c.shards {
		c.shards[i].calls = make(map[string]*call)
	}
	return c
}

func (c *Coalescer) shardFor(key string) *shard {
	return &c.shards[xxhash.Sum64String(key)%shardCount]
}

// Do runs fn once per key at a time; callers arriving while it runs wait for
// and share its result.
func (c *Coalescer) Do(key string, fn func() ([]byte, error)) ([]byte, error) {
	val, err, _ := c.DoShared(key, fn)
	return val, err
}

// DoShared is Do that also reports whether the result went to more than one
// caller.
func (c *Coalescer) DoShared(key string, fn func() ([]byte, error)) ([]byte, error, bool) {
	s := c.shardFor(key)

	s.Lock()
	if inflight, ok := s.calls[key]; ok {
		inflight.dups++
		s.Unlock()
		inflight.wg.Wait()
		return inflight.val, inflight.err, true
	}

	cl := &call{}
	cl.wg.Add(1)
	s.calls[key] = cl
	s.Unlock()

	cl.val, cl.err = fn()

	s.Lock()
	delete(s.calls, key)
	shared := cl.dups > 0
	s.Unlock()

	cl.wg.Done()
	return cl.val, cl.err, shared
}
