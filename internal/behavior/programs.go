package behavior

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultCacheSize is the default number of compiled condition programs kept
// by Programs.
const DefaultCacheSize = 1000

// Programs is the process-wide cache of compiled condition expressions.
var Programs = NewProgramCache(DefaultCacheSize)

// ProgramCache is a bounded LRU of compiled expr programs keyed by source.
// It is the only shared structure in the runtime that locks.
type ProgramCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	max     int
	hits    int64
	misses  int64
}

type program struct {
	source string
	prog   *vm.Program
}

// NewProgramCache returns a cache holding at most size programs.
func NewProgramCache(size int) *ProgramCache {
	if size < 1 {
		size = DefaultCacheSize
	}
	return &ProgramCache{
		entries: make(map[string]*list.Element, size),
		lru:     list.New(),
		max:     size,
	}
}

// Compile returns the program for source, compiling and caching it on a
// miss. Programs evaluate to a bool over an environment of variables by
// name; unknown names evaluate to nil.
func (c *ProgramCache) Compile(source string) (*vm.Program, error) {
	c.mu.Lock()
	if elem, ok := c.entries[source]; ok {
		c.hits++
		c.lru.MoveToFront(elem)
		p := elem.Value.(*program).prog
		c.mu.Unlock()
		return p, nil
	}
	c.misses++
	c.mu.Unlock()

	p, err := expr.Compile(source,
		expr.Env(map[string]any{}),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[source]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*program).prog, nil
	}
	c.entries[source] = c.lru.PushFront(&program{source: source, prog: p})
	c.evict()
	return p, nil
}

// Resize changes the capacity, evicting least recently used programs.
func (c *ProgramCache) Resize(size int) {
	if size < 1 {
		size = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.max = size
	c.evict()
}

func (c *ProgramCache) evict() {
	for c.lru.Len() > c.max {
		elem := c.lru.Back()
		delete(c.entries, elem.Value.(*program).source)
		c.lru.Remove(elem)
	}
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the hit and miss counts.
func (c *ProgramCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *ProgramCache) String() string {
	hits, misses := c.Stats()
	return fmt.Sprintf("ProgramCache{size=%d, hits=%d, misses=%d}", c.Len(), hits, misses)
}

// Evaluate runs source against env.
func (c *ProgramCache) Evaluate(source string, env map[string]any) (bool, error) {
	p, err := c.Compile(source)
	if err != nil {
		return false, fmt.Errorf("compile %q: %w", source, err)
	}
	out, err := expr.Run(p, env)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q: result is %T, not bool", source, out)
	}
	return b, nil
}
