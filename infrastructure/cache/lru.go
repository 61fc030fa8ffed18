package cache

import (
	"container/list"
	"sync"
)

// NamespaceLRU is a bounded LRU cache whose keys are grouped by namespace
type NamespaceLRU struct {
	capacity int
	items    map[string]*list.Element
	queue    *list.List
	mutex    sync.Mutex
}

type entry struct {
	compositeKey string
	value        interface{}
}

// NewNamespaceLRU creates a new namespace-based LRU cache with specified capacity
func NewNamespaceLRU(capacity int) *NamespaceLRU {
	if capacity < 1 {
		capacity = 1
	}
	return &NamespaceLRU{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		queue:    list.New(),
	}
}

func compositeKey(namespace, key string) string {
	return namespace + ":" + key
}

// GetOrCreate returns the cached value, or stores and returns the result of
// create when the key is absent. create runs under the cache lock and must not
// call back into the cache.
func (c *NamespaceLRU) GetOrCreate(namespace, key string, create func() interface{}) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ck := compositeKey(namespace, key)
	if element, exists := c.items[ck]; exists {
		c.queue.MoveToFront(element)
		return element.Value.(*entry).value, false
	}

	value := create()
	c.items[ck] = c.queue.PushFront(&entry{compositeKey: ck, value: value})

	for c.queue.Len() > c.capacity {
		oldest := c.queue.Back()
		c.queue.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).compositeKey)
	}

	return value, true
}

// Size returns the current number of items in the cache
func (c *NamespaceLRU) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.queue.Len()
}
