package tilecache

import (
	"container/list"

	"github.com/LaPingvino/tilepilot/internal/logging"
	"github.com/LaPingvino/tilepilot/internal/taskrun"
	"github.com/LaPingvino/tilepilot/internal/tilecodec"
)

// MaxPrio and MinPrio bound the client priority scale: 0 (idle) through
// MaxPrio (most urgent); the scheduler's "low" task services any
// decision >= MinPrio, its "high" task only decision == MaxPrio.
const (
	MaxPrio = 3
	MinPrio = 1

	highTaskPrio = 1
	lowTaskPrio  = 2
	cleanupPrio  = 3
)

// Reader loads the bytes for (level,x,y) from a map's backing store,
// decodes them, and inserts exactly one node — the Tile Reader contract
// from spec.md §4.3. Supplied per map at RegisterMap time.
type Reader func(mh *MapHandle, level, x, y uint32)

// Cache is the shared, single-event-loop-thread tile cache described in
// spec.md §4.4.
type Cache struct {
	lowWatermark  int64
	highWatermark int64

	buckets [MaxPrio + 1]*list.List // of *Client
	maps    []*MapHandle
	readers map[*MapHandle]Reader
	host    taskrun.Host
	log     *logging.Logger
}

// New creates a Cache with the given low/high Data-node byte watermarks.
// host may be nil, in which case callers drive the scheduler manually via
// HighIteration/LowIteration/RunCleanup (useful for tests and for a
// headless CLI).
func New(lowWatermark, highWatermark int64, host taskrun.Host) *Cache {
	c := &Cache{
		lowWatermark:  lowWatermark,
		highWatermark: highWatermark,
		readers:       make(map[*MapHandle]Reader),
		host:          host,
		log:           logging.Global().Module("tilecache"),
	}
	for i := range c.buckets {
		c.buckets[i] = list.New()
	}
	return c
}

// RegisterMap creates and returns a new MapHandle, recording reader as the
// function that will be invoked to service read_tile calls for it.
func (c *Cache) RegisterMap(name string, tileW, tileH int, reader Reader) *MapHandle {
	mh := newMapHandle(name, tileW, tileH)
	c.maps = append(c.maps, mh)
	c.readers[mh] = reader
	return mh
}

// UnregisterMap drops all of a map's nodes and its reader registration.
// Outstanding client subscriptions to this map's levels become harmless:
// callers are expected to have already discarded any client attached to
// this map (e.g. by detaching the Map Layer), matching spec.md §5's
// "removing the map also detaches the Map Layer client" guarantee.
func (c *Cache) UnregisterMap(mh *MapHandle) {
	for i, m := range c.maps {
		if m == mh {
			c.maps = append(c.maps[:i], c.maps[i+1:]...)
			break
		}
	}
	delete(c.readers, mh)
	mh.nodes.Init()
	mh.index = make(map[Key]*list.Element)
	mh.notify = make(map[uint32]*list.List)
	mh.actSize = 0
}

// Lookup returns the node at (level,x,y) on mh, or nil if absent.
func (c *Cache) Lookup(mh *MapHandle, level, x, y uint32) *Node {
	e, ok := mh.index[Key{level, x, y}]
	if !ok {
		return nil
	}
	return e.Value.(*Node)
}

// insert is the shared implementation behind InsertData/InsertColor/
// InsertError: it links a new node into mh's node list and index, updates
// the running byte footprint for Data nodes, schedules a cleanup pass if
// the high watermark is exceeded, and — synchronously, before returning —
// notifies every client monitoring (mh, level). This ordering (link, then
// notify) is the atomicity guarantee spec.md §4.4/§5 describe: a notified
// client always observes a fully linked node.
func (c *Cache) insert(mh *MapHandle, level, x, y uint32, state State, pm *tilecodec.Pixmap, color uint32) *Node {
	n := &Node{Map: mh, Key: Key{level, x, y}, State: state, Color: color, Pixmap: pm}

	elem := mh.nodes.PushBack(n)
	mh.index[n.Key] = elem

	if state == StateData {
		mh.actSize += mh.nodeSize
	}

	if mh.actSize > c.highWatermark {
		c.scheduleCleanup()
	}

	if lst, ok := mh.notify[level]; ok {
		for e := lst.Front(); e != nil; e = e.Next() {
			cl := e.Value.(*Client)
			cl.ops.Notify(cl.owner, mh, level, x, y, n)
		}
	}

	return n
}

// InsertData inserts a decoded-image node.
func (c *Cache) InsertData(mh *MapHandle, level, x, y uint32, pm *tilecodec.Pixmap) *Node {
	return c.insert(mh, level, x, y, StateData, pm, 0)
}

// InsertColor inserts a placeholder solid-color node (zero footprint).
func (c *Cache) InsertColor(mh *MapHandle, level, x, y uint32, rgb uint32) *Node {
	return c.insert(mh, level, x, y, StateColor, nil, rgb)
}

// InsertError records a failed load attempt (zero footprint, prevents
// retry storms per spec.md §3).
func (c *Cache) InsertError(mh *MapHandle, level, x, y uint32) *Node {
	return c.insert(mh, level, x, y, StateError, nil, 0)
}

func (c *Cache) destroy(mh *MapHandle, elem *list.Element) {
	n := elem.Value.(*Node)
	mh.nodes.Remove(elem)
	delete(mh.index, n.Key)
	if n.State == StateData {
		mh.actSize -= mh.nodeSize
		n.Pixmap = nil
	}
}

func (c *Cache) topPriority() int {
	for i := MaxPrio; i > 0; i-- {
		if c.buckets[i].Len() > 0 {
			return i
		}
	}
	return 0
}

func (c *Cache) scheduleIfNeeded() {
	if c.host == nil {
		return
	}
	top := c.topPriority()
	if top == MaxPrio {
		c.host.PostTask(highTaskPrio, c.HighIteration)
	}
	if top > 0 {
		c.host.PostTask(lowTaskPrio, c.LowIteration)
	}
}

func (c *Cache) scheduleCleanup() {
	if c.host == nil {
		return
	}
	c.host.PostTask(cleanupPrio, func() taskrun.Result {
		c.RunCleanup()
		return taskrun.StopResult()
	})
}

// queryClients implements query_cache_clients: scan buckets from MaxPrio
// down to leastPrio, draining each bucket's head client until one reports
// a decision matching the bucket it was called from.
func (c *Cache) queryClients(leastPrio int) (int, *MapHandle, uint32, uint32, uint32) {
	for i := MaxPrio; i >= leastPrio; i-- {
		for c.buckets[i].Len() > 0 {
			front := c.buckets[i].Front()
			cl := front.Value.(*Client)

			decision, mh, level, x, y := cl.ops.Query(cl.owner)

			if decision == i {
				return i, mh, level, x, y
			}

			c.updateAttention(cl, decision)
			if decision > i {
				c.log.Warning("protocol warning: client raised priority %d->%d during query", i, decision)
			}
		}
	}
	return 0, nil, 0, 0, 0
}

// iterate performs exactly one scheduler turn: find the highest-priority
// client with real work at or above leastPrio and service its one tile
// read. Returns true if a read occurred.
func (c *Cache) iterate(leastPrio int) bool {
	prio, mh, level, x, y := c.queryClients(leastPrio)
	if prio == 0 {
		return false
	}
	reader := c.readers[mh]
	if reader != nil {
		reader(mh, level, x, y)
	}
	return true
}

// HighIteration services only MaxPrio-priority work. Registered as the
// cache's "high" task slot.
func (c *Cache) HighIteration() taskrun.Result {
	if c.iterate(MaxPrio) {
		return taskrun.Continue()
	}
	return taskrun.StopResult()
}

// LowIteration services any priority >= MinPrio. Registered as the
// cache's "low" task slot.
func (c *Cache) LowIteration() taskrun.Result {
	if c.iterate(MinPrio) {
		return taskrun.Continue()
	}
	return taskrun.StopResult()
}

// localCleanup implements local_cache_cleanup: for ascending retention
// priority classes p = 0..MaxPrio-1, walk the node list and destroy every
// node whose eval-score is <= p, stopping as soon as actSize <= low.
func (c *Cache) localCleanup(mh *MapHandle) {
	for prio := 0; prio < MaxPrio; prio++ {
		elem := mh.nodes.Front()
		for elem != nil {
			if mh.actSize <= c.lowWatermark {
				return
			}

			next := elem.Next()
			n := elem.Value.(*Node)

			nodePrio := 0
			for _, lst := range mh.notify {
				for e := lst.Front(); e != nil; e = e.Next() {
					cl := e.Value.(*Client)
					if score := cl.ops.Eval(cl.owner, n); score > nodePrio {
						nodePrio = score
					}
				}
			}

			if nodePrio <= prio {
				c.destroy(mh, elem)
			}

			elem = next
		}
	}
}

// RunCleanup runs a cleanup pass over every registered map.
func (c *Cache) RunCleanup() {
	for _, mh := range c.maps {
		c.localCleanup(mh)
	}
}

// LowWatermark and HighWatermark expose the configured byte thresholds.
func (c *Cache) LowWatermark() int64  { return c.lowWatermark }
func (c *Cache) HighWatermark() int64 { return c.highWatermark }
