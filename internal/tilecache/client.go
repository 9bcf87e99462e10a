package tilecache

import "container/list"

// ClientOps is the three-callback protocol spec.md §4.4 describes between
// the cache and a tile consumer (typically a Map Layer).
type ClientOps struct {
	// Query returns the next tile the client wants and the priority class
	// it wants to be served at. decision == 0 means "nothing to do, demote
	// me to bucket 0"; decision == k > 0 means "load (mh,level,x,y); keep
	// me at bucket k afterwards".
	Query func(owner interface{}) (decision int, mh *MapHandle, level, x, y uint32)

	// Notify is called synchronously, inside Insert, for every client
	// monitoring the inserted node's (map, level).
	Notify func(owner interface{}, mh *MapHandle, level, x, y uint32, node *Node)

	// Eval scores how much the client values retaining node, 0..MaxPrio.
	// Called on every notify-subscriber of a node's map during eviction.
	Eval func(owner interface{}, node *Node) int
}

// Client is a handle returned by Cache.MakeClient. Owner is the opaque
// pointer passed back into every callback — conventionally the Map Layer
// or overlay layer that created the client.
type Client struct {
	ops   ClientOps
	owner interface{}
	prio  int

	cache   *Cache
	bucket  *list.Element // this client's element within cache.buckets[prio]
	monitor *MapHandle
	level   uint32
	notify  *list.Element // this client's element within monitor.notify[level], if monitoring
}

// Owner returns the opaque owner pointer passed to MakeClient.
func (c *Client) Owner() interface{} { return c.owner }

// Priority returns the client's current bucket.
func (c *Client) Priority() int { return c.prio }

func (c *Cache) link(cl *Client, prio int) {
	cl.bucket = c.buckets[prio].PushBack(cl)
	cl.prio = prio
}

func (c *Cache) unlink(cl *Client) {
	if cl.bucket != nil {
		c.buckets[cl.prio].Remove(cl.bucket)
		cl.bucket = nil
	}
}

// MakeClient registers a new client, starting in bucket 0 (idle).
func (c *Cache) MakeClient(ops ClientOps, owner interface{}) *Client {
	cl := &Client{ops: ops, owner: owner, cache: c}
	c.link(cl, 0)
	return cl
}

func (c *Cache) clearNotification(cl *Client) {
	if cl.monitor != nil {
		cl.monitor.notifyList(cl.level).Remove(cl.notify)
		cl.monitor = nil
		cl.notify = nil
	}
}

// DiscardClient unlinks cl from its priority bucket and any notify list.
func (c *Cache) DiscardClient(cl *Client) {
	c.clearNotification(cl)
	c.unlink(cl)
}

// RequestNotification re-subscribes cl to notifications on exactly one
// (map, level) pair, replacing any previous subscription. A client
// monitors at most one level at a time.
func (c *Cache) RequestNotification(cl *Client, mh *MapHandle, level uint32) {
	c.clearNotification(cl)
	cl.monitor = mh
	cl.level = level
	cl.notify = mh.notifyList(level).PushBack(cl)
}

func (c *Cache) updateAttention(cl *Client, prio int) {
	if cl.prio != prio {
		c.unlink(cl)
		c.link(cl, prio)
	}
}

// RequestAttention moves cl to bucket prio and, if a Host is attached,
// posts the cooperative scheduler's task(s) for the buckets now in use.
// It posts on every call; it does not check whether such a task is
// already pending.
func (c *Cache) RequestAttention(cl *Client, prio int) {
	c.updateAttention(cl, prio)
	c.scheduleIfNeeded()
}
