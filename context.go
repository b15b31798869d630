package relq

import "strconv"

// Context carries the per-compile rendering state: per-name monotonic alias
// counters and the alias assigned to each reachable table or subquery
// reference. One Context lives for exactly one compile pass and is discarded
// after rendering, so concurrent compiles share nothing.
type Context struct {
	counters map[string]int
	aliases  map[*TableRef]string
}

func newContext() *Context {
	return &Context{
		counters: make(map[string]int),
		aliases:  make(map[*TableRef]string),
	}
}

// register assigns the next alias for the reference's name. Aliases are
// assigned in a single left-to-right, outside-in traversal of the statement,
// so only reachable references ever receive one.
func (c *Context) register(ref *TableRef) string {
	if a, ok := c.aliases[ref]; ok {
		return a
	}
	n := c.counters[ref.name]
	c.counters[ref.name] = n + 1
	a := ref.name + strconv.Itoa(n)
	c.aliases[ref] = a
	return a
}

// alias reports the alias assigned to a reference, if any.
func (c *Context) alias(ref *TableRef) (string, bool) {
	a, ok := c.aliases[ref]
	return a, ok
}
