package dom

// MutationOp identifies a kind of tree change.
type MutationOp string

const (
	OpInsert     MutationOp = "insert"
	OpMove       MutationOp = "move"
	OpRemove     MutationOp = "remove"
	OpSetAttr    MutationOp = "set-attr"
	OpRemoveAttr MutationOp = "remove-attr"
	OpText       MutationOp = "text"
)

// Mutation describes one change to a tree.
type Mutation struct {
	Op     MutationOp `json:"op"`
	Target uint64     `json:"target"`
	Parent uint64     `json:"parent,omitempty"`
	Before uint64     `json:"before,omitempty"`
	Name   string     `json:"name,omitempty"`
	Value  string     `json:"value,omitempty"`

	// HTML is the serialized subtree for fresh insertions.
	HTML string `json:"html,omitempty"`
}

// Observer receives mutations.
type Observer func(Mutation)

type observer struct {
	fn Observer
}

// Observe registers fn to receive every mutation that happens in the
// subtree rooted at n. It returns a function that unregisters.
func (n *Node) Observe(fn Observer) (cancel func()) {
	o := &observer{fn: fn}
	n.observers = append(n.observers, o)
	return func() {
		for i, existing := range n.observers {
			if existing == o {
				n.observers = append(n.observers[:i], n.observers[i+1:]...)
				return
			}
		}
	}
}

// notify delivers m to the observers of every node from n up to the root.
func (n *Node) notify(m Mutation) {
	for cur := n; cur != nil; cur = cur.parent {
		for _, o := range cur.observers {
			o.fn(m)
		}
	}
}

// Recorder collects mutations; it is mostly useful in tests and tools.
type Recorder struct {
	Mutations []Mutation
	cancel    func()
}

// Record starts recording mutations below n.
func Record(n *Node) *Recorder {
	r := &Recorder{}
	r.cancel = n.Observe(func(m Mutation) {
		r.Mutations = append(r.Mutations, m)
	})
	return r
}

// Reset clears the recorded mutations.
func (r *Recorder) Reset() {
	r.Mutations = nil
}

// Stop unregisters the recorder.
func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Count returns how many recorded mutations have the given op.
func (r *Recorder) Count(op MutationOp) int {
	n := 0
	for _, m := range r.Mutations {
		if m.Op == op {
			n++
		}
	}
	return n
}
