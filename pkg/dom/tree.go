package dom

// InsertBefore inserts child into n immediately before ref. A nil ref
// appends. A child that is already attached somewhere is moved.
func (n *Node) InsertBefore(child, ref *Node) error {
	if child == nil {
		return ErrHierarchy
	}
	if !n.canHaveChildren() || child.Contains(n) || child.typ == DocumentNode {
		return ErrHierarchy
	}
	if ref != nil && ref.parent != n {
		return ErrNotChild
	}
	if child == ref {
		return nil
	}

	moved := child.parent != nil
	if moved {
		child.parent.detach(child)
	}

	idx := len(n.children)
	if ref != nil {
		idx = n.indexOf(ref)
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
	child.parent = n

	m := Mutation{Op: OpInsert, Target: child.id, Parent: n.id}
	if ref != nil {
		m.Before = ref.id
	}
	if moved {
		m.Op = OpMove
	} else {
		m.HTML = child.OuterHTML()
	}
	n.notify(m)
	return nil
}

// AppendChild appends child to n.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return ErrNotChild
	}
	n.notify(Mutation{Op: OpRemove, Target: child.id, Parent: n.id})
	n.detach(child)
	return nil
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
}

func (n *Node) detach(child *Node) {
	i := n.indexOf(child)
	if i < 0 {
		return
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
}
