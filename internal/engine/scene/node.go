package scene

import "github.com/Faultbox/midgard-daynight/pkg/math"

// Node is a transform in the scene hierarchy. Only rotation is tracked; the
// sky nodes all sit at the origin.
type Node struct {
	Name string

	parent   *Node
	children []*Node

	local math.Quat
	world math.Quat

	updates uint64
}

func newNode(name string) *Node {
	return &Node{Name: name, local: math.QuatIdentity(), world: math.QuatIdentity()}
}

// attach makes child a child of n keeping its local rotation.
func (n *Node) attach(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
	child.propagate()
}

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// setWorld sets the world rotation, deriving the local one from the parent.
func (n *Node) setWorld(q math.Quat) {
	q = q.Normalize()
	if n.parent != nil {
		n.local = n.parent.world.Conjugate().Mul(q).Normalize()
	} else {
		n.local = q
	}
	n.updates++
	n.propagate()
}

func (n *Node) setLocal(q math.Quat) {
	n.local = q.Normalize()
	n.updates++
	n.propagate()
}

// propagate recomputes the world rotation of n and its subtree.
func (n *Node) propagate() {
	if n.parent != nil {
		n.world = n.parent.world.Mul(n.local).Normalize()
	} else {
		n.world = n.local
	}
	for _, c := range n.children {
		c.propagate()
	}
}
