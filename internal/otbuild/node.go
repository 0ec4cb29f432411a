/*
Package otbuild serializes synthetic OpenType layout tables.

Layout tables are graphs of sub-tables linked by offsets, each offset relative to
the start of the table holding it. Writing them by hand is error-prone, so tests
describe a table as a tree of Nodes and let otbuild place the nodes and patch the
offsets:

	cov := otbuild.Coverage1(5, 7)
	sub := otbuild.New().U16(1).Off16(cov).U16(0x0004).I16(-20)
	data := otbuild.New().Off16(sub).Bytes()

Nodes are placed breadth-first in the order in which they are first reached, each
node exactly once. A node may be linked more than once, as long as every link
points forward.
*/
package otbuild

import (
	"encoding/binary"
	"fmt"
)

type itemKind uint8

const (
	kindU16 itemKind = iota
	kindU32
	kindOff16
	kindOff32
)

type item struct {
	kind  itemKind
	value uint32
	link  *Node
}

func (it item) size() int {
	switch it.kind {
	case kindU32, kindOff32:
		return 4
	}
	return 2
}

// Node is a table or sub-table under construction.
type Node struct {
	items []item
}

// New creates an empty node.
func New() *Node {
	return &Node{}
}

// U16 appends unsigned 16-bit values.
func (n *Node) U16(values ...uint16) *Node {
	for _, v := range values {
		n.items = append(n.items, item{kind: kindU16, value: uint32(v)})
	}
	return n
}

// I16 appends signed 16-bit values.
func (n *Node) I16(values ...int16) *Node {
	for _, v := range values {
		n.items = append(n.items, item{kind: kindU16, value: uint32(uint16(v))})
	}
	return n
}

// U32 appends unsigned 32-bit values.
func (n *Node) U32(values ...uint32) *Node {
	for _, v := range values {
		n.items = append(n.items, item{kind: kindU32, value: v})
	}
	return n
}

// Tag appends a 4-byte tag. Shorter tags are padded with spaces.
func (n *Node) Tag(tag string) *Node {
	b := []byte("    ")
	copy(b, tag)
	return n.U32(binary.BigEndian.Uint32(b))
}

// Off16 appends a 16-bit offset to child. A nil child is written as NULL offset.
func (n *Node) Off16(child *Node) *Node {
	n.items = append(n.items, item{kind: kindOff16, link: child})
	return n
}

// Off32 appends a 32-bit offset to child. A nil child is written as NULL offset.
func (n *Node) Off32(child *Node) *Node {
	n.items = append(n.items, item{kind: kindOff32, link: child})
	return n
}

// Size returns the number of bytes of the node itself, without linked nodes.
func (n *Node) Size() int {
	size := 0
	for _, it := range n.items {
		size += it.size()
	}
	return size
}

// Serialize places n and all nodes reachable from it and returns the bytes.
// It fails if an offset would be negative or would not fit.
func (n *Node) Serialize() ([]byte, error) {
	pos := map[*Node]int{n: 0}
	order := []*Node{n}
	cursor := n.Size()
	for i := 0; i < len(order); i++ {
		for _, it := range order[i].items {
			if it.link == nil {
				continue
			}
			if _, placed := pos[it.link]; !placed {
				pos[it.link] = cursor
				cursor += it.link.Size()
				order = append(order, it.link)
			}
		}
	}
	out := make([]byte, 0, cursor)
	for _, node := range order {
		for _, it := range node.items {
			v := it.value
			if it.link != nil {
				off := pos[it.link] - pos[node]
				if off <= 0 {
					return nil, fmt.Errorf("otbuild: backward link from node at %d to node at %d",
						pos[node], pos[it.link])
				}
				if it.kind == kindOff16 && off > 0xFFFF {
					return nil, fmt.Errorf("otbuild: offset %d does not fit into Offset16", off)
				}
				v = uint32(off)
			}
			if it.size() == 2 {
				out = binary.BigEndian.AppendUint16(out, uint16(v))
			} else {
				out = binary.BigEndian.AppendUint32(out, v)
			}
		}
	}
	return out, nil
}

// Bytes is like Serialize, but panics on error. It is meant for tests, where tables
// are known to be well-formed.
func (n *Node) Bytes() []byte {
	b, err := n.Serialize()
	if err != nil {
		panic(err)
	}
	return b
}
