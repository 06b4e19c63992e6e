// File: ast.go
// Role: the structured scope tree Build produces, per spec.md §6's output
// shape: Sequence/If/Loop/Switch/Scope/Break/Continue/Leaf.
package astbuild

import "github.com/cfgforge/restructure/cfgraph"

// Kind tags which concrete Node variant a Node value holds.
type Kind int

const (
	KindSequence Kind = iota
	KindIf
	KindLoop
	KindSwitch
	KindScope
	KindBreak
	KindContinue
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "Sequence"
	case KindIf:
		return "If"
	case KindLoop:
		return "Loop"
	case KindSwitch:
		return "Switch"
	case KindScope:
		return "Scope"
	case KindBreak:
		return "Break"
	case KindContinue:
		return "Continue"
	case KindLeaf:
		return "Leaf"
	default:
		return "Unknown"
	}
}

// Node is one node of the structured scope tree. Each concrete type below
// implements it; callers type-switch on Kind() (or the concrete type
// directly) the way text/template's parse.Node is consumed.
type Node interface {
	Kind() Kind
}

// Sequence is an ordered run of statements with no internal branching.
type Sequence struct{ Children []Node }

func (*Sequence) Kind() Kind { return KindSequence }

// If is a binary conditional: Cond is the node whose two outgoing edges
// this If was built from.
type If struct {
	Cond       cfgraph.NodeID
	Then, Else Node
}

func (*If) Kind() Kind { return KindIf }

// LoopShape classifies where a Loop's exit test structurally sits.
type LoopShape int

const (
	// LoopWhile: the loop header itself is the test (top-tested).
	LoopWhile LoopShape = iota
	// LoopDoWhile: the node with the back edge to the header is the test
	// (bottom-tested).
	LoopDoWhile
	// LoopInfinite: no top or bottom test; every exit is an internal Break.
	LoopInfinite
)

func (s LoopShape) String() string {
	switch s {
	case LoopWhile:
		return "while"
	case LoopDoWhile:
		return "do_while"
	case LoopInfinite:
		return "infinite"
	default:
		return "unknown"
	}
}

// Loop is a collapsed natural loop. ExitTargets lists, in the order their
// labels were assigned, every node outside the loop body reached by some
// internal Break.
type Loop struct {
	Shape       LoopShape
	Body        Node
	ExitTargets []cfgraph.NodeID
}

func (*Loop) Kind() Kind { return KindLoop }

// SwitchCase is one non-default arm of a Switch.
type SwitchCase struct {
	Labels cfgraph.CaseLabels
	Body   Node
}

// Switch is a multi-way branch. Default is nil if the switch has no
// default/unlabeled edge.
type Switch struct {
	Scrutinee cfgraph.NodeID
	Cases     []SwitchCase
	Default   Node
}

func (*Switch) Kind() Kind { return KindSwitch }

// Scope names a landing zone a labeled Break can target directly, used
// when a Loop has more than one distinct exit target.
type Scope struct {
	Label string
	Body  Node
}

func (*Scope) Kind() Kind { return KindScope }

// Break exits the nearest enclosing Loop. Label is empty when that loop
// has exactly one exit target (the common, unambiguous case).
type Break struct{ Label string }

func (*Break) Kind() Kind { return KindBreak }

// Continue jumps to the top of the nearest enclosing Loop. Labels on
// Continue are never needed here: a natural loop's back edges always
// target that same loop's own header, never an outer loop's.
type Continue struct{ Label string }

func (*Continue) Kind() Kind { return KindContinue }

// Leaf renders one original (or cloned) CFG node verbatim.
type Leaf struct{ NodeID cfgraph.NodeID }

func (*Leaf) Kind() Kind { return KindLeaf }
