package models

import (
	"time"

	"cloud.google.com/go/datastore/apiv1/datastorepb"
)

// NodeKind discriminates the three shapes of an input tree node.
type NodeKind int

const (
	ScalarNode NodeKind = iota
	ObjectNode
	ArrayNode
)

func (k NodeKind) String() string {
	switch k {
	case ObjectNode:
		return "object"
	case ArrayNode:
		return "array"
	case ScalarNode:
		return "scalar"
	default:
		return "unknown"
	}
}

// Node is a single node of a JSON-like tree.
// Exactly one of Fields, Elements or Scalar is meaningful, selected by Kind.
type Node struct {
	Kind     NodeKind
	Fields   map[string]Node // ObjectNode
	Elements []Node          // ArrayNode
	Scalar   Scalar          // ScalarNode
}

// NewObject returns an object node holding fields.
func NewObject(fields map[string]Node) Node {
	if fields == nil {
		fields = map[string]Node{}
	}
	return Node{Kind: ObjectNode, Fields: fields}
}

// NewArray returns an array node holding elements in order.
func NewArray(elements ...Node) Node {
	if elements == nil {
		elements = []Node{}
	}
	return Node{Kind: ArrayNode, Elements: elements}
}

// NewScalarNode returns a leaf node holding s.
func NewScalarNode(s Scalar) Node {
	return Node{Kind: ScalarNode, Scalar: s}
}

// IsObject reports whether n is an object node.
func (n Node) IsObject() bool { return n.Kind == ObjectNode }

// IsArray reports whether n is an array node.
func (n Node) IsArray() bool { return n.Kind == ArrayNode }

// ScalarKind enumerates the leaf types the converter understands.
type ScalarKind int

const (
	// InvalidKind is the zero value and never converts.
	InvalidKind ScalarKind = iota
	FloatKind
	Int32Kind
	Int64Kind
	StringKind
	BoolKind
	TimeKind
	NullKind
	// EntityKind wraps an entity that was already converted.
	EntityKind
)

func (k ScalarKind) String() string {
	switch k {
	case FloatKind:
		return "float"
	case Int32Kind:
		return "int32"
	case Int64Kind:
		return "int64"
	case StringKind:
		return "string"
	case BoolKind:
		return "bool"
	case TimeKind:
		return "time"
	case NullKind:
		return "null"
	case EntityKind:
		return "entity"
	default:
		return "invalid"
	}
}

// Scalar is a leaf value. Only the field matching Kind is set.
type Scalar struct {
	Kind   ScalarKind
	Float  float64
	Int    int64
	Str    string
	Bool   bool
	Time   time.Time
	Entity *datastorepb.Entity
}

func Float(v float64) Scalar { return Scalar{Kind: FloatKind, Float: v} }

func Int32(v int32) Scalar { return Scalar{Kind: Int32Kind, Int: int64(v)} }

func Int64(v int64) Scalar { return Scalar{Kind: Int64Kind, Int: v} }

func String(v string) Scalar { return Scalar{Kind: StringKind, Str: v} }

func Bool(v bool) Scalar { return Scalar{Kind: BoolKind, Bool: v} }

func Time(v time.Time) Scalar { return Scalar{Kind: TimeKind, Time: v} }

func Null() Scalar { return Scalar{Kind: NullKind} }

func Entity(e *datastorepb.Entity) Scalar { return Scalar{Kind: EntityKind, Entity: e} }

// IntermediateRepresentation holds a parsed JSON document.
type IntermediateRepresentation struct {
	Root        Node
	RootIsArray bool // True if the root of the JSON is an array vs an object
}
