package spec

import (
	"encoding/json"
	"fmt"
)

// NodesField is the tagged union behind the `nodes` configuration key, which
// accepts either an integer count or a list of explicit names. The variant
// is decided once at parse time; downstream code never type-switches on the
// raw value again.
//
// The invariant Count == len(Names) holds for every constructed value:
// counts synthesize node1..nodeN names eagerly.
type NodesField struct {
	names    []string
	count    int
	explicit bool
}

// CountNodes builds a NodesField from a node count, synthesizing the names
// node1..nodeN.
func CountNodes(n int) NodesField {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("node%d", i+1)
	}
	return NodesField{names: names, count: n}
}

// NamedNodes builds a NodesField from explicit node names.
func NamedNodes(names []string) NodesField {
	return NodesField{
		names:    append([]string(nil), names...),
		count:    len(names),
		explicit: true,
	}
}

// Names returns the node names in order.
func (n NodesField) Names() []string { return n.names }

// Count returns the node count. It always equals len(Names()).
func (n NodesField) Count() int { return n.count }

// Explicit reports whether the names were user-supplied rather than
// synthesized from a count.
func (n NodesField) Explicit() bool { return n.explicit }

func (n NodesField) clone() NodesField {
	out := n
	out.names = append([]string(nil), n.names...)
	return out
}

func (n NodesField) validate() error {
	if n.count != len(n.names) {
		return &ParseError{Field: "nodes", Value: fmt.Sprint(n.names), Reason: "node count disagrees with node names"}
	}
	if n.count <= 0 {
		return &ParseError{Field: "nodes", Value: fmt.Sprint(n.count), Reason: "must be positive"}
	}
	seen := make(map[string]struct{}, len(n.names))
	for _, name := range n.names {
		if name == "" {
			return &ParseError{Field: "nodes", Value: fmt.Sprint(n.names), Reason: "empty node name"}
		}
		if _, dup := seen[name]; dup {
			return &ParseError{Field: "nodes", Value: name, Reason: "duplicate node name"}
		}
		seen[name] = struct{}{}
	}
	return nil
}

// MarshalJSON preserves the variant: explicit names serialize as a list,
// synthesized names as the originating count.
func (n NodesField) MarshalJSON() ([]byte, error) {
	if n.explicit {
		return json.Marshal(n.names)
	}
	return json.Marshal(n.count)
}

// UnmarshalJSON dispatches on the JSON value type: a number becomes a
// count, an array of strings becomes explicit names.
func (n *NodesField) UnmarshalJSON(data []byte) error {
	var count int
	if err := json.Unmarshal(data, &count); err == nil {
		*n = CountNodes(count)
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return &ParseError{Field: "nodes", Value: string(data), Reason: "must be a count or a list of names"}
	}
	*n = NamedNodes(names)
	return nil
}
