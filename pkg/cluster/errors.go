package cluster

import "fmt"

// ResolutionError reports a symbolic reference (image, location, size,
// cluster or node name) with no match in the driver inventory. Resolution
// failures always abort before any mutating driver call is issued.
type ResolutionError struct {
	// Kind names the inventory that was searched, e.g. "image".
	Kind string
	// Ref is the unresolved reference.
	Ref string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not find %s %q", e.Kind, e.Ref)
}
