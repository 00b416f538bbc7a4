// Package spec defines the normalized cluster specification and the parsers
// that produce it from JSON documents or the bracketed cluster DSL.
//
// Cluster DSL
//
// The DSL blends a bracketed cluster block with an optional deployments list:
//
//	cluster {
//	    name: demo
//	    nodes: 3
//	    disks: [100,100,100]
//	}
//	deployments: [
//	    ssh.AddAuthorizedKey: {
//	        publicKeyPath: ~/.ssh/id_rsa.pub
//	    }
//	    software.UpdateKernel
//	]
package spec

import (
	"fmt"
	"os"
	"os/user"
	"time"
)

// Defaults applied to fields left unset by the configuration source.
const (
	DefaultCPUs      = 2
	DefaultRAMMb     = 2048
	DefaultImageID   = "centos-7.2"
	DefaultNodeCount = 3

	// OSDiskGB is the capacity of the implicit OS disk that always occupies
	// the first slot of the disk list. It is not user-settable.
	OSDiskGB = 100
)

// ClusterSpec is the normalized description of a desired cluster, merged
// from defaults, an optional config file and CLI overrides. It is built once
// per invocation and consumed exactly once by the resolver.
type ClusterSpec struct {
	// Name is the cluster label. Empty until finalized; FinalizeName fills
	// in the {user}-{timestamp} default at resolution time so a reused spec
	// never carries a stale timestamp.
	Name string

	// CPUs is the number of cpus per node.
	CPUs int

	// RAMMb is the ram per node in MB.
	RAMMb int

	// Disks holds the disk capacities in GB. Disks[0] is always the OS disk.
	Disks []int

	// ImageID identifies the node image in the driver inventory.
	ImageID string

	// LocationID identifies the location. Empty means "driver default".
	LocationID string

	// Nodes carries either explicit node names or a node count.
	Nodes NodesField
}

// New returns a ClusterSpec populated with the typed defaults. The name is
// deliberately left empty; see FinalizeName.
func New() ClusterSpec {
	return ClusterSpec{
		CPUs:    DefaultCPUs,
		RAMMb:   DefaultRAMMb,
		Disks:   []int{OSDiskGB},
		ImageID: DefaultImageID,
		Nodes:   CountNodes(DefaultNodeCount),
	}
}

// WithOSDisk prepends the implicit OS disk to the user-supplied capacities.
// Callers must only ever pass the user portion of a disk list, so the
// prepend happens exactly once per merged value.
func WithOSDisk(userDisks []int) []int {
	disks := make([]int, 0, len(userDisks)+1)
	disks = append(disks, OSDiskGB)
	return append(disks, userDisks...)
}

// SetDisks replaces the disk list with the given user capacities, reapplying
// the OS disk prepend.
func (s *ClusterSpec) SetDisks(userDisks []int) {
	s.Disks = WithOSDisk(userDisks)
}

// UserDisks returns the user-supplied portion of the disk list, i.e.
// everything after the implicit OS disk.
func (s ClusterSpec) UserDisks() []int {
	if len(s.Disks) <= 1 {
		return nil
	}
	return s.Disks[1:]
}

// FinalizeName fills in the default cluster name if none was set. The
// default is computed at call time, not at parse time.
func (s *ClusterSpec) FinalizeName() {
	if s.Name == "" {
		s.Name = defaultName(time.Now())
	}
}

// Clone returns a deep copy so overrides never mutate the parsed spec.
func (s ClusterSpec) Clone() ClusterSpec {
	out := s
	out.Disks = append([]int(nil), s.Disks...)
	out.Nodes = s.Nodes.clone()
	return out
}

// Validate reports the first invariant violation, if any.
func (s ClusterSpec) Validate() error {
	if s.CPUs <= 0 {
		return &ParseError{Field: "cpus", Value: fmt.Sprint(s.CPUs), Reason: "must be positive"}
	}
	if s.RAMMb <= 0 {
		return &ParseError{Field: "ram", Value: fmt.Sprint(s.RAMMb), Reason: "must be positive"}
	}
	if len(s.Disks) == 0 || s.Disks[0] != OSDiskGB {
		return &ParseError{Field: "disks", Value: fmt.Sprint(s.Disks), Reason: "missing implicit OS disk"}
	}
	for _, capacity := range s.UserDisks() {
		if capacity <= 0 {
			return &ParseError{Field: "disks", Value: fmt.Sprint(capacity), Reason: "must be positive"}
		}
	}
	return s.Nodes.validate()
}

func defaultName(now time.Time) string {
	return fmt.Sprintf("%s-%d", currentUser(), now.Unix())
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "surge"
}

// Deployment is a named post-creation directive with parameters. Directives
// are parsed and kept in order; their semantics belong to the deployment
// collaborator, not to this package.
type Deployment struct {
	Name   string
	Params map[string]string
}

// Config is the result of parsing a configuration source: the cluster spec,
// the ordered deployment directives and any warnings raised for unknown
// keys. Warnings are data, not ambient logger state, so callers decide how
// to report them.
type Config struct {
	Cluster     ClusterSpec
	Deployments []Deployment
	Warnings    []string
}
