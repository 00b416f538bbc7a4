package spec

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// Format selects the configuration syntax. The caller chooses it from an
// external signal such as the file extension; Parse never sniffs formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatDSL  Format = "dsl"
)

// FormatForPath maps a config file extension to its format: .json for JSON
// documents, .surge for the cluster DSL.
func FormatForPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".surge":
		return FormatDSL, nil
	default:
		return "", fmt.Errorf("unknown config file format %q, expected a .json or .surge file", path)
	}
}

// Parse converts raw configuration text into a Config. Malformed input
// yields a *ParseError; unknown keys are collected on Config.Warnings and
// never fail the parse.
func Parse(text []byte, format Format) (*Config, error) {
	switch format {
	case FormatJSON:
		return parseJSON(text)
	case FormatDSL:
		return parseDSL(string(text))
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

func parseJSON(text []byte) (*Config, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(text, &doc); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("not a JSON object: %v", err)}
	}

	cfg := &Config{Cluster: New()}

	if raw, ok := doc["cluster"]; ok {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, &ParseError{Field: "cluster", Reason: fmt.Sprintf("must be an object: %v", err)}
		}
		warnings, err := applyClusterFields(&cfg.Cluster, fields)
		if err != nil {
			return nil, err
		}
		cfg.Warnings = append(cfg.Warnings, warnings...)
	}

	// deploymentInfos is the legacy spelling, accepted on input only.
	rawDeployments, ok := doc["deployments"]
	if !ok {
		rawDeployments, ok = doc["deploymentInfos"]
	}
	if ok {
		var entries []any
		if err := json.Unmarshal(rawDeployments, &entries); err != nil {
			return nil, &ParseError{Field: "deployments", Reason: fmt.Sprintf("must be a list: %v", err)}
		}
		deployments, err := buildDeployments(entries)
		if err != nil {
			return nil, err
		}
		cfg.Deployments = deployments
	}

	for key := range doc {
		switch key {
		case "cluster", "deployments", "deploymentInfos":
		default:
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("key %q is not a valid config parameter", key))
		}
	}
	sort.Strings(cfg.Warnings)

	return cfg, nil
}

// applyClusterFields copies the recognized cluster keys onto the spec,
// enforcing value types. Unknown keys are returned as warnings.
func applyClusterFields(s *ClusterSpec, fields map[string]any) ([]string, error) {
	var warnings []string
	for key, value := range fields {
		switch key {
		case "name":
			v, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			s.Name = v
		case "cpus":
			v, err := asInt(key, value)
			if err != nil {
				return nil, err
			}
			s.CPUs = v
		case "ram":
			v, err := asInt(key, value)
			if err != nil {
				return nil, err
			}
			s.RAMMb = v
		case "disks":
			v, err := asIntList(key, value)
			if err != nil {
				return nil, err
			}
			s.SetDisks(v)
		case "imageId":
			v, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			s.ImageID = v
		case "locationId":
			v, err := asString(key, value)
			if err != nil {
				return nil, err
			}
			s.LocationID = v
		case "nodes":
			nodes, err := asNodes(value)
			if err != nil {
				return nil, err
			}
			s.Nodes = nodes
		default:
			warnings = append(warnings, fmt.Sprintf("key %q with value %q is not a valid cluster config parameter", key, fmt.Sprint(value)))
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return warnings, nil
}

func asString(field string, value any) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", &ParseError{Field: field, Value: fmt.Sprint(value), Reason: "must be a string"}
	}
	return v, nil
}

func asInt(field string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, &ParseError{Field: field, Value: fmt.Sprint(v), Reason: "must be an integer"}
		}
		return int(v), nil
	default:
		return 0, &ParseError{Field: field, Value: fmt.Sprint(value), Reason: "must be an integer"}
	}
}

func asIntList(field string, value any) ([]int, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, &ParseError{Field: field, Value: fmt.Sprint(value), Reason: "must be a list of integers"}
	}
	out := make([]int, 0, len(list))
	for _, elem := range list {
		v, err := asInt(field, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func asStringList(field string, value any) ([]string, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, &ParseError{Field: field, Value: fmt.Sprint(value), Reason: "must be a list of strings"}
	}
	out := make([]string, 0, len(list))
	for _, elem := range list {
		v, ok := elem.(string)
		if !ok {
			return nil, &ParseError{Field: field, Value: fmt.Sprint(elem), Reason: "must be a string"}
		}
		out = append(out, v)
	}
	return out, nil
}

// asNodes dispatches the nodes union: an integer becomes a count, a list of
// strings becomes explicit names.
func asNodes(value any) (NodesField, error) {
	if _, isList := value.([]any); isList {
		names, err := asStringList("nodes", value)
		if err != nil {
			return NodesField{}, err
		}
		return NamedNodes(names), nil
	}
	count, err := asInt("nodes", value)
	if err != nil {
		return NodesField{}, &ParseError{Field: "nodes", Value: fmt.Sprint(value), Reason: "must be a count or a list of names"}
	}
	return CountNodes(count), nil
}

func buildDeployments(entries []any) ([]Deployment, error) {
	deployments := make([]Deployment, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			deployments = append(deployments, Deployment{Name: v})
		case map[string]any:
			d, err := deploymentFromObject(v)
			if err != nil {
				return nil, err
			}
			deployments = append(deployments, d)
		default:
			return nil, &ParseError{Field: "deployments", Value: fmt.Sprint(entry), Reason: "must be a directive name or a {name: params} object"}
		}
	}
	return deployments, nil
}

// deploymentFromObject accepts the single-key form {directive: {params}}.
func deploymentFromObject(obj map[string]any) (Deployment, error) {
	if len(obj) != 1 {
		return Deployment{}, &ParseError{Field: "deployments", Value: fmt.Sprint(obj), Reason: "directive object must have exactly one key"}
	}
	for name, rawParams := range obj {
		params, ok := rawParams.(map[string]any)
		if !ok {
			return Deployment{}, &ParseError{Field: name, Value: fmt.Sprint(rawParams), Reason: "directive parameters must be an object"}
		}
		d := Deployment{Name: name, Params: make(map[string]string, len(params))}
		for k, v := range params {
			d.Params[k] = fmt.Sprint(v)
		}
		return d, nil
	}
	return Deployment{}, nil // unreachable, len(obj) == 1
}

// clusterJSON is the serialized shape of a ClusterSpec. Disks carries only
// the user-supplied capacities so that parsing a serialized spec does not
// prepend a second OS disk.
type clusterJSON struct {
	Name       string     `json:"name,omitempty"`
	CPUs       int        `json:"cpus"`
	Disks      []int      `json:"disks,omitempty"`
	ImageID    string     `json:"imageId"`
	LocationID string     `json:"locationId,omitempty"`
	Nodes      NodesField `json:"nodes"`
	RAMMb      int        `json:"ram"`
}

// MarshalJSON serializes the spec so that Parse round-trips it: all
// defaulted fields are written explicitly except the name, which stays
// absent until finalized.
func (s ClusterSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(clusterJSON{
		Name:       s.Name,
		CPUs:       s.CPUs,
		Disks:      s.UserDisks(),
		ImageID:    s.ImageID,
		LocationID: s.LocationID,
		Nodes:      s.Nodes,
		RAMMb:      s.RAMMb,
	})
}

// UnmarshalJSON accepts the same shape MarshalJSON produces, filling
// defaults for absent fields.
func (s *ClusterSpec) UnmarshalJSON(data []byte) error {
	out := New()
	aux := clusterJSON{
		CPUs:    out.CPUs,
		ImageID: out.ImageID,
		Nodes:   out.Nodes,
		RAMMb:   out.RAMMb,
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	out.Name = aux.Name
	out.CPUs = aux.CPUs
	out.ImageID = aux.ImageID
	out.LocationID = aux.LocationID
	out.Nodes = aux.Nodes
	out.RAMMb = aux.RAMMb
	if len(aux.Disks) > 0 {
		out.SetDisks(aux.Disks)
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalJSON writes the single-key directive form, or a bare string when
// the directive has no parameters.
func (d Deployment) MarshalJSON() ([]byte, error) {
	if len(d.Params) == 0 {
		return json.Marshal(d.Name)
	}
	return json.Marshal(map[string]map[string]string{d.Name: d.Params})
}

// Serialize renders the config as an indented JSON document in the same
// shape Parse accepts.
func (c *Config) Serialize() ([]byte, error) {
	doc := struct {
		Cluster     ClusterSpec  `json:"cluster"`
		Deployments []Deployment `json:"deployments,omitempty"`
	}{Cluster: c.Cluster, Deployments: c.Deployments}
	return json.MarshalIndent(doc, "", "    ")
}
