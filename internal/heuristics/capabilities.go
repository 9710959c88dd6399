package heuristics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Param describes one capability argument.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Capability is a named lookup a generation backend may invoke on behalf of
// the model.
type Capability struct {
	Name        string
	Description string
	Params      []Param
	invoke      func(args json.RawMessage) (any, error)
}

// Invoke decodes args and runs the lookup. Empty or null args use defaults.
func (c Capability) Invoke(args json.RawMessage) (any, error) {
	if c.invoke == nil {
		return nil, fmt.Errorf("capability %q has no implementation", c.Name)
	}
	return c.invoke(args)
}

// Capabilities is an ordered set of capabilities.
type Capabilities struct {
	items []Capability
}

// NewCapabilities builds a set from the given capabilities. Later entries
// replace earlier ones with the same name.
func NewCapabilities(items ...Capability) Capabilities {
	set := Capabilities{}
	for _, item := range items {
		replaced := false
		for i := range set.items {
			if set.items[i].Name == item.Name {
				set.items[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			set.items = append(set.items, item)
		}
	}
	return set
}

// All returns the capabilities in registration order.
func (c Capabilities) All() []Capability {
	return append([]Capability(nil), c.items...)
}

// Len reports how many capabilities are in the set.
func (c Capabilities) Len() int {
	return len(c.items)
}

// Names returns the capability names in registration order.
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(c.items))
	for _, item := range c.items {
		names = append(names, item.Name)
	}
	return names
}

// Lookup finds a capability by name.
func (c Capabilities) Lookup(name string) (Capability, bool) {
	for _, item := range c.items {
		if item.Name == name {
			return item, true
		}
	}
	return Capability{}, false
}

// Capability names.
const (
	CapabilityTropes = "get_tropes"
	CapabilityPacing = "rhythm_template"
	CapabilityTitles = "catchy_titles"
)

// DefaultCapabilities exposes Tropes, Pacing, and TitleVariants.
func DefaultCapabilities() Capabilities {
	return NewCapabilities(
		Capability{
			Name:        CapabilityTropes,
			Description: "Return common trope keywords for a genre to guide plotting.",
			Params: []Param{
				{Name: "genre", Type: "string", Description: "genre such as urban, historical, workplace, campus, xianxia, scifi", Required: true},
			},
			invoke: func(args json.RawMessage) (any, error) {
				var in struct {
					Genre string `json:"genre"`
				}
				if err := decodeArgs(args, &in); err != nil {
					return nil, err
				}
				return Tropes(in.Genre), nil
			},
		},
		Capability{
			Name:        CapabilityPacing,
			Description: "Return a scene rhythm template with beat ratios and directing tips.",
			Params: []Param{
				{Name: "pacing", Type: "string", Description: "pacing style: fast or punchy"},
			},
			invoke: func(args json.RawMessage) (any, error) {
				in := struct {
					Pacing string `json:"pacing"`
				}{Pacing: PacingFast}
				if err := decodeArgs(args, &in); err != nil {
					return nil, err
				}
				return Pacing(in.Pacing), nil
			},
		},
		Capability{
			Name:        CapabilityTitles,
			Description: "Generate up to five catchy title variants from a seed phrase.",
			Params: []Param{
				{Name: "seed", Type: "string", Description: "theme or logline to build titles from", Required: true},
				{Name: "count", Type: "integer", Description: "number of titles, 1 to 5"},
			},
			invoke: func(args json.RawMessage) (any, error) {
				in := struct {
					Seed  string `json:"seed"`
					Count int    `json:"count"`
				}{Count: MaxTitleVariants}
				if err := decodeArgs(args, &in); err != nil {
					return nil, err
				}
				return TitleVariants(in.Seed, in.Count), nil
			},
		},
	)
}

func decodeArgs(args json.RawMessage, target any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, target); err != nil {
		return fmt.Errorf("decode capability arguments: %w", err)
	}
	return nil
}
