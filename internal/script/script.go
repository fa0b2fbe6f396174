// Package script loads and runs YAML mutation scripts against a collection,
// the input format of the demo CLI.
package script

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/bine"
)

// Op is one scripted mutation.
// It uses "mapstructure" tags so YAML keys decode through the generic map.
type Op struct {
	Do     string   `mapstructure:"do"`
	Value  string   `mapstructure:"value"`
	Values []string `mapstructure:"values"`
	Index  int      `mapstructure:"index"`
	Start  int      `mapstructure:"start"`
}

// Script is a replayable mutation sequence with its starting contents.
type Script struct {
	Initial []string `mapstructure:"initial"`
	Ops     []Op     `mapstructure:"ops"`
}

var validOps = map[string]bool{
	"append":       true,
	"append_all":   true,
	"insert":       true,
	"remove_first": true,
	"remove_last":  true,
	"remove_all":   true,
	"remove_at":    true,
	"replace":      true,
	"set":          true,
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML into a Script. The document is unmarshalled into
// generic maps first and then decoded with mapstructure, so unknown keys are
// tolerated but unknown operations are not.
func Parse(data []byte) (*Script, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse script YAML: %w", err)
	}

	var s Script
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}

	for i, op := range s.Ops {
		if !validOps[op.Do] {
			return nil, fmt.Errorf("op %d: unknown operation %q", i, op.Do)
		}
	}
	return &s, nil
}

// Run applies op to c.
func (o Op) Run(c *bine.Collection[string]) error {
	switch o.Do {
	case "append":
		return c.Append(o.Value)
	case "append_all":
		return c.AppendAll(o.Values...)
	case "insert":
		return c.Insert(o.Value, o.Index)
	case "remove_first":
		return c.RemoveFirst()
	case "remove_last":
		return c.RemoveLast()
	case "remove_all":
		return c.RemoveAll()
	case "remove_at":
		return c.RemoveAt(o.Index)
	case "replace":
		return c.Replace(o.Start, o.Values)
	case "set":
		return c.Set(o.Values)
	default:
		return fmt.Errorf("unknown operation %q", o.Do)
	}
}
