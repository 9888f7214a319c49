package parser

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// Document kinds recognized in model sources.
const (
	kindData    = "data"
	kindRules   = "rules"
	kindService = "service"
)

// yamlDocument is the intermediate structure for one model document.
// It matches the YAML shape before transformation to the AST. Condition
// and consequence bodies stay as raw yaml.Node values because their shape
// is polymorphic; the builder interprets them and reports malformed
// shapes with their original line numbers.
type yamlDocument struct {
	Kind  string `yaml:"kind"`
	Model string `yaml:"model"`

	// kind: data
	Attributes []yamlAttribute `yaml:"attributes"`

	// kind: rules
	RuleSet string     `yaml:"ruleset"`
	Rules   []yamlRule `yaml:"rules"`

	// kind: service
	Services []yamlService `yaml:"services"`

	node *yaml.Node // Original document node for line numbers
}

// yamlAttribute is an intermediate data attribute declaration.
type yamlAttribute struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Values []string `yaml:"values"`

	node *yaml.Node
}

// UnmarshalYAML captures the attribute's node for error locations.
func (a *yamlAttribute) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlAttribute
	if err := node.Decode((*plain)(a)); err != nil {
		return err
	}
	a.node = node
	return nil
}

// yamlRule is an intermediate rule declaration. Then is a value, not a
// pointer: yaml.v3 leaves pointer-typed yaml.Node fields zero-valued,
// so presence is checked via Kind instead.
type yamlRule struct {
	Name string      `yaml:"name"`
	When []yaml.Node `yaml:"when"`
	Then yaml.Node   `yaml:"then"`

	node *yaml.Node
}

// UnmarshalYAML captures the rule's node for error locations.
func (r *yamlRule) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlRule
	if err := node.Decode((*plain)(r)); err != nil {
		return err
	}
	r.node = node
	return nil
}

// yamlService is an intermediate service declaration.
type yamlService struct {
	Name     string   `yaml:"name"`
	RuleSets []string `yaml:"rulesets"`
	Inputs   []string `yaml:"inputs"`
	Outputs  []string `yaml:"outputs"`

	node *yaml.Node
}

// UnmarshalYAML captures the service's node for error locations.
func (s *yamlService) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlService
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.node = node
	return nil
}

// parseYAMLBytes parses one source file, which may hold several YAML
// documents separated by "---", into intermediate structures.
func parseYAMLBytes(data []byte) ([]*yamlDocument, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []*yamlDocument
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		var doc yamlDocument
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		doc.node = &node
		docs = append(docs, &doc)
	}

	return docs, nil
}

// nodeLine returns the line and column of a YAML node, or zeros when the
// node is nil.
func nodeLine(node *yaml.Node) (int, int) {
	if node == nil {
		return 0, 0
	}
	return node.Line, node.Column
}
