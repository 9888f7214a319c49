package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"causeway-hq/causeway/pkg/dml/ast"
	dmlErrors "causeway-hq/causeway/pkg/dml/errors"
)

// builder transforms intermediate YAML documents into an
// ast.DecisionModel, accumulating malformed-shape and duplicate
// definition errors instead of stopping at the first one.
type builder struct {
	model  *ast.DecisionModel
	errors *dmlErrors.ErrorList

	file        string // current source file, for locations
	nextRuleSet int    // next rule set position
}

func newBuilder(name string) *builder {
	return &builder{
		model:  ast.NewDecisionModel(name),
		errors: dmlErrors.NewErrorList(),
	}
}

// addDocument folds one parsed document into the model under construction.
func (b *builder) addDocument(doc *yamlDocument, file string) {
	b.file = file

	switch doc.Kind {
	case kindData:
		b.buildDataModel(doc)
	case kindRules:
		b.buildRuleSet(doc)
	case kindService:
		b.buildServices(doc)
	case "":
		b.errors.AddErrorWithSuggestion(dmlErrors.ErrorTypeMalformed,
			"document is missing the required 'kind' field",
			b.location(doc.node),
			"declare 'kind: data', 'kind: rules', or 'kind: service'")
	default:
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("unrecognized document kind %q", doc.Kind),
			b.location(doc.node))
	}
}

// finish returns the completed model, or the accumulated errors.
// A partially loaded model is never handed out.
func (b *builder) finish() (*ast.DecisionModel, error) {
	if b.errors.HasErrors() {
		return nil, b.errors
	}
	return b.model, nil
}

func (b *builder) buildDataModel(doc *yamlDocument) {
	if doc.Model == "" {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			"data document is missing the required 'model' field",
			b.location(doc.node))
		return
	}

	for _, ya := range doc.Attributes {
		attr := &ast.DataAttribute{
			Model:       doc.Model,
			Name:        ya.Name,
			Type:        ast.AttributeType(ya.Type),
			Enumeration: ya.Values,
			Location:    b.location(ya.node),
		}

		if ya.Name == "" {
			b.errors.AddError(dmlErrors.ErrorTypeMalformed,
				fmt.Sprintf("attribute in model %q is missing a name", doc.Model),
				attr.Location)
			continue
		}
		if ya.Type == "" {
			b.errors.AddError(dmlErrors.ErrorTypeMalformed,
				fmt.Sprintf("attribute %q is missing the required 'type' field", attr.QualifiedName()),
				attr.Location)
			continue
		}
		if !ast.IsValidAttributeType(attr.Type) {
			b.errors.AddErrorWithSuggestion(dmlErrors.ErrorTypeMalformed,
				fmt.Sprintf("attribute %q has unrecognized type %q", attr.QualifiedName(), ya.Type),
				attr.Location,
				"valid types are: enumeration, number, boolean, string, date")
			continue
		}
		if attr.Type == ast.AttributeTypeEnumeration && len(attr.Enumeration) == 0 {
			b.errors.AddError(dmlErrors.ErrorTypeMalformed,
				fmt.Sprintf("enumeration attribute %q declares no values", attr.QualifiedName()),
				attr.Location)
			continue
		}

		if existing, ok := b.model.Attributes[attr.QualifiedName()]; ok {
			b.errors.AddError(dmlErrors.ErrorTypeDuplicate,
				fmt.Sprintf("attribute %q is already defined at %s", attr.QualifiedName(), existing.Location),
				attr.Location)
			continue
		}
		b.model.Attributes[attr.QualifiedName()] = attr
	}
}

func (b *builder) buildRuleSet(doc *yamlDocument) {
	name := doc.RuleSet
	if name == "" {
		name = doc.Model
	}
	if name == "" {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			"rules document is missing both 'ruleset' and 'model' fields",
			b.location(doc.node))
		return
	}

	if existing := b.model.RuleSet(name); existing != nil {
		b.errors.AddError(dmlErrors.ErrorTypeDuplicate,
			fmt.Sprintf("rule set %q is already defined at %s", name, existing.Location),
			b.location(doc.node))
		return
	}

	rs := &ast.RuleSet{
		Name:     name,
		Model:    doc.Model,
		Position: b.nextRuleSet,
		Location: b.location(doc.node),
	}
	b.nextRuleSet++

	// Source order is evaluation precedence: the rule's index in the
	// document is its position, with no renumbering afterwards.
	for i, yr := range doc.Rules {
		rule := b.buildRule(&yr, rs.Name, i)
		if rule == nil {
			continue
		}
		if rs.Rule(rule.Name) != nil {
			b.errors.AddError(dmlErrors.ErrorTypeDuplicate,
				fmt.Sprintf("rule %q is already defined in rule set %q", rule.Name, rs.Name),
				rule.Location)
			continue
		}
		rs.Rules = append(rs.Rules, rule)
	}

	b.model.RuleSets = append(b.model.RuleSets, rs)
}

func (b *builder) buildRule(yr *yamlRule, ruleSet string, position int) *ast.Rule {
	loc := b.location(yr.node)

	if yr.Name == "" {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("rule at position %d in rule set %q is missing a name", position, ruleSet),
			loc)
		return nil
	}

	rule := &ast.Rule{
		Name:     yr.Name,
		RuleSet:  ruleSet,
		Position: position,
		Location: loc,
	}

	for i := range yr.When {
		cond := b.buildCondition(&yr.When[i], rule.QualifiedName())
		if cond != nil {
			rule.Conditions = append(rule.Conditions, cond)
		}
	}

	if yr.Then.Kind == 0 {
		b.errors.AddErrorWithSuggestion(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("rule %q has no consequence", rule.QualifiedName()),
			loc,
			"add a 'then' block with 'set'/'value', 'invoke-rule', or 'invoke-service'")
		return nil
	}
	rule.Consequence = b.buildConsequence(&yr.Then, rule.QualifiedName())
	if rule.Consequence == nil {
		return nil
	}

	return rule
}

// buildCondition interprets one condition node. A condition is either a
// simple comparison (attribute/op/value) or a combinator (all/any/not).
func (b *builder) buildCondition(node *yaml.Node, ruleName string) *ast.Condition {
	loc := b.location(node)

	if node.Kind != yaml.MappingNode {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("condition in rule %q has unrecognized shape (expected a mapping)", ruleName),
			loc)
		return nil
	}

	fields := mappingFields(node)

	// Combinators carry exactly one of the all/any/not keys.
	for key, kind := range map[string]ast.ConditionKind{
		"all": ast.ConditionKindAll,
		"any": ast.ConditionKindAny,
		"not": ast.ConditionKindNot,
	} {
		child, ok := fields[key]
		if !ok {
			continue
		}
		cond := &ast.Condition{Kind: kind, Location: loc}
		switch {
		case kind == ast.ConditionKindNot && child.Kind == yaml.MappingNode:
			if c := b.buildCondition(child, ruleName); c != nil {
				cond.Children = append(cond.Children, c)
			}
		case child.Kind == yaml.SequenceNode:
			for _, item := range child.Content {
				if c := b.buildCondition(item, ruleName); c != nil {
					cond.Children = append(cond.Children, c)
				}
			}
		default:
			b.errors.AddError(dmlErrors.ErrorTypeMalformed,
				fmt.Sprintf("condition %q in rule %q must hold a list of conditions", key, ruleName),
				loc)
			return nil
		}
		if kind == ast.ConditionKindNot && len(cond.Children) != 1 {
			b.errors.AddError(dmlErrors.ErrorTypeMalformed,
				fmt.Sprintf("'not' condition in rule %q must hold exactly one child, got %d", ruleName, len(cond.Children)),
				loc)
			return nil
		}
		return cond
	}

	// Simple condition: attribute op value.
	attrNode, hasAttr := fields["attribute"]
	opNode, hasOp := fields["op"]
	valueNode, hasValue := fields["value"]

	if !hasAttr {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("condition in rule %q is missing the 'attribute' field", ruleName),
			loc)
		return nil
	}
	if !hasOp {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("condition in rule %q is missing the 'op' field", ruleName),
			loc)
		return nil
	}
	if !hasValue {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("condition in rule %q is missing the 'value' field", ruleName),
			loc)
		return nil
	}

	op := ast.Operator(attrString(opNode))
	if !ast.IsValidOperator(op) {
		b.errors.AddErrorWithSuggestion(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("condition in rule %q has unrecognized operator %q", ruleName, attrString(opNode)),
			b.location(opNode),
			"valid operators are: ==, !=, <, >, <=, >=, in, not_in")
		return nil
	}

	value := b.buildValue(valueNode)
	if value == nil {
		return nil
	}

	return &ast.Condition{
		Kind: ast.ConditionKindSimple,
		Attribute: &ast.AttrRef{
			Name:     attrString(attrNode),
			Location: b.location(attrNode),
		},
		Operator: op,
		Value:    value,
		Location: loc,
	}
}

func (b *builder) buildConsequence(node *yaml.Node, ruleName string) *ast.Consequence {
	loc := b.location(node)

	if node.Kind != yaml.MappingNode {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("consequence of rule %q has unrecognized shape (expected a mapping)", ruleName),
			loc)
		return nil
	}
	fields := mappingFields(node)

	if setNode, ok := fields["set"]; ok {
		valueNode, hasValue := fields["value"]
		if !hasValue {
			b.errors.AddError(dmlErrors.ErrorTypeMalformed,
				fmt.Sprintf("consequence of rule %q sets an attribute but has no 'value'", ruleName),
				loc)
			return nil
		}
		value := b.buildValue(valueNode)
		if value == nil {
			return nil
		}
		return &ast.Consequence{
			Kind: ast.ConsequenceAssign,
			Attribute: &ast.AttrRef{
				Name:     attrString(setNode),
				Location: b.location(setNode),
			},
			Value:    value,
			Location: loc,
		}
	}

	if ruleNode, ok := fields["invoke-rule"]; ok {
		return &ast.Consequence{
			Kind:     ast.ConsequenceInvokeRule,
			Rule:     &ast.RuleRef{Name: attrString(ruleNode), Location: b.location(ruleNode)},
			Location: loc,
		}
	}

	if svcNode, ok := fields["invoke-service"]; ok {
		return &ast.Consequence{
			Kind:     ast.ConsequenceInvokeService,
			Service:  &ast.ServiceRef{Name: attrString(svcNode), Location: b.location(svcNode)},
			Location: loc,
		}
	}

	b.errors.AddErrorWithSuggestion(dmlErrors.ErrorTypeMalformed,
		fmt.Sprintf("consequence of rule %q has unrecognized shape", ruleName),
		loc,
		"use 'set'/'value', 'invoke-rule', or 'invoke-service'")
	return nil
}

// buildValue decodes a literal value node. Numbers are normalized to
// float64 so comparisons never depend on the YAML scalar's spelling.
func (b *builder) buildValue(node *yaml.Node) *ast.ValueNode {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("value cannot be decoded: %v", err),
			b.location(node))
		return nil
	}

	v := &ast.ValueNode{Location: b.location(node)}
	switch val := normalizeValue(raw).(type) {
	case nil:
		v.Type = ast.ValueTypeNull
	case string:
		v.Type, v.Value = ast.ValueTypeString, val
	case float64:
		v.Type, v.Value = ast.ValueTypeNumber, val
	case bool:
		v.Type, v.Value = ast.ValueTypeBoolean, val
	case []interface{}:
		v.Type, v.Value = ast.ValueTypeList, val
	default:
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			fmt.Sprintf("value has unsupported type %T", raw),
			b.location(node))
		return nil
	}
	return v
}

func (b *builder) buildServices(doc *yamlDocument) {
	if doc.Model == "" {
		b.errors.AddError(dmlErrors.ErrorTypeMalformed,
			"service document is missing the required 'model' field",
			b.location(doc.node))
		return
	}

	for _, ys := range doc.Services {
		loc := b.location(ys.node)
		if ys.Name == "" {
			b.errors.AddError(dmlErrors.ErrorTypeMalformed,
				fmt.Sprintf("service in model %q is missing a name", doc.Model),
				loc)
			continue
		}
		if existing := b.model.Service(ys.Name); existing != nil {
			b.errors.AddError(dmlErrors.ErrorTypeDuplicate,
				fmt.Sprintf("service %q is already defined at %s", ys.Name, existing.Location),
				loc)
			continue
		}

		svc := &ast.Service{
			Name:     ys.Name,
			Model:    doc.Model,
			RuleSets: ys.RuleSets,
			Location: loc,
		}
		for _, in := range ys.Inputs {
			svc.Inputs = append(svc.Inputs, &ast.AttrRef{Name: in, Location: loc})
		}
		for _, out := range ys.Outputs {
			svc.Outputs = append(svc.Outputs, &ast.AttrRef{Name: out, Location: loc})
		}
		b.model.Services = append(b.model.Services, svc)
	}
}

func (b *builder) location(node *yaml.Node) ast.Location {
	line, col := nodeLine(node)
	return ast.Location{File: b.file, Line: line, Column: col}
}

// mappingFields flattens a YAML mapping node into key -> value node.
func mappingFields(node *yaml.Node) map[string]*yaml.Node {
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = node.Content[i+1]
	}
	return fields
}

// attrString returns the scalar value of a node, or "" for non-scalars.
func attrString(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

// normalizeValue converts decoded YAML values to the engine's canonical
// types: all numbers become float64, lists are normalized element-wise.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
