package explain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"causeway-hq/causeway/pkg/graph"
)

// Engine produces explanation traces by walking a built decision graph.
// It holds the store read-only; a single Engine is safe for concurrent
// Explain calls.
type Engine struct {
	store  graph.Store
	config Config
	logger *slog.Logger
}

// NewEngine creates an explanation engine over a graph store. A nil
// config selects recompute mode with computed authority.
func NewEngine(store graph.Store, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Mode == "" {
		config.Mode = ModeRecompute
	}
	if config.Authority == "" {
		config.Authority = AuthorityComputed
	}
	return &Engine{
		store:  store,
		config: *config,
		logger: slog.Default().With("component", "explain.engine"),
	}
}

// Explain traces why the target attribute comes out the way it does for
// the given case. The returned trace lists justifying rules in
// derivation order, dependencies before the target.
func (e *Engine) Explain(ctx context.Context, c *Case, target string) (*Trace, error) {
	id := uuid.New()
	logger := e.logger.With("trace", id.String(), "target", target, "mode", string(e.config.Mode))
	logger.Debug("explanation started")

	var (
		trace *Trace
		err   error
	)
	switch e.config.Mode {
	case ModeTrust:
		trace, err = e.explainTrust(ctx, id, c, target)
	case ModeVerify:
		trace, err = e.explainVerify(ctx, id, c, target)
	default:
		trace, err = e.explainRecompute(ctx, id, c, target)
	}
	if err != nil {
		logger.Warn("explanation failed", "error", err)
		return nil, err
	}

	logger.Info("explanation complete",
		"outcome", trace.Outcome,
		"steps", len(trace.Steps),
		"shadowed", len(trace.Shadowed),
	)
	return trace, nil
}

// walk is the per-request traversal state: which attributes are being
// explained (cycle detection) and which are already explained
// (de-duplication).
type walk struct {
	c       *Case
	trace   *Trace
	entered map[string]bool
	chain   []string
	done    map[string]*Step
}

func newWalk(c *Case, trace *Trace) *walk {
	return &walk{
		c:       c,
		trace:   trace,
		entered: make(map[string]bool),
		done:    make(map[string]*Step),
	}
}

func (e *Engine) explainRecompute(ctx context.Context, id uuid.UUID, c *Case, target string) (*Trace, error) {
	trace := &Trace{ID: id, Target: target, Mode: ModeRecompute}
	w := newWalk(c, trace)

	step, err := e.recompute(ctx, w, target)
	if err != nil {
		return nil, err
	}
	trace.Outcome = step.Value
	return trace, nil
}

func (e *Engine) explainTrust(ctx context.Context, id uuid.UUID, c *Case, target string) (*Trace, error) {
	supplied, ok := c.Outcome(target)
	if !ok {
		return nil, &MissingOutcomeError{Target: target, Mode: ModeTrust}
	}

	trace := &Trace{ID: id, Target: target, Mode: ModeTrust, Supplied: supplied}
	w := newWalk(c, trace)
	if err := e.trust(ctx, w, target, supplied); err != nil {
		return nil, err
	}
	trace.Outcome = supplied
	return trace, nil
}

func (e *Engine) explainVerify(ctx context.Context, id uuid.UUID, c *Case, target string) (*Trace, error) {
	supplied, ok := c.Outcome(target)
	if !ok {
		return nil, &MissingOutcomeError{Target: target, Mode: ModeVerify}
	}

	trace := &Trace{ID: id, Target: target, Mode: ModeVerify, Supplied: supplied}
	w := newWalk(c, trace)

	step, err := e.recompute(ctx, w, target)
	if err != nil {
		if _, noRule := err.(*NoApplicableRuleError); noRule && e.config.Authority == AuthoritySupplied {
			// Nothing recomputable, but the supplied outcome still has
			// a rule path to follow.
			trace = &Trace{ID: id, Target: target, Mode: ModeVerify, Supplied: supplied}
			w = newWalk(c, trace)
			if terr := e.trust(ctx, w, target, supplied); terr != nil {
				return nil, terr
			}
			trace.Outcome = supplied
			trace.Mismatch = &Mismatch{Computed: nil, Supplied: supplied, Followed: AuthoritySupplied}
			return trace, nil
		}
		return nil, err
	}

	equal, err := evaluateEqual(step.Value, supplied)
	if err != nil {
		return nil, fmt.Errorf("compare outcomes for %q: %w", target, err)
	}
	if equal {
		trace.Outcome = step.Value
		return trace, nil
	}

	if e.config.Authority == AuthoritySupplied {
		followed := &Trace{ID: id, Target: target, Mode: ModeVerify, Supplied: supplied}
		w = newWalk(c, followed)
		if err := e.trust(ctx, w, target, supplied); err != nil {
			return nil, err
		}
		followed.Outcome = supplied
		followed.Mismatch = &Mismatch{Computed: step.Value, Supplied: supplied, Followed: AuthoritySupplied}
		return followed, nil
	}

	trace.Outcome = step.Value
	trace.Mismatch = &Mismatch{Computed: step.Value, Supplied: supplied, Followed: AuthorityComputed}
	return trace, nil
}

// recompute explains one attribute by evaluating its producing rules in
// precedence order. The justifying step is appended to the trace and
// indexed for reuse.
func (e *Engine) recompute(ctx context.Context, w *walk, qname string) (*Step, error) {
	if step, ok := w.done[qname]; ok {
		return step, nil
	}
	if w.entered[qname] {
		return nil, &CyclicDependencyError{Attribute: qname, Chain: append(append([]string(nil), w.chain...), qname)}
	}
	w.entered[qname] = true
	w.chain = append(w.chain, qname)
	defer func() {
		delete(w.entered, qname)
		w.chain = w.chain[:len(w.chain)-1]
	}()

	producers, err := e.producersOf(ctx, qname)
	if err != nil {
		return nil, err
	}
	if len(producers) == 0 {
		return nil, &NoApplicableRuleError{Target: qname}
	}

	bestRule, bestRuleSet := "", ""
	bestSatisfied, bestTotal := -1, 0
	for i, rule := range producers {
		facts, satisfied, err := e.evalRule(ctx, w, rule)
		if err != nil {
			return nil, err
		}
		if satisfied {
			step := stepFrom(rule, facts)
			w.trace.Steps = append(w.trace.Steps, step)
			w.done[qname] = step
			for _, shadowed := range producers[i+1:] {
				w.trace.Shadowed = append(w.trace.Shadowed, &ShadowedRule{
					Rule:     shadowed.Identity,
					Produces: qname,
					Position: intProp(shadowed.Properties, graph.PropPosition),
				})
			}
			return step, nil
		}
		count := satisfiedCount(facts)
		if count > bestSatisfied {
			bestSatisfied = count
			bestTotal = len(facts)
			bestRule = rule.Identity
			bestRuleSet, _ = rule.Properties[graph.PropRuleSet].(string)
		}
	}

	return nil, &NoApplicableRuleError{
		Target:      qname,
		RuleSet:     bestRuleSet,
		NearestMiss: bestRule,
		Satisfied:   bestSatisfied,
		Total:       bestTotal,
	}
}

// trust selects the first precedence-ordered producer whose consequence
// yields the supplied outcome. Conditions are evaluated for annotation
// only.
func (e *Engine) trust(ctx context.Context, w *walk, qname string, supplied interface{}) error {
	producers, err := e.producersOf(ctx, qname)
	if err != nil {
		return err
	}

	for i, rule := range producers {
		yields := rule.Properties[graph.PropOutputValue]
		equal, err := evaluateEqual(yields, supplied)
		if err != nil {
			return fmt.Errorf("compare consequence of %q: %w", rule.Identity, err)
		}
		if !equal {
			continue
		}

		facts, _, err := e.evalRule(ctx, w, rule)
		if err != nil {
			return err
		}
		step := stepFrom(rule, facts)
		step.Value = supplied
		w.trace.Steps = append(w.trace.Steps, step)
		w.done[qname] = step
		for _, shadowed := range producers[i+1:] {
			w.trace.Shadowed = append(w.trace.Shadowed, &ShadowedRule{
				Rule:     shadowed.Identity,
				Produces: qname,
				Position: intProp(shadowed.Properties, graph.PropPosition),
			})
		}
		return nil
	}

	return fmt.Errorf("no rule producing %q yields the supplied outcome %v", qname, supplied)
}

// evalRule evaluates every condition of a rule. Conditions are all
// evaluated rather than short-circuited so the trace can name exactly
// which ones failed.
func (e *Engine) evalRule(ctx context.Context, w *walk, rule *graph.Node) ([]*ConditionFact, bool, error) {
	conditions, err := e.conditionsOf(ctx, rule.Identity)
	if err != nil {
		return nil, false, err
	}

	facts := make([]*ConditionFact, 0, len(conditions))
	satisfied := true
	for _, cond := range conditions {
		expr, err := exprOf(cond)
		if err != nil {
			return nil, false, fmt.Errorf("condition %q: %w", cond.Identity, err)
		}
		ok, comparisons, err := e.evalExpr(ctx, w, expr)
		if err != nil {
			return nil, false, fmt.Errorf("condition %q: %w", cond.Identity, err)
		}
		facts = append(facts, &ConditionFact{
			Condition:   cond.Identity,
			Kind:        expr.Kind,
			Satisfied:   ok,
			Comparisons: comparisons,
		})
		if !ok {
			satisfied = false
		}
	}
	return facts, satisfied, nil
}

// evalExpr evaluates a condition expression tree against the case,
// recursing into derived attributes through the walk.
func (e *Engine) evalExpr(ctx context.Context, w *walk, expr *graph.ConditionExpr) (bool, []Comparison, error) {
	switch expr.Kind {
	case "all":
		result := true
		var comparisons []Comparison
		for _, child := range expr.Children {
			ok, comps, err := e.evalExpr(ctx, w, child)
			if err != nil {
				return false, nil, err
			}
			comparisons = append(comparisons, comps...)
			if !ok {
				result = false
			}
		}
		return result, comparisons, nil

	case "any":
		result := false
		var comparisons []Comparison
		for _, child := range expr.Children {
			ok, comps, err := e.evalExpr(ctx, w, child)
			if err != nil {
				return false, nil, err
			}
			comparisons = append(comparisons, comps...)
			if ok {
				result = true
			}
		}
		return result, comparisons, nil

	case "not":
		if len(expr.Children) != 1 {
			return false, nil, fmt.Errorf("not condition has %d children", len(expr.Children))
		}
		ok, comps, err := e.evalExpr(ctx, w, expr.Children[0])
		if err != nil {
			return false, nil, err
		}
		return !ok, comps, nil

	default:
		actual, bound, derived, err := e.valueOf(ctx, w, expr.Attribute)
		if err != nil {
			return false, nil, err
		}
		comparison := Comparison{
			Attribute: expr.Attribute,
			Operator:  expr.Operator,
			Expected:  expr.Value,
			Actual:    actual,
			Bound:     bound,
			Derived:   derived,
		}
		if bound {
			ok, err := evaluateOperator(expr.Operator, actual, expr.Value)
			if err != nil {
				return false, nil, fmt.Errorf("evaluate %s %s: %w", expr.Attribute, expr.Operator, err)
			}
			comparison.Satisfied = ok
		}
		return comparison.Satisfied, []Comparison{comparison}, nil
	}
}

// valueOf resolves the current value of an attribute for the case:
// a direct input binding, a trusted outcome, or a recursively explained
// derived value. An attribute with producers but no applicable rule is
// reported unbound rather than failing the enclosing explanation.
func (e *Engine) valueOf(ctx context.Context, w *walk, qname string) (value interface{}, bound, derived bool, err error) {
	if v, ok := w.c.Input(qname); ok {
		return v, true, false, nil
	}
	if e.config.Mode == ModeTrust {
		if v, ok := w.c.Outcome(qname); ok {
			return v, true, false, nil
		}
	}

	producers, err := e.producersOf(ctx, qname)
	if err != nil {
		return nil, false, false, err
	}
	if len(producers) == 0 {
		return nil, false, false, nil
	}

	step, err := e.recompute(ctx, w, qname)
	if err != nil {
		if _, noRule := err.(*NoApplicableRuleError); noRule {
			return nil, false, true, nil
		}
		return nil, false, false, err
	}
	return step.Value, true, true, nil
}

// producersOf returns the rule nodes producing an attribute, in
// precedence order: rule set position, then rule position.
func (e *Engine) producersOf(ctx context.Context, qname string) ([]*graph.Node, error) {
	matches, err := e.store.Query(ctx, graph.Pattern{EdgeType: graph.EdgeProduces, To: qname})
	if err != nil {
		return nil, fmt.Errorf("query producers of %q: %w", qname, err)
	}

	type producer struct {
		node       *graph.Node
		ruleSetPos int
		rulePos    int
	}
	producers := make([]producer, 0, len(matches))
	for _, m := range matches {
		node, err := e.store.Node(ctx, m.Edge.From)
		if err != nil {
			return nil, fmt.Errorf("fetch rule %q: %w", m.Edge.From, err)
		}
		if node == nil {
			continue
		}
		rsPos, err := e.ruleSetPosition(ctx, node)
		if err != nil {
			return nil, err
		}
		producers = append(producers, producer{
			node:       node,
			ruleSetPos: rsPos,
			rulePos:    intProp(node.Properties, graph.PropPosition),
		})
	}

	sort.Slice(producers, func(i, j int) bool {
		if producers[i].ruleSetPos != producers[j].ruleSetPos {
			return producers[i].ruleSetPos < producers[j].ruleSetPos
		}
		if producers[i].rulePos != producers[j].rulePos {
			return producers[i].rulePos < producers[j].rulePos
		}
		return producers[i].node.Identity < producers[j].node.Identity
	})

	nodes := make([]*graph.Node, len(producers))
	for i, p := range producers {
		nodes[i] = p.node
	}
	return nodes, nil
}

func (e *Engine) ruleSetPosition(ctx context.Context, rule *graph.Node) (int, error) {
	model, _ := rule.Properties[graph.PropModel].(string)
	ruleSet, _ := rule.Properties[graph.PropRuleSet].(string)
	node, err := e.store.Node(ctx, model+"/"+ruleSet)
	if err != nil {
		return 0, fmt.Errorf("fetch rule set %q: %w", model+"/"+ruleSet, err)
	}
	if node == nil {
		return 0, nil
	}
	return intProp(node.Properties, graph.PropPosition), nil
}

// conditionsOf returns a rule's condition nodes in ordinal order.
func (e *Engine) conditionsOf(ctx context.Context, ruleIdentity string) ([]*graph.Node, error) {
	matches, err := e.store.Query(ctx, graph.Pattern{EdgeType: graph.EdgeEvaluates, From: ruleIdentity})
	if err != nil {
		return nil, fmt.Errorf("query conditions of %q: %w", ruleIdentity, err)
	}

	type entry struct {
		ordinal int
		node    *graph.Node
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		node, err := e.store.Node(ctx, m.Edge.To)
		if err != nil {
			return nil, fmt.Errorf("fetch condition %q: %w", m.Edge.To, err)
		}
		if node == nil {
			continue
		}
		entries = append(entries, entry{
			ordinal: intProp(m.Edge.Properties, graph.PropOrdinal),
			node:    node,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ordinal < entries[j].ordinal })

	nodes := make([]*graph.Node, len(entries))
	for i, ent := range entries {
		nodes[i] = ent.node
	}
	return nodes, nil
}

func stepFrom(rule *graph.Node, facts []*ConditionFact) *Step {
	ruleSet, _ := rule.Properties[graph.PropRuleSet].(string)
	produces, _ := rule.Properties[graph.PropOutput].(string)
	return &Step{
		Rule:       rule.Identity,
		RuleSet:    ruleSet,
		Position:   intProp(rule.Properties, graph.PropPosition),
		Produces:   produces,
		Value:      rule.Properties[graph.PropOutputValue],
		Conditions: facts,
	}
}

func satisfiedCount(facts []*ConditionFact) int {
	count := 0
	for _, f := range facts {
		if f.Satisfied {
			count++
		}
	}
	return count
}

// intProp reads an integer property, tolerating the float64 shape JSON
// round-trips produce.
func intProp(props map[string]interface{}, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
