package graph

import "context"

// EdgeType is the type of a relation between two graph nodes.
type EdgeType string

const (
	// EdgeDependsOn links a condition to a data attribute it tests.
	EdgeDependsOn EdgeType = "DEPENDS_ON"

	// EdgeEvaluates links a rule to one of its conditions.
	EdgeEvaluates EdgeType = "EVALUATES"

	// EdgeProduces links a rule to the output attribute it assigns.
	EdgeProduces EdgeType = "PRODUCES"

	// EdgeTriggers links a rule to a downstream rule or service it invokes.
	EdgeTriggers EdgeType = "TRIGGERS"

	// EdgeSatisfiedBy links a condition to a bound value in a
	// case-specific explanation subgraph. Never part of the static graph.
	EdgeSatisfiedBy EdgeType = "SATISFIED_BY"

	// EdgeContains links a rule set to its rules.
	EdgeContains EdgeType = "CONTAINS"

	// EdgeRequires links a service to a declared input attribute.
	EdgeRequires EdgeType = "REQUIRES"

	// EdgeReturns links a service to a declared output attribute.
	EdgeReturns EdgeType = "RETURNS"
)

// Node labels emitted by the builder.
const (
	LabelAttribute = "Attribute"
	LabelCondition = "Condition"
	LabelRule      = "Rule"
	LabelRuleSet   = "RuleSet"
	LabelService   = "Service"
	LabelValue     = "Value"
)

// Property keys shared by the builder and the explanation engine.
const (
	PropName        = "name"
	PropModel       = "model"
	PropType        = "type"
	PropEnumeration = "enumeration"
	PropRuleSet     = "ruleset"
	PropPosition    = "position"
	PropOrdinal     = "ordinal"
	PropExpr        = "expr"
	PropOutput      = "output"
	PropOutputValue = "output_value"
	PropConsequence = "consequence"
	PropValue       = "value"
	PropTrace       = "trace"
)

// Node is a single graph node: a deterministic identity, a set of
// labels, and a property bag. Nodes are never mutated once emitted; the
// builder replaces properties wholesale on upsert.
type Node struct {
	Identity   string
	Labels     []string
	Properties map[string]interface{}
}

// HasLabel returns true if the node carries the given label.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Edge is a typed relation between two nodes, identified by the triple
// (from, to, type).
type Edge struct {
	From       string
	To         string
	Type       EdgeType
	Properties map[string]interface{}
}

// Pattern describes a query against the store. Zero-valued fields match
// anything. When EdgeType, From, or To is set the query matches edges;
// otherwise it matches nodes by Identity and/or Label.
type Pattern struct {
	Identity string   // exact node identity
	Label    string   // node label
	EdgeType EdgeType // edge type (edge queries)
	From     string   // edge source identity (edge queries)
	To       string   // edge target identity (edge queries)
}

// IsEdgeQuery returns true when the pattern describes an edge match.
func (p Pattern) IsEdgeQuery() bool {
	return p.EdgeType != "" || p.From != "" || p.To != ""
}

// Match is one query result: a node match carries Node, an edge match
// carries Edge.
type Match struct {
	Node *Node
	Edge *Edge
}

// Store is the property-graph store boundary. Implementations must make
// upserts idempotent on identity and serve reads with ordinary read
// isolation; the core never requires transactions beyond that.
type Store interface {
	// UpsertNode creates the node or overwrites its labels and
	// properties, preserving its identity and any existing edges.
	// It reports whether the node was created.
	UpsertNode(ctx context.Context, identity string, labels []string, properties map[string]interface{}) (created bool, err error)

	// UpsertEdge creates the edge or overwrites its properties.
	// It reports whether the edge was created.
	UpsertEdge(ctx context.Context, from, to string, edgeType EdgeType, properties map[string]interface{}) (created bool, err error)

	// Node fetches a node by identity, returning nil when absent.
	Node(ctx context.Context, identity string) (*Node, error)

	// Query returns every node or edge matching the pattern, in
	// deterministic order.
	Query(ctx context.Context, pattern Pattern) ([]Match, error)

	// DeleteNode removes a node and every edge incident to it.
	// Deleting an absent node is a no-op.
	DeleteNode(ctx context.Context, identity string) error

	// Close releases store resources.
	Close() error
}
