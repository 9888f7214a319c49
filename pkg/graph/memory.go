package graph

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements the Store interface using in-memory maps.
// It backs tests and ephemeral case-specific subgraphs; persistent
// research graphs use SQLiteStore.
type MemoryStore struct {
	nodes map[string]*Node
	edges map[string]*Edge // keyed "from|type|to"
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

func edgeKey(from string, edgeType EdgeType, to string) string {
	return from + "|" + string(edgeType) + "|" + to
}

// UpsertNode creates the node or overwrites its labels and properties.
func (s *MemoryStore) UpsertNode(ctx context.Context, identity string, labels []string, properties map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.nodes[identity]
	s.nodes[identity] = &Node{
		Identity:   identity,
		Labels:     append([]string(nil), labels...),
		Properties: copyProps(properties),
	}
	return !existed, nil
}

// UpsertEdge creates the edge or overwrites its properties.
func (s *MemoryStore) UpsertEdge(ctx context.Context, from, to string, edgeType EdgeType, properties map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey(from, edgeType, to)
	_, existed := s.edges[key]
	s.edges[key] = &Edge{
		From:       from,
		To:         to,
		Type:       edgeType,
		Properties: copyProps(properties),
	}
	return !existed, nil
}

// Node fetches a node by identity, returning nil when absent.
func (s *MemoryStore) Node(ctx context.Context, identity string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[identity]
	if !ok {
		return nil, nil
	}
	return copyNode(node), nil
}

// Query returns matching nodes or edges in deterministic order.
func (s *MemoryStore) Query(ctx context.Context, pattern Pattern) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match

	if pattern.IsEdgeQuery() {
		for _, edge := range s.edges {
			if pattern.EdgeType != "" && edge.Type != pattern.EdgeType {
				continue
			}
			if pattern.From != "" && edge.From != pattern.From {
				continue
			}
			if pattern.To != "" && edge.To != pattern.To {
				continue
			}
			matches = append(matches, Match{Edge: copyEdge(edge)})
		}
		sort.Slice(matches, func(i, j int) bool {
			a, b := matches[i].Edge, matches[j].Edge
			if a.From != b.From {
				return a.From < b.From
			}
			if a.Type != b.Type {
				return a.Type < b.Type
			}
			return a.To < b.To
		})
		return matches, nil
	}

	for _, node := range s.nodes {
		if pattern.Identity != "" && node.Identity != pattern.Identity {
			continue
		}
		if pattern.Label != "" && !node.HasLabel(pattern.Label) {
			continue
		}
		matches = append(matches, Match{Node: copyNode(node)})
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Node.Identity < matches[j].Node.Identity
	})
	return matches, nil
}

// DeleteNode removes a node and all edges incident to it.
func (s *MemoryStore) DeleteNode(ctx context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.nodes, identity)
	for key, edge := range s.edges {
		if edge.From == identity || edge.To == identity {
			delete(s.edges, key)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the current node and edge counts.
func (s *MemoryStore) Len() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.edges)
}

// copyNode returns a defensive copy so callers never observe mutation.
func copyNode(n *Node) *Node {
	return &Node{
		Identity:   n.Identity,
		Labels:     append([]string(nil), n.Labels...),
		Properties: copyProps(n.Properties),
	}
}

func copyEdge(e *Edge) *Edge {
	return &Edge{
		From:       e.From,
		To:         e.To,
		Type:       e.Type,
		Properties: copyProps(e.Properties),
	}
}

func copyProps(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return nil
	}
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
