package ast

// Service is a named entry point composing one or more rule sets.
// It declares the input attributes a caller must supply and the output
// attributes it produces.
type Service struct {
	Name     string
	Model    string   // Owning model name
	RuleSets []string // Names of composed rule sets, in order
	Inputs   []*AttrRef
	Outputs  []*AttrRef
	Location Location
}

// QualifiedName returns the "model/name" identity of the service.
func (s *Service) QualifiedName() string {
	return s.Model + "/" + s.Name
}

// AttrRefs returns the service's input references followed by its output
// references.
func (s *Service) AttrRefs() []*AttrRef {
	refs := make([]*AttrRef, 0, len(s.Inputs)+len(s.Outputs))
	refs = append(refs, s.Inputs...)
	refs = append(refs, s.Outputs...)
	return refs
}
