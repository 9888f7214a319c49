package explain

// Case is one input case: attribute bindings keyed by qualified name,
// plus optional outcomes recorded by an external decision run. Outcomes
// are only consulted in trust and verify modes.
type Case struct {
	// Inputs binds qualified attribute names to values. Numbers are
	// float64, matching the loader's normalization.
	Inputs map[string]interface{}

	// Outcomes binds qualified attribute names to externally supplied
	// decision results.
	Outcomes map[string]interface{}
}

// NewCase creates an empty case.
func NewCase() *Case {
	return &Case{
		Inputs:   make(map[string]interface{}),
		Outcomes: make(map[string]interface{}),
	}
}

// Input returns the bound input value for a qualified attribute name.
func (c *Case) Input(qname string) (interface{}, bool) {
	v, ok := c.Inputs[qname]
	return v, ok
}

// Outcome returns the supplied outcome for a qualified attribute name.
func (c *Case) Outcome(qname string) (interface{}, bool) {
	v, ok := c.Outcomes[qname]
	return v, ok
}
