package ast

// AttributeType represents the declared type of a data attribute.
type AttributeType string

const (
	AttributeTypeEnumeration AttributeType = "enumeration"
	AttributeTypeNumber      AttributeType = "number"
	AttributeTypeBoolean     AttributeType = "boolean"
	AttributeTypeString      AttributeType = "string"
	AttributeTypeDate        AttributeType = "date"
)

// IsValidAttributeType returns true if t names a known attribute type.
func IsValidAttributeType(t AttributeType) bool {
	switch t {
	case AttributeTypeEnumeration, AttributeTypeNumber, AttributeTypeBoolean,
		AttributeTypeString, AttributeTypeDate:
		return true
	}
	return false
}

// DataAttribute is a named, typed attribute declared in a data model.
// Attributes are immutable after load; their identity is the qualified
// name, which is unique across the whole decision model.
type DataAttribute struct {
	Model       string        // Owning data model name
	Name        string        // Attribute name, unique within the model
	Type        AttributeType // Declared type
	Enumeration []string      // Allowed values, only for enumeration attributes
	Location    Location      // Source location
}

// QualifiedName returns the globally unique "model.name" identity.
func (a *DataAttribute) QualifiedName() string {
	return a.Model + "." + a.Name
}

// AllowsValue reports whether v is a member of the enumeration value set.
// Non-enumeration attributes allow any value.
func (a *DataAttribute) AllowsValue(v string) bool {
	if a.Type != AttributeTypeEnumeration {
		return true
	}
	for _, allowed := range a.Enumeration {
		if allowed == v {
			return true
		}
	}
	return false
}

// AttrRef is a reference to a data attribute by qualified name.
// Target is nil until the resolver links it; a nil Target after
// resolution indicates a dangling reference.
type AttrRef struct {
	Name     string         // Qualified name as written in the source
	Target   *DataAttribute // Resolved attribute, nil while dangling
	Location Location       // Where the reference was written
}

// Resolved returns true once the reference has been linked to its target.
func (r *AttrRef) Resolved() bool {
	return r != nil && r.Target != nil
}
