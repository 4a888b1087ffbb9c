package policy

// Field names a mutable complaint attribute.
type Field string

const (
	FieldCategoryID  Field = "category_id"
	FieldStatusID    Field = "status_id"
	FieldSubject     Field = "subject"
	FieldDescription Field = "description"
	FieldIsAnonymous Field = "is_anonymous"
	FieldIsResolved  Field = "is_resolved"
	FieldAttachments Field = "attachments"
)

// FieldSet is an unordered set of complaint fields.
type FieldSet map[Field]struct{}

// NewFieldSet builds a set from the given fields.
func NewFieldSet(fields ...Field) FieldSet {
	set := make(FieldSet, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the field.
func (s FieldSet) Has(field Field) bool {
	_, ok := s[field]
	return ok
}

// Add inserts a field.
func (s FieldSet) Add(field Field) {
	s[field] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(s))
	for field := range s {
		out[field] = struct{}{}
	}
	return out
}

// Intersect returns the fields present in both sets.
func (s FieldSet) Intersect(other FieldSet) FieldSet {
	out := make(FieldSet)
	for field := range s {
		if other.Has(field) {
			out[field] = struct{}{}
		}
	}
	return out
}

var (
	ownerFields  = NewFieldSet(FieldCategoryID, FieldSubject, FieldDescription, FieldIsAnonymous, FieldAttachments)
	triageFields = NewFieldSet(FieldCategoryID, FieldStatusID, FieldSubject, FieldDescription, FieldIsAnonymous, FieldIsResolved, FieldAttachments)
)

// ComplaintFieldsFor returns the complaint fields the actor's role may write.
// Fields outside the list are dropped from update payloads rather than rejected.
func ComplaintFieldsFor(actor Actor) FieldSet {
	if actor.Can(CapTriageComplaints) {
		return triageFields.Clone()
	}
	return ownerFields.Clone()
}
