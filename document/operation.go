package document

// TestAndSetCondition is an opaque selection-language expression that must
// hold for an operation to take effect.  Enforcement is external; the
// decoder carries it through unmodified.  The empty string means no
// condition.
type TestAndSetCondition string

func (c TestAndSetCondition) IsSet() bool { return c != "" }

// An Operation is one decoded document feed operation.  It is a closed set:
// DocumentPut, DocumentUpdate or DocumentRemove.
type Operation interface {
	DocumentId() DocumentId
	Condition() TestAndSetCondition
	isOperation()
}

// DocumentPut stores a complete document.
type DocumentPut struct {
	Id     DocumentId
	Fields map[string]FieldValue
	Cond   TestAndSetCondition
}

func (p *DocumentPut) DocumentId() DocumentId         { return p.Id }
func (p *DocumentPut) Condition() TestAndSetCondition { return p.Cond }
func (p *DocumentPut) isOperation()                   {}

// Field returns a decoded field value by name.
func (p *DocumentPut) Field(name string) (FieldValue, bool) {
	v, ok := p.Fields[name]
	return v, ok
}

// DocumentUpdate mutates individual fields of a stored document.
type DocumentUpdate struct {
	Id                  DocumentId
	FieldUpdates        []FieldUpdate
	CreateIfNonExistent bool
	Cond                TestAndSetCondition
}

func (u *DocumentUpdate) DocumentId() DocumentId         { return u.Id }
func (u *DocumentUpdate) Condition() TestAndSetCondition { return u.Cond }
func (u *DocumentUpdate) isOperation()                   {}

// FieldUpdate returns the update sequence for the named field, or nil.
func (u *DocumentUpdate) FieldUpdate(name string) *FieldUpdate {
	for i := range u.FieldUpdates {
		if u.FieldUpdates[i].Field == name {
			return &u.FieldUpdates[i]
		}
	}
	return nil
}

// DocumentRemove removes a stored document.
type DocumentRemove struct {
	Id   DocumentId
	Cond TestAndSetCondition
}

func (r *DocumentRemove) DocumentId() DocumentId         { return r.Id }
func (r *DocumentRemove) Condition() TestAndSetCondition { return r.Cond }
func (r *DocumentRemove) isOperation()                   {}
