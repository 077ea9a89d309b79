package document

import (
	"fmt"
	"strings"
)

// A DocumentId names a single document.  The string form is
//
//	id:<namespace>:<document-type>:<key/value-pairs>:<user-specific>
//
// e.g. "id:music:album::some-album" or "id:music:album:g=group:some-album".
// The embedded document type name is how a feed operation is matched to its
// schema.  A DocumentId is immutable once created.
type DocumentId struct {
	id        string
	namespace string
	docType   string
}

func NewDocumentId(id string) (DocumentId, error) {
	parts := strings.SplitN(id, ":", 5)
	if len(parts) < 5 || parts[0] != "id" {
		return DocumentId{}, fmt.Errorf("document id %q is not of the form id:<namespace>:<document-type>:<key/value-pairs>:<user-specific>", id)
	}
	if parts[1] == "" {
		return DocumentId{}, fmt.Errorf("document id %q has an empty namespace", id)
	}
	if parts[2] == "" {
		return DocumentId{}, fmt.Errorf("document id %q has an empty document type", id)
	}
	return DocumentId{id: id, namespace: parts[1], docType: parts[2]}, nil
}

// DocType returns the name of the document type embedded in the id.
func (d DocumentId) DocType() string {
	return d.docType
}

func (d DocumentId) Namespace() string {
	return d.namespace
}

func (d DocumentId) String() string {
	return d.id
}
