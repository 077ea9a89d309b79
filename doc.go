// Package docstream decodes JSON document feeds into typed document
// operations.
//
// A feed is a JSON array of operation objects (or a single object), each
// holding a put, update or remove keyed by document id.  The field values of
// a put and the update operators of an update are decoded against a schema,
// the document type registry of package document, so every produced
// operation is fully typed.
//
// Decoding is pull based: create a Reader over the input and call Next until
// it returns (nil, nil).
//
//	types := document.NewTypeManager()
//	types.Register(albumType)
//	r := docstream.NewReader(in, types)
//	for {
//		op, err := r.Next()
//		if err != nil {
//			return err
//		}
//		if op == nil {
//			return nil
//		}
//		// dispatch on op's concrete type
//	}
package docstream
