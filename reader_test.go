package docstream

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docstream-io/docstream/document"
)

func testTypes() *document.TypeManager {
	ss := document.NewStructType("ss").
		AddField("name", document.TypeString).
		AddField("count", document.TypeInt)

	smoke := document.NewDocumentType("smoke").
		AddField("something", document.TypeString).
		AddField("count", document.TypeInt).
		AddField("bignum", document.TypeLong).
		AddField("tiny", document.TypeByte).
		AddField("ratio", document.TypeFloat).
		AddField("precise", document.TypeDouble).
		AddField("flag", document.TypeBool).
		AddField("data", document.TypeRaw).
		AddField("where", document.TypePosition).
		AddField("target", document.TypePredicate).
		AddField("tags", document.ArrayOf(document.TypeString)).
		AddField("scores", document.MapOf(document.TypeString, document.TypeInt)).
		AddField("actors", document.WeightedSetOf(document.TypeString)).
		AddField("struct", ss).
		AddField("sparse", tensorType("tensor(x{},y{})")).
		AddField("dense", tensorType("tensor(x[2],y[3])"))

	types := document.NewTypeManager()
	types.Register(smoke)
	return types
}

func tensorType(spec string) *document.TensorType {
	typ, err := document.ParseTensorType(spec)
	if err != nil {
		panic(err)
	}
	return typ
}

func decodeAll(t *testing.T, input string) []document.Operation {
	t.Helper()
	r := NewReader(strings.NewReader(input), testTypes())
	var ops []document.Operation
	for {
		op, err := r.Next()
		require.NoError(t, err)
		if op == nil {
			return ops
		}
		ops = append(ops, op)
	}
}

func decodeOne(t *testing.T, input string) document.Operation {
	t.Helper()
	ops := decodeAll(t, input)
	require.Len(t, ops, 1)
	return ops[0]
}

func decodeErr(t *testing.T, input string) error {
	t.Helper()
	r := NewReader(strings.NewReader(input), testTypes())
	for {
		op, err := r.Next()
		if err != nil {
			return err
		}
		require.NotNil(t, op, "expected an error, got end of feed")
	}
}

func TestReadSmokePut(t *testing.T) {
	op := decodeOne(t, `{
		"put": "id:unittest:smoke::whee",
		"fields": {"something": "smoketest", "count": 3}
	}`)
	put, ok := op.(*document.DocumentPut)
	require.True(t, ok)
	require.Equal(t, "id:unittest:smoke::whee", put.Id.String())
	require.Equal(t, document.StringValue("smoketest"), put.Fields["something"])
	require.Equal(t, document.IntValue(3), put.Fields["count"])
	require.False(t, put.Condition().IsSet())
}

func TestReadPutIdAlias(t *testing.T) {
	op := decodeOne(t, `{"id": "id:unittest:smoke::doc1", "fields": {}}`)
	put, ok := op.(*document.DocumentPut)
	require.True(t, ok)
	require.Equal(t, "id:unittest:smoke::doc1", put.Id.String())
	require.Empty(t, put.Fields)
}

func TestReadKeyOrderings(t *testing.T) {
	// the same operation with its keys in every order
	keys := []string{
		`"put": "id:unittest:smoke::whee"`,
		`"condition": "smoke.count > 0"`,
		`"fields": {"something": "x"}`,
	}
	perms := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, p := range perms {
		input := fmt.Sprintf("{%s, %s, %s}", keys[p[0]], keys[p[1]], keys[p[2]])
		t.Run(input, func(t *testing.T) {
			op := decodeOne(t, input)
			put, ok := op.(*document.DocumentPut)
			require.True(t, ok)
			require.Equal(t, "id:unittest:smoke::whee", put.Id.String())
			require.Equal(t, document.StringValue("x"), put.Fields["something"])
			require.Equal(t, document.TestAndSetCondition("smoke.count > 0"), put.Cond)
		})
	}
}

func TestReadCompleteFeed(t *testing.T) {
	ops := decodeAll(t, `[
		{"put": "id:unittest:smoke::put1", "fields": {"something": "a"}},
		{"fields": {"count": {"increment": 2}}, "create": true,
		 "condition": "smoke.count < 10", "update": "id:unittest:smoke::up1"},
		{"remove": "id:unittest:smoke::gone"}
	]`)
	require.Len(t, ops, 3)

	put, ok := ops[0].(*document.DocumentPut)
	require.True(t, ok)
	require.Equal(t, "id:unittest:smoke::put1", put.Id.String())

	up, ok := ops[1].(*document.DocumentUpdate)
	require.True(t, ok)
	require.Equal(t, "id:unittest:smoke::up1", up.Id.String())
	require.True(t, up.CreateIfNonExistent)
	require.Equal(t, document.TestAndSetCondition("smoke.count < 10"), up.Cond)
	fu := up.FieldUpdate("count")
	require.NotNil(t, fu)
	require.Equal(t, []document.ValueUpdate{document.Arithmetic{Op: document.OpAdd, Operand: 2}}, fu.Updates)

	rm, ok := ops[2].(*document.DocumentRemove)
	require.True(t, ok)
	require.Equal(t, "id:unittest:smoke::gone", rm.Id.String())
}

func TestReadUpdateFieldOrder(t *testing.T) {
	op := decodeOne(t, `{"update": "id:unittest:smoke::u", "fields": {
		"something": {"assign": "b"},
		"count": {"increment": 1, "multiply": 2}
	}}`)
	up := op.(*document.DocumentUpdate)
	require.Len(t, up.FieldUpdates, 2)
	require.Equal(t, "something", up.FieldUpdates[0].Field)
	require.Equal(t, "count", up.FieldUpdates[1].Field)
	// operator encounter order is preserved within a field
	require.Equal(t, []document.ValueUpdate{
		document.Arithmetic{Op: document.OpAdd, Operand: 1},
		document.Arithmetic{Op: document.OpMul, Operand: 2},
	}, up.FieldUpdates[1].Updates)
}

func TestReadRemoveIgnoresFields(t *testing.T) {
	op := decodeOne(t, `{"remove": "id:unittest:smoke::gone", "fields": {"anything": 1}}`)
	_, ok := op.(*document.DocumentRemove)
	require.True(t, ok)
}

func TestReadRemoveWithCondition(t *testing.T) {
	op := decodeOne(t, `{"condition": "smoke.flag", "remove": "id:unittest:smoke::gone"}`)
	rm := op.(*document.DocumentRemove)
	require.Equal(t, document.TestAndSetCondition("smoke.flag"), rm.Cond)
}

func TestReadEmptyFeeds(t *testing.T) {
	require.Empty(t, decodeAll(t, ``))
	require.Empty(t, decodeAll(t, `  `))
	require.Empty(t, decodeAll(t, `[]`))
}

func TestReadConcatenatedObjects(t *testing.T) {
	ops := decodeAll(t, `
		{"put": "id:unittest:smoke::a", "fields": {}}
		{"remove": "id:unittest:smoke::b"}
	`)
	require.Len(t, ops, 2)
}

func TestReadNextAfterEnd(t *testing.T) {
	r := NewReader(strings.NewReader(`[]`), testTypes())
	for i := 0; i < 3; i++ {
		op, err := r.Next()
		require.NoError(t, err)
		require.Nil(t, op)
	}
}

func TestReadMissingOperation(t *testing.T) {
	err := decodeErr(t, `{"fields": {"something": "x"}}`)
	require.ErrorIs(t, err, ErrStructure)
	require.Contains(t, err.Error(), "missing a document operation ('put', 'update' or 'remove')")
}

func TestReadMissingFields(t *testing.T) {
	err := decodeErr(t, `{"put": "id:unittest:smoke::whee"}`)
	require.ErrorIs(t, err, ErrStructure)
	require.Contains(t, err.Error(), "put of document id:unittest:smoke::whee is missing a 'fields' map")

	err = decodeErr(t, `{"update": "id:unittest:smoke::whee", "create": true}`)
	require.Contains(t, err.Error(), "update of document id:unittest:smoke::whee is missing a 'fields' map")
}

func TestReadUnknownKeys(t *testing.T) {
	// before the operation key
	err := decodeErr(t, `{"bogus": 1, "put": "id:unittest:smoke::w", "fields": {}}`)
	require.ErrorIs(t, err, ErrStructure)
	require.Contains(t, err.Error(), "unexpected key 'bogus'")

	// after the fields
	err = decodeErr(t, `{"put": "id:unittest:smoke::w", "fields": {}, "bogus": 1}`)
	require.Contains(t, err.Error(), "unexpected key 'bogus'")
}

func TestReadTwoOperationKeys(t *testing.T) {
	err := decodeErr(t, `{"put": "id:unittest:smoke::a", "remove": "id:unittest:smoke::b", "fields": {}}`)
	require.ErrorIs(t, err, ErrStructure)
}

func TestReadUnknownDocumentType(t *testing.T) {
	err := decodeErr(t, `{"put": "id:unittest:nonexisting::whee", "fields": {}}`)
	require.ErrorIs(t, err, ErrUnknownDocumentType)
	require.Contains(t, err.Error(), "document type nonexisting does not exist")
}

func TestReadInvalidDocumentId(t *testing.T) {
	err := decodeErr(t, `{"put": "not-an-id", "fields": {}}`)
	require.ErrorIs(t, err, ErrStructure)
}

func TestReadMisspelledField(t *testing.T) {
	err := decodeErr(t, `{"put": "id:unittest:smoke::w", "fields": {"smething": "x"}}`)
	require.ErrorIs(t, err, ErrUnknownField)
	require.Contains(t, err.Error(), "could not get field 'smething' in the structure of type 'smoke'")
}

func TestReadFieldErrorContext(t *testing.T) {
	err := decodeErr(t, `{"put": "id:unittest:smoke::w", "fields": {"count": "not a number"}}`)
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.Contains(t, err.Error(),
		"Error in document 'id:unittest:smoke::w' - could not parse field 'count' of type 'int':")
}

func TestReadIntOverflow(t *testing.T) {
	err := decodeErr(t, `{"put": "id:unittest:smoke::w", "fields": {"count": 281474976710656}}`)
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.Contains(t, err.Error(), "could not parse field 'count' of type 'int'")
}

func TestReadErrorIsSticky(t *testing.T) {
	r := NewReader(strings.NewReader(`[{"fields": {}}, {"remove": "id:unittest:smoke::x"}]`), testTypes())
	_, err := r.Next()
	require.Error(t, err)
	_, err2 := r.Next()
	require.Equal(t, err, err2)
}

func TestReadTopLevelGarbage(t *testing.T) {
	err := decodeErr(t, `"just a string"`)
	require.ErrorIs(t, err, ErrStructure)

	err = decodeErr(t, `[1]`)
	require.ErrorIs(t, err, ErrStructure)
}

func TestReadTruncatedFeed(t *testing.T) {
	err := decodeErr(t, `[{"put": "id:unittest:smoke::w", "fields": {}}`)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnknownField))
}

func TestReadConditionThreeOrderings(t *testing.T) {
	inputs := []string{
		`{"condition": "c", "update": "id:unittest:smoke::u", "fields": {"something": {"assign": "x"}}}`,
		`{"update": "id:unittest:smoke::u", "condition": "c", "fields": {"something": {"assign": "x"}}}`,
		`{"update": "id:unittest:smoke::u", "fields": {"something": {"assign": "x"}}, "condition": "c"}`,
	}
	for _, input := range inputs {
		up := decodeOne(t, input).(*document.DocumentUpdate)
		require.Equal(t, document.TestAndSetCondition("c"), up.Cond)
		require.Equal(t,
			[]document.ValueUpdate{document.Assign{Value: document.StringValue("x")}},
			up.FieldUpdate("something").Updates)
	}
}
