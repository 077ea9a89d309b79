package document

// A ValueUpdate is one instruction for mutating a stored field value
// without replacing the whole document.  It is a closed set of variants.
type ValueUpdate interface {
	isValueUpdate()
}

// Assign replaces the field (or the matched element) with a new value.
// Value is never nil: assigning JSON null decodes to Clear instead.
type Assign struct {
	Value FieldValue
}

func (Assign) isValueUpdate() {}

// Clear removes the stored value of the field.  It carries no operand.
type Clear struct{}

func (Clear) isValueUpdate() {}

// Add adds an element to an array or weighted set.  Weight is only
// meaningful for weighted sets; array adds carry the default weight 1.
type Add struct {
	Value  FieldValue
	Weight int32
}

func (Add) isValueUpdate() {}

// Remove removes an element by value (arrays, weighted sets) or by key
// (maps).
type Remove struct {
	Value FieldValue
}

func (Remove) isValueUpdate() {}

// Match applies a nested update to one element of a collection, selected by
// index (arrays) or key (maps, weighted sets).
type Match struct {
	Element FieldValue
	Update  ValueUpdate
}

func (Match) isValueUpdate() {}

// ArithmeticOp is the operator of an arithmetic update.
type ArithmeticOp uint8

const (
	OpAdd ArithmeticOp = iota
	OpSub
	OpMul
	OpDiv
)

func (op ArithmeticOp) String() string {
	switch op {
	case OpAdd:
		return "ADD"
	case OpSub:
		return "SUB"
	case OpMul:
		return "MUL"
	case OpDiv:
		return "DIV"
	default:
		return "invalid"
	}
}

// Arithmetic adjusts a numeric value (or a weighted set weight, when nested
// under Match) by a double-precision operand.
type Arithmetic struct {
	Op      ArithmeticOp
	Operand float64
}

func (Arithmetic) isValueUpdate() {}

// TensorModifyOp is the operation of a tensor modify update.
type TensorModifyOp uint8

const (
	TensorModifyReplace TensorModifyOp = iota
	TensorModifyAdd
	TensorModifyMultiply
)

func (op TensorModifyOp) String() string {
	switch op {
	case TensorModifyReplace:
		return "REPLACE"
	case TensorModifyAdd:
		return "ADD"
	case TensorModifyMultiply:
		return "MULTIPLY"
	default:
		return "invalid"
	}
}

// TensorModify modifies individual cells of a stored tensor.
type TensorModify struct {
	Op    TensorModifyOp
	Cells *Tensor
}

func (TensorModify) isValueUpdate() {}

// A FieldUpdate is the ordered sequence of value updates targeting one
// field, in the order they were written in the input.
type FieldUpdate struct {
	Field   string
	Updates []ValueUpdate
}
