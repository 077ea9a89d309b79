package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// A Dimension of a tensor type.  Mapped dimensions are sparse and labeled;
// indexed dimensions are dense with Size addressable positions (Size 0
// means unbound).
type Dimension struct {
	Name   string
	Mapped bool
	Size   int
}

// MappedDimension declares a sparse dimension, e.g. x{}.
func MappedDimension(name string) Dimension {
	return Dimension{Name: name, Mapped: true}
}

// IndexedDimension declares a dense dimension of the given size, e.g. x[3].
// Size 0 declares an unbound indexed dimension, x[].
func IndexedDimension(name string, size int) Dimension {
	return Dimension{Name: name, Size: size}
}

func (d Dimension) String() string {
	if d.Mapped {
		return d.Name + "{}"
	}
	if d.Size == 0 {
		return d.Name + "[]"
	}
	return fmt.Sprintf("%s[%d]", d.Name, d.Size)
}

// TensorType describes a tensor field type, e.g. tensor(x{},y[3]).
// Dimensions are kept sorted by name, matching the type's canonical
// spec string.
type TensorType struct {
	dims []Dimension
}

func NewTensorType(dims ...Dimension) *TensorType {
	sorted := make([]Dimension, len(dims))
	copy(sorted, dims)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &TensorType{dims: sorted}
}

func (t *TensorType) Dimensions() []Dimension { return t.dims }

// Dimension returns the named dimension.
func (t *TensorType) Dimension(name string) (Dimension, bool) {
	for _, d := range t.dims {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Indexed reports whether any dimension is dense.  An indexed tensor cannot
// be empty: every addressable cell must carry a value.
func (t *TensorType) Indexed() bool {
	for _, d := range t.dims {
		if !d.Mapped {
			return true
		}
	}
	return false
}

func (t *TensorType) Name() string {
	specs := make([]string, len(t.dims))
	for i, d := range t.dims {
		specs[i] = d.String()
	}
	return "tensor(" + strings.Join(specs, ",") + ")"
}

func (t *TensorType) isDataType() {}

// ParseTensorType parses a tensor type spec string such as
// "tensor(x{},y[3])".
func ParseTensorType(spec string) (*TensorType, error) {
	s := strings.TrimSpace(spec)
	if !strings.HasPrefix(s, "tensor(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("invalid tensor type spec %q", spec)
	}
	body := s[len("tensor(") : len(s)-1]
	var dims []Dimension
	if strings.TrimSpace(body) != "" {
		for _, part := range strings.Split(body, ",") {
			dim, err := parseDimension(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid tensor type spec %q: %v", spec, err)
			}
			dims = append(dims, dim)
		}
	}
	return NewTensorType(dims...), nil
}

func parseDimension(s string) (Dimension, error) {
	switch {
	case strings.HasSuffix(s, "{}"):
		name := s[:len(s)-2]
		if name == "" {
			return Dimension{}, fmt.Errorf("missing dimension name in %q", s)
		}
		return MappedDimension(name), nil
	case strings.HasSuffix(s, "]"):
		open := strings.IndexByte(s, '[')
		if open <= 0 {
			return Dimension{}, fmt.Errorf("invalid dimension %q", s)
		}
		name := s[:open]
		sizeSpec := s[open+1 : len(s)-1]
		if sizeSpec == "" {
			return IndexedDimension(name, 0), nil
		}
		size, err := strconv.Atoi(sizeSpec)
		if err != nil || size <= 0 {
			return Dimension{}, fmt.Errorf("invalid dimension size in %q", s)
		}
		return IndexedDimension(name, size), nil
	default:
		return Dimension{}, fmt.Errorf("invalid dimension %q", s)
	}
}

// A Cell is one tensor cell: a full address (dimension name to label, where
// indexed dimensions use the decimal index as label) and its value.
type Cell struct {
	Address map[string]string
	Value   float64
}

// A Tensor is a set of cells of a given tensor type.  Setting a cell twice
// overwrites the earlier value.
type Tensor struct {
	typ   *TensorType
	cells map[string]Cell
}

func NewTensor(typ *TensorType) *Tensor {
	return &Tensor{typ: typ, cells: map[string]Cell{}}
}

func (t *Tensor) Type() *TensorType { return t.typ }

// Set stores a cell value.  The address must cover exactly the dimensions
// of the tensor type.
func (t *Tensor) Set(address map[string]string, value float64) error {
	if len(address) != len(t.typ.Dimensions()) {
		return fmt.Errorf("cell address has %d dimensions, tensor type %s has %d",
			len(address), t.typ.Name(), len(t.typ.Dimensions()))
	}
	for name := range address {
		if _, ok := t.typ.Dimension(name); !ok {
			return fmt.Errorf("unknown dimension '%s' for tensor type %s", name, t.typ.Name())
		}
	}
	addr := make(map[string]string, len(address))
	for k, v := range address {
		addr[k] = v
	}
	t.cells[addressKey(addr)] = Cell{Address: addr, Value: value}
	return nil
}

// Get returns the value at the given address.
func (t *Tensor) Get(address map[string]string) (float64, bool) {
	c, ok := t.cells[addressKey(address)]
	return c.Value, ok
}

func (t *Tensor) IsEmpty() bool { return len(t.cells) == 0 }

// Cells returns the cells ordered by address, suitable for comparison and
// serialization.
func (t *Tensor) Cells() []Cell {
	keys := make([]string, 0, len(t.cells))
	for k := range t.cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cells := make([]Cell, len(keys))
	for i, k := range keys {
		cells[i] = t.cells[k]
	}
	return cells
}

// Equal reports whether two tensors have the same type spec and cells.
func (t *Tensor) Equal(other *Tensor) bool {
	if other == nil || t.typ.Name() != other.typ.Name() || len(t.cells) != len(other.cells) {
		return false
	}
	for k, c := range t.cells {
		oc, ok := other.cells[k]
		if !ok || oc.Value != c.Value {
			return false
		}
	}
	return true
}

func (t *Tensor) String() string {
	var sb strings.Builder
	sb.WriteString(t.typ.Name())
	sb.WriteString(":{")
	for i, c := range t.Cells() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(addressKey(c.Address))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(c.Value, 'g', -1, 64))
	}
	sb.WriteByte('}')
	return sb.String()
}

func addressKey(address map[string]string) string {
	names := make([]string, 0, len(address))
	for name := range address {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(name)
		sb.WriteByte(':')
		sb.WriteString(address[name])
	}
	sb.WriteByte('}')
	return sb.String()
}
