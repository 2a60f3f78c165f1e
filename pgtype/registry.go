package pgtype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/lib/pq/oid"
)

// Category classifies a Type by how its values are built.
type Category int8

const (
	ScalarCategory Category = iota
	ArrayCategory
	CompositeCategory
	RangeCategory
	MultirangeCategory
	DomainCategory
	EnumCategory
)

func (c Category) String() string {
	switch c {
	case ScalarCategory:
		return "scalar"
	case ArrayCategory:
		return "array"
	case CompositeCategory:
		return "composite"
	case RangeCategory:
		return "range"
	case MultirangeCategory:
		return "multirange"
	case DomainCategory:
		return "domain"
	case EnumCategory:
		return "enum"
	default:
		return fmt.Sprintf("category(%d)", int8(c))
	}
}

// Type describes a PostgreSQL type. Types are immutable once registered.
type Type struct {
	OID      uint32
	Name     string
	Category Category

	// Elem is the element type of an array, the subtype of a range, the range type of a multirange or the base type
	// of a domain.
	Elem *Type

	// Delimiter separates elements in the text format of arrays of this type. Zero means ','.
	Delimiter byte
}

func (t *Type) delimiter() byte {
	if t == nil || t.Delimiter == 0 {
		return ','
	}
	return t.Delimiter
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// Registry maps OIDs and names to Types. The builtin types are always present. Registration is expected to happen
// while a connection is being set up; a Registry is safe for concurrent lookups once registration is finished.
type Registry struct {
	byOID        map[uint32]*Type
	byName       map[string]*Type
	arrayOf      map[uint32]*Type
	rangeOf      map[uint32]*Type
	multirangeOf map[uint32]*Type
}

func newEmptyRegistry() *Registry {
	return &Registry{
		byOID:        make(map[uint32]*Type),
		byName:       make(map[string]*Type),
		arrayOf:      make(map[uint32]*Type),
		rangeOf:      make(map[uint32]*Type),
		multirangeOf: make(map[uint32]*Type),
	}
}

// NewRegistry returns a Registry holding the builtin types.
func NewRegistry() *Registry {
	r := newEmptyRegistry()
	for _, t := range builtinRegistry.byOID {
		r.index(t)
	}
	return r
}

// NewRegistryForServer returns a Registry holding the builtin types that exist in server version. Multirange types
// are left out for servers older than 14.
func NewRegistryForServer(version string) (*Registry, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid server version %q: %w", version, err)
	}

	r := NewRegistry()
	if v.LessThan(semver.MustParse("14")) {
		for o, t := range r.byOID {
			switch {
			case t.Category == MultirangeCategory:
				delete(r.multirangeOf, t.Elem.OID)
			case t.Category == ArrayCategory && t.Elem.Category == MultirangeCategory:
				delete(r.arrayOf, t.Elem.OID)
			default:
				continue
			}
			delete(r.byOID, o)
			delete(r.byName, t.Name)
		}
	}
	return r, nil
}

func (r *Registry) index(t *Type) {
	r.byOID[t.OID] = t
	r.byName[t.Name] = t
	switch t.Category {
	case ArrayCategory:
		r.arrayOf[t.Elem.OID] = t
	case RangeCategory:
		r.rangeOf[t.Elem.OID] = t
	case MultirangeCategory:
		r.multirangeOf[t.Elem.OID] = t
	}
}

// Register adds t to the registry. t.Elem is required for arrays, ranges, multiranges and domains.
func (r *Registry) Register(t Type) (*Type, error) {
	if t.OID == 0 {
		return nil, fmt.Errorf("cannot register type %q without an oid", t.Name)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("cannot register oid %d without a name", t.OID)
	}
	if existing, ok := r.byOID[t.OID]; ok {
		return nil, fmt.Errorf("oid %d is already registered as %s", t.OID, existing.Name)
	}
	if _, ok := r.byName[t.Name]; ok {
		return nil, fmt.Errorf("type %s is already registered", t.Name)
	}

	switch t.Category {
	case ArrayCategory, RangeCategory, MultirangeCategory, DomainCategory:
		if t.Elem == nil {
			return nil, fmt.Errorf("%s type %s requires an element type", t.Category, t.Name)
		}
	}
	if t.Category == MultirangeCategory && t.Elem.Category != RangeCategory {
		return nil, fmt.Errorf("multirange type %s requires a range type, got %s", t.Name, t.Elem.Name)
	}

	nt := t
	r.index(&nt)
	return &nt, nil
}

// RegisterScalar registers a base type such as an extension type.
func (r *Registry) RegisterScalar(oid uint32, name string) (*Type, error) {
	return r.Register(Type{OID: oid, Name: name, Category: ScalarCategory})
}

// RegisterArray registers the array type of elem.
func (r *Registry) RegisterArray(oid uint32, name string, elem *Type) (*Type, error) {
	return r.Register(Type{OID: oid, Name: name, Category: ArrayCategory, Elem: elem})
}

func (r *Registry) RegisterComposite(oid uint32, name string) (*Type, error) {
	return r.Register(Type{OID: oid, Name: name, Category: CompositeCategory})
}

func (r *Registry) RegisterEnum(oid uint32, name string) (*Type, error) {
	return r.Register(Type{OID: oid, Name: name, Category: EnumCategory})
}

func (r *Registry) RegisterDomain(oid uint32, name string, base *Type) (*Type, error) {
	return r.Register(Type{OID: oid, Name: name, Category: DomainCategory, Elem: base})
}

func (r *Registry) RegisterRange(oid uint32, name string, subtype *Type) (*Type, error) {
	return r.Register(Type{OID: oid, Name: name, Category: RangeCategory, Elem: subtype})
}

func (r *Registry) RegisterMultirange(oid uint32, name string, rangeType *Type) (*Type, error) {
	return r.Register(Type{OID: oid, Name: name, Category: MultirangeCategory, Elem: rangeType})
}

func (r *Registry) TypeForOID(oid uint32) (*Type, bool) {
	t, ok := r.byOID[oid]
	return t, ok
}

func (r *Registry) TypeForName(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// ArrayTypeOf returns the array type whose elements are elemOID.
func (r *Registry) ArrayTypeOf(elemOID uint32) (*Type, bool) {
	t, ok := r.arrayOf[elemOID]
	return t, ok
}

// RangeTypeOf returns the range type over subtypeOID.
func (r *Registry) RangeTypeOf(subtypeOID uint32) (*Type, bool) {
	t, ok := r.rangeOf[subtypeOID]
	return t, ok
}

// MultirangeTypeOf returns the multirange type of rangeOID.
func (r *Registry) MultirangeTypeOf(rangeOID uint32) (*Type, bool) {
	t, ok := r.multirangeOf[rangeOID]
	return t, ok
}

// BaseType follows domains down to the type values are actually encoded as.
func BaseType(t *Type) *Type {
	for t != nil && t.Category == DomainCategory {
		t = t.Elem
	}
	return t
}

// TypeForOID looks up a builtin type.
func TypeForOID(oid uint32) (*Type, bool) {
	return builtinRegistry.TypeForOID(oid)
}

// TypeForName looks up a builtin type.
func TypeForName(name string) (*Type, bool) {
	return builtinRegistry.TypeForName(name)
}

func ArrayTypeOf(elemOID uint32) (*Type, bool) {
	return builtinRegistry.ArrayTypeOf(elemOID)
}

func RangeTypeOf(subtypeOID uint32) (*Type, bool) {
	return builtinRegistry.RangeTypeOf(subtypeOID)
}

func MultirangeTypeOf(rangeOID uint32) (*Type, bool) {
	return builtinRegistry.MultirangeTypeOf(rangeOID)
}

// TypeName returns a name for oid suitable for messages.
func TypeName(o uint32) string {
	if t, ok := builtinRegistry.byOID[o]; ok {
		return t.Name
	}
	if name, ok := oid.TypeName[oid.Oid(o)]; ok {
		return strings.ToLower(name)
	}
	if o == 0 {
		return "unknown type"
	}
	return "oid " + strconv.FormatUint(uint64(o), 10)
}

func builtinType(o uint32) *Type {
	t, ok := builtinRegistry.byOID[o]
	if !ok {
		panic(fmt.Sprintf("pgtype: no builtin type with oid %d", o))
	}
	return t
}

var builtinRegistry *Registry

func init() {
	scalars := []Type{
		{OID: BoolOID, Name: "bool"},
		{OID: ByteaOID, Name: "bytea"},
		{OID: QCharOID, Name: "char"},
		{OID: NameOID, Name: "name"},
		{OID: Int8OID, Name: "int8"},
		{OID: Int2OID, Name: "int2"},
		{OID: Int4OID, Name: "int4"},
		{OID: TextOID, Name: "text"},
		{OID: OIDOID, Name: "oid"},
		{OID: TIDOID, Name: "tid"},
		{OID: XIDOID, Name: "xid"},
		{OID: CIDOID, Name: "cid"},
		{OID: JSONOID, Name: "json"},
		{OID: XMLOID, Name: "xml"},
		{OID: PointOID, Name: "point"},
		{OID: LsegOID, Name: "lseg"},
		{OID: PathOID, Name: "path"},
		{OID: BoxOID, Name: "box", Delimiter: ';'},
		{OID: PolygonOID, Name: "polygon"},
		{OID: LineOID, Name: "line"},
		{OID: CIDROID, Name: "cidr"},
		{OID: Float4OID, Name: "float4"},
		{OID: Float8OID, Name: "float8"},
		{OID: CircleOID, Name: "circle"},
		{OID: UnknownOID, Name: "unknown"},
		{OID: Macaddr8OID, Name: "macaddr8"},
		{OID: MoneyOID, Name: "money"},
		{OID: MacaddrOID, Name: "macaddr"},
		{OID: InetOID, Name: "inet"},
		{OID: BPCharOID, Name: "bpchar"},
		{OID: VarcharOID, Name: "varchar"},
		{OID: DateOID, Name: "date"},
		{OID: TimeOID, Name: "time"},
		{OID: TimestampOID, Name: "timestamp"},
		{OID: TimestamptzOID, Name: "timestamptz"},
		{OID: IntervalOID, Name: "interval"},
		{OID: TimetzOID, Name: "timetz"},
		{OID: BitOID, Name: "bit"},
		{OID: VarbitOID, Name: "varbit"},
		{OID: NumericOID, Name: "numeric"},
		{OID: RecordOID, Name: "record", Category: CompositeCategory},
		{OID: UUIDOID, Name: "uuid"},
		{OID: JSONBOID, Name: "jsonb"},
		{OID: JSONPathOID, Name: "jsonpath"},
	}

	// {range, subtype}, {multirange, range}, {array, element}
	ranges := [][2]uint32{
		{Int4rangeOID, Int4OID},
		{NumrangeOID, NumericOID},
		{TsrangeOID, TimestampOID},
		{TstzrangeOID, TimestamptzOID},
		{DaterangeOID, DateOID},
		{Int8rangeOID, Int8OID},
	}
	rangeNames := map[uint32]string{
		Int4rangeOID:      "int4range",
		NumrangeOID:       "numrange",
		TsrangeOID:        "tsrange",
		TstzrangeOID:      "tstzrange",
		DaterangeOID:      "daterange",
		Int8rangeOID:      "int8range",
		Int4multirangeOID: "int4multirange",
		NummultirangeOID:  "nummultirange",
		TsmultirangeOID:   "tsmultirange",
		TstzmultirangeOID: "tstzmultirange",
		DatemultirangeOID: "datemultirange",
		Int8multirangeOID: "int8multirange",
	}
	multiranges := [][2]uint32{
		{Int4multirangeOID, Int4rangeOID},
		{NummultirangeOID, NumrangeOID},
		{TsmultirangeOID, TsrangeOID},
		{TstzmultirangeOID, TstzrangeOID},
		{DatemultirangeOID, DaterangeOID},
		{Int8multirangeOID, Int8rangeOID},
	}
	arrays := [][2]uint32{
		{BoolArrayOID, BoolOID},
		{ByteaArrayOID, ByteaOID},
		{QCharArrayOID, QCharOID},
		{NameArrayOID, NameOID},
		{Int2ArrayOID, Int2OID},
		{Int4ArrayOID, Int4OID},
		{TextArrayOID, TextOID},
		{TIDArrayOID, TIDOID},
		{XIDArrayOID, XIDOID},
		{CIDArrayOID, CIDOID},
		{BPCharArrayOID, BPCharOID},
		{VarcharArrayOID, VarcharOID},
		{Int8ArrayOID, Int8OID},
		{PointArrayOID, PointOID},
		{LsegArrayOID, LsegOID},
		{PathArrayOID, PathOID},
		{BoxArrayOID, BoxOID},
		{Float4ArrayOID, Float4OID},
		{Float8ArrayOID, Float8OID},
		{PolygonArrayOID, PolygonOID},
		{OIDArrayOID, OIDOID},
		{MacaddrArrayOID, MacaddrOID},
		{InetArrayOID, InetOID},
		{TimestampArrayOID, TimestampOID},
		{DateArrayOID, DateOID},
		{TimeArrayOID, TimeOID},
		{TimestamptzArrayOID, TimestamptzOID},
		{IntervalArrayOID, IntervalOID},
		{NumericArrayOID, NumericOID},
		{TimetzArrayOID, TimetzOID},
		{BitArrayOID, BitOID},
		{VarbitArrayOID, VarbitOID},
		{UUIDArrayOID, UUIDOID},
		{JSONArrayOID, JSONOID},
		{XMLArrayOID, XMLOID},
		{LineArrayOID, LineOID},
		{CIDRArrayOID, CIDROID},
		{CircleArrayOID, CircleOID},
		{MoneyArrayOID, MoneyOID},
		{Macaddr8ArrayOID, Macaddr8OID},
		{JSONBArrayOID, JSONBOID},
		{JSONPathArrayOID, JSONPathOID},
		{RecordArrayOID, RecordOID},
		{Int4rangeArrayOID, Int4rangeOID},
		{NumrangeArrayOID, NumrangeOID},
		{TsrangeArrayOID, TsrangeOID},
		{TstzrangeArrayOID, TstzrangeOID},
		{DaterangeArrayOID, DaterangeOID},
		{Int8rangeArrayOID, Int8rangeOID},
		{Int4multirangeArrayOID, Int4multirangeOID},
		{NummultirangeArrayOID, NummultirangeOID},
		{TsmultirangeArrayOID, TsmultirangeOID},
		{TstzmultirangeArrayOID, TstzmultirangeOID},
		{DatemultirangeArrayOID, DatemultirangeOID},
		{Int8multirangeArrayOID, Int8multirangeOID},
	}

	r := newEmptyRegistry()
	mustRegister := func(t Type) {
		if _, err := r.Register(t); err != nil {
			panic(err)
		}
	}

	for _, t := range scalars {
		mustRegister(t)
	}
	for _, p := range ranges {
		mustRegister(Type{OID: p[0], Name: rangeNames[p[0]], Category: RangeCategory, Elem: r.byOID[p[1]]})
	}
	for _, p := range multiranges {
		mustRegister(Type{OID: p[0], Name: rangeNames[p[0]], Category: MultirangeCategory, Elem: r.byOID[p[1]]})
	}
	for _, p := range arrays {
		elem := r.byOID[p[1]]
		mustRegister(Type{OID: p[0], Name: "_" + elem.Name, Category: ArrayCategory, Elem: elem})
	}

	builtinRegistry = r
}
