package mapbin

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PropertyTag is the one-byte type tag written before a property value.
type PropertyTag uint8

const (
	TagString PropertyTag = 0
	TagInt    PropertyTag = 1
	TagFixed  PropertyTag = 2
)

// PropertyValue is a typed entity property value. The set of
// implementations is closed: StringValue, IntValue and FixedValue.
type PropertyValue interface {
	Tag() PropertyTag
	appendValue(b []byte) []byte
	isPropertyValue()
}

// StringValue is written as a reserved zero byte then NUL-terminated ASCII.
type StringValue string

// IntValue is written as a little-endian u32.
type IntValue uint32

// FixedValue is a signed 8.8 fixed-point number stored in 32 bits.
type FixedValue int32

func (StringValue) Tag() PropertyTag { return TagString }
func (IntValue) Tag() PropertyTag    { return TagInt }
func (FixedValue) Tag() PropertyTag  { return TagFixed }

func (StringValue) isPropertyValue() {}
func (IntValue) isPropertyValue()    {}
func (FixedValue) isPropertyValue()  {}

func (v StringValue) appendValue(b []byte) []byte {
	b = append(b, 0)
	return appendCString(b, string(v))
}

func (v IntValue) appendValue(b []byte) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(v))
}

func (v FixedValue) appendValue(b []byte) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(int32(v)))
}

// Float returns the real value the fixed-point number represents.
func (v FixedValue) Float() float64 {
	return float64(v) / 256
}

// ToFixed converts f to 8.8 fixed point, rounding to nearest.
func ToFixed(f float64) (FixedValue, error) {
	scaled := math.Round(f * 256)
	if math.IsNaN(scaled) || scaled < math.MinInt32 || scaled > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v does not fit in 32-bit 8.8 fixed point", ErrRange, f)
	}
	return FixedValue(int32(scaled)), nil
}

// PropertyRecord is a named, typed entity property.
type PropertyRecord struct {
	Name  string
	Value PropertyValue
}

// ParseProperty types a raw editor property. Unknown type strings are a
// lookup error.
func ParseProperty(p Property) (PropertyRecord, error) {
	if err := checkASCII("property name", p.Name); err != nil {
		return PropertyRecord{}, err
	}

	rec := PropertyRecord{Name: p.Name}
	switch p.Type {
	case "", "string":
		if err := checkASCII(fmt.Sprintf("property %q value", p.Name), p.Value); err != nil {
			return PropertyRecord{}, err
		}
		rec.Value = StringValue(p.Value)
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(p.Value), 10, 64)
		if err != nil {
			return PropertyRecord{}, fmt.Errorf("%w: property %q: invalid int %q", ErrFormat, p.Name, p.Value)
		}
		if n < 0 || n > math.MaxUint32 {
			return PropertyRecord{}, fmt.Errorf("%w: property %q: %d does not fit in u32", ErrRange, p.Name, n)
		}
		rec.Value = IntValue(uint32(n))
	case "float":
		f, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
		if err != nil {
			return PropertyRecord{}, fmt.Errorf("%w: property %q: invalid float %q", ErrFormat, p.Name, p.Value)
		}
		fx, err := ToFixed(f)
		if err != nil {
			return PropertyRecord{}, fmt.Errorf("property %q: %w", p.Name, err)
		}
		rec.Value = fx
	default:
		return PropertyRecord{}, fmt.Errorf("%w: unknown property type %q for %q", ErrLookup, p.Type, p.Name)
	}
	return rec, nil
}

func (r PropertyRecord) appendTo(b []byte) []byte {
	b = appendCString(b, r.Name)
	b = append(b, byte(r.Value.Tag()))
	return r.Value.appendValue(b)
}

func appendCString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}

func checkASCII(what, s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] > 0x7F {
			return fmt.Errorf("%w: %s %q is not NUL-free ASCII", ErrFormat, what, s)
		}
	}
	return nil
}
