package mapbin

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EntityKind is the object type the encoder serializes; other objects in
// the group are editor-only and skipped.
const EntityKind = "entity"

const (
	maxEntities   = 0xFFFF
	maxProperties = 0xFF
	maxRecordLen  = 0xFFFF
)

// EntityRecord is a validated entity ready for serialization.
type EntityRecord struct {
	X, Y          uint16
	Width, Height uint16
	Name          string
	Properties    []PropertyRecord
}

// ParseEntity validates an editor object and types its properties.
func ParseEntity(o Object) (EntityRecord, error) {
	var rec EntityRecord
	fields := []struct {
		name string
		v    float64
		dst  *uint16
	}{
		{"x", o.X, &rec.X},
		{"y", o.Y, &rec.Y},
		{"width", o.Width, &rec.Width},
		{"height", o.Height, &rec.Height},
	}
	for _, f := range fields {
		u, err := toUint16(f.v)
		if err != nil {
			return EntityRecord{}, fmt.Errorf("entity %q %s: %w", o.Name, f.name, err)
		}
		*f.dst = u
	}

	if err := checkASCII("entity name", o.Name); err != nil {
		return EntityRecord{}, err
	}
	rec.Name = o.Name

	if len(o.Properties) > maxProperties {
		return EntityRecord{}, fmt.Errorf("%w: entity %q has %d properties, max %d",
			ErrRange, o.Name, len(o.Properties), maxProperties)
	}
	for _, p := range o.Properties {
		pr, err := ParseProperty(p)
		if err != nil {
			return EntityRecord{}, fmt.Errorf("entity %q: %w", o.Name, err)
		}
		rec.Properties = append(rec.Properties, pr)
	}
	return rec, nil
}

func toUint16(v float64) (uint16, error) {
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrRange, v)
	}
	if v < 0 || v > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %v does not fit in u16", ErrRange, v)
	}
	return uint16(v), nil
}

// Entities returns the validated entity records of the group in document
// order. A nil group yields no records.
func Entities(group *ObjectGroup) ([]EntityRecord, error) {
	if group == nil {
		return nil, nil
	}
	var out []EntityRecord
	for _, o := range group.Objects {
		if o.Kind != EntityKind {
			continue
		}
		rec, err := ParseEntity(o)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if len(out) > maxEntities {
		return nil, fmt.Errorf("%w: %d entities, max %d", ErrRange, len(out), maxEntities)
	}
	return out, nil
}

// AppendRecord appends one length-prefixed entity record to b.
func (e EntityRecord) AppendRecord(b []byte) ([]byte, error) {
	body := make([]byte, 0, 16+len(e.Name))
	body = binary.LittleEndian.AppendUint16(body, e.X)
	body = binary.LittleEndian.AppendUint16(body, e.Y)
	body = binary.LittleEndian.AppendUint16(body, e.Width)
	body = binary.LittleEndian.AppendUint16(body, e.Height)
	body = appendCString(body, e.Name)
	body = append(body, byte(len(e.Properties)))
	for _, p := range e.Properties {
		body = p.appendTo(body)
	}

	if len(body) > maxRecordLen {
		return nil, fmt.Errorf("%w: entity %q record is %d bytes, max %d", ErrRange, e.Name, len(body), maxRecordLen)
	}
	b = binary.LittleEndian.AppendUint16(b, uint16(len(body)))
	return append(b, body...), nil
}

// EncodeEntities writes the entity count followed by each record. The
// section is not padded.
func EncodeEntities(records []EntityRecord) ([]byte, error) {
	if len(records) > maxEntities {
		return nil, fmt.Errorf("%w: %d entities, max %d", ErrRange, len(records), maxEntities)
	}
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(records)))
	for _, r := range records {
		var err error
		out, err = r.AppendRecord(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
