package centralserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/edvin/provisioning/internal/model"
)

// BodyKind is the shape of a central server response body.
type BodyKind int

const (
	// ObjectList is a JSON array of objects.
	ObjectList BodyKind = iota + 1
	// SingleObject is one JSON object that is not an envelope.
	SingleObject
	// Envelope is a response envelope, recognized by its resultCode member.
	Envelope
)

func (k BodyKind) String() string {
	switch k {
	case ObjectList:
		return "object list"
	case SingleObject:
		return "single object"
	case Envelope:
		return "envelope"
	default:
		return "unknown"
	}
}

// Body is a parsed central server response. Exactly one of List and Object
// is set, according to Kind.
type Body struct {
	Kind   BodyKind
	List   []map[string]any
	Object map[string]any
}

// ParseBody decodes a response body and classifies its shape once.
func ParseBody(data []byte) (Body, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Body{}, fmt.Errorf("decode response: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Body{}, fmt.Errorf("decode response: unexpected data after JSON value")
	}

	switch val := v.(type) {
	case []any:
		list := make([]map[string]any, 0, len(val))
		for i, item := range val {
			obj, ok := item.(map[string]any)
			if !ok {
				return Body{}, fmt.Errorf("decode response: list element %d is not an object", i)
			}
			list = append(list, obj)
		}
		return Body{Kind: ObjectList, List: list}, nil
	case map[string]any:
		if _, ok := val["resultCode"]; ok {
			return Body{Kind: Envelope, Object: val}, nil
		}
		return Body{Kind: SingleObject, Object: val}, nil
	default:
		return Body{}, fmt.Errorf("decode response: expected JSON array or object, got %T", v)
	}
}

// StampCentralServer records the owning central server in the body.
// Envelopes carry it inside updatedObject, or inside details when there is
// no updated object; envelopes with neither are left alone.
func (b *Body) StampCentralServer(shardID int) {
	switch b.Kind {
	case ObjectList:
		for _, obj := range b.List {
			obj[model.CentralServerField] = shardID
		}
	case SingleObject:
		b.Object[model.CentralServerField] = shardID
	case Envelope:
		if obj, ok := b.Object["updatedObject"].(map[string]any); ok {
			obj[model.CentralServerField] = shardID
		} else if obj, ok := b.Object["details"].(map[string]any); ok {
			obj[model.CentralServerField] = shardID
		}
	default:
		panic(fmt.Sprintf("stamp central server: unhandled body kind %d", b.Kind))
	}
}

// Value returns the body as a value ready for JSON encoding.
func (b *Body) Value() any {
	if b.Kind == ObjectList {
		return b.List
	}
	return b.Object
}
