package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edvin/provisioning/internal/core"
	"github.com/edvin/provisioning/internal/model"
)

var validate = validator.New()

// AlertPayload is the body of POST /alerts/{alertType}.
type AlertPayload struct {
	Value *string `json:"value" validate:"required"`
}

// DecodeAlert decodes an alert body: a JSON object with exactly one string
// field "value".
func DecodeAlert(body []byte) (*AlertPayload, error) {
	if err := CheckDuplicateKeys(body); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var p AlertPayload
	if err := dec.Decode(&p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) || strings.HasPrefix(err.Error(), "json: unknown field") {
			return nil, core.BadRequest("JSON does not match schema: %s", err.Error())
		}
		return nil, core.BadRequest("Invalid JSON: %s", describeJSONError(err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, core.BadRequest("Invalid JSON: unexpected data after object")
	}
	if err := validate.Struct(&p); err != nil {
		return nil, core.BadRequest("JSON does not match schema: field \"value\" is required")
	}
	return &p, nil
}

// PutPayload is a parsed PUT body with the centralServer field removed.
type PutPayload struct {
	// CentralServer is the explicitly requested central server, if any.
	CentralServer *int
	// Body is the remaining object, member order preserved.
	Body []byte
}

// ParsePutPayload parses a PUT body. The body must be one JSON object
// without duplicate keys at any depth. An optional integer "centralServer"
// member is extracted and stripped from Body.
func ParsePutPayload(body []byte) (*PutPayload, error) {
	if err := CheckDuplicateKeys(body); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, core.BadRequest("Invalid JSON: %s", describeJSONError(err))
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, core.BadRequest("JSON does not match schema: payload must be an object")
	}

	var (
		payload PutPayload
		members []string
	)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, core.BadRequest("Invalid JSON: %s", describeJSONError(err))
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, core.BadRequest("Invalid JSON: %s", describeJSONError(err))
		}

		if key == model.CentralServerField {
			id, err := parseCentralServer(raw)
			if err != nil {
				return nil, err
			}
			payload.CentralServer = &id
			continue
		}

		encodedKey, _ := json.Marshal(key)
		members = append(members, string(encodedKey)+":"+string(raw))
	}
	if _, err := dec.Token(); err != nil {
		return nil, core.BadRequest("Invalid JSON: %s", describeJSONError(err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, core.BadRequest("Invalid JSON: unexpected data after object")
	}

	payload.Body = []byte("{" + strings.Join(members, ",") + "}")
	return &payload, nil
}

func parseCentralServer(raw json.RawMessage) (int, error) {
	schemaErr := core.BadRequest("JSON does not match schema: field %q must be an integer", model.CentralServerField)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || (trimmed[0] != '-' && (trimmed[0] < '0' || trimmed[0] > '9')) {
		return 0, schemaErr
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0, schemaErr
	}
	id, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, schemaErr
	}
	return id, nil
}

// CheckDuplicateKeys rejects JSON documents in which any object repeats a key.
func CheckDuplicateKeys(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return core.BadRequest("Invalid JSON: empty body")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := walkValue(dec, "$"); err != nil {
		return err
	}
	return nil
}

func walkValue(dec *json.Decoder, path string) error {
	tok, err := dec.Token()
	if err != nil {
		return core.BadRequest("Invalid JSON: %s", describeJSONError(err))
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '{':
		seen := make(map[string]bool)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return core.BadRequest("Invalid JSON: %s", describeJSONError(err))
			}
			key := keyTok.(string)
			if seen[key] {
				return core.BadRequest("Duplicate key %q in %s", key, path)
			}
			seen[key] = true
			if err := walkValue(dec, path+"."+key); err != nil {
				return err
			}
		}
	case '[':
		for i := 0; dec.More(); i++ {
			if err := walkValue(dec, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return core.BadRequest("Invalid JSON: %s", describeJSONError(err))
	}
	return nil
}

func describeJSONError(err error) string {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "unexpected end of input"
	}
	return err.Error()
}
