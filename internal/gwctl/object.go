package gwctl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/edvin/provisioning/internal/model"
)

func objectPath(base string, t model.ObjectType, id string) (string, error) {
	if !t.Sharded() {
		return "", errUnsharded(t)
	}
	if id == "" {
		return "", errors.New("object id is required")
	}
	return base + "/" + string(t) + "/" + id, nil
}

// GetObject fetches one object through the gateway.
func GetObject(c *Client, base string, t model.ObjectType, id string, out io.Writer) error {
	path, err := objectPath(base, t, id)
	if err != nil {
		return err
	}
	resp, err := c.Get(path)
	if err != nil {
		return err
	}
	return writeIndented(out, resp.Body)
}

// PutObject creates or updates one object. The body is sent unchanged, so a
// "centralServer" member in it pins the object to that central server.
func PutObject(c *Client, base string, t model.ObjectType, id string, body io.Reader, out io.Writer) error {
	path, err := objectPath(base, t, id)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read object: %w", err)
	}
	if !json.Valid(data) {
		return errors.New("object is not valid JSON")
	}
	resp, err := c.Put(path, data)
	if err != nil {
		return err
	}
	return writeIndented(out, resp.Body)
}

// DeleteObject deletes one object through the gateway.
func DeleteObject(c *Client, base string, t model.ObjectType, id string, out io.Writer) error {
	path, err := objectPath(base, t, id)
	if err != nil {
		return err
	}
	resp, err := c.Delete(path)
	if err != nil {
		return err
	}
	return writeIndented(out, resp.Body)
}

func errUnsharded(t model.ObjectType) error {
	names := make([]string, len(model.ShardedObjectTypes))
	for i, ot := range model.ShardedObjectTypes {
		names[i] = string(ot)
	}
	return fmt.Errorf("object type %q is not one of %s", t, strings.Join(names, ", "))
}

func writeIndented(out io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
