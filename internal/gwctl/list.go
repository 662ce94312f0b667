package gwctl

import (
	"io"

	"github.com/edvin/provisioning/internal/model"
)

// List fetches every object of type t through the gateway and writes the
// merged list as indented JSON.
func List(c *Client, base string, t model.ObjectType, out io.Writer) error {
	if !t.Sharded() {
		return errUnsharded(t)
	}
	resp, err := c.Get(base + "/" + string(t))
	if err != nil {
		return err
	}

	return writeIndented(out, resp.Body)
}
