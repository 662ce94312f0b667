package centralserver

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// UpstreamError is a failed or unusable central server response. It keeps
// everything needed to diagnose the failure from the log.
type UpstreamError struct {
	ShardID int
	URL     string
	Status  int
	Header  http.Header
	Body    []byte
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("central server %d (%s): %v", e.ShardID, e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *UpstreamError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Int("central_server", e.ShardID).
		Str("url", e.URL).
		Int("status", e.Status).
		Str("body", string(e.Body))
	if len(e.Header) > 0 {
		h := zerolog.Dict()
		for k, v := range e.Header {
			h.Strs(k, v)
		}
		ev.Dict("headers", h)
	}
	if e.Err != nil {
		ev.Str("cause", e.Err.Error())
	}
}
