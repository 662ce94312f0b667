package model

import "fmt"

// ResultCode is the resultCode of a response envelope.
type ResultCode int

const (
	ResultOK               ResultCode = 200
	ResultBadRequest       ResultCode = 400
	ResultUnauthorized     ResultCode = 401
	ResultForbidden        ResultCode = 403
	ResultNotFound         ResultCode = 404
	ResultMethodNotAllowed ResultCode = 405
	ResultInternalError    ResultCode = 500
)

var resultTitles = map[ResultCode]string{
	ResultOK:               "OK",
	ResultBadRequest:       "Bad request",
	ResultUnauthorized:     "Unauthorized",
	ResultForbidden:        "Forbidden",
	ResultNotFound:         "Not found",
	ResultMethodNotAllowed: "Method not allowed",
	ResultInternalError:    "General error",
}

// Valid reports whether the code belongs to the envelope result code set.
func (c ResultCode) Valid() bool {
	_, ok := resultTitles[c]
	return ok
}

// Title returns the default title for the code.
func (c ResultCode) Title() string {
	return resultTitles[c]
}

// Envelope is the common response shape for errors and alert submissions.
type Envelope struct {
	ResultCode    ResultCode `json:"resultCode"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Details       any        `json:"details,omitempty"`
	UpdatedObject any        `json:"updatedObject,omitempty"`
}

// NewEnvelope builds an envelope with the default title for code. It panics
// on a code outside the result code set.
func NewEnvelope(code ResultCode, description string) Envelope {
	if !code.Valid() {
		panic(fmt.Sprintf("invalid envelope result code %d", code))
	}
	return Envelope{ResultCode: code, Title: code.Title(), Description: description}
}
