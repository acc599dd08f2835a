package apperr

import (
	"encoding/json"
	"fmt"
)

const serverErrorMessage = "Internal server error"

// MissingParamError reports a required request field that is absent, and
// is also used when a create collides with an existing username.
type MissingParamError struct {
	Message string
}

func NewMissingParamError(msg string) *MissingParamError {
	return &MissingParamError{Message: msg}
}

func (e *MissingParamError) Error() string {
	return e.Message
}

func (e *MissingParamError) MarshalJSON() ([]byte, error) {
	return marshalNamed("MissingParamError", e.Message)
}

type ServerError struct{}

func NewServerError() *ServerError {
	return &ServerError{}
}

func (e *ServerError) Error() string {
	return serverErrorMessage
}

func (e *ServerError) MarshalJSON() ([]byte, error) {
	return marshalNamed("ServerError", serverErrorMessage)
}

// StoreError tags a failure of the data store. Cause keeps the original
// error so it can be logged or inspected with errors.Is.
type StoreError struct {
	Op    string
	Cause error
}

func NewStoreError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Cause: cause}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Detail is the raw cause message that goes back to the client.
func (e *StoreError) Detail() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}

func marshalNamed(name, msg string) ([]byte, error) {
	return json.Marshal(struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}{Name: name, Message: msg})
}
