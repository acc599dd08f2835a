package httpresponse

import (
	"net/http"

	"userservice/pkg/apperr"
)

// Envelope pairs a logical status with a body. It is serialized as the
// response payload; the transport status is chosen by the caller.
type Envelope struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

func BadRequest(err error) Envelope {
	return Envelope{StatusCode: http.StatusBadRequest, Body: err}
}

func Created(data any) Envelope {
	return Envelope{StatusCode: http.StatusCreated, Body: data}
}

func ServerError() Envelope {
	return Envelope{StatusCode: http.StatusInternalServerError, Body: apperr.NewServerError()}
}

func OK(data any) Envelope {
	return Envelope{StatusCode: http.StatusOK, Body: data}
}
