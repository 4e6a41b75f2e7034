package internal

import (
	"encoding/json"
	"net/http"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/result"
)

// maxErrorBody bounds how much of a failed response body is kept on an
// HTTPStatusError.
const maxErrorBody = 512

// Outcome is what the transport produced for one request.
type Outcome struct {
	Operation string
	URL       string
	Body      []byte
	Response  *http.Response
	Err       error
}

// Response is a received HTTP response together with its body.
type Response struct {
	Body []byte
	HTTP *http.Response
}

// FromTransport is the first stage: any transport error, or a missing
// response, is a TransportError.
func FromTransport(o Outcome) result.Result[*Response] {
	if o.Err != nil || o.Response == nil {
		return result.Failure[*Response](&pkgerrs.TransportError{
			Operation: o.Operation,
			URL:       o.URL,
			Err:       o.Err,
		})
	}
	return result.Success(&Response{Body: o.Body, HTTP: o.Response})
}

// ValidateHTTP is the second stage: statuses outside 2xx fail with an
// HTTPStatusError, otherwise the body passes through.
func ValidateHTTP(r *Response) result.Result[[]byte] {
	code := r.HTTP.StatusCode
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		body := r.Body
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return result.Failure[[]byte](&pkgerrs.HTTPStatusError{
			StatusCode: code,
			Status:     r.HTTP.Status,
			Body:       string(body),
		})
	}
	return result.Success(r.Body)
}

// DecodeJSON is the third stage: the body becomes an untyped JSON tree.
func DecodeJSON(body []byte) result.Result[any] {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return result.Failure[any](&pkgerrs.DecodingError{Err: err})
	}
	return result.Success(v)
}

// Run chains the three shared stages with the endpoint specific shape stage.
// The first failing stage decides the result; later stages are not run.
func Run[T any](o Outcome, shape func(any) result.Result[T]) result.Result[T] {
	validated := result.Then(FromTransport(o), ValidateHTTP)
	decoded := result.Then(validated, DecodeJSON)
	return result.Then(decoded, shape)
}
