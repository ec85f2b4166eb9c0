// Package netx performs the single request/response exchanges the provider
// adapters make with external intelligence services.
package netx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

// maxBodySize bounds how much of a provider response is read into memory.
const maxBodySize = 8 << 20

// maxErrorBody bounds how much of a failed response ends up in the error.
const maxErrorBody = 512

// StatusError reports a response whose status was neither 2xx nor one of
// the statuses the caller declared acceptable.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %s; body: %s", e.Status, e.Body)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Do sends req and reads the whole body. Statuses outside 2xx that are not
// listed in accept yield a *StatusError. Transport errors are returned as is.
func Do(client *http.Client, req *http.Request, accept ...int) (*Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	r := &Response{StatusCode: resp.StatusCode, Body: body}
	if r.OK() || slices.Contains(accept, resp.StatusCode) {
		return r, nil
	}

	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
}

// JSONBody encodes v for use as a request body.
func JSONBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}
