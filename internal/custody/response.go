package custody

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Response is a decoded JSON object returned by the custodial service.
type Response struct {
	raw    []byte
	fields map[string]any
}

func decodeResponse(raw []byte) (Response, error) {
	if !gjson.ValidBytes(raw) {
		return Response{}, errors.New("malformed response body")
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return Response{}, errors.New("response body is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Response{}, errors.Wrap(err, "decode response")
	}
	return Response{raw: raw, fields: fields}, nil
}

// NewResponse builds a Response from an already decoded object. Useful for
// callers that stub the client.
func NewResponse(fields map[string]any) Response {
	if fields == nil {
		fields = map[string]any{}
	}
	raw, _ := json.Marshal(fields)
	return Response{raw: raw, fields: fields}
}

// Fields returns the top level object. Numbers are json.Number.
func (r Response) Fields() map[string]any {
	return r.fields
}

// Get looks up a top level key (or gjson path) in the raw body.
func (r Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Raw returns the body bytes as received.
func (r Response) Raw() []byte {
	return r.raw
}
