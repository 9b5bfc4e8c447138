package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"homznspace/backend/internal/apperr"
)

// decodeStrict decodes a single JSON object into v, rejecting unknown fields.
func decodeStrict(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperr.Validation(fmt.Sprintf("invalid value for %s", typeErr.Field), typeErr.Field)
		}
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			field = strings.Trim(field, `"`)
			return apperr.Validation("unknown field "+field, field)
		}
		return apperr.Validation("malformed JSON body")
	}
	if dec.More() {
		return apperr.Validation("request body must contain a single JSON object")
	}
	return nil
}

func decodeStrictBytes(data []byte, v any) error {
	return decodeStrict(bytes.NewReader(data), v)
}
