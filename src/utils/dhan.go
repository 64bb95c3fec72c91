package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type dhanEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// ParseDhanResponse unmarshals a broker response into T. Some endpoints wrap
// the payload in a {"status": ..., "data": ...} envelope and some return it
// bare; both shapes are accepted. A null data node yields the zero value, which
// callers treat as absence of data rather than an error.
func ParseDhanResponse[T any](response []byte) (T, error) {
	var result T

	var envelope dhanEnvelope
	if err := json.Unmarshal(response, &envelope); err == nil {
		if envelope.Status != "" && !strings.EqualFold(envelope.Status, "success") {
			return result, fmt.Errorf("ParseDhanResponse: broker returned status %q: %s", envelope.Status, string(envelope.Data))
		}

		if len(envelope.Data) > 0 {
			if bytes.Equal(envelope.Data, []byte("null")) {
				return result, nil
			}

			if err := json.Unmarshal(envelope.Data, &result); err != nil {
				return result, fmt.Errorf("ParseDhanResponse: failed to unmarshal data: %w", err)
			}

			return result, nil
		}
	}

	// No envelope; the endpoint returns the payload directly.
	if err := json.Unmarshal(response, &result); err != nil {
		return result, fmt.Errorf("ParseDhanResponse: failed to unmarshal response: %w", err)
	}

	return result, nil
}
