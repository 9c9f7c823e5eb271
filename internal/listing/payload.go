package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"booklister/internal"
)

// ErrMalformedInput marks a JSON file that cannot be used as a listing
// payload. Batch runners treat it as a per-item skip, never a fatal error.
var ErrMalformedInput = errors.New("malformed listing payload")

// LoadPayload reads a JSON file and returns its top-level object with
// lower-cased keys. Anything that is not a JSON object fails with
// ErrMalformedInput.
func LoadPayload(path string) (internal.Payload, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return ParsePayload(blob)
}

// ParsePayload decodes raw JSON into a case-insensitive payload mapping.
func ParsePayload(blob []byte) (internal.Payload, error) {
	var decoded any
	if err := json.Unmarshal(blob, &decoded); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedInput, err)
	}

	object, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level JSON value must be an object", ErrMalformedInput)
	}

	payload := make(internal.Payload, len(object))
	for key, value := range object {
		payload[strings.ToLower(key)] = value
	}
	return payload, nil
}
