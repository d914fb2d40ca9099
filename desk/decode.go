package desk

import "encoding/json"

// Decode converts a success body into T
func Decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		var zero T
		return zero, &DecodeError{Body: string(body), Err: err}
	}
	return v, nil
}
