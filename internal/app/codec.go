package app

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Signaling payloads travel as base64 encoded JSON strings.
func encode(obj any) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("failed marshalling: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func decode(in string, obj any) error {
	data, err := base64.StdEncoding.DecodeString(in)
	if err != nil {
		return fmt.Errorf("failed base64 decoding: %w", err)
	}

	err = json.Unmarshal(data, obj)
	if err != nil {
		return fmt.Errorf("failed unmarshalling: %w", err)
	}
	return nil
}
