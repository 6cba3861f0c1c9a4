package server

import (
	"encoding/json"
	"fmt"
)

// jsonCodec carries plain Go structs over the Connect protocol's "json" encoding.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}
