package utils

import (
	"encoding/json"
)

func JsonEncode(payload any) []byte {
	bytes, err := json.Marshal(payload)
	if err != nil {
		panic("Error serializing JSON")
	}
	return bytes
}

func JsonDecodeByteStream[T any](data []byte) (*T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
