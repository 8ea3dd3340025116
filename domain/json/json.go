// Package json is a drop-in replacement for encoding/json backed by json-iterator.
package json

import (
	jsoniter "github.com/json-iterator/go"
)

var (
	codec = jsoniter.ConfigCompatibleWithStandardLibrary

	Marshal       = codec.Marshal
	MarshalIndent = codec.MarshalIndent
	Unmarshal     = codec.Unmarshal
	NewDecoder    = codec.NewDecoder
	NewEncoder    = codec.NewEncoder
)
