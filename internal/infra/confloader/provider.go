package confloader

import "errors"

// ErrReadBytesNotSupported is returned when ReadBytes is called on the
// map provider; koanf uses Read for map-backed providers.
var ErrReadBytesNotSupported = errors.New("confloader: ReadBytes not supported by map provider")

// mapProvider adapts a plain map to koanf's provider contract.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
