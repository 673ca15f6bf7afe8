//go:build !linux

package button

import "errors"

// RealEdgeSource is not available on non-Linux platforms.
type RealEdgeSource struct{}

// NewRealEdgeSource returns an error on non-Linux platforms.
func NewRealEdgeSource(chipName string) (*RealEdgeSource, error) {
	return nil, errors.New("button: gpio not supported on this platform (requires Linux)")
}

// Watch is not implemented on non-Linux platforms.
func (s *RealEdgeSource) Watch(offset int, fn func(pressed bool)) error {
	return errors.New("button: gpio not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RealEdgeSource) Close() error {
	return nil
}
