// Package api
// Author: momentics
//
// Test doubles for the core contracts.

package api

// MockTransport implements Transport through caller-supplied functions,
// so codec and link tests can script a peer without a socket.
type MockTransport struct {
	SendFunc     func([][]byte) error
	RecvFunc     func() ([][]byte, error)
	CloseFunc    func() error
	FeaturesFunc func() TransportFeatures
}

func (m *MockTransport) Send(b [][]byte) error       { return m.SendFunc(b) }
func (m *MockTransport) Recv() ([][]byte, error)     { return m.RecvFunc() }
func (m *MockTransport) Close() error                { return m.CloseFunc() }
func (m *MockTransport) Features() TransportFeatures { return m.FeaturesFunc() }
