// File: cdm/session.go
// Author: momentics <momentics@gmail.com>
//
// memorySession is the real, callee-side Session implementation
// CreateSession hands to its StubAdministrator; sessionProxy is the
// caller-side stand-in accessorProxy.CreateSession constructs through
// the shared rpcruntime.ProxyAdministrator.

package cdm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/momentics/weblink-rpc/rpcruntime"
)

type memorySession struct {
	mu           sync.Mutex
	sessionID    string
	licenseType  int32
	initDataType string
	initData     []byte
	cdmData      []byte
	callback     SessionCallback
	status       KeyStatus
	closed       bool
}

func newMemorySession(sessionID string, licenseType int32, initDataType string, initData, cdmData []byte, callback SessionCallback) *memorySession {
	return &memorySession{
		sessionID:    sessionID,
		licenseType:  licenseType,
		initDataType: initDataType,
		initData:     initData,
		cdmData:      cdmData,
		callback:     callback,
		status:       KeyStatusPending,
	}
}

func (s *memorySession) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("cdm: session %s is closed", s.sessionID)
	}
	s.status = KeyUsable
	return nil
}

func (s *memorySession) Update(keyMessage []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("cdm: session %s is closed", s.sessionID)
	}
	s.status = KeyUsable
	if s.callback != nil {
		s.callback.OnKeyStatusUpdate(s.status)
	}
	return nil
}

func (s *memorySession) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = KeyReleased
	return nil
}

func (s *memorySession) Status() KeyStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *memorySession) BufferID() string { return s.sessionID + "-buffer" }
func (s *memorySession) SessionID() string { return s.sessionID }

func (s *memorySession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// sessionStubMethods is SessionInterfaceID's dispatch table, method
// index order matching the Method* constants in types.go.
var sessionStubMethods = []rpcruntime.StubMethod{
	MethodLoad: func(_ *rpcruntime.StubAdministrator, recv any, _ json.RawMessage) (json.RawMessage, error) {
		return nil, recv.(Session).Load()
	},
	MethodUpdate: func(_ *rpcruntime.StubAdministrator, recv any, raw json.RawMessage) (json.RawMessage, error) {
		var p updateParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return nil, recv.(Session).Update(p.KeyMessage)
	},
	MethodRemove: func(_ *rpcruntime.StubAdministrator, recv any, _ json.RawMessage) (json.RawMessage, error) {
		return nil, recv.(Session).Remove()
	},
	MethodStatus: func(_ *rpcruntime.StubAdministrator, recv any, _ json.RawMessage) (json.RawMessage, error) {
		return json.Marshal(statusResult{Status: recv.(Session).Status()})
	},
	MethodClose: func(_ *rpcruntime.StubAdministrator, recv any, _ json.RawMessage) (json.RawMessage, error) {
		return nil, recv.(Session).Close()
	},
}

// sessionProxy is the caller-side Session stand-in registered via
// NewSessionProxyFactory.
type sessionProxy struct {
	admin  *rpcruntime.ProxyAdministrator
	handle uint32
}

// NewSessionProxyFactory returns the rpcruntime.ProxyFactory for
// SessionInterfaceID.
func NewSessionProxyFactory() rpcruntime.ProxyFactory {
	return func(admin *rpcruntime.ProxyAdministrator, handle uint32) any {
		return &sessionProxy{admin: admin, handle: handle}
	}
}

var _ Session = (*sessionProxy)(nil)

func (s *sessionProxy) invoke(method uint32, params json.RawMessage) (*rpcruntime.InvokeResponse, error) {
	resp, err := s.admin.Invoke(context.Background(), &rpcruntime.InvokeMessage{
		Interface: SessionInterfaceID, Handle: s.handle, Method: method, Parameters: params,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("cdm: session call: %s", resp.Error)
	}
	return resp, nil
}

func (s *sessionProxy) Load() error {
	_, err := s.invoke(MethodLoad, nil)
	return err
}

func (s *sessionProxy) Update(keyMessage []byte) error {
	params, _ := json.Marshal(updateParams{KeyMessage: keyMessage})
	_, err := s.invoke(MethodUpdate, params)
	return err
}

func (s *sessionProxy) Remove() error {
	_, err := s.invoke(MethodRemove, nil)
	return err
}

func (s *sessionProxy) Status() KeyStatus {
	resp, err := s.invoke(MethodStatus, nil)
	if err != nil {
		return KeyInternalError
	}
	var result statusResult
	_ = json.Unmarshal(resp.Result, &result)
	return result.Status
}

func (s *sessionProxy) BufferID() string { return fmt.Sprintf("session-%d-buffer", s.handle) }
func (s *sessionProxy) SessionID() string { return fmt.Sprintf("session-%d", s.handle) }

func (s *sessionProxy) Close() error {
	_, err := s.invoke(MethodClose, nil)
	return err
}
