// File: jsonrpc/smartlink.go
// Author: momentics <momentics@gmail.com>
//
// SmartLink wraps Link with re-subscription across a remote plugin's
// deactivate/activate cycle, grounded on JSONRPCLink.h's
// SmartLinkType::Connection: it monitors the "statechange" event on the
// Controller and re-issues every previously registered subscription once
// the remote callsign reports ACTIVATED.

package jsonrpc

import (
	"encoding/json"
	"sync"
	"time"
)

// PluginState mirrors JSONRPCLink.h's JSONPluginState enum.
type PluginState int

const (
	PluginDeactivated PluginState = iota
	PluginActivated
)

type statechangeEvent struct {
	Callsign string      `json:"callsign"`
	State    PluginState `json:"state"`
}

// SmartLink is a Link that survives its remote plugin being deactivated
// and reactivated: on ACTIVATED it transparently replays every event
// this caller subscribed to.
type SmartLink struct {
	*Link
	monitor *Link

	mu     sync.Mutex
	state  PluginState
	events []string
}

// NewSmartLink constructs a SmartLink addressing remoteCallsign and
// arms a monitor Link watching the Controller's "statechange" event,
// per SmartLinkType::Connection's constructor.
func NewSmartLink(channel *Channel, wheel *TimeoutWheel, remoteCallsign, localCallsign string, version uint8) *SmartLink {
	link := NewLink(channel, wheel, remoteCallsign, localCallsign, version)
	monitor := NewLink(channel, wheel, "", "", 0)

	sl := &SmartLink{Link: link, monitor: monitor}
	_ = monitor.Subscribe(DefaultWaitTime, "statechange", sl.onStateChange)
	return sl
}

func (sl *SmartLink) onStateChange(params json.RawMessage) {
	var ev statechangeEvent
	if err := json.Unmarshal(params, &ev); err != nil || ev.Callsign != sl.Link.callsign {
		return
	}
	sl.setState(ev.State)
}

func (sl *SmartLink) setState(state PluginState) {
	sl.mu.Lock()
	changed := state != sl.state
	sl.state = state
	events := append([]string(nil), sl.events...)
	sl.mu.Unlock()

	if changed && state == PluginActivated {
		for _, name := range events {
			params, _ := json.Marshal(map[string]string{"event": name, "id": sl.Link.localSpace})
			_, _ = sl.Link.invokeSync(DefaultWaitTime, "register", params)
		}
	}
}

// Subscribe records eventName for replay across reconnects, then
// delegates to Link.Subscribe, per SmartLinkType::Subscribe.
func (sl *SmartLink) Subscribe(waitTime time.Duration, eventName string, handler EventHandler) error {
	sl.mu.Lock()
	sl.events = append(sl.events, eventName)
	sl.mu.Unlock()
	return sl.Link.Subscribe(waitTime, eventName, handler)
}

// IsActivated reports the most recently observed plugin state, per
// SmartLinkType::IsActivated.
func (sl *SmartLink) IsActivated() bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.state == PluginActivated
}

// Close tears down both the primary link and the statechange monitor.
func (sl *SmartLink) Close() {
	sl.monitor.Close()
	sl.Link.Close()
}
