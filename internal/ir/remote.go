package ir

// Button names a logical remote key, decoupled from the (address, data)
// pair any particular physical remote happens to emit for it.
type Button string

// RemoteMap associates a protocol and address with a table of button
// names to data values, so callers can look up "Button: volume-up"
// without hard-coding raw protocol values, mirroring the way a concrete
// remote's button layout is kept separate from its protocol decoder.
type RemoteMap struct {
	Protocol Protocol
	Address  uint32
	buttons  map[uint32]Button
}

// NewRemoteMap builds a RemoteMap from a data-value-to-button table.
func NewRemoteMap(protocol Protocol, address uint32, table map[uint32]Button) *RemoteMap {
	buttons := make(map[uint32]Button, len(table))
	for data, btn := range table {
		buttons[data] = btn
	}
	return &RemoteMap{Protocol: protocol, Address: address, buttons: buttons}
}

// Lookup resolves a decoded Command to a Button name. It returns false if
// the command's protocol or address don't match this map, or if no entry
// covers the command's data value.
func (m *RemoteMap) Lookup(cmd Command) (Button, bool) {
	if cmd.Protocol != m.Protocol || cmd.Address != m.Address {
		return "", false
	}
	btn, ok := m.buttons[cmd.Data]
	return btn, ok
}
