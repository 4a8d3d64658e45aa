package protocol

// scopeRule captures the two-bit pattern from spec §4.3: whether a command
// may arrive before the version handshake, and before verack.
type scopeRule struct {
	preVersion bool
	preVerack  bool
}

var scopeRules = map[Command]scopeRule{
	CmdNodeVersion: {preVersion: true, preVerack: true},
	CmdReject:      {preVersion: true, preVerack: true},
	CmdVerack:      {preVersion: false, preVerack: true},
	CmdGetAddr:     {preVersion: false, preVerack: false},
	CmdAddrs:       {preVersion: false, preVerack: false},
	CmdGetHeaders:  {preVersion: false, preVerack: false},
	CmdHeaders:     {preVersion: false, preVerack: false},
	CmdGetBlocks:   {preVersion: false, preVerack: false},
	CmdBlocks:      {preVersion: false, preVerack: false},
	CmdTx:          {preVersion: false, preVerack: false},
}

// PeerState is the minimal view of a peer's handshake progress the scope
// gate needs, satisfied by *peer.Peer without protocol importing peer
// (which would create an import cycle, since peer imports protocol for
// Message).
type PeerState interface {
	Version() int
	SuccessfullyConnected() bool
}

// ScopeCheck reports whether msg's command is allowed given peer's current
// handshake state (spec §4.3/§4.4). Commands outside the known table (the
// self-event commands) are always allowed, since they never arrive from a
// remote peer.
func ScopeCheck(msg Message, peer PeerState) bool {
	rule, known := scopeRules[msg.Command]
	if !known {
		return true
	}
	if rule.preVersion {
		return true
	}
	if peer.Version() == 0 {
		return false
	}
	if !rule.preVerack {
		return peer.SuccessfullyConnected()
	}
	return true
}
