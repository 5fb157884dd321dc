package comm

// SyncState indicates the state of communication.
type SyncState int

const (
	// SyncStateSyncing means the communication is not synchronized.
	SyncStateSyncing SyncState = 0
	// SyncStateReady means the communication is synchronized and ready for packets.
	SyncStateReady SyncState = 0x01
	// SyncStateReceiving means a handshake or a packet is partially received.
	SyncStateReceiving SyncState = 0x02
)

// IsReady indicates if the communication is ready for packets.
func (s SyncState) IsReady() bool {
	return s&SyncStateReady != 0
}

// IsReceiving indicates if it's in the middle of a handshake or a packet.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// String implements fmt.Stringer.
func (s SyncState) String() string {
	switch {
	case s.IsReady() && s.IsReceiving():
		return "receiving"
	case s.IsReady():
		return "ready"
	case s.IsReceiving():
		return "handshaking"
	}
	return "syncing"
}

// TimerAction tells the owner of the parser what to do with its timer.
type TimerAction int

const (
	// TimerNoChange keeps the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart restarts the timer.
	TimerRestart
	// TimerStop cancels the timer.
	TimerStop
)

// ParseResult is the outcome of one parsing step.
// Sync is a sync byte to send to the peer, 0 for none.
type ParseResult struct {
	Sync   byte
	State  SyncState
	Packet *Packet
}

// WhatAboutTimer decides what to do with the timer after this step.
func (r ParseResult) WhatAboutTimer() TimerAction {
	switch {
	case r.State.IsReceiving(), r.Sync == syncREQ:
		return TimerRestart
	case r.State.IsReady():
		return TimerStop
	}
	return TimerNoChange
}

const (
	syncREQ byte = 0xff
	syncACK byte = 0xfe
)

// parseState values are ordered, see Parser.State.
type parseState int

const (
	awaitSync parseState = iota
	awaitReqSeq
	awaitAckSeq
	awaitSeq
	awaitAckedSeq
	awaitCode
	awaitLen
	awaitData
)

// Parser is the receiving side of the link. It is driven byte by byte and
// by timer expiry, and is not safe for concurrent use.
type Parser struct {
	state   parseState
	peerSeq PacketSeq
	packet  *Packet
	filled  int
}

// State gets the current sync state.
func (p *Parser) State() SyncState {
	switch {
	case p.state == awaitSync:
		return SyncStateSyncing
	case p.state < awaitSeq:
		return SyncStateReceiving
	case p.state == awaitSeq:
		return SyncStateReady
	}
	return SyncStateReady | SyncStateReceiving
}

// Reset drops any partial packet and starts a new handshake.
func (p *Parser) Reset() ParseResult {
	return p.result(p.resync())
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) ParseResult {
	return p.result(p.parseByte(b))
}

// Timeout notifies the parser the timer expired. Anything but an idle,
// synchronized link starts over.
func (p *Parser) Timeout() ParseResult {
	if p.state == awaitSeq {
		return p.result(0, nil)
	}
	return p.result(p.resync())
}

func (p *Parser) result(sync byte, pkt *Packet) ParseResult {
	return ParseResult{Sync: sync, State: p.State(), Packet: pkt}
}

func (p *Parser) parseByte(b byte) (byte, *Packet) {
	switch p.state {
	case awaitSync:
		switch b {
		case syncREQ:
			p.state = awaitReqSeq
		case syncACK:
			p.state = awaitAckSeq
		}
	case awaitReqSeq, awaitAckSeq:
		return p.onSyncSeq(b)
	case awaitSeq:
		return p.onSeq(b)
	case awaitAckedSeq:
		if PacketSeq(b) != p.peerSeq {
			return p.resync()
		}
		p.state = awaitSeq
	case awaitCode:
		return p.onCode(b)
	case awaitLen:
		return p.onLen(b)
	case awaitData:
		return p.onData(b)
	}
	return 0, nil
}

// onSyncSeq takes the peer sequence following a sync byte.
// A sync request is answered with an ack.
func (p *Parser) onSyncSeq(b byte) (byte, *Packet) {
	seq := PacketSeq(b)
	if !seq.IsValid() {
		return p.resync()
	}
	var reply byte
	if p.state == awaitReqSeq {
		reply = syncACK
	}
	p.peerSeq, p.state = seq, awaitSeq
	return reply, nil
}

func (p *Parser) onSeq(b byte) (byte, *Packet) {
	switch {
	case b == syncREQ:
		p.state = awaitReqSeq
	case b == syncACK:
		p.state = awaitAckedSeq
	case PacketSeq(b) != p.peerSeq:
		return p.resync()
	default:
		p.packet = &Packet{Seq: p.peerSeq}
		p.peerSeq = p.peerSeq.Next()
		p.state = awaitCode
	}
	return 0, nil
}

func (p *Parser) onCode(b byte) (byte, *Packet) {
	p.packet.Code = b & codeMask
	switch n := int(b&inlineLenMask) >> 4; n {
	case 0:
		return p.complete()
	case inlineLenMax:
		p.state = awaitLen
	default:
		p.expectData(n)
	}
	return 0, nil
}

func (p *Parser) onLen(b byte) (byte, *Packet) {
	switch {
	case b >= 0x80:
		return p.resync()
	case b == 0:
		return p.complete()
	}
	p.expectData(int(b))
	return 0, nil
}

func (p *Parser) expectData(n int) {
	p.packet.Data, p.filled = make([]byte, n), 0
	p.state = awaitData
}

func (p *Parser) onData(b byte) (byte, *Packet) {
	p.packet.Data[p.filled] = b
	if p.filled++; p.filled < len(p.packet.Data) {
		return 0, nil
	}
	return p.complete()
}

func (p *Parser) complete() (byte, *Packet) {
	pkt := p.packet
	p.packet, p.state = nil, awaitSeq
	return 0, pkt
}

func (p *Parser) resync() (byte, *Packet) {
	p.packet, p.state = nil, awaitSync
	return syncREQ, nil
}
