package sim

import (
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

// Scheme is the locator scheme served by this package.
const Scheme = "sim"

var (
	boardsLock sync.Mutex
	boards     = make(map[string]*Board)
)

func init() {
	picoborg.RegisterTransport(Scheme, Open)
}

// Open opens an emulated board for a locator like
//
//   sim://name?addr=0x44&id=0x15
//
// addr is the address the board answers on, defaults to picoborg.DefaultAddress.
// Other addresses open like on a real bus but never acknowledge.
// id overrides the identity byte. Boards with a name are shared by all
// opens of the same name, so state survives a reopen, unnamed boards are fresh.
func Open(locator string, addr uint16) (picoborg.Bus, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	boardAddr := picoborg.DefaultAddress
	if s := q.Get("addr"); s != "" {
		v, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid addr %q: %w", s, err)
		}
		boardAddr = uint16(v)
	}
	if addr != boardAddr {
		return absent{}, nil
	}
	id := picoborg.IdentityPicoBorgRev
	if s := q.Get("id"); s != "" {
		v, err := strconv.ParseUint(s, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		id = byte(v)
	}
	if u.Host == "" {
		b := NewBoard()
		b.ID = id
		return b, nil
	}
	boardsLock.Lock()
	defer boardsLock.Unlock()
	b := boards[u.Host]
	if b == nil {
		b = NewBoard()
		boards[u.Host] = b
	}
	b.lock.Lock()
	b.ID = id
	b.closed = false
	b.lock.Unlock()
	return b, nil
}

type absent struct{}

func (absent) Write([]byte) error { return ErrNoAck }
func (absent) Read([]byte) error  { return ErrNoAck }
func (absent) Close() error       { return nil }
