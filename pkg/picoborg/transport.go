package picoborg

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Bus is a byte-level handle to one peripheral address.
// Write and Read transfer the whole slice or fail.
type Bus interface {
	Write(p []byte) error
	Read(p []byte) error
	io.Closer
}

// Opener opens a Bus for a peripheral address on the bus named by locator.
type Opener func(locator string, addr uint16) (Bus, error)

// DefaultScheme is used for locators without a scheme, e.g. "/dev/i2c-1".
const DefaultScheme = "i2c"

var (
	openersLock sync.RWMutex
	openers     = make(map[string]Opener)

	// ErrUnknownScheme indicates no transport is registered for the locator.
	ErrUnknownScheme = errors.New("unknown transport scheme")
)

// RegisterTransport registers an Opener for a locator scheme.
// Transport packages call it from init.
func RegisterTransport(scheme string, opener Opener) {
	openersLock.Lock()
	defer openersLock.Unlock()
	openers[strings.ToLower(scheme)] = opener
}

// Transports lists the registered schemes.
func Transports() []string {
	openersLock.RLock()
	defer openersLock.RUnlock()
	schemes := make([]string, 0, len(openers))
	for scheme := range openers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// LocatorScheme extracts the scheme of a locator.
func LocatorScheme(locator string) string {
	if pos := strings.Index(locator, "://"); pos > 0 {
		if u, err := url.Parse(locator); err == nil && u.Scheme != "" {
			return strings.ToLower(u.Scheme)
		}
	}
	return DefaultScheme
}

// OpenBus opens a Bus using the transport registered for the locator scheme.
func OpenBus(locator string, addr uint16) (Bus, error) {
	scheme := LocatorScheme(locator)
	openersLock.RLock()
	opener := openers[scheme]
	openersLock.RUnlock()
	if opener == nil {
		return nil, &TransportError{Op: "open", Err: fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)}
	}
	bus, err := opener(locator, addr)
	if err != nil {
		return nil, &TransportError{Op: "open", Err: err}
	}
	return bus, nil
}
