// Package testnet is an in-memory HTTP network for tests. Hosts are
// registered by "host:port"; requests to unregistered hosts fail with
// ECONNREFUSED the way a real dial would.
package testnet

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"syscall"
)

// Network routes requests to registered handlers.
type Network struct {
	mu         sync.Mutex
	hosts      map[string]http.Handler
	blackholes map[string]bool
	calls      map[string]int
	paths      []string
}

func New() *Network {
	return &Network{
		hosts:      make(map[string]http.Handler),
		blackholes: make(map[string]bool),
		calls:      make(map[string]int),
	}
}

// Handle registers h for hostport, replacing any previous handler.
func (n *Network) Handle(hostport string, h http.Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.hosts[hostport] = h
	delete(n.blackholes, hostport)
}

// Remove unregisters hostport so later dials are refused.
func (n *Network) Remove(hostport string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.hosts, hostport)
	delete(n.blackholes, hostport)
}

// Blackhole makes requests to hostport hang until their context ends.
func (n *Network) Blackhole(hostport string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.hosts, hostport)
	n.blackholes[hostport] = true
}

// Client returns an http.Client using the network as transport.
func (n *Network) Client() *http.Client {
	return &http.Client{Transport: n}
}

// Calls returns how many requests reached (or tried to reach) hostport.
func (n *Network) Calls(hostport string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.calls[hostport]
}

// Total returns the number of requests issued on the network.
func (n *Network) Total() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.paths)
}

// Requests returns "host/path" for every request in order.
func (n *Network) Requests() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.paths...)
}

func (n *Network) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Host

	n.mu.Lock()
	n.calls[host]++
	n.paths = append(n.paths, host+req.URL.Path)
	h, ok := n.hosts[host]
	hole := n.blackholes[host]
	n.mu.Unlock()

	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	if hole {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}

	if !ok {
		return nil, &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED},
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	resp := rec.Result()
	resp.Request = req

	return resp, nil
}

// Interface mirrors one entry of the health endpoint's interface list.
type Interface struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Health answers GET /health with a healthy status and the given
// interface addresses. Other paths fall through to next, or 404.
func Health(next http.Handler, addresses ...string) http.Handler {
	ifaces := make([]Interface, 0, len(addresses))
	for i, a := range addresses {
		ifaces = append(ifaces, Interface{Name: "eth" + string(rune('0'+i)), Address: a})
	}

	body := map[string]any{
		"status": "healthy",
		"server": map[string]any{"networkInterfaces": ifaces},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(body)

			return
		}

		if next == nil {
			http.NotFound(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
