package loadbalancer

import "sync"

// LoadBalancer rotates over upstream base URLs. The gateway uses it when a
// service is configured with more than one replica.
type LoadBalancer struct {
	servers []string
	mu      sync.Mutex
	current int
}

func New(servers []string) *LoadBalancer {
	return &LoadBalancer{servers: servers}
}

// Next returns the next upstream in round-robin order, or "" when no
// upstreams are configured.
func (lb *LoadBalancer) Next() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if len(lb.servers) == 0 {
		return ""
	}
	server := lb.servers[lb.current]
	lb.current = (lb.current + 1) % len(lb.servers)
	return server
}

// Len reports how many upstreams are configured.
func (lb *LoadBalancer) Len() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.servers)
}
