package serviceiface

// Service is the lifecycle contract every Pulseboard service implements.
// Start must not block; long-running work belongs in goroutines owned by
// the service and wound down by Stop.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
