package notification

import "sync"

// Notification is one user-facing event line produced by imports, merges
// and scheduled jobs.
type Notification struct {
	ScorecardID string `json:"scorecard_id,omitempty"`
	Message     string `json:"message"`
}

type NotificationService struct {
	mu            sync.Mutex
	notifications []Notification
}

func NewNotificationService() *NotificationService {
	return &NotificationService{notifications: make([]Notification, 0)}
}

func (ns *NotificationService) Add(n Notification) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.notifications = append(ns.notifications, n)
}

// Drain returns all pending notifications and clears the list.
func (ns *NotificationService) Drain() []Notification {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	out := ns.notifications
	ns.notifications = make([]Notification, 0)
	return out
}

var globalService *NotificationService

func SetGlobalService(ns *NotificationService) {
	globalService = ns
}

// Notify appends to the global service when one is wired.
func Notify(n Notification) {
	if globalService != nil {
		globalService.Add(n)
	}
}

// DrainGlobal empties the global service.
func DrainGlobal() []Notification {
	if globalService == nil {
		return nil
	}
	return globalService.Drain()
}
