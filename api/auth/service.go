package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"PulseboardSaaS/internal/logger"
	"PulseboardSaaS/internal/serviceiface"
)

type UserSession struct {
	SessionID     string
	UserID        string
	Name          string
	Email         string
	Role          string
	LastLoginTime string
	ClientIP      string
	IsLoggedIn    bool
}

type AuthService struct {
	db             *sql.DB
	maxUsers       int
	sessionTimeout time.Duration
	users          map[string]*UserSession
	userPointers   map[string]*UserSession
	lastSeen       map[string]time.Time
	mu             sync.Mutex
	stopCh         chan struct{}
}

func NewAuthService(db *sql.DB, maxUsers, sessionTimeoutMin, cleanerPeriodMin int) serviceiface.Service {
	if maxUsers <= 0 {
		maxUsers = 100
	}
	if sessionTimeoutMin <= 0 {
		sessionTimeoutMin = 120
	}
	svc := &AuthService{
		db:             db,
		maxUsers:       maxUsers,
		sessionTimeout: time.Duration(sessionTimeoutMin) * time.Minute,
		users:          make(map[string]*UserSession),
		userPointers:   make(map[string]*UserSession),
		lastSeen:       make(map[string]time.Time),
		stopCh:         make(chan struct{}),
	}
	_ = cleanerPeriodMin
	return svc
}

func (a *AuthService) Name() string { return "auth" }

func (a *AuthService) Start() error {
	go a.sessionCleaner()
	return nil
}

func (a *AuthService) Stop() error {
	close(a.stopCh)
	return nil
}

func (a *AuthService) Login(username, password, clientIP string) (*UserSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, session := range a.users {
		if session.Email == username && session.IsLoggedIn {
			session.LastLoginTime = time.Now().Format(time.RFC3339)
			session.ClientIP = clientIP
			a.lastSeen[session.SessionID] = time.Now()
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("User %s re-logged in, returning existing session", username))
			}
			return session, nil
		}
	}

	if len(a.users) >= a.maxUsers {
		return nil, errors.New("maximum concurrent users reached")
	}

	var (
		userID, name, email string
		roleName            sql.NullString
	)
	query := `
    SELECT
        u.id AS user_id,
        u.employee_name,
        u.email,
        r.name AS role_name
    FROM users u
    LEFT JOIN user_roles ur ON u.id = ur.user_id
    LEFT JOIN roles r ON ur.role_id = r.id
    WHERE u.email = $1 AND u.password = $2
    `
	err := a.db.QueryRow(query, username, password).Scan(&userID, &name, &email, &roleName)
	if err != nil {
		return nil, errors.New("invalid credentials or user not found")
	}

	session := &UserSession{
		SessionID:     generateSessionID(),
		UserID:        userID,
		Name:          name,
		Email:         email,
		Role:          roleName.String,
		LastLoginTime: time.Now().Format(time.RFC3339),
		ClientIP:      clientIP,
		IsLoggedIn:    true,
	}
	a.users[session.SessionID] = session
	a.userPointers[userID] = session
	a.lastSeen[session.SessionID] = time.Now()

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("User logged in: " + username)
	}
	return session, nil
}

func (a *AuthService) Logout(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, exists := a.users[sessionID]
	if !exists {
		return errors.New("session not found")
	}
	delete(a.users, sessionID)
	delete(a.userPointers, session.UserID)
	delete(a.lastSeen, sessionID)

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("User logged out: " + session.UserID)
	}
	return nil
}

func (a *AuthService) GetActiveSessions() []*UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	sessions := make([]*UserSession, 0, len(a.users))
	for _, s := range a.users {
		sessions = append(sessions, s)
	}
	return sessions
}

// SessionByUserID resolves an active session for a user id, if any.
func (a *AuthService) SessionByUserID(userID string) (*UserSession, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.userPointers[userID]
	return s, ok
}

func (a *AuthService) sessionCleaner() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.expireIdleSessions()
		}
	}
}

func (a *AuthService) expireIdleSessions() {
	a.mu.Lock()
	defer a.mu.Unlock()
	cutoff := time.Now().Add(-a.sessionTimeout)
	for id, seen := range a.lastSeen {
		if seen.Before(cutoff) {
			if s, ok := a.users[id]; ok {
				delete(a.userPointers, s.UserID)
			}
			delete(a.users, id)
			delete(a.lastSeen, id)
		}
	}
}

func generateSessionID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

var globalAuthService *AuthService

// SetGlobalAuthService sets the global AuthService instance.
func SetGlobalAuthService(svc *AuthService) {
	globalAuthService = svc
}

// GetActiveSessions returns active sessions from the global AuthService.
func GetActiveSessions() []*UserSession {
	if globalAuthService == nil {
		return nil
	}
	return globalAuthService.GetActiveSessions()
}

// SessionByUserID resolves an active session through the global registry.
func SessionByUserID(userID string) *UserSession {
	if globalAuthService == nil {
		return nil
	}
	if s, ok := globalAuthService.SessionByUserID(userID); ok {
		return s
	}
	return nil
}

// UserNameByID resolves a user's display name from the global session
// registry. Handlers use this to stamp created_by without touching the DB.
func UserNameByID(userID string) string {
	if globalAuthService == nil {
		return ""
	}
	if s, ok := globalAuthService.SessionByUserID(userID); ok {
		return s.Name
	}
	return ""
}
