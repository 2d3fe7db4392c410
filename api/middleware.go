package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"PulseboardSaaS/api/auth"
	"PulseboardSaaS/api/constants"
)

type contextKey string

const (
	UserNameKey  contextKey = "userName"
	UserEmailKey contextKey = "userEmail"
)

// UserNameFromCtx returns the session user name injected by SessionMiddleware.
func UserNameFromCtx(ctx context.Context) string {
	if name, ok := ctx.Value(UserNameKey).(string); ok {
		return name
	}
	return ""
}

func UserEmailFromCtx(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

// SessionMiddleware resolves user_id from the JSON body against the active
// sessions and rejects requests from users who are not logged in. The body is
// restored so downstream handlers can decode it again.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(r.Header.Get(constants.HeaderContentType), constants.ContentTypeJSON) {
			next.ServeHTTP(w, r)
			return
		}

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody)
			return
		}
		r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var body struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(bodyBytes, &body); err != nil || body.UserID == "" {
			RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
			return
		}

		session := auth.SessionByUserID(body.UserID)
		if session == nil {
			RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			return
		}

		ctx := context.WithValue(r.Context(), UserNameKey, session.Name)
		ctx = context.WithValue(ctx, UserEmailKey, session.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
