package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/alimgiray/projectdesk/pkg/config"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the dashboard session cookie
const SessionCookie = "dashboard_session"

// SessionData identifies the operator and the dashboard session behind a request
type SessionData struct {
	OperatorID string    `json:"operator_id"`
	SessionID  string    `json:"session_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// SessionMiddleware handles session management using cookies
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData := getSessionFromCookie(c)
		if sessionData != nil {
			c.Set("session", sessionData)
		}
		c.Next()
	}
}

// getSessionFromCookie extracts and validates session data from cookie
func getSessionFromCookie(c *gin.Context) *SessionData {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	return decodeSession(cookie, time.Now())
}

func decodeSession(cookie string, now time.Time) *SessionData {
	// signature.data
	parts := strings.Split(cookie, ".")
	if len(parts) != 2 {
		return nil
	}

	signature, data := parts[0], parts[1]
	if !verifySignature(data, signature) {
		return nil
	}

	decodedData, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil
	}

	var sessionData SessionData
	if err := json.Unmarshal(decodedData, &sessionData); err != nil {
		return nil
	}
	if now.After(sessionData.ExpiresAt) {
		return nil
	}
	return &sessionData
}

// SetSession creates a new session cookie
func SetSession(c *gin.Context, operatorID, sessionID string) error {
	ttl := time.Duration(config.AppConfig.Session.TTLHours) * time.Hour
	value, err := encodeSession(SessionData{
		OperatorID: operatorID,
		SessionID:  sessionID,
		ExpiresAt:  time.Now().Add(ttl),
	})
	if err != nil {
		return err
	}

	c.SetCookie(SessionCookie, value, int(ttl.Seconds()), "/", "", false, true)
	return nil
}

func encodeSession(sessionData SessionData) (string, error) {
	data, err := json.Marshal(sessionData)
	if err != nil {
		return "", err
	}
	encodedData := base64.URLEncoding.EncodeToString(data)
	return createSignature(encodedData) + "." + encodedData, nil
}

// ClearSession removes the session cookie
func ClearSession(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// createSignature creates HMAC signature for data
func createSignature(data string) string {
	h := hmac.New(sha256.New, []byte(config.AppConfig.Session.Secret))
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies HMAC signature
func verifySignature(data, signature string) bool {
	expectedSignature := createSignature(data)
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

// GetSession retrieves session data from context
func GetSession(c *gin.Context) *SessionData {
	session, exists := c.Get("session")
	if !exists {
		return nil
	}

	if sessionData, ok := session.(*SessionData); ok {
		return sessionData
	}

	return nil
}
