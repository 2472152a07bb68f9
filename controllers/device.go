package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kento-cell/MyHobbyCoffee/recommender"
)

// maxDeviceIDLen matches the device_id column width.
const maxDeviceIDLen = 64

func validDeviceID(id string) bool {
	if id == "" || len(id) > maxDeviceIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// deviceID returns the caller's device id: preferred (e.g. from a body),
// then the cookie, else a fresh uuid. Malformed ids are skipped.
// fresh reports whether the cookie must be set.
func deviceID(c *gin.Context, preferred string) (id string, fresh bool) {
	if preferred = strings.TrimSpace(preferred); validDeviceID(preferred) {
		return preferred, true
	}
	if cookie, err := c.Cookie(recommender.DeviceCookieName); err == nil && validDeviceID(cookie) {
		return cookie, false
	}
	return uuid.NewString(), true
}

func setDeviceCookie(c *gin.Context, id string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(recommender.DeviceCookieName, id, recommender.DeviceCookieMaxAge, "/", "", secure, true)
}
