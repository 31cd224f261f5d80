// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/yomira-auth/internal/platform/constants"
)

// # Refresh Cookie

// RefreshCookie wraps token in the session cookie handed to browsers.
func RefreshCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   int(constants.RefreshTokenCookieMaxAge.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedRefreshCookie returns an empty cookie that expires immediately.
//
// A negative MaxAge is rendered by net/http as "Max-Age=0".
func ClearedRefreshCookie() *http.Cookie {
	cookie := RefreshCookie("")
	cookie.MaxAge = -1
	return cookie
}
