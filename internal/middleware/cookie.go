package middleware

import "net/http"

// setCookie writes the signed session id.
func (m *SessionMiddleware) setCookie(w http.ResponseWriter, id string) error {
	encoded, err := m.codec.Encode(m.cookieName, id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure, // HTTPS only in production
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// deleteCookie removes the session cookie
func (m *SessionMiddleware) deleteCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
