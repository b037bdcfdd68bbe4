package httpx

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// FlashCookieName is the signed cookie carrying pending flash messages.
const FlashCookieName = "tenantry_flash"

// Flash holds the one-shot messages shown on the page after a redirect.
type Flash struct {
	Notice string
	Alert  string
}

// Flashes keeps flash messages in a signed cookie session until the next
// rendered page pops them.
type Flashes struct {
	store *sessions.CookieStore
}

// NewFlashes signs the flash cookie with key.
func NewFlashes(key []byte, secure bool) *Flashes {
	st := sessions.NewCookieStore(key)
	st.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flashes{store: st}
}

// Notice stores a notice to show on the next rendered page.
func (f *Flashes) Notice(w http.ResponseWriter, r *http.Request, msg string) error {
	return f.add(w, r, "notice", msg)
}

// Alert stores an alert to show on the next rendered page.
func (f *Flashes) Alert(w http.ResponseWriter, r *http.Request, msg string) error {
	return f.add(w, r, "alert", msg)
}

func (f *Flashes) add(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	// A tampered or stale cookie yields a fresh session, which is fine here.
	s, _ := f.store.Get(r, FlashCookieName)
	s.AddFlash(msg, kind)
	return s.Save(r, w)
}

// Pop returns the pending messages and expires the flash cookie.
func (f *Flashes) Pop(w http.ResponseWriter, r *http.Request) (Flash, error) {
	s, err := f.store.Get(r, FlashCookieName)
	if err != nil || s.IsNew {
		return Flash{}, nil
	}

	fl := Flash{
		Notice: first(s.Flashes("notice")),
		Alert:  first(s.Flashes("alert")),
	}
	s.Options.MaxAge = -1
	return fl, s.Save(r, w)
}

func first(vals []any) string {
	if len(vals) == 0 {
		return ""
	}
	msg, _ := vals[0].(string)
	return msg
}
