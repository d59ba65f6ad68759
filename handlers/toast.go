package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

// SetToast queues a toast notification. HTMX requests receive it through the
// HX-Trigger header, merged into any trigger already set. A short-lived
// flash_toast cookie carries it across plain 302 redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]string{"message": message, "type": toastType}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = payload

	data, err := json.Marshal(trigger)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	cookieVal, err := json.Marshal(payload)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     "flash_toast",
		Value:    url.QueryEscape(string(cookieVal)),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: false, // read by the toast script
		SameSite: http.SameSiteLaxMode,
	})
}

// ErrorToast shows an error toast and sets HX-Reswap: none so HTMX keeps the
// current DOM instead of swapping in the error text.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

// redirect sends HTMX requests an HX-Redirect and everything else a 302.
func redirect(e *core.RequestEvent, target string) error {
	if e.Request.Header.Get("HX-Request") == "true" {
		e.Response.Header().Set("HX-Redirect", target)
		return e.String(http.StatusOK, "")
	}
	return e.Redirect(http.StatusFound, target)
}
