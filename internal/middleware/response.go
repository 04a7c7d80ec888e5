package middleware

import (
	"net/http"

	"github.com/AwwCookies/Chatterbox-sub002/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}
