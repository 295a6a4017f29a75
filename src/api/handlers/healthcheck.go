package handlers

import (
	"fmt"
	"net/http"
)

// Healthcheck answers liveness probes for both service types.
func Healthcheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "alive")
}
