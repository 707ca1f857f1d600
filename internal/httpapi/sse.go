package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// serveEvents streams lifecycle states and resource snapshots as server-sent
// events. Each observer gets the latest value on subscribe and every value
// published afterwards, collapsed to the newest under backpressure.
func serveEvents(w http.ResponseWriter, r *http.Request, svc Service) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	states, cancelStates := svc.SubscribeStates()
	defer cancelStates()
	snaps, cancelSnaps := svc.SubscribeSnapshots()
	defer cancelSnaps()

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case s, open := <-states:
			if !open {
				return
			}
			writeEvent(w, "state", s.View())
			flusher.Flush()
		case snap, open := <-snaps:
			if !open {
				return
			}
			writeEvent(w, "resources", snap)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b)
}
