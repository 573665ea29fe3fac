// Command testservers runs a minimal benchmark target implementing the two
// endpoints benchrace drives: GET /delay/{seconds} responds after the given
// pause, GET /status/{code} responds with the given status code. Useful when
// no httpbin instance is reachable.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	maxDelay := flag.Duration("max-delay", 30*time.Second, "Upper bound for /delay pauses")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/delay/", delayHandler(*maxDelay))
	mux.HandleFunc("/status/", statusHandler)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("benchmark target listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func delayHandler(maxDelay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seconds, err := strconv.ParseFloat(strings.TrimPrefix(r.URL.Path, "/delay/"), 64)
		if err != nil || seconds < 0 {
			http.Error(w, "invalid delay", http.StatusBadRequest)
			return
		}
		pause := time.Duration(seconds * float64(time.Second))
		if pause > maxDelay {
			pause = maxDelay
		}

		select {
		case <-time.After(pause):
		case <-r.Context().Done():
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"url":   r.URL.String(),
			"delay": seconds,
		})
	}
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/status/"))
	if err != nil || code < 100 || code > 599 {
		http.Error(w, "invalid status code", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
}
