package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	goGate "github.com/MrEthical07/goGate"
)

func writeEnvelope(w http.ResponseWriter, err error) {
	envelope := goGate.EnvelopeFor(err, time.Now())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(goGate.StatusFor(err))
	_ = json.NewEncoder(w).Encode(envelope)
}
