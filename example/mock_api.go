package main

import (
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// mockServer is one entry in the fake status list.
type mockServer struct {
	Name   string `json:"name"`
	Online int    `json:"online"`
	Max    int    `json:"max"`
	Icon   string `json:"icon"`
}

// startMockAPI serves a fake ForgeServ status list on addr. Player counts
// drift on every request and roughly one request in ten fails with 503.
func startMockAPI(addr string, logger *zap.Logger) {
	var mu sync.Mutex
	servers := []mockServer{
		{Name: "Lobby", Max: 100},
		{Name: "Survival", Online: 14, Max: 40},
		{Name: "Creative", Online: 3, Max: 20},
		{Name: "Skyblock", Online: 9, Max: 30},
	}
	for i := range servers {
		servers[i].Icon = base64.StdEncoding.EncodeToString([]byte(servers[i].Name))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		if rand.Intn(10) == 0 {
			logger.Info("simulated outage")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		mu.Lock()
		for i := range servers {
			s := &servers[i]
			s.Online = max(0, min(s.Max, s.Online+rand.Intn(5)-2))
		}
		snapshot := append([]mockServer(nil), servers...)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			logger.Error("failed to write response", zap.Error(err))
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("mock API error", zap.Error(err))
	}
}
