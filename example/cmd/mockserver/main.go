// Standalone mock ForgeServ status API for trying the plugin on a real deck.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then point the plugin at it in forgedeck.yaml:
//
//	api_url: http://127.0.0.1:9999/
//	min_refresh_interval: 1s
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

type server struct {
	Name   string `json:"name"`
	Online int    `json:"online"`
	Max    int    `json:"max"`
	Icon   string `json:"icon"`
}

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	failEvery := flag.Int("fail-every", 0, "answer every Nth request with 503 (0 disables)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	fmt.Printf("Mock ForgeServ API starting on %s\n", *addr)
	fmt.Println("Player counts drift on every request")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu       sync.Mutex
		requests int
		servers  = []server{
			{Name: "Lobby", Max: 100},
			{Name: "Survival", Online: 14, Max: 40},
			{Name: "Creative", Online: 3, Max: 20},
			{Name: "Skyblock", Online: 9, Max: 30},
			{Name: "Minigames", Online: 22, Max: 60},
		}
	)
	for i := range servers {
		servers[i].Icon = base64.StdEncoding.EncodeToString([]byte(servers[i].Name))
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		requests++
		if *failEvery > 0 && requests%*failEvery == 0 {
			mu.Unlock()
			logger.Info("simulated outage", zap.Int("request", requests))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		for i := range servers {
			s := &servers[i]
			s.Online = max(0, min(s.Max, s.Online+rand.Intn(5)-2))
		}
		snapshot := append([]server(nil), servers...)
		mu.Unlock()

		logger.Debug("served status", zap.String("remote_addr", r.RemoteAddr))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})

	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
