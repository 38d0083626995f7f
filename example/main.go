// Command example drives the plugin without a Stream Deck: it serves a mock
// status API, registers two dials and turns one of them, printing every
// feedback payload the dials would show.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jpalmerr/forgedeck"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	go startMockAPI(":9998", logger.Named("mock"))
	time.Sleep(100 * time.Millisecond)

	display := forgedeck.DisplayFunc(func(context string, fb forgedeck.Feedback) error {
		fmt.Printf("  %-8s │ %-10s │ %s\n", context, fb.Title, fb.Value)
		return nil
	})

	p, err := forgedeck.New(
		forgedeck.WithEndpoint("http://localhost:9998/"),
		forgedeck.WithDisplay(display),
		forgedeck.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create plugin", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go simulateDeck(ctx, p)

	fmt.Println()
	fmt.Println("  forgedeck demo: dial-a refreshes every 5s, dial-b every 2s")
	fmt.Println("  dial-b is turned every 7s and snaps back after 3s")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	if err := p.Run(ctx); err != nil {
		logger.Error("plugin error", zap.Error(err))
		os.Exit(1)
	}
}

// simulateDeck plays the host's part: two dials appear, one gets turned.
func simulateDeck(ctx context.Context, p *forgedeck.Plugin) {
	p.WillAppear("dial-a", forgedeck.Settings{
		forgedeck.SettingServerIndex:      "1",
		forgedeck.SettingResetTimeout:     "3",
		forgedeck.SettingRefreshFrequency: "5",
	})
	p.WillAppear("dial-b", forgedeck.Settings{
		forgedeck.SettingServerIndex:      0,
		forgedeck.SettingResetTimeout:     3,
		forgedeck.SettingRefreshFrequency: 2,
	})

	ticker := time.NewTicker(7 * time.Second)
	defer ticker.Stop()

	ticks := 1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.DialRotate("dial-b", ticks)
			ticks = -ticks * 2
		}
	}
}
