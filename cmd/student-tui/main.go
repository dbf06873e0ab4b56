package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bossfight/internal/client"
	"bossfight/internal/tui"
)

func main() {
	addr := flag.String("addr", "http://localhost:5000", "server base url")
	lang := flag.String("lang", "", "locale for boss names (en, ru)")
	interval := flag.Duration("interval", tui.DefaultInterval, "poll interval")
	flag.Parse()

	c, err := client.New(*addr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	c.Locale = *lang

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui := &tui.UI{Source: c, Interval: *interval}
	if err := ui.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
