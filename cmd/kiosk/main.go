// Command kiosk runs a terminal QR display for one screen.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"axiapac.com/personnel/infrastructure/logging"
	"axiapac.com/personnel/kiosk"
	"axiapac.com/personnel/qr"
	"axiapac.com/personnel/utils"
)

func main() {
	server := flag.String("server", "http://localhost:8090/api/v1", "API base URL")
	screenID := flag.String("screen", "", "screen id to display")
	storePath := flag.String("store", "kiosk.json", "device state file")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *screenID == "" {
		fmt.Fprintln(os.Stderr, "-screen is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.NewWithWriter(os.Stderr, *logLevel, "console")
	display := kiosk.NewDisplay(*screenID, kiosk.NewClient(*server), kiosk.NewFileStore(*storePath), utils.SystemClock(), log)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	prompt := func(ctx context.Context, previous error) (string, error) {
		if previous != nil {
			fmt.Printf("Eşleştirme başarısız: %v\n", previous)
		}
		fmt.Print("Erişim kodu: ")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return "", fmt.Errorf("stdin closed")
			}
			return strings.TrimSpace(line), nil
		}
	}

	render := func(token *kiosk.DisplayToken) {
		fmt.Print("\033[H\033[2J")
		if token == nil {
			fmt.Printf("Ekran %s: kod bekleniyor\n", *screenID)
			return
		}
		art, err := qr.EncodeTerminal(token.Code)
		if err != nil {
			log.Error().Err(err).Msg("render qr")
			return
		}
		fmt.Println(art)
		fmt.Printf("Geçerlilik: %s\n", token.ExpiresAt.Local().Format(time.TimeOnly))
	}

	if err := display.Run(ctx, prompt, render); err != nil {
		log.Fatal().Err(err).Msg("kiosk stopped")
	}
}
