// Command rotate-tokens issues fresh QR tokens for every active screen. It
// runs as a scheduled lambda when the in-process rotator is disabled.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"axiapac.com/personnel/app"
	"axiapac.com/personnel/config"
	"axiapac.com/personnel/infrastructure/logging"
	"axiapac.com/personnel/utils"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
)

type RotateEvent struct {
	// TTLSeconds overrides the configured token lifetime for this run.
	TTLSeconds int `json:"ttlSeconds"`
}

// TTL resolves the token lifetime for this run. An override may not be
// shorter than the rotation interval.
func (e RotateEvent) TTL(cfg *config.Config) (time.Duration, error) {
	if e.TTLSeconds == 0 {
		return cfg.TokenTTL(), nil
	}
	ttl := time.Duration(e.TTLSeconds) * time.Second
	if ttl < cfg.RotationInterval() {
		return 0, fmt.Errorf("ttlSeconds (%d) must not be shorter than the rotation interval (%s)", e.TTLSeconds, cfg.RotationInterval())
	}
	return ttl, nil
}

type RotateResult struct {
	Issued     int       `json:"issued"`
	FinishedAt time.Time `json:"finishedAt"`
}

func Rotate(ctx context.Context, cfg *config.Config, event RotateEvent, log zerolog.Logger) (*RotateResult, error) {
	ttl, err := event.TTL(cfg)
	if err != nil {
		return nil, err
	}

	dm, err := app.OpenDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer dm.Close()

	collab, err := app.NewCollaborators(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	svc := app.NewServices(cfg, utils.SystemClock(), collab, log)
	svc.Rotator.TTL = ttl

	issued, err := svc.Rotator.RotateOnce(dm.DB.WithContext(ctx))
	if err != nil {
		svc.Rotator.OnFailure(ctx, err)
		return nil, err
	}
	return &RotateResult{Issued: issued, FinishedAt: svc.Clock.Now()}, nil
}

func HandleRequest(ctx context.Context, event RotateEvent) (*RotateResult, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat).With().Str("component", "rotate-tokens").Logger()

	result, err := Rotate(ctx, cfg, event, log)
	if err != nil {
		log.Error().Err(err).Msg("rotation failed")
		return nil, err
	}
	log.Info().Int("issued", result.Issued).Msg("rotation finished")
	return result, nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(HandleRequest)
		return
	}

	result, err := HandleRequest(context.Background(), RotateEvent{})
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	resJson, _ := json.MarshalIndent(result, "", "  ")
	fmt.Printf("[SUCCESS] Results:\n%s\n", string(resJson))
}
