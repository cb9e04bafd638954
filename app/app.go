// Package app wires configuration into the services shared by the web
// server, the rotation lambda and the command line tools.
package app

import (
	"context"
	"fmt"
	"strings"

	"axiapac.com/personnel/attendance"
	"axiapac.com/personnel/config"
	"axiapac.com/personnel/core"
	"axiapac.com/personnel/dashboard"
	"axiapac.com/personnel/infrastructure/communication"
	"axiapac.com/personnel/infrastructure/filesystem"
	"axiapac.com/personnel/leave"
	"axiapac.com/personnel/notify"
	"axiapac.com/personnel/qr"
	"axiapac.com/personnel/report"
	"axiapac.com/personnel/utils"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog"
)

// Collaborators are the outbound integrations. Each falls back to a log-only
// implementation when its provider is not configured.
type Collaborators struct {
	Mailer   communication.Mailer
	SMS      communication.SMSSender
	Alerter  communication.Alerter
	Uploader report.Uploader
}

// LogCollaborators never leaves the process; used in development and tests.
func LogCollaborators(log zerolog.Logger) Collaborators {
	return Collaborators{
		Mailer:  communication.LogMailer{Log: log},
		SMS:     communication.LogSMSSender{Log: log},
		Alerter: communication.LogAlerter{Log: log},
	}
}

func NewCollaborators(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Collaborators, error) {
	c := LogCollaborators(log)
	c.Alerter = communication.NewAlerter(cfg.SlackBotToken, communication.SlackOption{
		InfoChannelID:  cfg.SlackInfoChannel,
		ErrorChannelID: cfg.SlackErrorChannel,
	}, log)

	if !cfg.NeedsAWS() {
		return c, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return c, fmt.Errorf("load aws config: %w", err)
	}
	if strings.EqualFold(cfg.SMSProvider, "sns") {
		c.SMS = communication.NewSNSSender(awsCfg, cfg.SMSSenderID)
	}
	if strings.EqualFold(cfg.MailProvider, "ses") {
		c.Mailer = communication.NewSESMailer(awsCfg, cfg.MailFrom)
	}
	if cfg.ReportBucket != "" {
		c.Uploader = filesystem.NewS3Bucket(awsCfg, cfg.ReportBucket)
	}
	return c, nil
}

type Services struct {
	Clock       utils.Clock
	Issuer      *qr.Issuer
	Registry    *qr.Registry
	Pairing     *qr.Pairing
	Rotator     *qr.Rotator
	Recorder    *attendance.Recorder
	Workflow    *leave.Workflow
	Broadcaster *notify.Broadcaster
	SMS         *notify.SMSService
	Aggregator  *dashboard.Aggregator
	Archiver    *report.Archiver
	Alerter     communication.Alerter
}

func NewServices(cfg *config.Config, clock utils.Clock, collab Collaborators, log zerolog.Logger) *Services {
	issuer := qr.NewIssuer(clock)
	registry := qr.NewRegistry(clock)

	s := &Services{
		Clock:       clock,
		Issuer:      issuer,
		Registry:    registry,
		Pairing:     qr.NewPairing(registry, issuer, clock),
		Rotator:     qr.NewRotator(issuer, cfg.TokenTTL(), cfg.RotationInterval(), log.With().Str("component", "rotator").Logger()),
		Recorder:    attendance.NewRecorder(issuer, cfg.AttendanceRules(), cfg.RepeatPolicy(), clock, log.With().Str("component", "attendance").Logger()),
		Workflow:    leave.NewWorkflow(collab.Mailer, clock, log.With().Str("component", "leave").Logger()),
		Broadcaster: notify.NewBroadcaster(clock, log.With().Str("component", "notify").Logger()),
		SMS:         notify.NewSMSService(collab.SMS, clock, log.With().Str("component", "sms").Logger()),
		Aggregator:  dashboard.NewAggregator(clock, cfg.Location()),
		Alerter:     collab.Alerter,
	}
	s.Rotator.OnFailure = func(ctx context.Context, err error) {
		if alertErr := s.Alerter.Error(ctx, fmt.Sprintf("QR kod yenileme hatası: %v", err)); alertErr != nil {
			log.Warn().Err(alertErr).Msg("failed to post rotation alert")
		}
	}
	if collab.Uploader != nil {
		s.Archiver = &report.Archiver{Uploader: collab.Uploader, Location: cfg.Location()}
	}
	return s
}

// OpenDatabase connects with the configured driver and migrates the schema.
func OpenDatabase(cfg *config.Config) (*core.DatabaseManager, error) {
	dm, err := core.New(cfg.DBType, cfg.DSN, cfg.DBMaxConnections, core.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		return nil, err
	}
	if err := dm.Migrate(); err != nil {
		dm.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return dm, nil
}
