// Package config loads runtime settings from .env, an optional YAML document
// (file or SSM parameter) and the environment, in increasing precedence.
package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"axiapac.com/personnel/attendance"
	"axiapac.com/personnel/infrastructure/devops"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"httpAddr"`

	DBType           string `yaml:"dbType"`
	DSN              string `yaml:"dsn"`
	DBMaxConnections int    `yaml:"dbMaxConnections"`
	DBLogLevel       string `yaml:"dbLogLevel"`

	SigningSecret string `yaml:"signingSecret"`
	Timezone      string `yaml:"timezone"`

	QRTokenTTLSeconds int  `yaml:"qrTokenTtlSeconds"`
	QRRotationSeconds int  `yaml:"qrRotationSeconds"`
	QRRotationEnabled bool `yaml:"qrRotationEnabled"`

	LateThresholdMinutes       int    `yaml:"lateThresholdMinutes"`
	EarlyLeaveThresholdMinutes int    `yaml:"earlyLeaveThresholdMinutes"`
	AttendanceRepeatPolicy     string `yaml:"attendanceRepeatPolicy"`

	SMSProvider  string `yaml:"smsProvider"`
	SMSSenderID  string `yaml:"smsSenderId"`
	MailProvider string `yaml:"mailProvider"`
	MailFrom     string `yaml:"mailFrom"`

	SlackBotToken     string `yaml:"slackBotToken"`
	SlackInfoChannel  string `yaml:"slackInfoChannel"`
	SlackErrorChannel string `yaml:"slackErrorChannel"`

	ReportBucket string `yaml:"reportBucket"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

func Defaults() Config {
	return Config{
		HTTPAddr:                   "0.0.0.0:8090",
		DBType:                     "sqlite",
		DBMaxConnections:           10,
		DBLogLevel:                 "error",
		Timezone:                   "Europe/Istanbul",
		QRTokenTTLSeconds:          300,
		QRRotationSeconds:          30,
		QRRotationEnabled:          true,
		LateThresholdMinutes:       10,
		EarlyLeaveThresholdMinutes: 10,
		AttendanceRepeatPolicy:     string(attendance.RepeatNewCycle),
		SMSProvider:                "log",
		MailProvider:               "log",
		LogLevel:                   "info",
		LogFormat:                  "json",
	}
}

// Load reads .env (if present), then CONFIG_FILE and CONFIG_SSM_PARAMETER,
// then the environment, and validates the result.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config file: %w", err)
		}
	}

	if name := os.Getenv("CONFIG_SSM_PARAMETER"); name != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		doc, err := devops.LoadParameter(ctx, awsCfg, name)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal ssm config: %w", err)
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg with every variable lookup finds.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":                &cfg.HTTPAddr,
		"DB_TYPE":                  &cfg.DBType,
		"DSN":                      &cfg.DSN,
		"DB_LOG_LEVEL":             &cfg.DBLogLevel,
		"SIGNING_SECRET":           &cfg.SigningSecret,
		"TIMEZONE":                 &cfg.Timezone,
		"ATTENDANCE_REPEAT_POLICY": &cfg.AttendanceRepeatPolicy,
		"SMS_PROVIDER":             &cfg.SMSProvider,
		"SMS_SENDER_ID":            &cfg.SMSSenderID,
		"MAIL_PROVIDER":            &cfg.MailProvider,
		"MAIL_FROM":                &cfg.MailFrom,
		"SLACK_BOT_TOKEN":          &cfg.SlackBotToken,
		"SLACK_INFO_CHANNEL":       &cfg.SlackInfoChannel,
		"SLACK_ERROR_CHANNEL":      &cfg.SlackErrorChannel,
		"REPORT_BUCKET":            &cfg.ReportBucket,
		"LOG_LEVEL":                &cfg.LogLevel,
		"LOG_FORMAT":               &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"DB_MAX_CONNECTIONS":            &cfg.DBMaxConnections,
		"QR_TOKEN_TTL_SECONDS":          &cfg.QRTokenTTLSeconds,
		"QR_ROTATION_SECONDS":           &cfg.QRRotationSeconds,
		"LATE_THRESHOLD_MINUTES":        &cfg.LateThresholdMinutes,
		"EARLY_LEAVE_THRESHOLD_MINUTES": &cfg.EarlyLeaveThresholdMinutes,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
	}

	if v, ok := lookup("QR_ROTATION_ENABLED"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("QR_ROTATION_ENABLED must be a boolean: %w", err)
		}
		cfg.QRRotationEnabled = b
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, "|"), value)
}

func (c Config) Validate() error {
	if _, err := c.Secret(); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if _, err := attendance.ParseRepeatPolicy(c.AttendanceRepeatPolicy); err != nil {
		return err
	}
	if err := oneOf("DB_TYPE", c.DBType, "mysql", "postgres", "sqlite"); err != nil {
		return err
	}
	if err := oneOf("SMS_PROVIDER", c.SMSProvider, "sns", "log"); err != nil {
		return err
	}
	if err := oneOf("MAIL_PROVIDER", c.MailProvider, "ses", "log"); err != nil {
		return err
	}
	if c.QRTokenTTLSeconds <= 0 || c.QRRotationSeconds <= 0 {
		return fmt.Errorf("QR_TOKEN_TTL_SECONDS and QR_ROTATION_SECONDS must be positive")
	}
	// a kiosk must never be left showing an expired code between rotations
	if c.QRTokenTTLSeconds < c.QRRotationSeconds {
		return fmt.Errorf("QR_TOKEN_TTL_SECONDS (%d) must not be shorter than QR_ROTATION_SECONDS (%d)", c.QRTokenTTLSeconds, c.QRRotationSeconds)
	}
	if c.LateThresholdMinutes < 0 || c.EarlyLeaveThresholdMinutes < 0 {
		return fmt.Errorf("attendance thresholds must not be negative")
	}
	if strings.EqualFold(c.MailProvider, "ses") && c.MailFrom == "" {
		return fmt.Errorf("MAIL_FROM is required when MAIL_PROVIDER is ses")
	}
	return nil
}

// Secret decodes the base64 signing secret.
func (c Config) Secret() ([]byte, error) {
	if c.SigningSecret == "" {
		return nil, fmt.Errorf("SIGNING_SECRET is required")
	}
	b, err := base64.StdEncoding.DecodeString(c.SigningSecret)
	if err != nil {
		return nil, fmt.Errorf("SIGNING_SECRET must be base64: %w", err)
	}
	if len(b) < 16 {
		return nil, fmt.Errorf("SIGNING_SECRET must decode to at least 16 bytes")
	}
	return b, nil
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.QRTokenTTLSeconds) * time.Second
}

func (c Config) RotationInterval() time.Duration {
	return time.Duration(c.QRRotationSeconds) * time.Second
}

func (c Config) RepeatPolicy() attendance.RepeatPolicy {
	p, _ := attendance.ParseRepeatPolicy(c.AttendanceRepeatPolicy)
	return p
}

func (c Config) AttendanceRules() attendance.Rules {
	return attendance.Rules{
		LateThreshold:       time.Duration(c.LateThresholdMinutes) * time.Minute,
		EarlyLeaveThreshold: time.Duration(c.EarlyLeaveThresholdMinutes) * time.Minute,
		Location:            c.Location(),
	}
}

// NeedsAWS reports whether any configured provider talks to AWS.
func (c Config) NeedsAWS() bool {
	return strings.EqualFold(c.SMSProvider, "sns") || strings.EqualFold(c.MailProvider, "ses") || c.ReportBucket != ""
}
