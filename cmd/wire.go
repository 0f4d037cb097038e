package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	authadapter "github.com/bnema/adminkit/internal/adapters/auth"
	"github.com/bnema/adminkit/internal/adapters/realtime"
	tomlrepo "github.com/bnema/adminkit/internal/adapters/repo/toml"
	filevault "github.com/bnema/adminkit/internal/adapters/secrets/file"
	"github.com/bnema/adminkit/internal/adapters/tagrules"
	transportadapter "github.com/bnema/adminkit/internal/adapters/transport"
	"github.com/bnema/adminkit/internal/application"
	"github.com/bnema/adminkit/internal/domain"
	"github.com/bnema/adminkit/internal/ports"
	"github.com/bnema/adminkit/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	keyAPIBaseURL                = "api.base_url"
	keyAPITimeout                = "api.timeout"
	keyAPILoginPath              = "api.login_path"
	keyRealtimeURL               = "realtime.url"
	keyRealtimeReconnectAttempts = "realtime.reconnect_attempts"
	keyRealtimeReconnectDelay    = "realtime.reconnect_delay"
	keySessionTickInterval       = "session.tick_interval"
	keyTagsPath                  = "tags.path"
	keyLogLevel                  = "log.level"
	keyLogFormat                 = "log.format"
)

type app struct {
	cfg      *viper.Viper
	logger   zerolog.Logger
	bus      *application.EventBus
	session  *application.SessionController
	registry *prometheus.Registry

	transport ports.Transport
	tagRules  domain.TagRules
	login     authadapter.LoginClient
	realtime  realtime.Config
	channel   *realtime.Binder
	detach    func()
}

func wireApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(os.Stderr, cfg.GetString(keyLogLevel), cfg.GetString(keyLogFormat))
	if err != nil {
		return nil, err
	}

	sessions, err := tomlrepo.NewSessionRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}
	retries, err := tomlrepo.NewRetryBudgetRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire retry budget repository: %w", err)
	}
	vault, err := filevault.NewVaultFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire secret vault: %w", err)
	}

	rules, err := tagrules.Load(cfg.GetString(keyTagsPath))
	if err != nil {
		return nil, fmt.Errorf("wire tag rules: %w", err)
	}

	clock := ports.SystemClock{}
	bus := application.NewEventBus(clock)

	realtimeCfg := realtime.Config{
		URL:                  strings.TrimSpace(cfg.GetString(keyRealtimeURL)),
		MaxReconnectAttempts: cfg.GetInt(keyRealtimeReconnectAttempts),
		ReconnectDelay:       cfg.GetDuration(keyRealtimeReconnectDelay),
	}

	deps := application.SessionDeps{
		Sessions: sessions,
		Retries:  retries,
		Secrets:  vault,
		Events:   bus,
		Clock:    clock,
		Logger:   logger.With().Str("component", "session").Logger(),
	}
	var channel *realtime.Binder
	if realtimeCfg.URL != "" {
		channel = realtime.NewBinder(realtimeCfg, logger.With().Str("component", "realtime").Logger(), nil)
		deps.Channel = channel
	}

	sessionCfg := application.DefaultSessionConfig()
	sessionCfg.TickInterval = cfg.GetDuration(keySessionTickInterval)

	controller, err := application.NewSessionController(context.Background(), deps, sessionCfg)
	if err != nil {
		return nil, fmt.Errorf("wire session controller: %w", err)
	}
	detach := controller.Attach(bus)

	registry := prometheus.NewRegistry()
	metrics, err := transportadapter.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("wire transport metrics: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.GetDuration(keyAPITimeout)}
	baseURL := cfg.GetString(keyAPIBaseURL)

	return &app{
		cfg:      cfg,
		logger:   logger,
		bus:      bus,
		session:  controller,
		registry: registry,
		transport: &transportadapter.Interceptor{
			BaseURL:     baseURL,
			HTTPClient:  httpClient,
			Credentials: controller,
			Events:      bus,
			Metrics:     metrics,
			Logger:      logger.With().Str("component", "transport").Logger(),
			UserAgent:   "adminkit/" + version.Version,
		},
		tagRules: rules,
		login: authadapter.LoginClient{
			API:        authadapter.API{BaseURL: baseURL, LoginPath: cfg.GetString(keyAPILoginPath)},
			HTTPClient: httpClient,
		},
		realtime: realtimeCfg,
		channel:  channel,
		detach:   detach,
	}, nil
}

func (a *app) resources(variant domain.BuilderVariant) *application.ResourceService {
	return application.NewResourceService(a.transport, a.tagRules, application.ResourceServiceOptions{
		Variant: variant,
		Retries: a.session,
		Logger:  a.logger.With().Str("component", "resources").Logger(),
	})
}

// close releases the push connection and stops a pending countdown.
func (a *app) close() error {
	a.session.Teardown()
	if a.detach != nil {
		a.detach()
	}
	if a.channel == nil {
		return nil
	}
	return a.channel.Close()
}

func loadConfig() (*viper.Viper, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg := viper.New()
	cfg.SetConfigName("config")
	cfg.SetConfigType("toml")
	cfg.AddConfigPath(filepath.Join(homeDir, ".adminkit"))
	cfg.SetEnvPrefix("ADMINKIT")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(keyAPIBaseURL, "http://localhost:8080/api")
	cfg.SetDefault(keyAPITimeout, 30*time.Second)
	cfg.SetDefault(keyAPILoginPath, "auth/login")
	cfg.SetDefault(keyRealtimeURL, "")
	cfg.SetDefault(keyRealtimeReconnectAttempts, 5)
	cfg.SetDefault(keyRealtimeReconnectDelay, time.Second)
	cfg.SetDefault(keySessionTickInterval, time.Second)
	cfg.SetDefault(keyTagsPath, "")
	cfg.SetDefault(keyLogLevel, "warn")
	cfg.SetDefault(keyLogFormat, "console")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}

func newLogger(out io.Writer, level, format string) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse %s: %w", keyLogLevel, err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unsupported %s %q", keyLogFormat, format)
	}

	return zerolog.New(out).Level(parsed).With().Timestamp().Logger(), nil
}
