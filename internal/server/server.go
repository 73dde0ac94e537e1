package server

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/dropinblog/internal/config"
	"github.com/hashicorp-forge/dropinblog/pkg/database"
	"github.com/hashicorp-forge/dropinblog/pkg/dropinblog"
	"github.com/hashicorp-forge/dropinblog/pkg/node/trigger"
	"github.com/hashicorp-forge/dropinblog/pkg/output"
	"github.com/hashicorp-forge/dropinblog/pkg/state"
)

// Server contains the runtime dependencies shared by the commands and the
// HTTP handlers.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// DB holds subscriptions (database backend) and OAuth tokens.
	DB *gorm.DB

	// Redis is set when subscriptions live in redis.
	Redis *redis.Client

	// Tokens persists the OAuth2 token.
	Tokens *state.GormTokenStore

	// Subscriptions hands out per-trigger subscription stores.
	Subscriptions state.Backend

	// Sink receives inbound deliveries.
	Sink output.Sink

	// Output is where JSON-lines records are written.
	Output *output.JSONLines

	// Client is the DropInBlog API client. Set by Connect.
	Client *dropinblog.Client

	// Triggers maps trigger names to their managers. Set by Connect.
	Triggers map[string]*trigger.Manager

	// Logger is the logger for the server.
	Logger hclog.Logger

	closers []func() error
}

// Options adjusts Open.
type Options struct {
	// Stdout receives JSON-lines output. Default: os.Stdout.
	Stdout io.Writer
}

// Open prepares storage and output. It does not need a token, so the auth
// command can run before any token exists.
func Open(ctx context.Context, cfg *config.Config, log hclog.Logger, opts Options) (*Server, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	s := &Server{
		Config: cfg,
		Logger: log,
		Output: output.NewFramedJSONLines(opts.Stdout, output.Framing(cfg.Output.Framing)),
	}

	db, err := database.Connect(database.Config{
		Driver:      cfg.Database.Driver,
		DSN:         cfg.Database.DSN,
		AutoMigrate: *cfg.Database.AutoMigrate,
	}, log.Named("database"))
	if err != nil {
		return nil, err
	}
	s.DB = db
	s.closers = append(s.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	s.Tokens = state.NewGormTokenStore(db, cfg.State.TokenName)

	switch cfg.State.Subscriptions {
	case config.SubscriptionsDatabase:
		s.Subscriptions = state.NewGormBackend(db)
	case config.SubscriptionsRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		s.Redis = rdb
		s.Subscriptions = state.NewRedisBackend(rdb)
	case config.SubscriptionsMemory:
		log.Warn("subscriptions are kept in memory and lost on exit")
		s.Subscriptions = state.NewMemoryBackend()
	default:
		s.Close()
		return nil, fmt.Errorf("unknown subscription backend %q", cfg.State.Subscriptions)
	}

	sinks := output.Multi{s.Output}
	if cfg.Kafka != nil {
		pub, err := output.NewKafkaPublisher(output.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() error { pub.Close(); return nil })
		sinks = append(sinks, pub)
		log.Info("publishing deliveries to kafka", "topic", cfg.Kafka.Topic)
	}
	s.Sink = sinks

	return s, nil
}

// Connect builds the API client from the configured or stored token and a
// trigger manager for every configured trigger.
func (s *Server) Connect(ctx context.Context) error {
	ts, err := dropinblog.TokenSource(ctx, s.Config.API, s.Config.OAuth, s.Tokens, s.Logger.Named("oauth"))
	if err != nil {
		return err
	}

	client, err := dropinblog.NewClient(s.Config.API, ts, s.Logger.Named("api"))
	if err != nil {
		return err
	}
	s.Client = client

	return s.buildTriggers(client)
}

func (s *Server) buildTriggers(api trigger.API) error {
	s.Triggers = make(map[string]*trigger.Manager, len(s.Config.Triggers))
	for _, t := range s.Config.Triggers {
		m, err := trigger.NewManager(trigger.Options{
			NodeID:     t.Name,
			WebhookURL: s.Config.WebhookURL(t.Name),
			Parameters: trigger.Parameters{BlogID: t.BlogID, Event: t.Event},
			API:        api,
			Store:      s.Subscriptions.Store(t.Name),
			Sink:       s.Sink,
			Logger:     s.Logger.Named("trigger"),
		})
		if err != nil {
			return err
		}
		s.Triggers[t.Name] = m
	}
	return nil
}

// ActivateTriggers subscribes every trigger that has no stored webhook. A
// failing trigger does not stop the others.
func (s *Server) ActivateTriggers(ctx context.Context) error {
	var result *multierror.Error
	for name, m := range s.Triggers {
		if err := m.Activate(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("trigger %q: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

// DeactivateTriggers deletes every trigger's webhook. Failures are collected
// and returned; each trigger is attempted.
func (s *Server) DeactivateTriggers(ctx context.Context) error {
	var result *multierror.Error
	for name, m := range s.Triggers {
		if err := m.Delete(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("trigger %q: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

// Close releases connections in reverse order of opening.
func (s *Server) Close() error {
	var result *multierror.Error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	s.closers = nil
	return result.ErrorOrNil()
}
