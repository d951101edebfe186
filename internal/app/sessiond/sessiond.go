// Package sessiond implements a session validation sidecar: a caching proxy
// in front of the Mojang session server with an HTTP API, metrics and
// webhook notifications.
package sessiond

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/minebase/yggdrasil/pkg/webhook"
	"github.com/minebase/yggdrasil/pkg/yggdrasil"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	SessionValidatedTopic = "session.validated"
	SessionRejectedTopic  = "session.rejected"
)

// validator answers whether a player announced a join for a session hash.
type validator interface {
	Validate(ctx context.Context, username, sessionHash string, ip net.IP) (*yggdrasil.Session, error)
}

type mojangValidator struct {
	cli *yggdrasil.Client
}

func (v mojangValidator) Validate(ctx context.Context, username, sessionHash string, ip net.IP) (*yggdrasil.Session, error) {
	start := time.Now()
	defer func() {
		upstreamRequestDuration.Observe(time.Since(start).Seconds())
	}()

	if ip == nil {
		return v.cli.HasJoined(ctx, username, sessionHash)
	}
	return v.cli.HasJoinedWithIP(ctx, username, sessionHash, ip.String())
}

type Service struct {
	cfg       Config
	cli       *yggdrasil.Client
	validator validator
	storage   storage
	webhooks  []webhook.Webhook
	logger    *zap.Logger

	srv *http.Server
}

func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	cli := yggdrasil.NewClient()
	cli.SessionServerURL = cfg.SessionServer.BaseURL
	cli.HTTPClient = &http.Client{Timeout: cfg.SessionServer.RequestTimeout}

	var store storage
	var err error
	if cfg.Cache.Redis.URI != "" {
		store, err = newRedis(cfg.Cache.Redis)
	} else {
		store, err = newMemory(cfg.Cache.TTL, cfg.Cache.SweepSchedule)
	}
	if err != nil {
		return nil, err
	}

	webhooks := make([]webhook.Webhook, 0, len(cfg.Webhooks))
	for _, whCfg := range cfg.Webhooks {
		webhooks = append(webhooks, webhook.Webhook{
			ID:            whCfg.ID,
			HTTPClient:    &http.Client{Timeout: whCfg.Timeout},
			URL:           whCfg.URL,
			AllowedTopics: whCfg.AllowedTopics,
		})
	}

	svc := &Service{
		cfg:       cfg,
		cli:       cli,
		validator: mojangValidator{cli: cli},
		storage:   store,
		webhooks:  webhooks,
		logger:    logger,
	}
	svc.srv = &http.Server{
		Addr:    cfg.API.Bind,
		Handler: svc.apiHandler(),
	}
	return svc, nil
}

// ValidateSession resolves a hasJoined query, serving from the cache when
// the player validated recently from the same address.
func (s *Service) ValidateSession(ctx context.Context, username, sessionHash string, ip net.IP) (uuid.UUID, error) {
	playerUUID, err := s.storage.GetValidation(username, ip)
	if err == nil {
		cacheLookups.WithLabelValues("hit").Inc()
		return playerUUID, nil
	}
	if !errors.Is(err, errValidationNotFound) {
		s.logger.Error("validation cache lookup failed",
			zap.Error(err),
			zap.String("username", username),
		)
	}
	cacheLookups.WithLabelValues("miss").Inc()

	session, err := s.validator.Validate(ctx, username, sessionHash, ip)
	if err != nil {
		sessionValidations.WithLabelValues("rejected").Inc()
		s.dispatchEvent(SessionRejectedTopic, map[string]any{
			"username": username,
			"serverId": sessionHash,
			"reason":   err.Error(),
		})
		return uuid.Nil, err
	}

	sessionValidations.WithLabelValues("validated").Inc()
	s.dispatchEvent(SessionValidatedTopic, map[string]any{
		"username": username,
		"serverId": sessionHash,
		"uuid":     session.PlayerUUID.String(),
	})

	if err := s.storage.PutValidation(username, ip, session.PlayerUUID); err != nil {
		s.logger.Error("failed to cache validation",
			zap.Error(err),
			zap.String("username", username),
		)
	}

	return session.PlayerUUID, nil
}

// Profile proxies a profile lookup to the session server.
func (s *Service) Profile(ctx context.Context, playerUUID uuid.UUID) (*yggdrasil.Profile, error) {
	return s.cli.Profile(ctx, playerUUID)
}

// dispatchEvent fans the event out to all configured webhooks, detached
// from the validation request.
func (s *Service) dispatchEvent(topic string, data map[string]any) {
	e := webhook.EventLog{
		Topics:     []string{topic},
		OccurredAt: time.Now(),
		Data:       data,
	}

	for _, wh := range s.webhooks {
		wh := wh
		go func() {
			if err := wh.DispatchEvent(context.Background(), e); err != nil && !errors.Is(err, webhook.ErrTopicNotAllowed) {
				s.logger.Error("failed to dispatch webhook event",
					zap.Error(err),
					zap.String("webhookId", wh.ID),
					zap.String("topic", topic),
				)
			}
		}()
	}
}

func (s *Service) ListenAndServe() error {
	s.logger.Info("starting api listener",
		zap.String("bind", s.cfg.API.Bind),
	)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Service) Close() error {
	return multierr.Append(
		s.srv.Close(),
		s.storage.Close(),
	)
}
