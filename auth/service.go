package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"sync/atomic"
	"time"
)

// Config carries the settings the authentication service needs. It is
// injected explicitly at construction; the service never reads process
// environment state itself.
type Config struct {
	// Issuer is the identity asserted in every issued token and required of
	// every verified one.
	Issuer string

	// PublicKeyPath and PrivateKeyPath locate the DER-encoded key files.
	PublicKeyPath  string
	PrivateKeyPath string
}

// Service authenticates bearer credentials and issues signed tokens for a
// single configured issuer. Verification is stateless: each call starts
// fresh from the presented header value and either returns the token's
// claims or the typed error of the first check that rejected it.
//
// The key pair is loaded once at construction and held immutably; explicit
// reloads swap the whole pair atomically, so concurrent authentication calls
// never observe a partially updated pair.
type Service struct {
	issuer  string
	store   *KeyStore
	keys    atomic.Pointer[KeyPair]
	logger  Logger
	metrics Metrics
	tracer  Tracer
}

// NewService builds a Service from cfg. Unless a fixed key pair is injected
// with WithKeyPair, the key files are read immediately and a load failure
// fails construction.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required but was empty")
	}

	s := &Service{
		issuer:  cfg.Issuer,
		store:   NewKeyStore(cfg.PublicKeyPath, cfg.PrivateKeyPath),
		logger:  &DefaultLogger{},
		metrics: &NoopMetrics{},
		tracer:  &NoopTracer{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.keys.Load() == nil {
		pair, err := s.store.Load()
		if err != nil {
			return nil, err
		}
		s.keys.Store(pair)
	}

	return s, nil
}

// Issuer returns the configured issuer identity.
func (s *Service) Issuer() string {
	return s.issuer
}

// PublicKey returns the verification key currently in use.
func (s *Service) PublicKey() *rsa.PublicKey {
	return s.keys.Load().Public
}

// Authenticate parses an Authorization header value and verifies the bearer
// token it carries against the current key pair and configured issuer. On
// success it returns the token's claims, issuer claim included; on failure
// it propagates the typed error of whichever stage rejected the input,
// unwrapped and unrecast.
func (s *Service) Authenticate(ctx context.Context, header string) (Claims, error) {
	ctx, span := s.tracer.StartSpan(ctx, "auth.authenticate")
	defer span.Finish()
	_ = ctx

	token, err := ExtractBearer(header)
	if err != nil {
		s.metrics.IncCounter(MetricAuthRequests, map[string]string{"result": "bad_header"})
		span.SetTag("auth.result", "bad_header")
		return nil, err
	}

	start := time.Now()
	claims, err := VerifyToken(token, s.issuer, s.keys.Load())
	s.metrics.ObserveHistogram(MetricVerifyDuration, time.Since(start).Seconds(), nil)

	if err != nil {
		s.logger.Warnf("token verification failed: %v", err)
		s.metrics.IncCounter(MetricAuthRequests, map[string]string{"result": "rejected"})
		span.SetTag("auth.result", "rejected")
		return nil, err
	}

	s.metrics.IncCounter(MetricAuthRequests, map[string]string{"result": "ok"})
	span.SetTag("auth.result", "ok")
	return claims, nil
}

// Issue signs a fresh token carrying claims, with the configured issuer as
// its registered issuer claim.
func (s *Service) Issue(ctx context.Context, claims Claims) (string, error) {
	_, span := s.tracer.StartSpan(ctx, "auth.issue")
	defer span.Finish()

	token, err := SignToken(claims, s.issuer, s.keys.Load())
	if err != nil {
		s.logger.Errorf("token signing failed: %v", err)
		return "", err
	}

	s.metrics.IncCounter(MetricTokensIssued, nil)
	return token, nil
}

// ReloadKeys re-reads the key pair from the configured paths and swaps it in
// atomically. In-flight verifications keep the pair they already loaded;
// subsequent calls use the new one. This is the hook for live key rotation
// without a restart.
func (s *Service) ReloadKeys() error {
	pair, err := s.store.Load()
	if err != nil {
		return err
	}

	s.keys.Store(pair)
	s.metrics.IncCounter(MetricKeyReloads, nil)
	s.logger.Infof("reloaded RSA key pair from %q and %q", s.store.publicPath, s.store.privatePath)
	return nil
}
