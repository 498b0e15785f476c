package auth

// Option is how options for the Service are set up.
type Option func(*Service)

// WithLogger sets the logger the service reports through.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics sets the metrics sink the service instruments into.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer the service opens spans on.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithKeyPair injects a fixed key pair, skipping the initial load from disk.
// Intended for tests that construct keys in memory.
func WithKeyPair(pair *KeyPair) Option {
	return func(s *Service) {
		s.keys.Store(pair)
	}
}
