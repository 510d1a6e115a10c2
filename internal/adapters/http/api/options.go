package api

import "net/http"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLive mounts the websocket handler at /regattas/{id}/live.
func WithLive(h http.HandlerFunc) Option {
	return func(s *Server) {
		s.live = h
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}
