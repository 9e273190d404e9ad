package config

import (
	"fmt"
	"net"
)

type Server struct {
	ListenAddress string `yaml:"listen_address"`

	// AllowedOrigins lists the origins (scheme://host[:port]) allowed to open
	// the subscription websocket.  Empty means same-origin only, "*" means any.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func (c *Server) Preprocess() error {
	if _, _, err := net.SplitHostPort(c.ListenAddress); err != nil {
		return fmt.Errorf("%w: %s: %w",
			ErrInvalidListenAddress, c.ListenAddress, err,
		)
	}
	return nil
}
