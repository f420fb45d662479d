package config

import (
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

// Public STUN fallback handed to clients alongside anything configured, so a
// bare deployment still negotiates across common NATs.
var fallbackStun = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

// ICEServers builds the list handed to browsers via GET /config. The hub only
// brokers these values; it never speaks STUN or TURN itself.
func (c *Config) ICEServers() ([]webrtc.ICEServer, error) {
	var servers []webrtc.ICEServer

	if stun := strings.TrimSpace(c.StunServer); stun != "" {
		server := webrtc.ICEServer{URLs: []string{stun}}
		if err := validateICEServer(server); err != nil {
			return nil, fmt.Errorf("stun_server: %w", err)
		}
		servers = append(servers, server)
	}

	for _, url := range fallbackStun {
		servers = append(servers, webrtc.ICEServer{URLs: []string{url}})
	}

	turnURL := strings.TrimSpace(c.Turn.URL)
	turnUser := strings.TrimSpace(c.Turn.Username)
	turnPass := strings.TrimSpace(c.Turn.Password)
	if turnURL != "" {
		if turnUser == "" || turnPass == "" {
			return nil, fmt.Errorf("turn.username/turn.password: both must be set when turn.url is set")
		}
		server := webrtc.ICEServer{
			URLs:       []string{turnURL},
			Username:   turnUser,
			Credential: turnPass,
		}
		if err := validateICEServer(server); err != nil {
			return nil, fmt.Errorf("turn.url: %w", err)
		}
		servers = append(servers, server)
	}

	return servers, nil
}

func validateICEServer(server webrtc.ICEServer) error {
	for _, raw := range server.URLs {
		url := strings.TrimSpace(raw)
		if url == "" {
			return fmt.Errorf("urls must not contain empty entries")
		}
		if !isAllowedICEScheme(url) {
			return fmt.Errorf("unsupported url scheme: %q", url)
		}
	}
	return nil
}

func isAllowedICEScheme(url string) bool {
	switch {
	case strings.HasPrefix(url, "stun:"),
		strings.HasPrefix(url, "stuns:"),
		strings.HasPrefix(url, "turn:"),
		strings.HasPrefix(url, "turns:"):
		return true
	default:
		return false
	}
}
