package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestICEServers_DefaultsToPublicStun(t *testing.T) {
	cfg := &Config{}

	servers, err := cfg.ICEServers()
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, servers[0].URLs)
	assert.Equal(t, []string{"stun:stun1.l.google.com:19302"}, servers[1].URLs)
}

func TestICEServers_ConfiguredStunComesFirst(t *testing.T) {
	cfg := &Config{StunServer: "stun:stun.example.com:3478"}

	servers, err := cfg.ICEServers()
	require.NoError(t, err)
	require.Len(t, servers, 3)
	assert.Equal(t, []string{"stun:stun.example.com:3478"}, servers[0].URLs)
}

func TestICEServers_Turn(t *testing.T) {
	tests := []struct {
		name    string
		turn    TurnConfig
		wantErr bool
	}{
		{
			name: "full credentials",
			turn: TurnConfig{URL: "turn:turn.example.com:3478", Username: "u", Password: "p"},
		},
		{
			name:    "missing credentials",
			turn:    TurnConfig{URL: "turn:turn.example.com:3478"},
			wantErr: true,
		},
		{
			name:    "missing password",
			turn:    TurnConfig{URL: "turn:turn.example.com:3478", Username: "u"},
			wantErr: true,
		},
		{
			name:    "bad scheme",
			turn:    TurnConfig{URL: "http://turn.example.com", Username: "u", Password: "p"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Turn: tt.turn}
			servers, err := cfg.ICEServers()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			last := servers[len(servers)-1]
			assert.Equal(t, []string{tt.turn.URL}, last.URLs)
			assert.Equal(t, "u", last.Username)
			assert.Equal(t, "p", last.Credential)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, int64(32768), cfg.ReadLimit)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAIModel)
}
