package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, 40.0, cfg.FusionFrequency)
	assert.Equal(t, "map", cfg.FusedFrameID)
	assert.Equal(t, time.Duration(0), cfg.FusionStaleTimeout)
	assert.False(t, cfg.YawRateWrap)
	assert.Equal(t, "arloc/pose/fused", cfg.TopicPoseFused)
	assert.True(t, strings.HasPrefix(cfg.MQTTClientIDFusion, "fused-localization-"))
	assert.NotEqual(t, cfg.MQTTClientIDWeb, cfg.MQTTClientIDConsole)
}

func TestLoad_File(t *testing.T) {
	content := `
# broker
MQTT_BROKER = tcp://10.0.0.2:1883
MQTT_CLIENT_ID_FUSION=bebop-fusion

TOPIC_ODOM=/bebop/odom
TOPIC_MARKER_POSE=/arlocros/marker_pose
TOPIC_POSE_FUSED=/arlocros/fused_pose
FUSION_FREQUENCY=50
FUSED_FRAME_ID=odom_map
FUSION_STALE_TIMEOUT=2000
YAW_RATE_WRAP=true
MARKER_CONFIG_FILE=markers.yaml
PATTERN_DIR=patterns/
WEB_SERVER_PORT=9090
SIM_SPEED=1.5
`
	path := filepath.Join(t.TempDir(), "fusion_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://10.0.0.2:1883", cfg.MQTTBroker)
	assert.Equal(t, "bebop-fusion", cfg.MQTTClientIDFusion)
	assert.Equal(t, "/bebop/odom", cfg.TopicOdom)
	assert.Equal(t, "/arlocros/marker_pose", cfg.TopicMarkerPose)
	assert.Equal(t, "/arlocros/fused_pose", cfg.TopicPoseFused)
	assert.Equal(t, 50.0, cfg.FusionFrequency)
	assert.Equal(t, "odom_map", cfg.FusedFrameID)
	assert.Equal(t, 2*time.Second, cfg.FusionStaleTimeout)
	assert.True(t, cfg.YawRateWrap)
	assert.Equal(t, "markers.yaml", cfg.MarkerConfigFile)
	assert.Equal(t, "patterns/", cfg.PatternDir)
	assert.Equal(t, 9090, cfg.WebServerPort)
	assert.Equal(t, 1.5, cfg.SimSpeed)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing equals", "FUSION_FREQUENCY 40", "invalid config line 1"},
		{"unknown key", "FOO=bar", "unknown config key"},
		{"bad frequency", "FUSION_FREQUENCY=fast", "invalid FUSION_FREQUENCY"},
		{"zero frequency", "FUSION_FREQUENCY=0", "must be positive"},
		{"negative timeout", "FUSION_STALE_TIMEOUT=-5", "must be >= 0"},
		{"bad bool", "YAW_RATE_WRAP=maybe", "invalid YAW_RATE_WRAP"},
		{"empty broker", "MQTT_BROKER=", "MQTT_BROKER is required"},
		{"empty frame", "FUSED_FRAME_ID=", "FUSED_FRAME_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
