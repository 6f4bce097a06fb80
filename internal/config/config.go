package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDFusion  string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDSim     string

	// Topics
	TopicOdom       string
	TopicMarkerPose string
	TopicPoseFused  string

	// Fusion
	FusionFrequency    float64       // Hz
	FusedFrameID       string        // frame stamped on dead-reckoned poses
	FusionStaleTimeout time.Duration // 0 disables
	YawRateWrap        bool          // shortest-arc yaw differencing in the velocity estimator

	// Markers
	MarkerConfigFile string
	PatternDir       string

	// Web Server
	WebServerPort int

	// Simulator
	SimOdomInterval   int // milliseconds
	SimMarkerInterval int // milliseconds
	SimSpeed          float64
	SimYawRate        float64
}

// Package-level singleton, set once by InitGlobal and read through Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		MQTTBroker:        "tcp://localhost:1883",
		TopicOdom:         "arloc/odom",
		TopicMarkerPose:   "arloc/pose/marker",
		TopicPoseFused:    "arloc/pose/fused",
		FusionFrequency:   40,
		FusedFrameID:      "map",
		WebServerPort:     8080,
		SimOdomInterval:   25,
		SimMarkerInterval: 500,
		SimSpeed:          0.5,
		SimYawRate:        0.2,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of the defaults. Blank lines and lines
// starting with '#' are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.fillClientIDs()

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_FUSION":
		c.MQTTClientIDFusion = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_SIM":
		c.MQTTClientIDSim = value

	// Topics
	case "TOPIC_ODOM":
		c.TopicOdom = value
	case "TOPIC_MARKER_POSE":
		c.TopicMarkerPose = value
	case "TOPIC_POSE_FUSED":
		c.TopicPoseFused = value

	// Fusion
	case "FUSION_FREQUENCY":
		hz, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FUSION_FREQUENCY %q: %w", value, err)
		}
		if hz <= 0 {
			return fmt.Errorf("FUSION_FREQUENCY must be positive, got %v", hz)
		}
		c.FusionFrequency = hz
	case "FUSED_FRAME_ID":
		c.FusedFrameID = value
	case "FUSION_STALE_TIMEOUT":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid FUSION_STALE_TIMEOUT %q: %w", value, err)
		}
		if ms < 0 {
			return fmt.Errorf("FUSION_STALE_TIMEOUT must be >= 0 (0 disables), got %d", ms)
		}
		c.FusionStaleTimeout = time.Duration(ms) * time.Millisecond
	case "YAW_RATE_WRAP":
		wrap, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid YAW_RATE_WRAP %q: %w", value, err)
		}
		c.YawRateWrap = wrap

	// Markers
	case "MARKER_CONFIG_FILE":
		c.MarkerConfigFile = value
	case "PATTERN_DIR":
		c.PatternDir = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Simulator
	case "SIM_ODOM_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SIM_ODOM_INTERVAL %q: %w", value, err)
		}
		c.SimOdomInterval = interval
	case "SIM_MARKER_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SIM_MARKER_INTERVAL %q: %w", value, err)
		}
		c.SimMarkerInterval = interval
	case "SIM_SPEED":
		speed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SIM_SPEED %q: %w", value, err)
		}
		c.SimSpeed = speed
	case "SIM_YAW_RATE":
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SIM_YAW_RATE %q: %w", value, err)
		}
		c.SimYawRate = rate

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicOdom == "" || c.TopicMarkerPose == "" || c.TopicPoseFused == "" {
		return fmt.Errorf("TOPIC_ODOM, TOPIC_MARKER_POSE and TOPIC_POSE_FUSED must not be empty")
	}
	if c.FusedFrameID == "" {
		return fmt.Errorf("FUSED_FRAME_ID must not be empty")
	}
	if c.SimOdomInterval <= 0 || c.SimMarkerInterval <= 0 {
		return fmt.Errorf("SIM_ODOM_INTERVAL and SIM_MARKER_INTERVAL must be positive")
	}
	return nil
}

// fillClientIDs gives every unset MQTT client id a unique value, so several
// instances can share one broker.
func (c *Config) fillClientIDs() {
	ids := []struct {
		role string
		id   *string
	}{
		{"fused-localization", &c.MQTTClientIDFusion},
		{"fused-console", &c.MQTTClientIDConsole},
		{"fused-web", &c.MQTTClientIDWeb},
		{"fused-sim", &c.MQTTClientIDSim},
	}
	for _, e := range ids {
		if *e.id == "" {
			*e.id = e.role + "-" + uuid.NewString()
		}
	}
}

// InitGlobal initializes the global configuration from file.
// Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
