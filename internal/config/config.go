package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/adis16470_imu/internal/adis16470"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string

	// Topics
	TopicHeading string

	// IMU Hardware
	IMUSPIDevice  string
	IMUDRPin      string // data-ready GPIO name, e.g. "GPIO25"
	IMUSPISpeedHz int

	// IMU Configuration
	IMUYawAxis adis16470.Axis
	IMUCalTime adis16470.CalibrationTime
	// Output rate = 2000 / (1 + IMUDecRate) Hz
	IMUDecRate uint16

	// Timing
	TelemetryInterval int // milliseconds

	// Web Server
	WebServerPort     int
	RegisterDebugPort int

	// Logging: debug, info, warn or error
	LogLevel string
}

// Defaults returns the values used for keys missing from the file.
func Defaults() *Config {
	return &Config{
		MQTTClientIDProducer: "adis16470-producer",
		MQTTClientIDConsole:  "adis16470-console",
		TopicHeading:         "adis16470/heading",
		IMUSPIDevice:         "/dev/spidev0.0",
		IMUDRPin:             "GPIO25",
		IMUSPISpeedHz:        1000000,
		IMUYawAxis:           adis16470.DefaultOpts.YawAxis,
		IMUCalTime:           adis16470.DefaultOpts.CalibrationTime,
		IMUDecRate:           adis16470.DefaultOpts.DecimationRate,
		TelemetryInterval:    100,
		WebServerPort:        8080,
		RegisterDebugPort:    8081,
		LogLevel:             "info",
	}
}

// globalConfig is only reachable through InitGlobal and Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
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

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_HEADING":
		c.TopicHeading = value

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_DR_PIN":
		c.IMUDRPin = value
	case "IMU_SPI_SPEED_HZ":
		hz, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SPI_SPEED_HZ %q: %w", value, err)
		}
		// The part is rated for 2 MHz in burst mode.
		if hz < 10000 || hz > 2000000 {
			return fmt.Errorf("IMU_SPI_SPEED_HZ must be 10000-2000000, got %d", hz)
		}
		c.IMUSPISpeedHz = hz

	// IMU Configuration
	case "IMU_YAW_AXIS":
		axis, err := adis16470.ParseAxis(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_YAW_AXIS: %w", err)
		}
		c.IMUYawAxis = axis
	case "IMU_CAL_TIME":
		cal, err := adis16470.ParseCalibrationTime(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_CAL_TIME: %w", err)
		}
		c.IMUCalTime = cal
	case "IMU_DEC_RATE":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_DEC_RATE %q: %w", value, err)
		}
		if val < 0 || val > adis16470.MaxDecimationRate {
			return fmt.Errorf("IMU_DEC_RATE must be 0-%d, got %d", adis16470.MaxDecimationRate, val)
		}
		c.IMUDecRate = uint16(val)

	// Timing
	case "TELEMETRY_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TELEMETRY_INTERVAL %q: %w", value, err)
		}
		c.TelemetryInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port
	case "REGISTER_DEBUG_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_PORT %q: %w", value, err)
		}
		c.RegisterDebugPort = port

	// Logging
	case "LOG_LEVEL":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", value)
		}

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
	if c.TopicHeading == "" {
		return fmt.Errorf("TOPIC_HEADING is required")
	}
	if c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required")
	}
	if c.IMUDRPin == "" {
		return fmt.Errorf("IMU_DR_PIN is required")
	}
	if c.TelemetryInterval <= 0 {
		return fmt.Errorf("TELEMETRY_INTERVAL must be positive, got %d", c.TelemetryInterval)
	}
	if c.WebServerPort == c.RegisterDebugPort {
		return fmt.Errorf("WEB_SERVER_PORT and REGISTER_DEBUG_PORT must differ")
	}
	return nil
}

// IMUOptions returns driver options for the configured IMU.
func (c *Config) IMUOptions() *adis16470.Options {
	o := adis16470.DefaultOpts
	o.YawAxis = c.IMUYawAxis
	o.CalibrationTime = c.IMUCalTime
	o.DecimationRate = c.IMUDecRate
	return &o
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return the first result.
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
