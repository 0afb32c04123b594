package simulator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/urbantransit/pkg/util"
)

type WrapMode string

const (
	// WrapModeLoop jumps back to the first stop after the terminus
	WrapModeLoop WrapMode = "loop"
	// WrapModeBounce runs the itinerary backwards after the terminus
	WrapModeBounce WrapMode = "bounce"
)

type Config struct {
	DefaultSegment time.Duration
	WrapMode       WrapMode
	MaxWorkers     int
}

var defaultConfig = Config{
	DefaultSegment: 300 * time.Second,
	WrapMode:       WrapModeLoop,
	MaxWorkers:     16,
}

func DefaultConfig() Config {
	return defaultConfig
}

// GetConfig returns the simulator configuration from environment variables or defaults
func GetConfig() Config {
	config := defaultConfig
	env := util.GetEnvironmentVariables()

	if val := env["URBANTRANSIT_SIM_DEFAULT_SEGMENT"]; val != "" {
		if parsed, err := ParseISODuration(val); err == nil && parsed > 0 {
			config.DefaultSegment = parsed
		} else {
			log.Warn().Str("value", val).Msg("Ignoring invalid URBANTRANSIT_SIM_DEFAULT_SEGMENT")
		}
	}

	if val := env["URBANTRANSIT_SIM_WRAP_MODE"]; val != "" {
		if mode, err := ParseWrapMode(val); err == nil {
			config.WrapMode = mode
		} else {
			log.Warn().Err(err).Msg("Ignoring URBANTRANSIT_SIM_WRAP_MODE")
		}
	}

	if val := env["URBANTRANSIT_SIM_MAX_WORKERS"]; val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			config.MaxWorkers = parsed
		}
	}

	return config
}

func ParseWrapMode(value string) (WrapMode, error) {
	switch mode := WrapMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case WrapModeLoop, WrapModeBounce:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown wrap mode %q", value)
	}
}

var durationReference = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseISODuration converts an ISO-8601 duration such as PT5M into a time.Duration
func ParseISODuration(value string) (time.Duration, error) {
	parsed, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, err
	}

	return parsed.Shift(durationReference).Sub(durationReference), nil
}
