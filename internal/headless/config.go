package headless

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"deedles.dev/scanout/output"
	"deedles.dev/ximage/geom"
)

// OutputConfig describes a virtual device.
type OutputConfig struct {
	// Name defaults to HEADLESS-n.
	Name string

	// Modes lists the modes the device claims to support. If it's
	// empty, the device has no modes and renders at Size.
	Modes   []output.Mode
	Size    geom.Point[int]
	Refresh int

	Scale     float64
	Transform Transform

	// FailModeset makes every modeset commit fail.
	FailModeset bool
}

// ParseOutputs parses device descriptions. Each description is either
// a list of modes separated by slashes, the first one preferred, as in
// "1920x1080@60/1280x720@60", or "virtual:WxH[@Hz]" for a device without
// modes.
func ParseOutputs(descs []string) ([]OutputConfig, error) {
	configs := make([]OutputConfig, 0, len(descs))
	for _, desc := range descs {
		desc = strings.TrimSpace(desc)
		if desc == "" {
			continue
		}

		cfg, err := parseOutput(desc)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func parseOutput(desc string) (OutputConfig, error) {
	if size, ok := strings.CutPrefix(desc, "virtual:"); ok {
		m, err := parseMode(size)
		if err != nil {
			return OutputConfig{}, err
		}
		return OutputConfig{Size: geom.Pt(m.Width, m.Height), Refresh: m.Refresh}, nil
	}

	var cfg OutputConfig
	for i, s := range strings.Split(desc, "/") {
		m, err := parseMode(s)
		if err != nil {
			return OutputConfig{}, err
		}
		m.Preferred = i == 0
		cfg.Modes = append(cfg.Modes, m)
	}
	return cfg, nil
}

// parseMode parses WxH[@Hz].
func parseMode(s string) (m output.Mode, err error) {
	size, rate, hasRate := strings.Cut(s, "@")

	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return m, fmt.Errorf("invalid mode %q", s)
	}
	m.Width, err = strconv.Atoi(w)
	if err != nil {
		return m, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	m.Height, err = strconv.Atoi(h)
	if err != nil {
		return m, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	if (m.Width <= 0) || (m.Height <= 0) {
		return m, fmt.Errorf("invalid mode %q: size must be positive", s)
	}

	if hasRate {
		hz, err := strconv.ParseFloat(rate, 64)
		if (err != nil) || (hz <= 0) {
			return m, fmt.Errorf("invalid refresh rate in %q", s)
		}
		m.Refresh = int(math.Round(hz * 1000))
	}

	return m, nil
}
