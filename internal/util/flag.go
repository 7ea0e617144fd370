package util

import (
	"flag"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

func Flag[T flag.Value](name string, value T, usage string) T {
	flag.Var(value, name, usage)
	return value
}

type stringsFlag []string

func (s stringsFlag) String() string {
	return strings.Join(s, ",")
}

func (s *stringsFlag) Set(v string) error {
	*s = strings.Split(v, ",")
	return nil
}

func StringsFlag(name string, value []string, usage string) *[]string {
	return (*[]string)(Flag(name, (*stringsFlag)(&value), usage))
}

type colorFlag color.NRGBA

func (c colorFlag) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c *colorFlag) Set(v string) error {
	nc, err := ParseColor(v)
	if err != nil {
		return err
	}
	*c = colorFlag(nc)
	return nil
}

func ColorFlag(name string, value color.NRGBA, usage string) *color.NRGBA {
	return (*color.NRGBA)(Flag(name, (*colorFlag)(&value), usage))
}

// ParseColor parses a color of the form #RRGGBB or #RRGGBBAA. The
// leading # is optional.
func ParseColor(v string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(v, "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", v)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", v, err)
	}

	return color.NRGBA{
		R: uint8(n >> 24),
		G: uint8(n >> 16),
		B: uint8(n >> 8),
		A: uint8(n),
	}, nil
}

type levelFlag logrus.Level

func (l levelFlag) String() string {
	return logrus.Level(l).String()
}

func (l *levelFlag) Set(v string) error {
	level, err := logrus.ParseLevel(v)
	if err != nil {
		return err
	}
	*l = levelFlag(level)
	return nil
}

func LevelFlag(name string, value logrus.Level, usage string) *logrus.Level {
	return (*logrus.Level)(Flag(name, (*levelFlag)(&value), usage))
}
