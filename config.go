package sclient

import (
	"github.com/sirupsen/logrus"

	"github.com/sclientgo/sclient/internal/errs"
)

// defaultCos is the class-of-service byte baked into a generated key when
// the caller's ConfigOptions doesn't override it (spec §3).
const defaultCos = 0x02

const (
	defaultArcPath   = "/proxy/arc/"
	defaultChordPath = "/proxy/chord/"
)

// LogFactory builds a per-request structured logger. reqUID may be empty
// for operations that have no caller-supplied trace id (e.g. healthcheck).
type LogFactory func(reqUID string) logrus.FieldLogger

// ConfigOptions is spec §3's recognized option set. Only Bootstrap is
// required; FillDefaults fills an empty Path, and the other fields work
// from their zero values.
type ConfigOptions struct {
	// Bootstrap is the seed endpoint list, as "host:port" strings.
	Bootstrap []string
	// Path overrides the URL base path. Defaults to "/proxy/arc/", or
	// "/proxy/chord/" if ChordCos is set and Path is left empty.
	Path string
	// ChordCos overrides the default class-of-service byte and, when set
	// and Path is empty, selects the chord base path.
	ChordCos *byte
	// Immutable, when true, adds X-Scal-Replica-Policy: immutable to every
	// request.
	Immutable bool
	// LogAPI is the sink factory; when nil the client logs nowhere.
	LogAPI LogFactory
}

// Default returns a ConfigOptions with every optional field filled, except
// Bootstrap, which the caller must still supply before use.
func Default() ConfigOptions {
	return ConfigOptions{
		Path: defaultArcPath,
	}
}

// cos returns the configured class-of-service byte, defaultCos otherwise.
func (c ConfigOptions) cos() byte {
	if c.ChordCos != nil {
		return *c.ChordCos
	}
	return defaultCos
}

// basePath returns the configured base path, applying spec §3's chord
// fallback when ChordCos is set but Path wasn't given explicitly.
func (c ConfigOptions) basePath() string {
	if c.Path != "" {
		return c.Path
	}
	if c.ChordCos != nil {
		return defaultChordPath
	}
	return defaultArcPath
}

// FillDefaults validates required fields and normalizes optional ones,
// mirroring the teacher's Config/Default/FillDefaults trio.
func (c *ConfigOptions) FillDefaults() error {
	if len(c.Bootstrap) == 0 {
		return errs.New(errs.InvalidArgument, "config", false, nil)
	}
	if c.Path == "" {
		c.Path = c.basePath()
	}
	return nil
}
