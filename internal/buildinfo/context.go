// Package buildinfo contains build-time metadata, injected at application
// startup and kept separate from user configuration.
package buildinfo

// UnknownValue is returned for any build-info field that was never set.
const UnknownValue = "unknown"

// BuildInfo provides read access to build-time metadata. The interface
// makes it easy to stub build info in tests that only care about logging
// attribution, not the real binary's version.
type BuildInfo interface {
	Version() string
	BuildDate() string
	SystemID() string
}

// Context holds build-time metadata that is not user-configurable: the Git
// version tag, build timestamp, and a per-install identifier used to
// correlate telemetry without identifying a user.
type Context struct {
	version   string
	buildDate string
	systemID  string
}

// NewContext creates a build-info context from values normally supplied via
// -ldflags at link time.
func NewContext(version, buildDate, systemID string) *Context {
	return &Context{version: version, buildDate: buildDate, systemID: systemID}
}

// Version returns the build version, or UnknownValue if unset.
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns the build date, or UnknownValue if unset.
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// SystemID returns the per-install identifier, or UnknownValue if unset.
func (c *Context) SystemID() string {
	if c == nil || c.systemID == "" {
		return UnknownValue
	}
	return c.systemID
}
