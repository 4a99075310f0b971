// Package host describes which facilities the current execution context
// provides. Every pipeline component checks capability flags instead of
// re-deriving host presence ad hoc, so no-host-context behavior is testable
// in isolation.
package host

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Capabilities records which host facilities are available and how ambient
// environment context is resolved at persistence time.
type Capabilities struct {
	// HasConsole allows the dispatcher to write formatted lines.
	HasConsole bool
	// HasTimer allows the send queue to run its periodic flusher.
	HasTimer bool
	// HasStorage allows the persistence store to open its durable buffer.
	HasStorage bool
	// HasNetwork allows the delivery client to attempt sends.
	HasNetwork bool

	// UserAgent resolves the ambient user-agent string. Nil means unknown.
	UserAgent func() string
	// PageURL resolves the ambient location string. Nil means unknown.
	PageURL func() string
}

// Detect returns full capabilities with environment context derived from the
// running process: a user-agent built from the app name/version and platform,
// and a proc:// location built from hostname and executable.
func Detect(appName, version string) Capabilities {
	return Capabilities{
		HasConsole: true,
		HasTimer:   true,
		HasStorage: true,
		HasNetwork: true,
		UserAgent:  func() string { return userAgent(appName, version) },
		PageURL:    func() string { return pageURL() },
	}
}

// None returns capabilities with every facility absent. Every affected
// operation degrades to a safe no-op.
func None() Capabilities {
	return Capabilities{}
}

// ResolveUserAgent returns the ambient user-agent, or "" when unknown.
func (c Capabilities) ResolveUserAgent() string {
	if c.UserAgent == nil {
		return ""
	}
	return c.UserAgent()
}

// ResolvePageURL returns the ambient location, or "" when unknown.
func (c Capabilities) ResolvePageURL() string {
	if c.PageURL == nil {
		return ""
	}
	return c.PageURL()
}

func userAgent(appName, version string) string {
	if appName == "" {
		appName = filepath.Base(os.Args[0])
	}
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("%s/%s (%s; %s)", appName, version, runtime.GOOS, runtime.GOARCH)
}

func pageURL() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}
	return fmt.Sprintf("proc://%s/%s?pid=%d", hostname, filepath.Base(os.Args[0]), os.Getpid())
}
