package visitor

import "time"

// Visitor is the profiling record tied 1:1 to a session. It is created once,
// at first registration creation, and never mutated afterwards.
type Visitor struct {
	SessionID       string
	IPAddress       string
	City            string
	UserAgent       string
	Device          string
	Platform        string
	PlatformVersion string
	Browser         string
	BrowserVersion  string
	IsDesktop       bool
	IsTablet        bool
	IsPhone         bool
	IsRobot         bool
	CreatedAt       time.Time
}

// Profile is the raw material supplied per request: network address, a
// pre-resolved geo city, and the User-Agent header. Everything else is
// derived from the User-Agent string.
type Profile struct {
	IPAddress string
	City      string
	UserAgent string
}
