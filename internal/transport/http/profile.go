package httptransport

import (
	"net/http"

	"regflow/internal/visitor"
)

// geoCityHeader is filled in by the upstream geo profiler (edge/proxy); the
// engine consumes it as-is.
const geoCityHeader = "X-Geo-City"

func visitorProfile(r *http.Request, ip string) visitor.Profile {
	return visitor.Profile{
		IPAddress: ip,
		City:      r.Header.Get(geoCityHeader),
		UserAgent: r.UserAgent(),
	}
}
