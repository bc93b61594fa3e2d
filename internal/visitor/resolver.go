package visitor

import (
	"context"
	"errors"
	"strings"

	"github.com/mssola/useragent"
)

// Resolver finds or creates the visitor record for a session. Ensure is
// idempotent: an existing visitor is returned unchanged no matter what
// profile accompanies the request.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Ensure(ctx context.Context, sessionID string, profile Profile) (*Visitor, error) {
	existing, err := r.store.Find(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	v := FromProfile(sessionID, profile)
	if err := r.store.Create(ctx, v); err != nil {
		return nil, err
	}
	// Re-read so a concurrent create for the same session yields the stored
	// record, not ours.
	return r.store.Find(ctx, sessionID)
}

// FromProfile derives the full visitor record from the raw request profile
// using user-agent parsing.
func FromProfile(sessionID string, profile Profile) *Visitor {
	ua := useragent.New(profile.UserAgent)
	osInfo := ua.OSInfo()
	browser, browserVersion := ua.Browser()

	isRobot := ua.Bot()
	isTablet := isTabletAgent(profile.UserAgent)
	isPhone := ua.Mobile() && !isTablet
	isDesktop := !isRobot && !isTablet && !isPhone

	device := "desktop"
	switch {
	case isRobot:
		device = "robot"
	case isTablet:
		device = "tablet"
	case isPhone:
		device = "phone"
	}

	return &Visitor{
		SessionID:       sessionID,
		IPAddress:       profile.IPAddress,
		City:            profile.City,
		UserAgent:       profile.UserAgent,
		Device:          device,
		Platform:        osInfo.Name,
		PlatformVersion: osInfo.Version,
		Browser:         browser,
		BrowserVersion:  browserVersion,
		IsDesktop:       isDesktop,
		IsTablet:        isTablet,
		IsPhone:         isPhone,
		IsRobot:         isRobot,
	}
}

// The parser does not distinguish tablets from phones, so fall back to the
// conventional token check.
func isTabletAgent(rawUA string) bool {
	lower := strings.ToLower(rawUA)
	return strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet")
}
