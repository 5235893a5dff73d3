package client

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform identifies the runtime the client is running on
type Platform string

const (
	// PlatformAndroidEmulator is an Android emulator reaching the host machine via 10.0.2.2
	PlatformAndroidEmulator Platform = "android-emulator"
	// PlatformIOSSimulator is an iOS simulator sharing the host's loopback interface
	PlatformIOSSimulator Platform = "ios-simulator"
	// PlatformOther is every other platform, including browsers and desktops
	PlatformOther Platform = "other"
)

// Default base URLs of the development backend per platform
const (
	androidEmulatorBaseURL = "http://10.0.2.2:8000/api/events/"
	iosSimulatorBaseURL    = "http://localhost:8000/api/events/"
	otherBaseURL           = "http://127.0.0.1:8000/api/events/"
)

// ResolveBaseURL maps a platform to the base URL used for all event API calls.
//
// The table assumes a local development backend on port 8000. Deployments pass an explicit base URL through
// Endpoint instead.
func ResolveBaseURL(p Platform) string {
	switch p {
	case PlatformAndroidEmulator:
		return androidEmulatorBaseURL
	case PlatformIOSSimulator:
		return iosSimulatorBaseURL
	default:
		return otherBaseURL
	}
}

// ParsePlatform parses a platform identifier. "android", "ios" and "web" are accepted as aliases
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PlatformAndroidEmulator), "android":
		return PlatformAndroidEmulator, nil
	case string(PlatformIOSSimulator), "ios":
		return PlatformIOSSimulator, nil
	case string(PlatformOther), "web", "":
		return PlatformOther, nil
	}
	return "", fmt.Errorf("unknown platform '%s' (expected one of %s, %s, %s)",
		s, PlatformAndroidEmulator, PlatformIOSSimulator, PlatformOther)
}

// DetectPlatform derives the platform from the operating system the binary has been built for
func DetectPlatform() Platform {
	switch runtime.GOOS {
	case "android":
		return PlatformAndroidEmulator
	case "ios":
		return PlatformIOSSimulator
	}
	return PlatformOther
}

// Endpoint is the resolved location of the event API. It is built once at startup
type Endpoint struct {
	Platform Platform
	// BaseURL wins over the platform table when set
	BaseURL string
}

// URL returns the base URL for all event API calls
func (e Endpoint) URL() string {
	if e.BaseURL != "" {
		return e.BaseURL
	}
	return ResolveBaseURL(e.Platform)
}
