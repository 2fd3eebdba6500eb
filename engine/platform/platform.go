package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// TargetPlatform ordinals are written into compiled assets and must never be
// renumbered.
type TargetPlatform int32

const (
	Windows TargetPlatform = iota
	Xbox360
	WindowsPhone
	IOS
	Android
	Linux
	MacOSX
	WindowsStoreApp
	NativeClient
	Ouya
	PlayStationMobile
	WindowsPhone8
	RaspberryPi
)

// MaxPlatform is the highest valid ordinal.
const MaxPlatform = RaspberryPi

var platformNames = [...]string{
	Windows:           "Windows",
	Xbox360:           "Xbox360",
	WindowsPhone:      "WindowsPhone",
	IOS:               "iOS",
	Android:           "Android",
	Linux:             "Linux",
	MacOSX:            "MacOSX",
	WindowsStoreApp:   "WindowsStoreApp",
	NativeClient:      "NativeClient",
	Ouya:              "Ouya",
	PlayStationMobile: "PlayStationMobile",
	WindowsPhone8:     "WindowsPhone8",
	RaspberryPi:       "RaspberryPi",
}

func (p TargetPlatform) String() string {
	if !p.Valid() {
		return fmt.Sprintf("TargetPlatform(%d)", int32(p))
	}
	return platformNames[p]
}

func (p TargetPlatform) Valid() bool {
	return p >= Windows && p <= MaxPlatform
}

// IsDesktop reports whether the platform runs the full strategy chain with
// filesystem scanning and local compilation.
func (p TargetPlatform) IsDesktop() bool {
	switch p {
	case Windows, Linux, MacOSX:
		return true
	default:
		return false
	}
}

func (p TargetPlatform) IsMobile() bool {
	return p.Valid() && !p.IsDesktop()
}

// All returns every platform in ordinal order.
func All() []TargetPlatform {
	out := make([]TargetPlatform, 0, len(platformNames))
	for i := range platformNames {
		out = append(out, TargetPlatform(i))
	}
	return out
}

// Parse matches a platform name case-insensitively.
func Parse(name string) (TargetPlatform, error) {
	name = strings.TrimSpace(name)
	for i, n := range platformNames {
		if strings.EqualFold(n, name) {
			return TargetPlatform(i), nil
		}
	}
	return Windows, fmt.Errorf("unknown target platform '%s'", name)
}

// FromOrdinal converts a decoded wire value, rejecting anything out of range.
func FromOrdinal(v int64) (TargetPlatform, error) {
	if v < int64(Windows) || v > int64(MaxPlatform) {
		return Windows, fmt.Errorf("target platform ordinal %d out of range", v)
	}
	return TargetPlatform(v), nil
}

// StripPrefix removes a leading "<Platform>." from a dotted asset name.
func StripPrefix(name string) string {
	for _, n := range platformNames {
		if strings.HasPrefix(name, n+".") {
			return name[len(n)+1:]
		}
	}
	return name
}

// GetExecutingPlatform maps the running GOOS/GOARCH onto a target platform.
func GetExecutingPlatform() TargetPlatform {
	return fromRuntime(runtime.GOOS, runtime.GOARCH)
}

func fromRuntime(goos, goarch string) TargetPlatform {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return MacOSX
	case "ios":
		return IOS
	case "android":
		return Android
	case "js", "wasip1":
		return NativeClient
	case "linux":
		if goarch == "arm" {
			return RaspberryPi
		}
		return Linux
	default:
		return Linux
	}
}
