package geo

import (
	"os"
	"strings"
	"time"
)

// LocalTimezone returns the IANA name of the process's local time zone, or
// false when it cannot be determined.
func LocalTimezone() (string, bool) {
	if tz, ok := os.LookupEnv("TZ"); ok {
		tz = strings.TrimPrefix(strings.TrimSpace(tz), ":")
		if tz == "" {
			return "UTC", true
		}
		if _, err := time.LoadLocation(tz); err == nil {
			return tz, true
		}
	}

	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if _, name, ok := strings.Cut(target, "zoneinfo/"); ok && name != "" {
			return name, true
		}
	}

	if b, err := os.ReadFile("/etc/timezone"); err == nil {
		if name := strings.TrimSpace(string(b)); name != "" {
			return name, true
		}
	}

	return "", false
}
