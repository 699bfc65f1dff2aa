package utils

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// SplitProxyAuth moves credentials embedded in a proxy URL into the config fields.
func SplitProxyAuth(cfg *HTTPClientConfig) {
	parsedProxy, err := url.Parse(cfg.ProxyURL)
	if err != nil || parsedProxy.User == nil || cfg.ProxyUsername != "" {
		return
	}
	cfg.ProxyUsername = parsedProxy.User.Username()
	if password, set := parsedProxy.User.Password(); set {
		cfg.ProxyPassword = password
	}
	parsedProxy.User = nil
	cfg.ProxyURL = parsedProxy.String()
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatRate renders a bytes-per-second rate.
func FormatRate(bps float64) string {
	if bps <= 0 {
		return "N/A"
	}
	return FormatBytes(uint64(bps)) + "/s"
}

func FormatETA(eta time.Duration) string {
	if eta <= 0 {
		return "N/A"
	}
	return eta.Round(time.Second).String()
}
