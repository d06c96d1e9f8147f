package config

// HostConfig holds per-host overrides for a single crawled site.
type HostConfig struct {
	// Headers are custom HTTP headers to include in requests to this
	// host, for example a cookie or an access token the site needs.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the global page ceiling for this host.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"max_pages,omitempty"`

	// Workers overrides the global worker count for this host.
	// If zero, the global Workers is used.
	Workers int `yaml:"workers,omitempty"`
}

// File represents the structure of the .webcorpus configuration file.
type File struct {
	// Hosts maps host names to their overrides. Keys are bare host
	// names without the scheme (e.g., "example.com").
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults contains overrides applied to every host unless the
	// host-specific entry sets its own value.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// ForHost returns the effective configuration for one host, merging
// the host-specific entry over the file defaults.
func (f *File) ForHost(host string) HostConfig {
	result := f.Defaults

	hc, ok := f.Hosts[host]
	if !ok {
		return result
	}

	if hc.MaxPages != 0 {
		result.MaxPages = hc.MaxPages
	}
	if hc.Workers != 0 {
		result.Workers = hc.Workers
	}
	if len(hc.Headers) > 0 {
		merged := make(map[string]string, len(result.Headers)+len(hc.Headers))
		for k, v := range result.Headers {
			merged[k] = v
		}
		for k, v := range hc.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}

	return result
}
