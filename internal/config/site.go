package config

// SiteConfig holds per-host overrides from the .sitegrep config file.
// Hosts that need authentication cookies, extra headers, or a different
// skip tolerance get an entry keyed by hostname.
type SiteConfig struct {
	// Cookie is sent as the Cookie header on every request to this host.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers for this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the default User-Agent for this host.
	UserAgent string `yaml:"user_agent,omitempty"`

	// SkipLimit overrides the run skip limit for this host. Nil means
	// use the global value; zero is a valid override (abort on first skip).
	SkipLimit *int `yaml:"skip_limit,omitempty"`
}

// File is the on-disk structure of the .sitegrep config file.
type File struct {
	// Defaults apply to every host without its own entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps a hostname to its overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the effective configuration for a host: the
// defaults merged with the host's own entry, host values winning.
func (f *File) GetSiteConfig(host string) SiteConfig {
	merged := f.Defaults

	site, ok := f.Sites[host]
	if !ok {
		return merged
	}

	if site.Cookie != "" {
		merged.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		merged.UserAgent = site.UserAgent
	}
	if site.SkipLimit != nil {
		merged.SkipLimit = site.SkipLimit
	}
	if len(site.Headers) > 0 {
		if merged.Headers == nil {
			merged.Headers = make(map[string]string, len(site.Headers))
		} else {
			// Copy so that callers never mutate the shared defaults map.
			copied := make(map[string]string, len(merged.Headers)+len(site.Headers))
			for k, v := range merged.Headers {
				copied[k] = v
			}
			merged.Headers = copied
		}
		for k, v := range site.Headers {
			merged.Headers[k] = v
		}
	}
	return merged
}
