package config

import "github.com/pagemine/pagemine/internal/model"

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per site in a shared config file.
type SiteConfig struct {
	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Fields override the default extraction fields for this site.
	Fields []model.Field `yaml:"fields,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page budget for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`
}

// File represents the structure of the .pagemine configuration file.
type File struct {
	// Fields are the default extraction fields applied to every seed
	// unless a site overrides them.
	Fields []model.Field `yaml:"fields,omitempty"`

	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames without scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if len(siteConfig.Headers) > 0 {
			// Copy before merging so the defaults map is never mutated.
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if len(siteConfig.Fields) > 0 {
			result.Fields = siteConfig.Fields
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
	}

	return result
}
