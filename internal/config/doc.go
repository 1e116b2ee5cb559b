// Package config manages configuration for SiteScribe.
//
// Configuration comes from two places: CLI flags, which populate a flat
// Config struct with documented defaults, and an optional .sitescribe YAML
// file holding per-site overrides (cookie jar, rendering, scope prefix).
// Flags always win over file values for the concerns they share.
package config
