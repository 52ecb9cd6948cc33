// Package config defines the format-agnostic model of pipeline declarations
// and the Loader interface that concrete formats implement.
//
// The config.Model is the single source of truth the application hands to the
// pipeline builder. The HCL implementation lives in the hcl_adapter package.
package config
