// Package config provides process-wide configuration for the Bitbucket
// client: credential sources, base endpoint, request timeout, and the
// maximum response size.
//
// A Config is built once at startup (from the environment, an optional
// .env file, and an optional YAML file) and passed by reference into the
// transport and domain packages. It is never mutated after Load returns.
package config
