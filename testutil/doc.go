// Package testutil provides a fake Bitbucket Cloud API server for package
// tests. Handlers are registered per path with canned JSON, text, or
// vendor-shaped error payloads.
package testutil
