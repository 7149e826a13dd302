// Package logger wraps zerolog with a small, configurable surface for the
// Bitbucket client. The transport logs every dispatch at debug level; an
// embedding application controls level, format, and output through Config
// or the LOG_* environment variables.
package logger
