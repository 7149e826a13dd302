// Package repos provides the repository-level Bitbucket Cloud operations:
// listing and fetching repositories, branches and commits, creating
// branches, and reading and writing file content.
//
// All operations consume the transport pipeline; failures carry a
// *transport.Error wrapped with operation context, so callers can match
// kinds and statuses through errors.As.
package repos
