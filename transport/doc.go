// Package transport is the Bitbucket Cloud HTTP transport: credential
// resolution, request construction, dispatch under a timeout, response
// decoding, and error classification.
//
// The whole pipeline is exposed through a single entry point:
//
//	creds := transport.ResolveCredentials(cfg)
//	body, err := client.Do(ctx, creds, transport.Request{Path: "/repositories/acme"})
//
// Every failure surfaces as a *transport.Error carrying one of four kinds
// (auth missing, auth invalid, API error, unexpected). The transport never
// retries; callers decide how to handle failure.
package transport
