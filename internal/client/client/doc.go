// Package client contains the vaultctl side of the omnivault API.
//
// GRPCClient dials the server, attaches the session access token to every
// call, transparently refreshes an expired access token once and converts
// gRPC statuses back into *common.Error values so callers can match them
// with errors.Is.
//
// Session keeps the current wallet and tokens in the local SQLite state
// database opened with OpenLocalStore.
package client
