// Package cli implements vaultctl, the command-line client of omnivault.
//
// Commands are grouped by resource (user, token, vault, transfer) and talk to
// the server over gRPC. The session obtained by "user register" or
// "user login" is kept in the local state database and reused by later
// invocations; expired access tokens are refreshed transparently.
//
// Results are printed as YAML.
package cli
