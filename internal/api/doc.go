// Package api declares the omnivault.v1.VaultService wire contract shared by
// the server and vaultctl: request/response messages, the gRPC service
// descriptor, a JSON codec and the mapping of structured errors to gRPC status.
//
// Messages travel as JSON (content-subtype "json"); decimal amounts are
// encoded as strings.
package api
