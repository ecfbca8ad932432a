// Package common contains shared constants and sentinel errors used across
// the CMS server packages.
package common

// AuthorizationHeaderName carries the bearer token on incoming requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the expected authorization scheme, compared case-insensitively.
const BearerScheme = "Bearer"

// MinPasswordLength is the shortest password accepted on registration and rotation.
const MinPasswordLength = 6
