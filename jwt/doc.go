// Package jwt signs and verifies the access and refresh tokens issued by
// marketauth. The two token kinds use distinct HS256 secrets and distinct
// lifetimes, so a refresh token can never be replayed as an access token or
// vice versa. It also provides the one-way SHA-256 digest used to persist
// refresh tokens without ever storing the raw value.
package jwt
