// Package auth issues and validates the HMAC-signed JWT access and refresh
// tokens the API hands out, and verifies bcrypt password hashes.
package auth
