package signature

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// Compute returns the provider signature for a payload: the hex MD5 of the
// base64-encoded body concatenated with the shared key. The same scheme is
// used for outbound API calls (API key) and inbound webhooks (webhook key).
func Compute(body []byte, key string) string {
	encoded := base64.StdEncoding.EncodeToString(body)
	sum := md5.Sum([]byte(encoded + key))
	return hex.EncodeToString(sum[:])
}

// Verify compares a received signature against the one computed from the
// canonical body, in constant time.
func Verify(body []byte, key, received string) bool {
	if received == "" {
		return false
	}
	expected := Compute(body, key)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}
