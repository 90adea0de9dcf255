package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeIsDeterministic(t *testing.T) {
	body := []byte(`{"uuid":"tx-1","amount":"0.01"}`)

	first := Compute(body, "secret")
	second := Compute(body, "secret")
	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestVerify(t *testing.T) {
	body := []byte(`{"uuid":"tx-1","amount":"0.01"}`)
	sig := Compute(body, "secret")

	assert.True(t, Verify(body, "secret", sig))
	assert.False(t, Verify(body, "other-key", sig))
	assert.False(t, Verify(body, "secret", ""))
}

func TestVerifyRejectsSingleByteFlips(t *testing.T) {
	body := []byte(`{"uuid":"tx-1","amount":"0.01"}`)
	sig := Compute(body, "secret")

	// Flip one byte of the payload.
	tampered := append([]byte(nil), body...)
	tampered[10] ^= 0x01
	assert.False(t, Verify(tampered, "secret", sig))

	// Flip one byte of the signature.
	badSig := []byte(sig)
	if badSig[0] == 'a' {
		badSig[0] = 'b'
	} else {
		badSig[0] = 'a'
	}
	assert.False(t, Verify(body, "secret", string(badSig)))
}
