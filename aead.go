package xaes256gcm

import (
	"crypto/cipher"

	"github.com/etclab/mu"
)

type aead struct {
	*Cipher
}

var _ cipher.AEAD = aead{}

// NewAEAD returns XAES-256-GCM as a [cipher.AEAD] that takes 24-byte nonces.
// Following the [cipher.AEAD] contract, Seal panics on a bad nonce length, an
// oversized plaintext, or a released cipher; Open reports errors.
//
// The returned value is released by closing the Cipher it wraps, which is
// reachable through [AsCipher].
func NewAEAD(key []byte) (cipher.AEAD, error) {
	x, err := New(key)
	if err != nil {
		return nil, err
	}
	return aead{x}, nil
}

// AsCipher returns the [Cipher] behind an AEAD created by [NewAEAD], or nil if
// a was created elsewhere.
func AsCipher(a cipher.AEAD) *Cipher {
	if v, ok := a.(aead); ok {
		return v.Cipher
	}
	return nil
}

func (aead) NonceSize() int {
	return NonceSize
}

func (aead) Overhead() int {
	return OverheadEncryption
}

// Seal appends the ciphertext and tag to dst.
func (a aead) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if err := checkEncrypt(len(plaintext), nonce); err != nil {
		mu.Panicf("%v", err)
	}
	if a.released() {
		mu.Panicf("%v", ErrReleased)
	}

	ret, out := sliceForAppend(dst, len(plaintext)+OverheadEncryption)
	copy(out, a.seal(plaintext, nonce, additionalData))
	return ret
}

// Open appends the plaintext to dst.
func (a aead) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if err := checkDecrypt(ciphertext, nonce); err != nil {
		return nil, err
	}
	if a.released() {
		return nil, ErrReleased
	}

	plaintext, err := a.open(ciphertext, nonce, additionalData)
	if err != nil {
		return nil, err
	}
	ret, out := sliceForAppend(dst, len(plaintext))
	copy(out, plaintext)
	clear(plaintext)
	return ret, nil
}

// sliceForAppend extends in by n bytes, reallocating if needed, and returns
// the extended slice along with its last n bytes.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
