package xaes256gcm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

const blockSize = aes.BlockSize

// deriveSubkey computes K1 = dbl(E_K(0^128)).  It is called once, when the
// Cipher is constructed.
func deriveSubkey(b cipher.Block) ([blockSize]byte, error) {
	var l [blockSize]byte

	if n := b.BlockSize(); n != blockSize {
		return l, fmt.Errorf("%w: block cipher returned %d-byte blocks", ErrInternal, n)
	}

	b.Encrypt(l[:], l[:])
	k1 := dbl(l)
	clear(l[:])
	return k1, nil
}

// dbl multiplies the big-endian 128-bit value in by x in GF(2^128), with the
// reduction polynomial x^128 + x^7 + x^2 + x + 1.  It runs in constant time
// with respect to the shifted-out bit.
func dbl(in [blockSize]byte) [blockSize]byte {
	var out [blockSize]byte

	var msb byte
	for i := blockSize - 1; i >= 0; i-- {
		out[i] = in[i]<<1 | msb
		msb = in[i] >> 7
	}

	// 0xff if the top bit of in was set, 0x00 otherwise
	mask := 0 - msb
	out[blockSize-1] ^= 0x87 & mask

	return out
}

// deriveKey returns the one-time AES-256 key for the 12-byte derivation half
// of a nonce:
//
//	M1 := 0x00 || 0x01 || "X" || 0x00 || N
//	M2 := 0x00 || 0x02 || "X" || 0x00 || N
//	K  := E_K(M1 ^ K1) || E_K(M2 ^ K1)
//
// The same (key, nonce) pair always yields the same derived key.
func (x *Cipher) deriveKey(nonce []byte) []byte {
	k := make([]byte, 0, 2*blockSize)
	k = append(k, 0, 1, 'X', 0)
	k = append(k, nonce...)
	k = append(k, 0, 2, 'X', 0)
	k = append(k, nonce...)

	m1, m2 := k[:blockSize], k[blockSize:]
	subtle.XORBytes(m1, m1, x.k1[:])
	subtle.XORBytes(m2, m2, x.k1[:])
	x.block.Encrypt(m1, m1)
	x.block.Encrypt(m2, m2)

	return k
}
