// Package xaes256gcm implements XAES-256-GCM, the extended-nonce AEAD
// specified at [c2sp.org/XAES-256-GCM].
//
// XAES-256-GCM accepts 24-byte nonces, which are large enough to be generated
// at random for any practical number of messages under a single key.  Each
// message derives a fresh AES-256 key from the master key and the first half
// of the nonce, using a NIST SP 800-108r1 counter-mode KDF with AES-256-CMAC
// as the PRF, and then encrypts with standard AES-256-GCM under that key and
// the second half of the nonce.
//
// # Key derivation
//
// Using || to denote concatenation and E_K for a single AES-256 block
// encryption under the master key K:
//
//	L  := E_K(0^128)
//	K1 := dbl(L)                   (doubling in GF(2^128), as in CMAC)
//	M1 := 0x00 || 0x01 || "X" || 0x00 || N[:12]
//	M2 := 0x00 || 0x02 || "X" || 0x00 || N[:12]
//	Kx := E_K(M1 ^ K1) || E_K(M2 ^ K1)
//
// The ciphertext is AES-256-GCM(Kx, N[12:], plaintext, additionalData).
//
// # Format
//
// [Cipher.Encrypt] returns only the ciphertext and its tag:
//
//	CIPHERTEXT := ENCRYPTED_DATA || TAG
//
// The caller is responsible for storing or transmitting the nonce.
// [Cipher.EncryptBlob] instead picks a random nonce and prepends it:
//
//	BLOB := NONCE || CIPHERTEXT
//
// [c2sp.org/XAES-256-GCM]: https://c2sp.org/XAES-256-GCM
package xaes256gcm
