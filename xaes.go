package xaes256gcm

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"math"

	"github.com/etclab/aes256"
)

const (
	// KeySize is the size of an XAES-256-GCM key.
	KeySize = aes256.KeySize

	// NonceSize is the size of the nonce passed to Encrypt and Decrypt.
	NonceSize = 24

	// TagSize is the size of the GCM tag at the end of every ciphertext.
	TagSize = aes256.TagSize

	// OverheadEncryption is the difference between the lengths of a
	// ciphertext and its plaintext.  The nonce is not part of the output.
	OverheadEncryption = TagSize

	// Overhead is the difference between the lengths of a blob (see
	// [Cipher.EncryptBlob]) and its plaintext: the prepended nonce plus the
	// tag.
	Overhead = NonceSize + TagSize

	gcmNonceSize = aes256.NonceSize

	// GCM cannot encrypt more than 2^32 - 2 blocks under one nonce.
	gcmMaxPlaintextSize = (1<<32 - 2) * aes.BlockSize
)

// Cipher is an XAES-256-GCM instance bound to one master key.  It is not
// safe for concurrent use; create one Cipher per goroutine or serialize
// access.
//
// A Cipher must be released with [Cipher.Close] once it is no longer needed.
type Cipher struct {
	block cipher.Block // nil once released
	k1    [blockSize]byte
}

// New creates a [Cipher] for the 32-byte master key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, KeySizeError(len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return newWithBlock(block)
}

func newWithBlock(block cipher.Block) (*Cipher, error) {
	k1, err := deriveSubkey(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{block: block, k1: k1}, nil
}

// Close releases the cipher.  Every subsequent Encrypt or Decrypt fails with
// [ErrReleased].  Close may be called any number of times and always returns
// nil.
func (x *Cipher) Close() error {
	if x == nil {
		return nil
	}
	x.block = nil
	clear(x.k1[:])
	return nil
}

func (x *Cipher) released() bool {
	return x == nil || x.block == nil
}

func plaintextTooLarge(n int) bool {
	return uint64(n) > gcmMaxPlaintextSize || n > math.MaxInt-Overhead
}

func checkEncrypt(plaintextLen int, nonce []byte) error {
	if plaintextTooLarge(plaintextLen) {
		return fmt.Errorf("%w: plaintext of %d bytes exceeds the maximum size", ErrInvalidArgument, plaintextLen)
	}
	if len(nonce) != NonceSize {
		return NonceSizeError(len(nonce))
	}
	return nil
}

func checkDecrypt(ciphertext, nonce []byte) error {
	if len(ciphertext) < TagSize {
		return fmt.Errorf("%w: ciphertext of %d bytes is shorter than the %d-byte tag", ErrInvalidArgument, len(ciphertext), TagSize)
	}
	if len(nonce) != NonceSize {
		return NonceSizeError(len(nonce))
	}
	return nil
}

func checkDestination(dst []byte, required int) error {
	if len(dst) < required {
		return fmt.Errorf("%w: destination is %d bytes, need %d", ErrInvalidArgument, len(dst), required)
	}
	return nil
}

// Encrypt encrypts and authenticates plaintext and authenticates
// additionalData under the 24-byte nonce.  It returns a new slice holding
// the ciphertext followed by the tag, len(plaintext)+[TagSize] bytes long.
//
// The nonce must never be reused with the same key; a random nonce from
// [NewRandomNonce] is safe for any practical number of messages.
func (x *Cipher) Encrypt(plaintext, nonce, additionalData []byte) ([]byte, error) {
	if err := checkEncrypt(len(plaintext), nonce); err != nil {
		return nil, err
	}
	if x.released() {
		return nil, ErrReleased
	}

	return x.seal(plaintext, nonce, additionalData), nil
}

// EncryptTo is like [Cipher.Encrypt] but writes the ciphertext to the start
// of dst, which must be at least len(plaintext)+[TagSize] bytes long.  It
// returns the number of bytes written.  On error dst is not modified.
func (x *Cipher) EncryptTo(dst, plaintext, nonce, additionalData []byte) (int, error) {
	if err := checkEncrypt(len(plaintext), nonce); err != nil {
		return 0, err
	}
	n := len(plaintext) + OverheadEncryption
	if err := checkDestination(dst, n); err != nil {
		return 0, err
	}
	if x.released() {
		return 0, ErrReleased
	}

	return copy(dst[:n], x.seal(plaintext, nonce, additionalData)), nil
}

// Decrypt authenticates ciphertext and additionalData under the 24-byte
// nonce and returns the plaintext, len(ciphertext)-[TagSize] bytes long.  If
// authentication fails it returns [ErrOpen] and no data.
func (x *Cipher) Decrypt(ciphertext, nonce, additionalData []byte) ([]byte, error) {
	if err := checkDecrypt(ciphertext, nonce); err != nil {
		return nil, err
	}
	if x.released() {
		return nil, ErrReleased
	}

	return x.open(ciphertext, nonce, additionalData)
}

// DecryptTo is like [Cipher.Decrypt] but writes the plaintext to the start of
// dst, which must be at least len(ciphertext)-[TagSize] bytes long.  It
// returns the number of bytes written.  On error, including a failed
// authentication, dst is not modified.
func (x *Cipher) DecryptTo(dst, ciphertext, nonce, additionalData []byte) (int, error) {
	if err := checkDecrypt(ciphertext, nonce); err != nil {
		return 0, err
	}
	n := len(ciphertext) - OverheadEncryption
	if err := checkDestination(dst, n); err != nil {
		return 0, err
	}
	if x.released() {
		return 0, ErrReleased
	}

	plaintext, err := x.open(ciphertext, nonce, additionalData)
	if err != nil {
		return 0, err
	}
	copy(dst[:n], plaintext)
	clear(plaintext)
	return n, nil
}

// seal runs AES-256-GCM under the derived key.  The inputs must already be
// validated.
func (x *Cipher) seal(plaintext, nonce, additionalData []byte) []byte {
	key := x.deriveKey(nonce[:gcmNonceSize])
	defer clear(key)

	// EncryptGCM may seal in place; give it a private buffer with room for
	// the tag.
	buf := make([]byte, len(plaintext), len(plaintext)+TagSize)
	copy(buf, plaintext)
	return aes256.EncryptGCM(key, nonce[gcmNonceSize:], buf, additionalData)
}

func (x *Cipher) open(ciphertext, nonce, additionalData []byte) ([]byte, error) {
	key := x.deriveKey(nonce[:gcmNonceSize])
	defer clear(key)

	buf := make([]byte, len(ciphertext))
	copy(buf, ciphertext)
	plaintext, err := aes256.DecryptGCM(key, nonce[gcmNonceSize:], buf, additionalData)
	if err != nil {
		clear(buf)
		return nil, ErrOpen
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
