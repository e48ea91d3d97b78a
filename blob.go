package xaes256gcm

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/etclab/aes256"
	"github.com/etclab/mu"
)

// Blob is a self-contained XAES-256-GCM message: the random nonce that was
// used for encryption, followed by the ciphertext and tag.
//
//	BLOB := NONCE || CIPHERTEXT
//	CIPHERTEXT := ENCRYPTED_DATA || TAG
type Blob struct {
	Nonce      []byte // NonceSize
	Ciphertext []byte // includes the TagSize-byte tag
}

// String satisfies the [fmt.Stringer] interface.
func (b *Blob) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "{\n")
	fmt.Fprintf(&sb, "\tNonce: %x,\n", b.Nonce)
	fmt.Fprintf(&sb, "\tCiphertext (%d): %x,\n", len(b.Ciphertext), b.Ciphertext)
	fmt.Fprintf(&sb, "}")

	return sb.String()
}

// Marshal returns NONCE || CIPHERTEXT.
func (b *Blob) Marshal() ([]byte, error) {
	if len(b.Nonce) != NonceSize {
		return nil, NonceSizeError(len(b.Nonce))
	}
	if len(b.Ciphertext) < TagSize {
		return nil, fmt.Errorf("%w: blob ciphertext of %d bytes is shorter than the tag", ErrInvalidArgument, len(b.Ciphertext))
	}

	w := new(bytes.Buffer)
	w.Grow(len(b.Nonce) + len(b.Ciphertext))
	w.Write(b.Nonce)
	w.Write(b.Ciphertext)
	return w.Bytes(), nil
}

// UnmarshalBlob parses a marshalled blob.  The returned Blob copies data.
func UnmarshalBlob(data []byte) (*Blob, error) {
	nonce, ciphertext, err := SplitNonceCiphertext(data)
	if err != nil {
		return nil, err
	}

	b := &Blob{
		Nonce:      make([]byte, NonceSize),
		Ciphertext: make([]byte, len(ciphertext)),
	}
	copy(b.Nonce, nonce)
	copy(b.Ciphertext, ciphertext)
	return b, nil
}

// SplitNonceCiphertext takes a blob and returns its two components: the
// nonce and the ciphertext (which includes the tag).  Both alias blob.  If
// blob is too small to hold a nonce and a tag, SplitNonceCiphertext returns
// an error.
func SplitNonceCiphertext(blob []byte) ([]byte, []byte, error) {
	if len(blob) < Overhead {
		return nil, nil, fmt.Errorf("%w: blob of %d bytes is shorter than the %d-byte overhead", ErrInvalidArgument, len(blob), Overhead)
	}
	return blob[:NonceSize], blob[NonceSize:], nil
}

// NewRandomNonce returns a fresh 24-byte nonce from crypto/rand.  Random
// nonces of this size can be used for any practical number of messages under
// one key.
func NewRandomNonce() []byte {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		mu.Panicf("rand.Read failed: %v", err)
	}
	return nonce
}

// NewRandomKey returns a fresh random [KeySize]-byte master key.
func NewRandomKey() []byte {
	return aes256.NewRandomKey()
}

// EncryptBlob encrypts plaintext under a fresh random nonce and returns the
// marshalled [Blob], len(plaintext)+[Overhead] bytes long.
func (x *Cipher) EncryptBlob(plaintext, additionalData []byte) ([]byte, error) {
	nonce := NewRandomNonce()

	if err := checkEncrypt(len(plaintext), nonce); err != nil {
		return nil, err
	}
	if x.released() {
		return nil, ErrReleased
	}

	b := &Blob{
		Nonce:      nonce,
		Ciphertext: x.seal(plaintext, nonce, additionalData),
	}
	return b.Marshal()
}

// DecryptBlob authenticates and decrypts a blob produced by
// [Cipher.EncryptBlob].  The additionalData must match what was passed to
// EncryptBlob.
func (x *Cipher) DecryptBlob(blob, additionalData []byte) ([]byte, error) {
	nonce, ciphertext, err := SplitNonceCiphertext(blob)
	if err != nil {
		return nil, err
	}
	return x.Decrypt(ciphertext, nonce, additionalData)
}
