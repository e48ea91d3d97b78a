package xaes256gcm

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidArgument is the error kind for malformed inputs: wrong key
	// or nonce length, oversized plaintext, undersized ciphertext or
	// destination.
	ErrInvalidArgument = errors.New("xaes256gcm: invalid argument")

	// ErrReleased is returned by any operation on a [Cipher] after
	// [Cipher.Close].
	ErrReleased = errors.New("xaes256gcm: use of released cipher")

	// ErrOpen is returned when a ciphertext fails authentication.  It never
	// carries detail about why.
	ErrOpen = errors.New("xaes256gcm: message authentication failed")

	// ErrInternal indicates a broken block cipher backend.
	ErrInternal = errors.New("xaes256gcm: internal error")
)

// KeySizeError is returned by [New] for a key that is not [KeySize] bytes.
type KeySizeError int

func (k KeySizeError) Error() string {
	return "xaes256gcm: invalid key size " + strconv.Itoa(int(k))
}

func (k KeySizeError) Unwrap() error {
	return ErrInvalidArgument
}

// NonceSizeError is returned for a nonce that is not [NonceSize] bytes.
type NonceSizeError int

func (n NonceSizeError) Error() string {
	return "xaes256gcm: invalid nonce size " + strconv.Itoa(int(n))
}

func (n NonceSizeError) Unwrap() error {
	return ErrInvalidArgument
}
