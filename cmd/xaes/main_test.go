package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etclab/xaes256gcm"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("XAES_KEY_FILE", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "xaes.ini")
	data := "[log]\nlevel = debug\n\n[crypt]\nkey_file = /tmp/k.hex\naad = hello\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Level != "debug" {
		t.Fatalf("expected level %q, got %q", "debug", cfg.Level)
	}
	if cfg.KeyFile != "/tmp/k.hex" {
		t.Fatalf("expected key_file %q, got %q", "/tmp/k.hex", cfg.KeyFile)
	}
	if cfg.AAD != "hello" {
		t.Fatalf("expected aad %q, got %q", "hello", cfg.AAD)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XAES_KEY_FILE", "")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Level != "info" || cfg.KeyFile != "" || cfg.AAD != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	t.Setenv("XAES_KEY_FILE", "/env/key")
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.KeyFile != "/env/key" {
		t.Fatalf("expected key file from environment, got %q", cfg.KeyFile)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestRunRoundTrip(t *testing.T) {
	t.Setenv("XAES_KEY_FILE", "")
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.hex")
	plainPath := filepath.Join(dir, "plain.txt")
	encPath := filepath.Join(dir, "plain.txt.xaes")
	decPath := filepath.Join(dir, "plain.txt.out")

	plain := []byte("The quick brown fox jumps over the lazy dog.")
	if err := os.WriteFile(plainPath, plain, 0600); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	if err := run([]string{"genkey", keyPath}, &stderr); err != nil {
		t.Fatalf("genkey failed: %v", err)
	}
	key, err := readKeyFile(keyPath)
	if err != nil {
		t.Fatalf("readKeyFile failed: %v", err)
	}
	if len(key) != xaes256gcm.KeySize {
		t.Fatalf("expected %d-byte key, got %d", xaes256gcm.KeySize, len(key))
	}

	if err := run([]string{"-key", keyPath, "-aad", "v1", "encrypt", plainPath, encPath}, &stderr); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	blob, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) != len(plain)+xaes256gcm.Overhead {
		t.Fatalf("expected %d-byte blob, got %d", len(plain)+xaes256gcm.Overhead, len(blob))
	}

	err = run([]string{"-key", keyPath, "-aad", "v2", "decrypt", encPath, decPath}, &stderr)
	if !errors.Is(err, xaes256gcm.ErrOpen) {
		t.Fatalf("decrypt with wrong aad: expected ErrOpen, got %v", err)
	}

	if err := run([]string{"-key", keyPath, "-aad", "v1", "decrypt", encPath, decPath}, &stderr); err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	got, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("expected decrypt to produce %q, got %q", plain, got)
	}
}

func TestRunErrors(t *testing.T) {
	t.Setenv("XAES_KEY_FILE", "")
	dir := t.TempDir()
	var stderr bytes.Buffer

	tests := []struct {
		name string
		args []string
	}{
		{"NoCommand", nil},
		{"UnknownCommand", []string{"frobnicate"}},
		{"GenkeyArgs", []string{"genkey"}},
		{"EncryptArgs", []string{"-key", "k", "encrypt", "in"}},
		{"NoKey", []string{"encrypt", "in", "out"}},
		{"MissingKeyFile", []string{"-key", filepath.Join(dir, "missing"), "encrypt", "in", "out"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, &stderr); err == nil {
				t.Fatalf("expected run(%q) to fail", tt.args)
			}
		})
	}
}

func TestRunShortKey(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "short.hex")
	if err := os.WriteFile(keyPath, []byte("00112233\n"), 0600); err != nil {
		t.Fatal(err)
	}
	inPath := filepath.Join(dir, "in")
	if err := os.WriteFile(inPath, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	err := run([]string{"-key", keyPath, "encrypt", inPath, filepath.Join(dir, "out")}, &stderr)
	var kse xaes256gcm.KeySizeError
	if !errors.As(err, &kse) || int(kse) != 4 {
		t.Fatalf("expected KeySizeError(4), got %v", err)
	}
}

func TestRunUnknownLogLevel(t *testing.T) {
	t.Setenv("XAES_KEY_FILE", "")
	keyPath := filepath.Join(t.TempDir(), "key.hex")

	var stderr bytes.Buffer
	if err := run([]string{"-loglevel", "chatty", "genkey", keyPath}, &stderr); err != nil {
		t.Fatalf("genkey failed: %v", err)
	}
	if !strings.Contains(stderr.String(), "unknown log level") {
		t.Fatalf("expected a warning about the log level, got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "wrote new key") {
		t.Fatalf("expected info-level output after the fallback, got %q", stderr.String())
	}

	stderr.Reset()
	if err := run([]string{"-loglevel", "warn", "genkey", keyPath}, &stderr); err != nil {
		t.Fatalf("genkey failed: %v", err)
	}
	if strings.Contains(stderr.String(), "unknown log level") {
		t.Fatalf("unexpected warning for a valid level: %q", stderr.String())
	}
}
