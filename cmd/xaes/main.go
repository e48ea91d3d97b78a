// Command xaes encrypts and decrypts files with XAES-256-GCM.
//
// Usage:
//
//	xaes [options] genkey KEYFILE
//	xaes [options] encrypt INFILE OUTFILE
//	xaes [options] decrypt INFILE OUTFILE
//
// Key files hold a hex-encoded 32-byte key.  Encrypted files are blobs: a
// random 24-byte nonce followed by the ciphertext and tag.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/etclab/xaes256gcm"
)

const usage = `Usage: xaes [options] genkey KEYFILE
       xaes [options] encrypt INFILE OUTFILE
       xaes [options] decrypt INFILE OUTFILE

Options:
`

type options struct {
	configFile string
	keyFile    string
	aad        string
	logLevel   string
}

func newLogger(w io.Writer, levelStr string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	unknown := err != nil
	if unknown || levelStr == "" {
		level = zerolog.InfoLevel
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
	}

	logger := zerolog.New(consoleWriter).
		Level(level).
		With().
		Timestamp().
		Str("component", "xaes").
		Logger()

	if unknown {
		logger.Warn().Str("level", levelStr).Msg("unknown log level, defaulting to info")
	}
	return logger
}

func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read key file %q: %w", path, err)
	}
	key, err := hex.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil {
		return nil, fmt.Errorf("key file %q is not hex: %w", path, err)
	}
	return key, nil
}

func writeKeyFile(path string, key []byte) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(key)+"\n"), 0600)
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("xaes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.configFile, "config", "", "path to an INI config file")
	fs.StringVar(&opts.keyFile, "key", "", "path to the hex-encoded key file (overrides config)")
	fs.StringVar(&opts.aad, "aad", "", "additional authenticated data (overrides config)")
	fs.StringVar(&opts.logLevel, "loglevel", "", "log level (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("can't load config file %q: %w", opts.configFile, err)
	}
	if opts.keyFile != "" {
		cfg.KeyFile = opts.keyFile
	}
	if opts.aad != "" {
		cfg.AAD = opts.aad
	}
	if opts.logLevel != "" {
		cfg.Level = opts.logLevel
	}

	log := newLogger(stderr, cfg.Level)

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	switch cmd, rest := rest[0], rest[1:]; cmd {
	case "genkey":
		if len(rest) != 1 {
			fs.Usage()
			return errors.New("genkey takes exactly one argument")
		}
		if err := writeKeyFile(rest[0], xaes256gcm.NewRandomKey()); err != nil {
			return err
		}
		log.Info().Str("path", rest[0]).Msg("wrote new key")
		return nil
	case "encrypt", "decrypt":
		if len(rest) != 2 {
			fs.Usage()
			return fmt.Errorf("%s takes exactly two arguments", cmd)
		}
		if cfg.KeyFile == "" {
			return errors.New("no key file given (use -key or [crypt] key_file)")
		}
		return transform(log, cmd, cfg, rest[0], rest[1])
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func transform(log zerolog.Logger, cmd string, cfg *Config, inPath, outPath string) error {
	key, err := readKeyFile(cfg.KeyFile)
	if err != nil {
		return err
	}

	x, err := xaes256gcm.New(key)
	clear(key)
	if err != nil {
		return err
	}
	defer x.Close()

	in, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("can't read input file: %w", err)
	}

	var aad []byte
	if cfg.AAD != "" {
		aad = []byte(cfg.AAD)
	}

	var out []byte
	if cmd == "encrypt" {
		out, err = x.EncryptBlob(in, aad)
	} else {
		out, err = x.DecryptBlob(in, aad)
	}
	if err != nil {
		return fmt.Errorf("%s %q: %w", cmd, inPath, err)
	}

	if err := os.WriteFile(outPath, out, 0600); err != nil {
		return fmt.Errorf("can't write output file: %w", err)
	}

	log.Debug().Str("in", inPath).Str("out", outPath).Int("in_bytes", len(in)).Int("out_bytes", len(out)).Msg(cmd)
	log.Info().Str("out", outPath).Msgf("%sed %d bytes", cmd, len(in))
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log := newLogger(os.Stderr, "error")
		log.Error().Err(err).Msg("xaes failed")
		os.Exit(1)
	}
}
