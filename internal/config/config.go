package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/DoyleJ11/tactics-server/internal/engine"
	"github.com/DoyleJ11/tactics-server/internal/protocol"
)

const (
	DefaultTCPAddr     = "0.0.0.0:1000"
	DevTCPAddr         = "127.0.0.1:1000"
	DefaultHTTPAddr    = ":8080"
	DefaultLogLevel    = "info"
	DefaultBlocklist   = "idiot,stupid,noob,trash"
	MaxFrameUpperLimit = 64 << 20
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	TCPAddr   string
	HTTPAddr  string // empty disables the side-server
	LogLevel  zapcore.Level
	Dev       bool
	Rules     engine.Rules
	Blocklist []string
	MaxFrame  uint32
}

// Load reads the given .env files (default ".env"; missing files are fine)
// and then the process environment. Variables already set in the
// environment win over .env entries. args are the command-line arguments
// after the program name; "dev" binds the listener to loopback.
func Load(args []string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: reading %s: %v", ErrInvalid, f, err)
		}
	}

	tcpDefault := DefaultTCPAddr
	if slices.Contains(args, "dev") {
		tcpDefault = DevTCPAddr
	}

	cfg := Config{
		TCPAddr:   getenv("TACTICS_TCP_ADDR", tcpDefault),
		Blocklist: splitList(getenv("TACTICS_CHAT_BLOCKLIST", DefaultBlocklist)),
	}

	// Unset means the default; set-but-empty turns the side-server off.
	if v, ok := os.LookupEnv("TACTICS_HTTP_ADDR"); ok {
		cfg.HTTPAddr = strings.TrimSpace(v)
	} else {
		cfg.HTTPAddr = DefaultHTTPAddr
	}

	var err error
	if cfg.LogLevel, err = zapcore.ParseLevel(getenv("TACTICS_LOG_LEVEL", DefaultLogLevel)); err != nil {
		return Config{}, fmt.Errorf("%w: TACTICS_LOG_LEVEL: %v", ErrInvalid, err)
	}
	if cfg.Dev, err = getbool("TACTICS_DEV"); err != nil {
		return Config{}, err
	}
	if cfg.Rules.EnforceRange, err = getbool("TACTICS_ENFORCE_RANGE"); err != nil {
		return Config{}, err
	}
	if cfg.Rules.SpiritPerAction, err = getbool("TACTICS_SPIRIT_PER_ACTION"); err != nil {
		return Config{}, err
	}

	frame := getenv("TACTICS_MAX_FRAME", strconv.Itoa(protocol.DefaultMaxFrame))
	n, err := strconv.ParseUint(frame, 10, 32)
	if err != nil || n == 0 || n > MaxFrameUpperLimit {
		return Config{}, fmt.Errorf("%w: TACTICS_MAX_FRAME=%q must be between 1 and %d", ErrInvalid, frame, MaxFrameUpperLimit)
	}
	cfg.MaxFrame = uint32(n)

	if cfg.TCPAddr == "" {
		return Config{}, fmt.Errorf("%w: TACTICS_TCP_ADDR is empty", ErrInvalid)
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getbool(k string) (bool, error) {
	v := getenv(k, "false")
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, k, v)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}
