package etherdfs

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Config is the parsed form of the command line grammar
// "etherdfs SRVMAC rdrv-ldrv [rdrv2-ldrv2 ...] [/p=HH] [/n] [/q] [/u]".
// The grammar's DOS-style "/x" switches don't fit a GNU-style flag
// package, so ParseArgs hand-rolls the parser instead.
type Config struct {
	// Auto is true when the caller passed "::" instead of a MAC address,
	// requesting broadcast auto-discovery.
	Auto bool
	// ServerMAC is the peer's hardware address; nil if Auto is set.
	ServerMAC net.HardwareAddr

	// Mappings holds each "rdrv-ldrv" pair in encounter order: Local and
	// Remote are 0-based drive ordinals.
	Mappings []Mapping

	// PacketDriverInterrupt corresponds to /p=HH. It has no meaning
	// against a raw socket LinkDriver; RawLinkDriver instead resolves its
	// network interface from the ETHERDFS_IFACE environment variable, as
	// documented below.
	PacketDriverInterrupt int

	NoChecksum bool // /n
	Quiet      bool // /q
	Unload     bool // /u
}

// Mapping is one parsed "rdrv-ldrv" argument.
type Mapping struct {
	Remote int
	Local  int
}

// ParseArgs parses argv (excluding the program name) into a Config. It
// returns a descriptive error, not a numeric code, since there is no DOS
// help-text overlay to select between.
func ParseArgs(argv []string) (*Config, error) {
	cfg := &Config{}
	gotMAC := false

	for _, arg := range argv {
		switch {
		case isMapping(arg):
			m, err := parseMapping(arg)
			if err != nil {
				return nil, err
			}
			cfg.Mappings = append(cfg.Mappings, m)

		case len(arg) > 0 && arg[0] == '/':
			if err := applyOption(cfg, arg); err != nil {
				return nil, err
			}

		default:
			if gotMAC {
				return nil, fmt.Errorf("etherdfs: unexpected argument %q", arg)
			}
			if arg == "::" {
				cfg.Auto = true
			} else {
				mac, err := net.ParseMAC(arg)
				if err != nil {
					return nil, fmt.Errorf("etherdfs: invalid server MAC %q: %w", arg, err)
				}
				cfg.ServerMAC = mac
			}
			gotMAC = true
		}
	}

	if cfg.Unload {
		if gotMAC || len(cfg.Mappings) > 0 {
			return nil, fmt.Errorf("etherdfs: /u cannot be combined with a MAC or drive mapping")
		}
		return cfg, nil
	}

	if len(cfg.Mappings) == 0 || !gotMAC {
		return nil, fmt.Errorf("etherdfs: usage: etherdfs SRVMAC rdrv-ldrv [rdrv2-ldrv2 ...] [/p=HH] [/n] [/q] [/u]")
	}
	return cfg, nil
}

// isMapping reports whether arg has the shape "X-Y" naming two drive
// letters, per the original's inline check in parseargv.
func isMapping(arg string) bool {
	return len(arg) == 3 && arg[1] == '-' &&
		DriveOrdinal(arg[0]) >= 0 && DriveOrdinal(arg[2]) >= 0
}

func parseMapping(arg string) (Mapping, error) {
	remote := DriveOrdinal(arg[0])
	local := DriveOrdinal(arg[2])
	if remote < 0 || local < 0 {
		return Mapping{}, fmt.Errorf("etherdfs: invalid drive mapping %q", arg)
	}
	return Mapping{Remote: remote, Local: local}, nil
}

func applyOption(cfg *Config, arg string) error {
	body := arg[1:]
	if body == "" {
		return fmt.Errorf("etherdfs: empty option")
	}

	opt := body[0]
	if opt >= 'A' && opt <= 'Z' {
		opt += 'a' - 'A'
	}

	var value string
	hasValue := false
	switch {
	case len(body) == 1:
	case body[1] == '=':
		value = body[2:]
		hasValue = true
	default:
		return fmt.Errorf("etherdfs: malformed option %q", arg)
	}

	switch opt {
	case 'q':
		if hasValue {
			return fmt.Errorf("etherdfs: /q takes no value")
		}
		cfg.Quiet = true
	case 'n':
		if hasValue {
			return fmt.Errorf("etherdfs: /n takes no value")
		}
		cfg.NoChecksum = true
	case 'u':
		if hasValue {
			return fmt.Errorf("etherdfs: /u takes no value")
		}
		cfg.Unload = true
	case 'p':
		if !hasValue || len(value) != 2 {
			return fmt.Errorf("etherdfs: /p requires a two-digit hex value")
		}
		n, err := strconv.ParseInt(value, 16, 32)
		if err != nil {
			return fmt.Errorf("etherdfs: invalid /p value %q: %w", value, err)
		}
		cfg.PacketDriverInterrupt = int(n)
	default:
		return fmt.Errorf("etherdfs: unknown option %q", arg)
	}
	return nil
}

// NewLogger builds the structured logger shared by the CLI and Manager, a
// single injected *logrus.Logger rather than package-level log calls.
// Level is controlled by the ETHERDFS_LOG_LEVEL environment variable; /q
// forces ErrorLevel regardless of the environment, and the default is
// InfoLevel.
func NewLogger(quiet bool) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	if lvl, err := logrus.ParseLevel(os.Getenv("ETHERDFS_LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}
	if quiet {
		log.SetLevel(logrus.ErrorLevel)
	}
	return log
}

// ResolveInterface picks the network interface RawLinkDriver should bind
// to. The command line grammar has no slot for an interface name (its
// /p=HH option only makes sense for a real DOS packet driver interrupt),
// so this reads ETHERDFS_IFACE instead, keeping the CLI grammar unchanged
// while still giving production code a real interface to use.
func ResolveInterface() (*net.Interface, error) {
	name := os.Getenv("ETHERDFS_IFACE")
	if name == "" {
		return nil, fmt.Errorf("etherdfs: ETHERDFS_IFACE not set")
	}
	return net.InterfaceByName(name)
}
