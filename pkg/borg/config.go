package borg

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

// ControllerType is the L1 controller type.
const ControllerType = "picoborg"

// Defaults
const (
	DefaultStatusInterval    = time.Second
	DefaultDriveSpeedMax     = 500.0
	DefaultTurnSpeedMax      = 180.0
	DefaultFailsafe          = true
	DefaultKeepaliveInterval = 80 * time.Millisecond
)

const (
	configFileEnvVar = "BORG_CONFIG"
	deviceEnvVar     = "BORG_DEVICE"
	addressEnvVar    = "BORG_ADDRESS"
)

// DriveConfig maps Nav2D commands to motor powers.
type DriveConfig struct {
	// DriveSpeedMax (mm/s) is the speed at full power.
	DriveSpeedMax float64
	// TurnSpeedMax (degrees/s) is the turn speed at full differential power.
	TurnSpeedMax float64
	// Invert1 reverses motor 1 (left), for a motor wired backwards.
	Invert1 bool
	Invert2 bool
}

// Config defines the configurations for the controller.
type Config struct {
	// Device is the transport locator, e.g. /dev/i2c-1, serial:///dev/ttyUSB0.
	Device         string
	Address        uint16
	Failsafe       bool
	EPOIgnore      bool
	StatusInterval time.Duration
	Drive          DriveConfig

	// ConfigFile is an optional YAML file. Flags given on the command line
	// override values from the file.
	ConfigFile string
}

// FileConfig is the YAML schema of the config file.
type FileConfig struct {
	Device         string          `yaml:"device"`
	Address        uint16          `yaml:"address"`
	Failsafe       *bool           `yaml:"failsafe"`
	EPOIgnore      *bool           `yaml:"epo_ignore"`
	StatusInterval time.Duration   `yaml:"status_interval"`
	Drive          FileDriveConfig `yaml:"drive"`
}

// FileDriveConfig is the drive section of FileConfig.
type FileDriveConfig struct {
	DriveSpeedMax float64 `yaml:"drive_speed_max"`
	TurnSpeedMax  float64 `yaml:"turn_speed_max"`
	Invert1       *bool   `yaml:"invert1"`
	Invert2       *bool   `yaml:"invert2"`
}

var defaultConfig = Config{
	Device:         picoborg.DefaultBusPath,
	Address:        picoborg.DefaultAddress,
	Failsafe:       DefaultFailsafe,
	StatusInterval: DefaultStatusInterval,
	Drive: DriveConfig{
		DriveSpeedMax: DefaultDriveSpeedMax,
		TurnSpeedMax:  DefaultTurnSpeedMax,
	},
}

func init() {
	if val := os.Getenv(deviceEnvVar); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv(addressEnvVar); val != "" {
		addr, err := ParseAddress(val)
		if err != nil {
			glog.Warningf("ignore %s: %v", addressEnvVar, err)
		} else {
			defaultConfig.Address = addr
		}
	}
	defaultConfig.ConfigFile = os.Getenv(configFileEnvVar)
}

// ParseAddress parses a 7-bit bus address, in decimal or 0x hex.
func ParseAddress(s string) (uint16, error) {
	val, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	if val > 0x7f {
		return 0, fmt.Errorf("address 0x%x out of range", val)
	}
	return uint16(val), nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Device locator, e.g. /dev/i2c-1, serial:///dev/ttyUSB0, sim://")
	flag.Func("address", fmt.Sprintf("Bus address of the board (default 0x%02x)", defaultConfig.Address), func(s string) (err error) {
		defaultConfig.Address, err = ParseAddress(s)
		return
	})
	flag.BoolVar(&defaultConfig.Failsafe, "failsafe", defaultConfig.Failsafe, "Enable communication failsafe on the board.")
	flag.BoolVar(&defaultConfig.EPOIgnore, "epo-ignore", defaultConfig.EPOIgnore, "Ignore the emergency power off latch.")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Interval of reading board status.")
	flag.Float64Var(&defaultConfig.Drive.DriveSpeedMax, "drive-speed-max", defaultConfig.Drive.DriveSpeedMax, "Drive speed (mm/s) at full power.")
	flag.Float64Var(&defaultConfig.Drive.TurnSpeedMax, "turn-speed-max", defaultConfig.Drive.TurnSpeedMax, "Turn speed (degrees/s) at full differential power.")
	flag.BoolVar(&defaultConfig.Drive.Invert1, "invert1", defaultConfig.Drive.Invert1, "Reverse motor 1.")
	flag.BoolVar(&defaultConfig.Drive.Invert2, "invert2", defaultConfig.Drive.Invert2, "Reverse motor 2.")
	flag.StringVar(&defaultConfig.ConfigFile, "config", defaultConfig.ConfigFile, "YAML config file.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFileConfig reads a YAML config file.
func LoadFileConfig(fn string) (*FileConfig, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", fn, err)
	}
	return &fc, nil
}

// ExplicitFlags returns the names of flags set on the command line.
func ExplicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// Merge applies values from fc which are not overridden by explicit flags.
func (c *Config) Merge(fc *FileConfig, explicit map[string]bool) error {
	if fc.Device != "" && !explicit["device"] {
		c.Device = fc.Device
	}
	if fc.Address != 0 && !explicit["address"] {
		if fc.Address > 0x7f {
			return fmt.Errorf("address 0x%x out of range", fc.Address)
		}
		c.Address = fc.Address
	}
	mergeBool(&c.Failsafe, fc.Failsafe, explicit["failsafe"])
	mergeBool(&c.EPOIgnore, fc.EPOIgnore, explicit["epo-ignore"])
	if fc.StatusInterval != 0 && !explicit["status-interval"] {
		c.StatusInterval = fc.StatusInterval
	}
	if fc.Drive.DriveSpeedMax != 0 && !explicit["drive-speed-max"] {
		c.Drive.DriveSpeedMax = fc.Drive.DriveSpeedMax
	}
	if fc.Drive.TurnSpeedMax != 0 && !explicit["turn-speed-max"] {
		c.Drive.TurnSpeedMax = fc.Drive.TurnSpeedMax
	}
	mergeBool(&c.Drive.Invert1, fc.Drive.Invert1, explicit["invert1"])
	mergeBool(&c.Drive.Invert2, fc.Drive.Invert2, explicit["invert2"])
	return nil
}

func mergeBool(dst *bool, val *bool, explicit bool) {
	if val != nil && !explicit {
		*dst = *val
	}
}

// Load merges ConfigFile (if specified) with flags set on the command line.
func (c *Config) Load() error {
	if c.ConfigFile == "" {
		return nil
	}
	fc, err := LoadFileConfig(c.ConfigFile)
	if err != nil {
		return err
	}
	return c.Merge(fc, ExplicitFlags(flag.CommandLine))
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.Drive.DriveSpeedMax <= 0 {
		return fmt.Errorf("drive speed max must be positive")
	}
	if c.Drive.TurnSpeedMax <= 0 {
		return fmt.Errorf("turn speed max must be positive")
	}
	if c.StatusInterval <= 0 {
		return fmt.Errorf("status interval must be positive")
	}
	return nil
}

// OpenDevice opens the board and applies the board settings.
func (c *Config) OpenDevice() (*picoborg.Device, error) {
	dev, err := picoborg.Open(c.Device, c.Address)
	if err != nil {
		return nil, err
	}
	if err = c.Setup(dev); err != nil {
		dev.Close()
		return nil, err
	}
	glog.Infof("board ready at %s 0x%02x", c.Device, c.Address)
	return dev, nil
}

// Setup applies the board settings to dev.
func (c *Config) Setup(dev *picoborg.Device) error {
	if err := dev.SetEPOIgnore(c.EPOIgnore); err != nil {
		return err
	}
	if err := dev.SetCommsFailsafe(c.Failsafe); err != nil {
		return err
	}
	return dev.StopMotors()
}

// NewController creates a controller using the config.
func (c *Config) NewController(reg l1.Registrar, dev *picoborg.Device) *Controller {
	ctl := NewController(reg, dev)
	ctl.StatusInterval = c.StatusInterval
	ctl.Drive = c.Drive
	ctl.failsafe = c.Failsafe
	return ctl
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
