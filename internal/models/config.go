package models

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/kardianos/osext"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig is the event server's main configuration structure
type AppConfig struct {
	// The directory where the server stores all of its data (database and QR code images) - defaults to the /data
	// subdirectory of the folder the executable resides in
	DataDir string `json:"dataDir" yaml:"dataDir"`
	// The IP address to listen at - including the port number
	ListenAddress string `json:"listenAddress" yaml:"listenAddress"`
	// The URL clients reach this server at. Used for building the QR code image URIs
	PublicURL string `json:"publicUrl" yaml:"publicUrl"`
}

// MediaDir returns the directory the QR code images are written to
func (c AppConfig) MediaDir() string {
	return path.Join(c.DataDir, "media")
}

// ClientConfig configures the event client
type ClientConfig struct {
	// The platform the client runs on - one of "android-emulator", "ios-simulator" or "other". Detected from the
	// operating system when empty
	Platform string `json:"platform" yaml:"platform"`
	// BaseURL overrides the platform-specific default endpoint if set
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
	// How long loading the event list may take before it is aborted
	LoadTimeout Duration `json:"loadTimeout" yaml:"loadTimeout"`
	// How long submitting a new event may take before it is aborted
	SubmitTimeout Duration `json:"submitTimeout" yaml:"submitTimeout"`
	// How long the form stays in its "succeeded" state before it is cleared
	ResetDelay Duration `json:"resetDelay" yaml:"resetDelay"`
}

// GetDefaultConfig returns the default configuration values for the server
func GetDefaultConfig() (*AppConfig, error) {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		return nil, err
	}
	return &AppConfig{
		DataDir:       path.Join(execDir, "data"),
		ListenAddress: ":8000",
		PublicURL:     "http://127.0.0.1:8000",
	}, nil
}

// GetDefaultClientConfig returns the default configuration values for the client
func GetDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		LoadTimeout:   Duration(10 * time.Second),
		SubmitTimeout: Duration(10 * time.Second),
		ResetDelay:    Duration(2 * time.Second),
	}
}

// ReadConfigFile decodes the given configuration file into v. Files ending in .yaml or .yml are read as YAML, all
// others as JSON
func ReadConfigFile(filename string, v interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "ReadConfigFile: cannot load configuration file")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	return errors.Wrap(err, "ReadConfigFile: Failed to decode configuration file")
}

// Duration is a time.Duration that is written as a string like "10s" in configuration files
type Duration time.Duration

// Std returns the duration as time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler. Plain numbers are taken as milliseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "duration must be a string or a number of milliseconds")
	}
	return d.parse(s)
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var ms int64
	if err := value.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "illegal duration '%s'", s)
	}
	*d = Duration(parsed)
	return nil
}
