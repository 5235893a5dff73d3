package client

import (
	"os"

	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Environment variables overriding the configuration file
const (
	EnvPlatform = "EVENTQR_PLATFORM"
	EnvBaseURL  = "EVENTQR_BASE_URL"
)

// LoadConfig builds the client configuration. The defaults are overlaid by the configuration file (if filename is not
// empty) and then by the environment. A .env file in the working directory is read into the environment first
func LoadConfig(filename string, logger *logrus.Entry) (*models.ClientConfig, error) {
	conf := models.GetDefaultClientConfig()
	if filename != "" {
		logger.WithField(log.FldFile, filename).Debug("Loading client configuration file")
		if err := models.ReadConfigFile(filename, conf); err != nil {
			return nil, errors.Wrap(err, "LoadConfig")
		}
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "LoadConfig: Failed to read .env file")
	}
	if v := os.Getenv(EnvPlatform); v != "" {
		conf.Platform = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		conf.BaseURL = v
	}
	return conf, nil
}

// EndpointFromConfig resolves the endpoint once from the configuration
func EndpointFromConfig(conf *models.ClientConfig) (Endpoint, error) {
	platform := DetectPlatform()
	if conf.Platform != "" {
		p, err := ParsePlatform(conf.Platform)
		if err != nil {
			return Endpoint{}, errors.Wrap(err, "EndpointFromConfig")
		}
		platform = p
	}
	return Endpoint{Platform: platform, BaseURL: conf.BaseURL}, nil
}
