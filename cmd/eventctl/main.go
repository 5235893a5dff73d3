// Package main provides eventctl, a command line client for the event server
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/derWhity/eventqr/internal/client"
	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	appName    = "eventctl"
	appVersion = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries everything the subcommands share. It is filled by the root command before any subcommand runs
type app struct {
	configFile string
	platform   string
	baseURL    string
	timeout    time.Duration
	verbose    bool

	logger   *logrus.Entry
	conf     *models.ClientConfig
	endpoint client.Endpoint
	api      *client.HTTPClient
	lookup   *client.Lookup
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Browse and create events",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Configuration file (JSON or YAML)")
	flags.StringVar(&a.platform, "platform", "", "Platform to resolve the endpoint for (android-emulator, ios-simulator, other)")
	flags.StringVar(&a.baseURL, "base-url", "", "Event endpoint to use instead of the platform default")
	flags.DurationVar(&a.timeout, "timeout", 0, "Time limit for each request (overrides the configured timeouts)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug messages")

	cmd.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newProfilesCmd(a),
		newProfileCmd(a),
	)
	return cmd
}

// setup resolves configuration, endpoint and API clients once for the command being run. Flags override the
// configuration file and the environment
func (a *app) setup(cmd *cobra.Command) error {
	l := logrus.New()
	l.SetOutput(cmd.ErrOrStderr())
	l.SetLevel(logrus.WarnLevel)
	if a.verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	a.logger = logrus.NewEntry(l).WithField(log.FldVersion, appVersion)

	conf, err := client.LoadConfig(a.configFile, a.logger)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("platform") {
		conf.Platform = a.platform
	}
	if cmd.Flags().Changed("base-url") {
		conf.BaseURL = a.baseURL
	}
	if cmd.Flags().Changed("timeout") {
		if a.timeout < 0 {
			return errors.Errorf("timeout must not be negative: %s", a.timeout)
		}
		conf.LoadTimeout = models.Duration(a.timeout)
		conf.SubmitTimeout = models.Duration(a.timeout)
	}
	a.conf = conf

	if a.endpoint, err = client.EndpointFromConfig(conf); err != nil {
		return err
	}
	a.logger = a.logger.WithField(log.FldPlatform, a.endpoint.Platform)
	a.logger.WithField(log.FldURL, a.endpoint.URL()).Debug("Endpoint resolved")

	if a.api, err = client.NewHTTPClient(a.endpoint.URL(), nil, a.logger); err != nil {
		return err
	}
	a.lookup, err = client.NewLookup(a.endpoint.URL(), nil, conf.LoadTimeout.Std(), a.logger)
	return err
}
