package main

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	eventqr "github.com/derWhity/eventqr/internal"
	"github.com/derWhity/eventqr/internal/calendar"
	"github.com/derWhity/eventqr/internal/ctxhelper"
	"github.com/derWhity/eventqr/internal/log"
	"github.com/derWhity/eventqr/internal/migrate"
	"github.com/derWhity/eventqr/internal/qrcode"
	eventrepo "github.com/derWhity/eventqr/internal/repos/event/sqlite"
	profilerepo "github.com/derWhity/eventqr/internal/repos/profile/inmem"
	"github.com/jmoiron/sqlx"
	"github.com/kardianos/osext"
	_ "github.com/mattn/go-sqlite3" // Just needed for the sqlite driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"golang.org/x/net/context"
)

const (
	appName    = "EventQR"
	appVersion = "0.1.0"
	dbFile     = "eventqr.db"
)

// Checks and tries to create the given directory recursively (or panics if this fails)
func checkAndCreateDir(path string, logger *logrus.Entry) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WithField(log.FldPath, path).Info("Directory does not exist - trying to create...")
			if err = os.MkdirAll(path, os.ModePerm); err != nil {
				logger.WithError(err).Fatal("Failed to create directory")
			}
			logger.Info("Directory created successfully")
		} else {
			logger.WithError(err).Fatal("Stat has failed")
		}
	} else {
		if !fileInfo.IsDir() {
			logger.Fatalf("'%s' is not a directory. Remove the plain file if you want to continue", path)
		}
	}
}

// calendarDomain returns the host name the calendar UIDs are made unique with
func calendarDomain(publicURL string) string {
	if u, err := url.Parse(publicURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "localhost"
}

func main() {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		panic(err)
	}

	configFile := flag.StringP(
		"config",
		"c",
		filepath.Join(execDir, "config.json"),
		"The configuration file to load the application's configuration from",
	)
	debug := flag.Bool("debug", false, "Log debug messages")
	flag.Parse()

	ctx := context.Background()

	// Initialize the logger
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logger := logrus.WithField(log.FldVersion, appVersion)
	logger.Infof("%s version %s is starting up...", appName, appVersion)
	ctx = context.WithValue(ctx, ctxhelper.KeyLogger, logger)

	// Load the main configuration file
	cs := eventqr.NewConfigService(*configFile)
	if err := cs.Load(ctx); err != nil {
		logger.WithError(err).Error("Cannot load config. Using defaults")
	}
	conf := cs.GetConfig(ctx)

	logger.Infof("Using '%s' as data directory", conf.DataDir)
	checkAndCreateDir(conf.DataDir, logger)

	// Set up the database connection and perform pending migrations
	dbFileName := path.Join(conf.DataDir, dbFile)
	var db *sqlx.DB
	if db, err = sqlx.Open("sqlite3", dbFileName); err != nil {
		logger.WithError(err).Fatal("Failed to open database connection")
	}
	defer db.Close()
	logger.Info("Performing database migrations...")
	if err = migrate.ExecuteMigrationsOnDb(db, logger); err != nil {
		logger.WithError(err).Fatal("Database migration has failed. Please check database for consistency and try again.")
	}

	eventRepo := eventrepo.New(db, logger)
	profileRepo, err := profilerepo.New(profilerepo.DefaultProfiles...)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up the profile list")
	}
	codes, err := qrcode.NewStore(conf.MediaDir(), conf.PublicURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up the QR code image directory")
	}

	instrument, err := eventqr.NewInstrumentingMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up metrics")
	}
	evSrv := instrument(eventqr.NewEventService(eventRepo, codes, logger))
	prSrv := eventqr.NewProfileService(profileRepo, logger)
	hSrv := eventqr.NewHealthService(db, appVersion)

	httpLogger := logger.WithField(log.FldTransport, "HTTP")

	h := eventqr.MakeHTTPHandler(
		evSrv,
		prSrv,
		hSrv,
		calendar.Feed{
			ProductID: fmt.Sprintf("-//%s//%s//EN", appName, appVersion),
			Domain:    calendarDomain(conf.PublicURL),
			Location:  time.Local,
		},
		codes.Dir(),
		promhttp.Handler(),
		httpLogger,
	)
	srv := &http.Server{
		Addr:              conf.ListenAddress,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start listening
	errs := make(chan error, 2)

	// Listen for stop signals that will end the service
	go func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		err := fmt.Errorf("%s", <-c)
		logger.Info("Caught signal to stop. Shutting down.")
		daemon.SdNotify(false, daemon.SdNotifyStopping)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Open connections have been cut")
		}
		errs <- err
	}()

	go func() {
		httpLogger.WithField("addr", conf.ListenAddress).Info("Starting listening port")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errs <- err
		}
	}()

	// Watchdog for systemd
	go func() {
		interval, err := daemon.SdWatchdogEnabled(false)
		if err != nil || interval == 0 {
			return
		}
		logger.Info("Activating systemd watchdog goroutine")
		_, port, err := net.SplitHostPort(conf.ListenAddress)
		if err != nil {
			logger.WithError(err).Error("Cannot derive the health check URL. Watchdog disabled")
			return
		}
		healthURL := fmt.Sprintf("http://127.0.0.1:%s/health", port)
		for {
			if res, err := http.Get(healthURL); err == nil {
				res.Body.Close()
				if res.StatusCode == http.StatusOK {
					daemon.SdNotify(false, daemon.SdNotifyWatchdog)
				}
			}
			time.Sleep(interval / 3)
		}
	}()

	// Notify systemd that we are ready to go (if available)
	daemon.SdNotify(false, daemon.SdNotifyReady)

	logger.WithError(<-errs).Error("Shutdown complete")
}
