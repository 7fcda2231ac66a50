// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the addrcrawl command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/douira/vodafone-api-crawl/internal/address"
	"github.com/douira/vodafone-api-crawl/internal/config"
	"github.com/douira/vodafone-api-crawl/internal/i18n"
	"github.com/douira/vodafone-api-crawl/internal/logger"
	"github.com/douira/vodafone-api-crawl/internal/presenter"
	"github.com/douira/vodafone-api-crawl/internal/server"
	"github.com/douira/vodafone-api-crawl/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `Usage: addrcrawl [-config file] <command> [flags]

Commands:
  current                                     print the address at the current position
  extid -postcode P -street S -housenumber N  print the address with its map element id
  radius [-origin id] [-radius meters]        list all addresses around an origin
  serve [-listen addr]                        serve the JSON API
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("failed to load .env file", logger.Err(err))
		os.Exit(1)
	}

	confPath := flag.String("config", "", "path to the config file")
	flag.Usage = func() { _, _ = fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	log = logger.New(conf.LogLevel)
	t, lang, err := i18n.New(conf.Locale)
	if err != nil {
		log.Error("failed to initialize localizer", logger.Err(err))
		os.Exit(1)
	}

	serv, err := service.New(ctx, conf, log, lang)
	if err != nil {
		log.Error("failed to initialize address service", logger.Err(err))
		os.Exit(1)
	}

	log.Debug(t.Get("starting addrcrawl"), slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	app := &cli{conf: conf, logger: log, service: serv, presenter: presenter.New(t), out: os.Stdout}
	err = app.run(ctx, flag.Args())
	if closeErr := serv.Close(); closeErr != nil {
		log.Error("failed to close address service", logger.Err(closeErr))
	}
	if err != nil {
		if errors.Is(err, errUsage) {
			_, _ = fmt.Fprintf(os.Stderr, "%s\n\n%s", err, usage)
			os.Exit(2)
		}
		log.Error(t.Get("failed to run addrcrawl"), logger.Err(err))
		os.Exit(1)
	}
	log.Debug(t.Get("shutting down addrcrawl"))
}

type cli struct {
	conf      *config.Config
	logger    *logger.Logger
	service   *service.Service
	presenter *presenter.Presenter
	out       io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "current":
		addr, err := c.service.CurrentAddress(ctx)
		if err != nil {
			return err
		}
		return c.presenter.Address(c.out, addr)
	case "extid":
		flags := flag.NewFlagSet(cmd, flag.ContinueOnError)
		var addr address.Address
		flags.StringVar(&addr.Postcode, "postcode", "", "postcode of the address")
		flags.StringVar(&addr.Street, "street", "", "street of the address")
		flags.StringVar(&addr.HouseNumber, "housenumber", "", "house number of the address")
		if err := flags.Parse(args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		if addr.Postcode == "" || addr.Street == "" || addr.HouseNumber == "" {
			return fmt.Errorf("%w: postcode, street and housenumber are required", errUsage)
		}
		result, err := c.service.ExternalID(ctx, addr)
		if err != nil {
			return err
		}
		return c.presenter.Address(c.out, result)
	case "radius":
		flags := flag.NewFlagSet(cmd, flag.ContinueOnError)
		origin := flags.String("origin", "", "map element id to search around, defaults to the current address")
		meters := flags.Float64("radius", c.conf.Radius.Default, "search radius in meters")
		if err := flags.Parse(args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}

		var addrs []address.Address
		var err error
		if *origin == "" {
			addrs, err = c.service.AddressesAroundCurrent(ctx, *meters)
		} else {
			originID, parseErr := service.ParseExternalID(*origin)
			if parseErr != nil {
				return fmt.Errorf("%w: %w", errUsage, parseErr)
			}
			addrs, err = c.service.AddressesInRadius(ctx, originID, *meters)
		}
		if err != nil {
			return err
		}
		return c.presenter.AddressTable(c.out, addrs)
	case "serve":
		flags := flag.NewFlagSet(cmd, flag.ContinueOnError)
		listen := flags.String("listen", c.conf.Server.Listen, "address the API listens on")
		if err := flags.Parse(args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		return server.New(c.service, c.logger, c.conf.Server.AllowedOrigins).ListenAndServe(ctx, *listen)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// loadConfig reads the config file at path, the default config file or the environment only,
// in that order of preference.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.NewFromFile(filepath.Dir(path), filepath.Base(path))
	}
	if dir, file := findConfigFile(); dir != "" && file != "" {
		return config.NewFromFile(dir, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "addrcrawl", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
