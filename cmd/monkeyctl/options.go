package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/monkeywire/internal/config"
	"github.com/danmuck/monkeywire/internal/monkey"
	"github.com/spf13/pflag"
)

const userAppFlag = "--user-app"

type options struct {
	configPath string
	scripts    []string
	adminAddr  string
	recordOut  string
	maxPending int

	maxPendingSet bool
	app           string
	appArgs       []string
}

// splitArgs separates driver flags from the application command line. The
// first --user-app names the application; everything after its path is
// passed through untouched.
func splitArgs(argv []string) (driver []string, app string, appArgs []string, err error) {
	for i, arg := range argv {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, userAppFlag+"="); ok {
			if v == "" {
				return nil, "", nil, fmt.Errorf("%s requires a path", userAppFlag)
			}
			return argv[:i], v, append([]string{}, argv[i+1:]...), nil
		}
		if arg == userAppFlag {
			if i+1 >= len(argv) || argv[i+1] == "" {
				return nil, "", nil, fmt.Errorf("%s requires a path", userAppFlag)
			}
			return argv[:i], argv[i+1], append([]string{}, argv[i+2:]...), nil
		}
	}
	return argv, "", nil, nil
}

func parseOptions(argv []string) (options, error) {
	driver, app, appArgs, err := splitArgs(argv)
	if err != nil {
		return options{}, err
	}

	opts := options{app: app, appArgs: appArgs}
	fs := pflag.NewFlagSet("monkeyctl", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: monkeyctl [flags] %s path [app args...]\n", userAppFlag)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "", "monkeyctl config file (toml)")
	fs.StringArrayVar(&opts.scripts, "script", nil, "script file to replay; repeatable")
	fs.StringVar(&opts.adminAddr, "admin-addr", "", "admin http listen address")
	fs.StringVar(&opts.recordOut, "record-out", "", "write the recording to this file on exit")
	fs.IntVar(&opts.maxPending, "max-pending", config.DefaultMaxPendingBytes, "max unparsed bytes retained from the app")
	if err := fs.Parse(driver); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments before %s: %v", userAppFlag, fs.Args())
	}
	opts.maxPendingSet = fs.Changed("max-pending")
	return opts, nil
}

// resolveConfig loads the optional config file and applies flag overrides.
func resolveConfig(opts options) (config.MonkeyConfig, error) {
	cfg := config.DefaultMonkeyConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadMonkeyConfig(opts.configPath)
		if err != nil {
			return config.MonkeyConfig{}, err
		}
		cfg = loaded
	}

	if opts.app != "" {
		cfg.App = opts.app
		cfg.Args = opts.appArgs
	}
	cfg.Scripts = append(cfg.Scripts, opts.scripts...)
	if opts.adminAddr != "" {
		cfg.AdminAddr = opts.adminAddr
	}
	if opts.recordOut != "" {
		cfg.RecordingPath = opts.recordOut
	}
	if opts.maxPendingSet {
		cfg.MaxPendingBytes = opts.maxPending
	}

	if err := config.ValidateMonkeyConfig(cfg); err != nil {
		return config.MonkeyConfig{}, err
	}
	if strings.TrimSpace(cfg.App) == "" {
		return config.MonkeyConfig{}, monkey.ErrAppRequired
	}
	return cfg, nil
}
