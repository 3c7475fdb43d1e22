// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package config

import (
	"os"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pinrail/pinrail-go/refresh"
	"github.com/pinrail/pinrail-go/utils"
)

// Duration is time.Duration with "60s"-style YAML syntax.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", node.Value)
	}
	*d = Duration(parsed)
	return nil
}

// Config is everything the sync layer needs to run against a deployment.
//
// Config should be abbreviated as `conf`.
type Config struct {
	// APIURL is the base URL of the content-management API.
	APIURL string `yaml:"api_url" env:"PINRAIL_API_URL"`

	// RealtimeURL is the websocket endpoint for the push transport. Empty
	// disables realtime; the sync layer then converges on polling alone.
	RealtimeURL string `yaml:"realtime_url" env:"PINRAIL_REALTIME_URL"`

	// Token is the API bearer token. Its subject claim is the user identity
	// the whole session is scoped to.
	Token string `yaml:"token" env:"PINRAIL_TOKEN"`

	// SelectionPath is the bbolt file persisting the selected-workspace
	// pointer across restarts.
	SelectionPath string `yaml:"selection_path" env:"PINRAIL_SELECTION_PATH"`

	StaleAfter   Duration `yaml:"stale_after" env:"PINRAIL_STALE_AFTER"`
	Debounce     Duration `yaml:"refresh_debounce" env:"PINRAIL_REFRESH_DEBOUNCE"`
	PollInterval Duration `yaml:"poll_interval" env:"PINRAIL_POLL_INTERVAL"`
}

func Default() Config {
	return Config{
		APIURL:       "https://api.pinrail.com",
		StaleAfter:   Duration(60 * time.Second),
		Debounce:     Duration(2 * time.Second),
		PollInterval: Duration(5 * time.Minute),
	}
}

// Load layers: defaults, then the YAML file (optional, a missing path is not
// an error), then environment overrides.
func Load(path string) (Config, error) {
	conf := Default()

	if path != "" {
		bb, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return conf, errors.Wrapf(err, "failed to read config %s", path)
		default:
			if err = yaml.Unmarshal(bb, &conf); err != nil {
				return conf, errors.Wrapf(err, "failed to parse config %s", path)
			}
		}
	}

	err := env.ParseWithOptions(&conf, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(Duration(0)): func(v string) (interface{}, error) {
				parsed, err := time.ParseDuration(v)
				return Duration(parsed), err
			},
		},
	})
	if err != nil {
		return conf, errors.Wrap(err, "failed to parse environment overrides")
	}

	return conf, conf.Validate()
}

func (conf Config) Validate() error {
	if conf.APIURL == "" {
		return utils.NewInvalidError("api_url must be set")
	}
	if conf.StaleAfter <= 0 || conf.Debounce <= 0 || conf.PollInterval <= 0 {
		return utils.NewInvalidError("stale_after, refresh_debounce and poll_interval must be positive")
	}
	return nil
}

// RefreshOptions maps the config onto the per-collection sync knobs.
func (conf Config) RefreshOptions() refresh.Options {
	return refresh.Options{
		StaleAfter:   time.Duration(conf.StaleAfter),
		Debounce:     time.Duration(conf.Debounce),
		PollInterval: time.Duration(conf.PollInterval),
	}
}
