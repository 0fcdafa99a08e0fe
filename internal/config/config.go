// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("DEALERDESK_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	applyEnvOverrides(&c)

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to merge json config from env")
	}

	return c, nil
}

// applyEnvOverrides reads the deploy-time values that usually arrive through
// the environment rather than the config file: backend selection and
// credentials.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("DEALERDESK_REMOTE_DSN"); v != "" {
		c.Storage.Remote.DSN = v
	}

	if v := os.Getenv("DEALERDESK_BLOB_TOKEN"); v != "" {
		c.Storage.Blob.Token = v
	}

	if v := os.Getenv("DEALERDESK_BLOB_ENDPOINT"); v != "" {
		c.Storage.Blob.Endpoint = v
	}

	if v := os.Getenv("DEALERDESK_BLOB_KEY"); v != "" {
		c.Storage.Blob.Key = v
	}

	if os.Getenv("DEALERDESK_RESTRICTED") != "" {
		c.Storage.Restricted = true
	}

	if os.Getenv("DEALERDESK_EPHEMERAL") != "" {
		c.Storage.Ephemeral = true
	}
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings and fill defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Storage.Blob.Token != "" && c.Storage.Blob.Endpoint == "" {
		return errors.Wrap(ErrBlobEndpointEmpty, invalidErrMessage)
	}

	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data"
	}

	if c.Storage.FileName == "" {
		c.Storage.FileName = "app.snapshot"
	}

	if c.Storage.Blob.Key == "" {
		c.Storage.Blob.Key = "app.snapshot"
	}

	if c.Storage.Blob.Access == "" {
		c.Storage.Blob.Access = "private"
	}

	return nil
}
