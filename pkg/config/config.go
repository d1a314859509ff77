// Package config loads the per-client gate configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/session"
)

// GateKind selects how a client evaluates its session.
type GateKind string

const (
	// GateStatus asks auth_status once per page.
	GateStatus GateKind = "status"
	// GateChain asks one command per lifecycle step.
	GateChain GateKind = "chain"
	// GateOpen never redirects.
	GateOpen GateKind = "open"
)

const DefaultWatch = "@every 30s"

// ClientConfigFile is the structure of a client YAML file.
type ClientConfigFile struct {
	Client string         `yaml:"client"`
	Gate   GateConfigFile `yaml:"gate"`
	Watch  string         `yaml:"watch"`
}

// GateConfigFile overrides parts of the client's default code table. States
// are named as session.State prints them.
type GateConfigFile struct {
	Kind     string            `yaml:"kind"`
	Codes    map[int]string    `yaml:"codes"`
	Fallback string            `yaml:"fallback"`
	Sticky   map[string]string `yaml:"sticky"`
}

type ClientConfig struct {
	Client models.ClientKind
	Gate   GateKind
	Codes  session.CodeTable
	Watch  string
}

// Default is the built-in configuration of client.
func Default(client models.ClientKind) ClientConfig {
	cfg := ClientConfig{Client: client, Watch: DefaultWatch}

	switch client {
	case models.ClientHospital:
		cfg.Gate = GateStatus
		cfg.Codes = session.HospitalCodes()
	case models.ClientPatient:
		cfg.Gate = GateStatus
		cfg.Codes = session.PatientCodes()
	default:
		cfg.Gate = GateOpen
	}

	return cfg
}

// Load reads path and applies it over the defaults of the client it names.
// client is used when the file leaves it out.
func Load(path string, client models.ClientKind) (ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data, client)
}

func Parse(data []byte, client models.ClientKind) (ClientConfig, error) {
	var file ClientConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ClientConfig{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if file.Client != "" {
		kind, err := models.ParseClientKind(file.Client)
		if err != nil {
			return ClientConfig{}, err
		}

		client = kind
	}

	cfg := Default(client)

	if file.Gate.Kind != "" {
		cfg.Gate = GateKind(file.Gate.Kind)
	}

	if file.Watch != "" {
		cfg.Watch = file.Watch
	}

	if err := applyCodes(&cfg.Codes, file.Gate); err != nil {
		return ClientConfig{}, err
	}

	if err := Validate(cfg); err != nil {
		return ClientConfig{}, err
	}

	return cfg, nil
}

// LoadOrDefault falls back to the client's defaults when path is empty or
// cannot be loaded.
func LoadOrDefault(path string, client models.ClientKind) ClientConfig {
	if path == "" {
		return Default(client)
	}

	cfg, err := Load(path, client)
	if err != nil {
		return Default(client)
	}

	return cfg
}

func applyCodes(table *session.CodeTable, gate GateConfigFile) error {
	if len(gate.Codes) > 0 && table.Codes == nil {
		table.Codes = make(map[bridge.RedirectCode]session.State)
	}

	for code, name := range gate.Codes {
		st, err := session.ParseState(name)
		if err != nil {
			return fmt.Errorf("gate.codes[%d]: %w", code, err)
		}

		table.Codes[bridge.RedirectCode(code)] = st
	}

	if gate.Fallback != "" {
		st, err := session.ParseState(gate.Fallback)
		if err != nil {
			return fmt.Errorf("gate.fallback: %w", err)
		}

		table.Fallback = st
	}

	if len(gate.Sticky) > 0 && table.Sticky == nil {
		table.Sticky = make(map[string]session.State)
	}

	for path, name := range gate.Sticky {
		st, err := session.ParseState(name)
		if err != nil {
			return fmt.Errorf("gate.sticky[%s]: %w", path, err)
		}

		table.Sticky[path] = st
	}

	return nil
}

// Validate checks the gate kind fits the client and the watch schedule parses.
func Validate(cfg ClientConfig) error {
	switch cfg.Gate {
	case GateStatus, GateChain:
		if cfg.Client == models.ClientMinistry {
			return errors.New("the ministry client has no session lifecycle; use the open gate")
		}
	case GateOpen:
	default:
		return fmt.Errorf("unknown gate kind '%s'", cfg.Gate)
	}

	if _, err := cron.ParseStandard(cfg.Watch); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	return nil
}
