package wallet

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SupportedSettings are the top-level settings keys Configure understands.
// Anything else is dropped on input.
var SupportedSettings = []string{"wallet", "currency"}

// WalletSettings locates the custodial service.
type WalletSettings struct {
	URI     string `yaml:"uri" json:"uri"`
	Address string `yaml:"address" json:"address"`
}

// CurrencySettings describes the single currency a Gateway serves.
type CurrencySettings struct {
	ID         string          `yaml:"id" json:"id"`
	BaseFactor decimal.Decimal `yaml:"base_factor" json:"base_factor"`
	Options    map[string]any  `yaml:"options" json:"options"`
}

// Settings is what Configure accepts. A nil section is a missing setting.
type Settings struct {
	Wallet   *WalletSettings   `yaml:"wallet" json:"wallet,omitempty"`
	Currency *CurrencySettings `yaml:"currency" json:"currency,omitempty"`
}

// Features are host-facing capability flags.
type Features struct {
	SkipDepositCollection bool `yaml:"skip_deposit_collection" json:"skip_deposit_collection"`
}

// DefaultFeatures returns the feature set used when nothing overrides it.
func DefaultFeatures() Features {
	return Features{SkipDepositCollection: true}
}

// SettingsFromMap keeps the recognised keys of an untyped settings map and
// drops the rest.
func SettingsFromMap(m map[string]any) (Settings, error) {
	known := make(map[string]any, len(SupportedSettings))
	for _, key := range SupportedSettings {
		if v, ok := m[key]; ok {
			known[key] = v
		}
	}
	var s Settings
	if err := remarshal(known, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// File is the on-disk gateway configuration.
type File struct {
	Features Features `yaml:"features"`
	Settings Settings `yaml:"settings"`
}

// LoadFile reads a YAML gateway configuration.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f := File{Features: DefaultFeatures()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

func remarshal(in, out any) error {
	if in == nil {
		return nil
	}
	data, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
