package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"torchcode-go/bus"
	"torchcode-go/errcode"
	"torchcode-go/types"

	"gopkg.in/yaml.v3"
)

const (
	configPrefix = "config"
	ProfileKey   = "profile"
)

// EmbeddedLookup allows overriding how embedded profiles are resolved.
var EmbeddedLookup = func(name string) ([]byte, bool) {
	b, ok := embeddedProfiles[name]
	return b, ok
}

// Names lists the embedded profiles.
func Names() []string {
	out := make([]string, 0, len(embeddedProfiles))
	for k := range embeddedProfiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup decodes, validates and normalises an embedded profile.
func Lookup(name string) (*types.Profile, error) {
	raw, ok := EmbeddedLookup(name)
	if !ok || len(raw) == 0 {
		return nil, &errcode.E{C: errcode.UnknownProfile, Op: "config.lookup", Msg: name}
	}
	var p types.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &errcode.E{C: errcode.InvalidProfile, Op: "config.lookup", Msg: name, Err: err}
	}
	return finish(&p)
}

// LoadFile reads a profile from disk. ".yaml" and ".yml" are decoded with
// yaml.v3, anything else as JSON.
func LoadFile(path string) (*types.Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownProfile, Op: "config.load", Msg: path, Err: err}
	}
	var p types.Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &p)
	default:
		err = json.Unmarshal(raw, &p)
	}
	if err != nil {
		return nil, &errcode.E{C: errcode.InvalidProfile, Op: "config.load", Msg: path, Err: err}
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return finish(&p)
}

// Load resolves nameOrPath as an embedded profile first, then as a file.
func Load(nameOrPath string) (*types.Profile, error) {
	if _, ok := EmbeddedLookup(nameOrPath); ok {
		return Lookup(nameOrPath)
	}
	return LoadFile(nameOrPath)
}

func finish(p *types.Profile) (*types.Profile, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	Normalize(p)
	return p, nil
}

// Publish retains the active profile on config/profile so late subscribers
// can see which board the firmware booted with.
func Publish(conn *bus.Connection, p *types.Profile) {
	conn.Publish(conn.NewMessage(bus.T(configPrefix, ProfileKey), p, true))
}
