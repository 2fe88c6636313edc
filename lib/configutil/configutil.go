package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// candidates lists the config files merged for a given name, lowest
// priority first: <name>.<ext> then <name>.local.<ext>.
func candidates(name string) []string {
	dirname := filepath.Dir(name)
	prefix, ext := splitExt(filepath.Base(name))
	return []string{
		name,
		filepath.Join(dirname, fmt.Sprintf("%s.local.%s", prefix, ext)),
	}
}

// ReadConfig reads a json5 configuration file, `name` should come with a
// file extension. A sibling `<name>.local.<ext>` file, when present, is
// merged on top so deployments can override checked-in defaults.
func ReadConfig[T any](name string) (T, error) {
	var out T

	found := 0
	for i, path := range candidates(name) {
		contents, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return out, err
		}

		var layer T
		err = json5.Unmarshal(contents, &layer)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", path, err)
		}

		if i > 0 {
			slog.Info("merging config with local overrides", "local", path)
		}
		err = mergo.Merge(&out, layer, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		found++
	}

	if found == 0 {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively is ReadConfig but it walks up the filesystem until the
// root to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	root, err := filepath.Abs("/")
	if err != nil {
		return defaultOut, err
	}
	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for current != root {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if os.IsNotExist(err) {
			current = filepath.Join(current, "..")
			continue
		}
		if err != nil {
			return defaultOut, err
		}
		return config, nil
	}

	return defaultOut, os.ErrNotExist
}
