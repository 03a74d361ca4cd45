package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Build tools write compiled output into directories the graph must never
// index; the defaults (dist, target, build, ...) are covered by the static
// exclusion list, but projects can point their toolchain anywhere. The
// detectors below read the build configuration files at the project root
// and turn declared output directories into doublestar exclusion patterns.

type tsconfigFile struct {
	CompilerOptions struct {
		OutDir string `json:"outDir"`
	} `json:"compilerOptions"`
}

type packageJSONFile struct {
	Scripts map[string]string `json:"scripts"`
	Build   struct {
		OutDir string `json:"outDir"`
	} `json:"build"`
}

type cargoTOMLFile struct {
	Profile map[string]struct {
		TargetDir string `toml:"target-dir"`
	} `toml:"profile"`
}

type pyprojectFile struct {
	Tool struct {
		Poetry struct {
			Build struct {
				TargetDir string `toml:"target-dir"`
			} `toml:"build"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// DetectBuildOutputDirs returns exclusion patterns for every build output
// directory declared by the configuration files found directly under root.
func DetectBuildOutputDirs(root string) []string {
	var dirs []string
	dirs = append(dirs, tsconfigOutDir(root)...)
	dirs = append(dirs, packageJSONOutDirs(root)...)
	dirs = append(dirs, viteOutDir(root)...)
	dirs = append(dirs, cargoTargetDir(root)...)
	dirs = append(dirs, poetryTargetDir(root)...)

	patterns := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.Trim(strings.TrimSpace(d), "/")
		if d != "" {
			patterns = append(patterns, "**/"+d+"/**")
		}
	}
	return patterns
}

func tsconfigOutDir(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "tsconfig.json"))
	if err != nil {
		return nil
	}
	var ts tsconfigFile
	if json.Unmarshal(data, &ts) != nil || ts.CompilerOptions.OutDir == "" {
		return nil
	}
	return []string{ts.CompilerOptions.OutDir}
}

func packageJSONOutDirs(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var pkg packageJSONFile
	if json.Unmarshal(data, &pkg) != nil {
		return nil
	}
	var dirs []string
	if pkg.Build.OutDir != "" {
		dirs = append(dirs, pkg.Build.OutDir)
	}
	for _, script := range pkg.Scripts {
		if d := outDirFlag(script); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// outDirFlag pulls the value of an --outDir/-outDir flag out of an npm
// build script command line.
func outDirFlag(script string) string {
	fields := strings.Fields(script)
	for i, f := range fields {
		if (f == "--outDir" || f == "-outDir") && i+1 < len(fields) {
			return strings.Trim(fields[i+1], `"'`)
		}
	}
	return ""
}

// viteOutDir scans vite.config.{js,ts} for a build.outDir assignment.
// Vite configs are executable JavaScript, so this is a textual scan for
// the common `outDir: 'name'` form, not a parse.
func viteOutDir(root string) []string {
	for _, name := range []string{"vite.config.js", "vite.config.ts"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		content := string(data)
		idx := strings.Index(content, "outDir")
		if idx < 0 {
			continue
		}
		rest := content[idx+len("outDir"):]
		colon := strings.IndexByte(rest, ':')
		if colon < 0 {
			continue
		}
		rest = rest[colon+1:]
		for _, quote := range []byte{'\'', '"'} {
			open := strings.IndexByte(rest, quote)
			if open < 0 {
				continue
			}
			if close := strings.IndexByte(rest[open+1:], quote); close >= 0 {
				if d := strings.TrimSpace(rest[open+1 : open+1+close]); d != "" {
					return []string{d}
				}
			}
		}
	}
	return nil
}

func cargoTargetDir(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return nil
	}
	var cargo cargoTOMLFile
	if toml.Unmarshal(data, &cargo) != nil {
		return nil
	}
	var dirs []string
	for _, profile := range cargo.Profile {
		if profile.TargetDir != "" {
			dirs = append(dirs, profile.TargetDir)
		}
	}
	return dirs
}

func poetryTargetDir(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var py pyprojectFile
	if toml.Unmarshal(data, &py) != nil || py.Tool.Poetry.Build.TargetDir == "" {
		return nil
	}
	return []string{py.Tool.Poetry.Build.TargetDir}
}

// DeduplicatePatterns returns patterns with repeats removed, keeping the
// first occurrence's position.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	out := patterns[:0:0]
	for _, p := range patterns {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
