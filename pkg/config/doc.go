// Package config loads the soyforge manifest: which Soy sources to compile,
// where the globals live and which artifacts to render.
//
// Layers are merged in order, later layers winning:
//
//  1. built-in defaults (embedded/defaults.toml)
//  2. the user config, $XDG_CONFIG_HOME/soyforge/config.toml
//  3. the project manifest (an explicit path, or soyforge.toml,
//     .soyforge.toml or soyforge.yaml in the working directory)
//  4. SOYFORGE_* environment variables, with __ separating levels
//     (SOYFORGE_OUTPUT__WORKERS=4)
//  5. overrides passed by the caller, typically from CLI flags
//
// Relative paths in the result are resolved against the manifest's directory.
package config
