// Package config loads and watches the sensorfusion configuration.
//
// Top-level types:
//   - Config: input/output paths, optional metrics snapshot path, range
//     limits, stuck threshold, fusion parameters and logging
//   - Limits: optional high/low bounds (nil means unchecked)
//   - FusionConfig: q_support_value and principal_component_ratio as
//     whole percentages
//   - LogConfig: level (debug|info|warn|error) and format (json|text)
//
// Load(path) reads the YAML file over the defaults, then applies
// environment overrides (SENSORFUSION_*). Validate is called separately,
// after CLI flags are layered on. LoadDotEnv loads an optional
// .env file into the process environment before Load is called.
//
// Watch(ctx, paths, onChange) uses fsnotify to report writes to any of the
// given files. It watches their parent directories so atomic-save editors
// (rename over the file) keep being tracked.
package config
