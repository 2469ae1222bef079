package cli

// Command descriptions
const (
	MsgRootShort = "Compile Soy templates and render them to build artifacts"
	MsgRootLong  = `soyforge compiles a set of Closure Template (Soy) files together with a
file of compile-time globals, then renders named templates to files on disk.

The same inputs always produce byte-identical outputs. Projects describe their
sources, globals and artifacts in a soyforge.toml manifest; see
'soyforge help manifest'.`

	MsgBuildShort   = "Render every artifact in the manifest"
	MsgBuildLong    = "Build compiles all template sources once, then renders and writes each artifact listed in the manifest. The first failure stops the build."
	MsgBuildExample = `  soyforge build                      # Use ./soyforge.toml
  soyforge build -c site/forge.toml   # Use another manifest
  soyforge build --dry-run            # Render without writing
  soyforge build --workers 4          # Process four artifacts at a time`

	MsgListShort   = "List compiled templates and their params"
	MsgListExample = `  soyforge list
  soyforge list --globals`

	MsgRenderShort   = "Render one template to stdout or a file"
	MsgRenderExample = `  soyforge render windmill.templates.logo
  soyforge render windmill.templates.logo --set size=32 --out logo.svg
  soyforge render site.page --data page.yaml`

	MsgInitShort = "Write a starter soyforge.toml"
	MsgInitLong  = "Init writes a commented starter manifest to soyforge.toml in the current directory. It never overwrites an existing file."

	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Write the man page to stdout"
)

// Flag descriptions
const (
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig     = "Manifest file (default: soyforge.toml in the current directory)"
	MsgFlagDryRun     = "Render everything but write nothing"
	MsgFlagWorkers    = "Artifacts processed concurrently (overrides output.workers)"
	MsgFlagCreateDirs = "Create missing destination directories"
	MsgFlagGlobals    = "Also list global bindings"
	MsgFlagSet        = "Template param as key=value (repeatable)"
	MsgFlagData       = "YAML or JSON file with template params"
	MsgFlagOut        = "Write to this file instead of stdout"
	MsgFlagEncoding   = "Encoding for --out (IANA name)"
	MsgFlagCommented  = "Comment out every value in the starter manifest"
)

// Output messages
const (
	MsgArtifactWritten = "  ✓ %s  %s  (%d bytes, %s)\n"
	MsgArtifactDryRun  = "  · %s  %s  (%d bytes, %s)\n"
	MsgBuildSummary    = "\n%d artifact(s), %d bytes in %s\n"
	MsgDryRunNotice    = "\nDRY RUN MODE - No files were written"
	MsgNoTemplates     = "No templates found."
	MsgNoGlobals       = "No globals defined."
	MsgInitWritten     = "Created %s\n"
	MsgVersionFormat   = "soyforge version %s\n  commit: %s\n  built:  %s\n"
)

// Error messages
const (
	MsgErrStageFailed    = "%s failed: %s"
	MsgErrBadSet         = "invalid --set %q, expected key=value"
	MsgErrManifestExists = "%s already exists"
)
