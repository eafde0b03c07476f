package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/binary"
	"github.com/ZebulonRouseFrantzich/suiup/internal/catalog"
	"github.com/ZebulonRouseFrantzich/suiup/internal/config"
	"github.com/ZebulonRouseFrantzich/suiup/internal/git"
	"github.com/ZebulonRouseFrantzich/suiup/internal/output"
	"github.com/ZebulonRouseFrantzich/suiup/internal/paths"
	"github.com/ZebulonRouseFrantzich/suiup/internal/platform"
	"github.com/ZebulonRouseFrantzich/suiup/internal/service"
	"github.com/ZebulonRouseFrantzich/suiup/internal/shell"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
	"github.com/ZebulonRouseFrantzich/suiup/internal/transaction"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	printer  *output.Printer
	layout   paths.Layout
	settings config.Settings
	logger   config.Logger
	orch     *service.Orchestrator
	progress *output.DownloadProgress
	parser   spec.Parser
	cmd      *cobra.Command
}

// newApp resolves the layout and wires the orchestrator for one command
// invocation.
func newApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	printer := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	printer.SetNoColor(flags.noColor)
	printer.SetVerbose(flags.verbose)

	level := os.Getenv(config.EnvLogLevel)
	if flags.verbose {
		level = "debug"
	}
	logger := config.NewLogger(cmd.ErrOrStderr(), level)

	layout, err := paths.FromEnv()
	if err != nil {
		return nil, err
	}

	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := config.NewParser(platform.StaticDetector{Info: info}).ParseFile(ctx, layout.SettingsFile())
	if err != nil {
		return nil, err
	}
	settings = settings.ApplyEnv(os.Getenv)
	if settings.DefaultBinDir != "" && os.Getenv(paths.EnvDefaultBinDir) == "" {
		layout.DefaultBinDir = settings.DefaultBinDir
	}
	if err := layout.EnsureDirs(); err != nil {
		return nil, err
	}
	logger.Debug("resolved layout", "data", layout.DataDir, "config", layout.ConfigDir,
		"cache", layout.CacheDir, "bin", layout.DefaultBinDir, "os", info.OS, "arch", info.Arch, "distro", info.Platform)

	dlOpts := []binary.DownloaderOption{
		binary.WithTimeout(settings.HTTPTimeout),
		binary.WithRetries(settings.Retries),
		binary.WithToken(settings.GitHubToken),
		binary.WithLogger(logger),
	}
	var progress *output.DownloadProgress
	if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		progress = output.NewDownloadProgress(f)
		dlOpts = append(dlOpts, binary.WithProgress(progress.Update))
	}

	releases := catalog.NewClient(
		catalog.WithToken(settings.GitHubToken),
		catalog.WithHTTPClient(&http.Client{Timeout: settings.HTTPTimeout}),
		catalog.WithCache(catalog.NewDiskCache(layout.CatalogDir(), catalog.RealClock{})),
		catalog.WithLogger(logger),
	)

	orch := service.New(service.Options{
		Layout:    layout,
		Platform:  info,
		Catalog:   releases,
		Fetcher:   binary.NewDownloader(dlOpts...),
		Extractor: binary.NewExtractor(),
		Builder:   binary.NewCargoBuilder(nil, nil, logger).WithBranchResolver(git.NewResolver(nil)),
		Logger:    logger,
	})

	return &app{
		printer:  printer,
		layout:   layout,
		settings: settings,
		logger:   logger,
		orch:     orch,
		progress: progress,
		parser:   spec.Parser{DefaultChannel: settings.DefaultChannel},
		cmd:      cmd,
	}, nil
}

// parse parses a specifier against the configured default channel and
// applies the command-line options.
func (a *app) parse(s string, opts spec.Options) (spec.BinarySpec, error) {
	parsed, err := a.parser.Parse(s)
	if err != nil {
		return spec.BinarySpec{}, err
	}
	return parsed.Apply(opts)
}

// lock takes the command lock for a mutating command.
func (a *app) lock(ctx context.Context) (*transaction.Lock, error) {
	l, err := transaction.AcquireLock(ctx, a.layout.LockDir())
	if errors.Is(err, transaction.ErrLockExists) {
		return nil, &apperr.Error{
			Message: err.Error(),
			Hint:    fmt.Sprintf("Wait for it to finish, or delete %s if no suiup process is running", a.layout.LockDir()),
		}
	}
	return l, err
}

// release drops the command lock, logging rather than failing on error.
func (a *app) release(l *transaction.Lock) {
	if err := l.Release(); err != nil {
		a.logger.Warn("failed to release lock", "error", err)
	}
}

func (a *app) finishProgress() {
	if a.progress != nil {
		a.progress.Finish()
	}
}

// confirmer uses promptui on the process stdin and a plain line reader for
// any other input, which is what tests inject.
func (a *app) confirmer(assumeYes bool) *output.Confirmer {
	assumeYes = assumeYes || a.settings.AssumeYes
	if a.cmd.InOrStdin() == os.Stdin {
		return output.NewConfirmer(assumeYes)
	}
	return output.NewLineConfirmer(a.cmd.InOrStdin(), a.cmd.OutOrStdout(), assumeYes)
}

// reportPromotion prints the outcome of a promotion, any earlier promotion
// that never finished, and a PATH hint when the default directory is not
// reachable from the shell.
func (a *app) reportPromotion(ctx context.Context, res *service.PromoteResult) {
	for _, p := range res.Interrupted {
		a.printer.Warn("an earlier promotion did not finish (%s); the default binary may not match default_version.json", p.Describe())
	}

	name := res.Record.Binary
	if res.Record.Debug {
		name += " (debug)"
	}
	a.printer.Success("Default %s set to %s from %s", name,
		output.Highlight(res.Record.Version), output.Highlight(res.Record.Channel))
	a.warnIfNotOnPath(ctx)
}

// warnIfNotOnPath tells the user how to add the default bin directory to
// PATH when their shell cannot see it yet.
func (a *app) warnIfNotOnPath(ctx context.Context) {
	dir := a.layout.DefaultBinDir
	if shell.OnPath(dir, os.Getenv("PATH"), runtime.GOOS) {
		return
	}
	a.printer.Warn("%s is not in your PATH", dir)
	if runtime.GOOS == "windows" {
		a.printer.Info("Add %s to your user PATH in the system environment settings.", dir)
		return
	}

	detected, err := shell.NewDetector().Detect(ctx)
	if err != nil {
		a.logger.Debug("shell detection failed", "error", err)
		detected = &shell.DetectionResult{Shell: shell.Unknown}
	}
	home, _ := os.UserHomeDir()
	hint, err := shell.Hint(detected.Shell, dir, home)
	if err != nil {
		a.logger.Debug("cannot inspect shell rc file", "error", err)
	}
	switch {
	case hint.Configured:
		a.printer.Info("%s already adds it; open a new shell to pick it up.", hint.RCFile)
	case hint.RCFile != "":
		a.printer.Info("Add this line to %s:\n  %s", hint.RCFile, hint.Line)
	default:
		a.printer.Info("Add this line to your shell startup file:\n  %s", hint.Line)
	}
}
