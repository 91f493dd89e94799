package updater

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/brave-tools/brave-updater/internal/config"
	"github.com/brave-tools/brave-updater/internal/logger"
	"github.com/brave-tools/brave-updater/internal/release"
	"github.com/brave-tools/brave-updater/internal/repository/marker"
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Target overrides the installation directory.
	Target string
	// Suffix overrides the asset filename suffix filter.
	Suffix string
}

// catalog resolves the newest installable release. Satisfied by
// *release.Resolver; narrowed to an interface so tests can stub it.
type catalog interface {
	Latest(ctx context.Context, suffix string) (*release.Resolved, error)
}

// runner holds the collaborators for a single update execution.
// It is intentionally unexported—call Run(ctx, Options) from callers.
type runner struct {
	cfg        *config.Config    // Immutable configuration resolved at start.
	markers    marker.Repository // Installed-version marker persistence.
	catalog    catalog           // Release catalog client.
	httpClient *http.Client      // Used for the asset download.
}

// Run executes one update pass and is the public entry point for the CLI:
// resolve configuration, probe the installed version, resolve the newest
// release, and either report "no updates" or download, extract, stamp and
// swap the installation.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "brave-updater")

	cfg, err := config.Resolve(opts.ConfigPath, opts.Target, opts.Suffix)
	if err != nil {
		return fmt.Errorf("resolve configuration: %w", err)
	}

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Update run failed", "error", err)
		return err
	}

	return nil
}

// newRunner wires the default collaborators for the resolved configuration.
func newRunner(cfg *config.Config) (*runner, error) {
	resolver, err := release.NewResolver(cfg.Owner, cfg.Repo, cfg.APIBaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create release resolver: %w", err)
	}

	return &runner{
		cfg:     cfg,
		markers: marker.NewFileRepository(cfg.Target),
		catalog: resolver,
		// No per-request timeout; large archive downloads run unbounded.
		httpClient: http.DefaultClient,
	}, nil
}

// run performs the probe → resolve → compare → install sequence.
func (r *runner) run(ctx context.Context) error {
	installed, err := r.markers.Installed(ctx)
	if err != nil {
		return fmt.Errorf("read installed version: %w", err)
	}

	resolved, err := r.catalog.Latest(ctx, r.cfg.Suffix)
	if err != nil {
		return fmt.Errorf("resolve latest release: %w", err)
	}

	if resolved.Name == installed {
		logger.InfoKV(ctx, "No updates, already current", "version", resolved.Name)
		return nil
	}

	warnOnDowngrade(ctx, installed, resolved.Name)

	logger.Infof(ctx, "Upgrading from %s to %s", installed, resolved.Name)

	if err = r.install(ctx, resolved); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installation updated",
		"version", resolved.Name, "target", r.cfg.Target)

	return nil
}

// warnOnDowngrade logs when the resolved release parses older than the
// installed one. Inequality alone gates the update, so the run proceeds.
func warnOnDowngrade(ctx context.Context, installed, resolved string) {
	from := parseVersion(installed)
	to := parseVersion(resolved)

	if from == nil || to == nil {
		return
	}

	if to.LessThan(from) {
		logger.WarnKV(ctx, "Resolved release is older than the installed version",
			"installed", installed, "resolved", resolved)
	}
}

// parseVersion extracts a semantic version from a release label such as
// "Release v1.63.162". Labels without a parseable version yield nil.
func parseVersion(label string) *goversion.Version {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return nil
	}

	v, err := goversion.NewVersion(fields[len(fields)-1])
	if err != nil {
		return nil
	}

	return v
}
