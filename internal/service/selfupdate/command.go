package selfupdate

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
	goversion "github.com/hashicorp/go-version"

	"github.com/brave-tools/brave-updater/internal/logger"
	"github.com/brave-tools/brave-updater/internal/release"
	"github.com/brave-tools/brave-updater/internal/version"
)

const (
	// defaultOwner and defaultRepo locate the updater's own release catalog.
	defaultOwner = "brave-tools"
	defaultRepo  = "brave-updater"

	// executableMode is applied to the replaced binary.
	executableMode os.FileMode = 0o755
)

// Options are inputs accepted by the selfupdate entry point.
type Options struct {
	// Owner overrides the catalog owner of the updater itself.
	Owner string
	// Repo overrides the catalog repository of the updater itself.
	Repo string
	// APIBaseURL optionally points the catalog client at a mirror.
	APIBaseURL string
}

// Run replaces the running executable with the newest published build of
// the updater, resolved from its own release catalog. The asset is matched
// by a "-GOOS-GOARCH" filename suffix and applied atomically.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "selfupdate")

	owner := opts.Owner
	if owner == "" {
		owner = defaultOwner
	}

	repo := opts.Repo
	if repo == "" {
		repo = defaultRepo
	}

	resolver, err := release.NewResolver(owner, repo, opts.APIBaseURL, nil)
	if err != nil {
		return fmt.Errorf("create release resolver: %w", err)
	}

	suffix := fmt.Sprintf("-%s-%s", runtime.GOOS, runtime.GOARCH)

	resolved, err := resolver.Latest(ctx, suffix)
	if err != nil {
		return fmt.Errorf("resolve latest updater release: %w", err)
	}

	if !updateAvailable(version.Short(), resolved.Name) {
		logger.InfoKV(ctx, "Updater is already current", "version", version.Short())
		return nil
	}

	logger.Infof(ctx, "Updating the updater from %s to %s", version.Short(), resolved.Name)

	if err = apply(ctx, resolved.URL); err != nil {
		return fmt.Errorf("apply updater binary: %w", err)
	}

	logger.InfoKV(ctx, "Updater replaced", "version", resolved.Name)

	return nil
}

// updateAvailable reports whether the resolved release is newer than the
// running build. Unparseable labels fall back to plain inequality.
func updateAvailable(current, resolvedName string) bool {
	label := strings.TrimSpace(strings.TrimPrefix(resolvedName, "Release"))

	from, fromErr := goversion.NewVersion(current)
	to, toErr := goversion.NewVersion(label)

	if fromErr != nil || toErr != nil {
		return label != current
	}

	return to.GreaterThan(from)
}

// apply streams the resolved binary over the running executable.
func apply(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return err
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected http status %s for %s", response.Status, rawURL)
	}

	executable, err := os.Executable()
	if err != nil {
		return err
	}

	options := goupdate.Options{
		TargetPath: executable,
		TargetMode: executableMode,
	}

	if err = goupdate.Apply(response.Body, options); err != nil {
		if rollbackErr := goupdate.RollbackError(err); rollbackErr != nil {
			return fmt.Errorf("rollback failed: %w", rollbackErr)
		}

		return err
	}

	// go-update leaves the previous binary aside; drop it when present.
	oldExecutable := executable + ".old"
	if _, err = os.Stat(oldExecutable); err == nil {
		_ = os.Remove(oldExecutable)
	}

	return nil
}
