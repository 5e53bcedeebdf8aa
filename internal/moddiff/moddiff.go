// Package moddiff generates unified diffs between the module versions
// added by a pull request and their previous versions.
package moddiff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/registry"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/review"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/set"
)

const loggerName = "moddiff"

// DiffContextLines is the number of unchanged lines shown around a change.
const DiffContextLines = 3

const (
	groupStart = "::group::"
	groupEnd   = "::endgroup::"
)

type Config struct {
	RepositoryOwner string
	Repository      string
	// CheckoutDir is the directory containing a checkout of the pull
	// request head.
	CheckoutDir string
}

// Differ writes diffs of the module versions of a pull request.
type Differ struct {
	clt     review.GithubClient
	cfg     *Config
	changes *review.ChangeSetResolver
	logger  *zap.Logger
}

func New(clt review.GithubClient, cfg *Config) *Differ {
	return &Differ{
		clt:     clt,
		cfg:     cfg,
		changes: review.NewChangeSetResolver(clt),
		logger:  zap.L().Named(loggerName),
	}
}

func pullRequestRef(number int) string {
	return fmt.Sprintf("refs/pull/%d/head", number)
}

// Diff writes for every module version changed by the pull request a
// unified diff against the previous version of the module to w.
// The previous version is determined from the metadata.json file of the
// pull request head. Versions that are the first version of a module
// are skipped, as are modules without a metadata file.
// Failures for single module versions do not abort the run, they are
// returned together when all versions were processed.
func (d *Differ) Diff(ctx context.Context, number int, w io.Writer) error {
	logger := d.logger.With(logfields.PullRequest(number))

	cs, err := d.changes.Resolve(ctx, d.cfg.RepositoryOwner, d.cfg.Repository, number)
	if err != nil {
		return err
	}

	logger.Info(
		"generating diffs for changed module versions",
		logfields.Event("module_diff_started"),
		zap.Stringer("module_versions", moduleVersionList(cs.ModuleVersions)),
	)

	grouped := len(cs.ModuleVersions) > 1
	metadata := map[string]*registry.Metadata{}
	noMetadata := set.New[string]()
	var errs []error

	for _, mv := range cs.ModuleVersions {
		if mv.Version == "" || noMetadata.Contains(mv.Module) {
			continue
		}

		logger := logger.With(logfields.ModuleVersion(mv.String()))

		md, exists := metadata[mv.Module]
		if !exists {
			md, err = d.metadata(ctx, number, mv.Module)
			if err != nil {
				if errors.Is(err, githubclt.ErrNotFound) {
					logger.Info(
						"module has no metadata file on the pull request branch, skipping",
						logfields.Event("module_diff_metadata_missing"),
					)
					noMetadata.Add(mv.Module)
					continue
				}

				errs = append(errs, fmt.Errorf("%s: %w", mv, err))
				continue
			}
			metadata[mv.Module] = md
		}

		prev, err := md.PreviousVersion(mv.Version)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mv, err))
			continue
		}

		if prev == "" {
			logger.Info("no previous version to diff", logfields.Event("module_diff_first_version"))
			continue
		}

		if grouped {
			fmt.Fprint(w, groupStart)
		}
		fmt.Fprintf(w, "Generating diff for module %s against version %s\n", mv, prev)

		changed, err := DiffDirs(
			w,
			d.cfg.CheckoutDir,
			registry.ModuleVersionDir(mv.Module, prev),
			registry.ModuleVersionDir(mv.Module, mv.Version),
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: generating diff failed: %w", mv, err))
		} else if !changed {
			fmt.Fprintln(w, "No differences found!")
		}

		if grouped {
			fmt.Fprintln(w, groupEnd)
		}
	}

	return errors.Join(errs...)
}

func (d *Differ) metadata(ctx context.Context, number int, module string) (*registry.Metadata, error) {
	data, err := d.clt.FileContent(
		ctx,
		d.cfg.RepositoryOwner, d.cfg.Repository,
		registry.MetadataPath(module),
		pullRequestRef(number),
	)
	if err != nil {
		return nil, err
	}

	return registry.ParseMetadata(data)
}

// DiffDirs writes a unified diff of all files in the directories from and
// to, relative to baseDir, to w.
// A file that only exists in one of the directories is diffed against an
// empty file.
// It returns true if differences were found.
func DiffDirs(w io.Writer, baseDir, from, to string) (bool, error) {
	fromFiles, err := listFiles(filepath.Join(baseDir, from))
	if err != nil {
		return false, err
	}

	toFiles, err := listFiles(filepath.Join(baseDir, to))
	if err != nil {
		return false, err
	}

	var changed bool
	for _, relPath := range fromFiles.Union(toFiles).Sorted() {
		a, err := readFileOrEmpty(filepath.Join(baseDir, from, relPath))
		if err != nil {
			return changed, err
		}

		b, err := readFileOrEmpty(filepath.Join(baseDir, to, relPath))
		if err != nil {
			return changed, err
		}

		if slices.Equal(a, b) {
			continue
		}

		changed = true
		err = difflib.WriteUnifiedDiff(w, difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(a)),
			B:        difflib.SplitLines(string(b)),
			FromFile: filepath.ToSlash(filepath.Join(from, relPath)),
			ToFile:   filepath.ToSlash(filepath.Join(to, relPath)),
			Context:  DiffContextLines,
		})
		if err != nil {
			return changed, err
		}
	}

	return changed, nil
}

// listFiles returns the paths of all regular files below dir, relative to
// dir. A missing dir results in an empty set.
func listFiles(dir string) (set.Set[string], error) {
	result := set.New[string]()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		result.Add(rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func readFileOrEmpty(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	return data, nil
}

type moduleVersionList []registry.ModuleVersion

func (l moduleVersionList) String() string {
	return fmt.Sprint([]registry.ModuleVersion(l))
}
