package review

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/registry"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/set"
)

// FilesPageSize is the number of changed files requested per page.
const FilesPageSize = 100

// ChangeSet are the registry changes of a pull request at a head commit.
type ChangeSet struct {
	HeadSHA string
	// ModuleVersions are the module versions with changed files, in
	// ascending order.
	ModuleVersions []registry.ModuleVersion
	// Modules are the names of the modules in ModuleVersions.
	Modules set.Set[string]
	// MetadataChanged are the modules whose metadata.json file changed.
	MetadataChanged set.Set[string]
}

// MetadataOnly returns the modules whose metadata file changed but no
// module version.
func (c *ChangeSet) MetadataOnly() set.Set[string] {
	return c.MetadataChanged.Difference(c.Modules)
}

// ChangeSetResolver determines the modules that are changed by a pull
// request.
type ChangeSetResolver struct {
	clt    GithubClient
	logger *zap.Logger
}

func NewChangeSetResolver(clt GithubClient) *ChangeSetResolver {
	return &ChangeSetResolver{
		clt:    clt,
		logger: zap.L().Named(loggerName).Named("changeset"),
	}
}

// Resolve retrieves the current head commit of the pull request and
// returns the changes of it.
func (r *ChangeSetResolver) Resolve(ctx context.Context, owner, repo string, number int) (*ChangeSet, error) {
	pr, err := r.clt.PullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request failed: %w", err)
	}

	return r.ResolveAt(ctx, owner, repo, number, pr.HeadSHA)
}

// ResolveAt returns the changes of the pull request, expecting headSHA to be
// its head commit.
// The files are retrieved page by page. After each page the head commit of
// the pull request is retrieved again. If it differs from headSHA, a
// *StaleDataError is returned.
func (r *ChangeSetResolver) ResolveAt(ctx context.Context, owner, repo string, number int, headSHA string) (*ChangeSet, error) {
	logger := r.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(number),
		logfields.Commit(headSHA),
	)

	moduleVersions := map[registry.ModuleVersion]struct{}{}
	result := ChangeSet{
		HeadSHA:         headSHA,
		Modules:         set.New[string](),
		MetadataChanged: set.New[string](),
	}

	for page := 1; ; page++ {
		files, err := r.clt.ListPullRequestFiles(ctx, owner, repo, number, page, FilesPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing changed files (page %d) failed: %w", page, err)
		}

		pr, err := r.clt.PullRequest(ctx, owner, repo, number)
		if err != nil {
			return nil, fmt.Errorf("retrieving pull request failed: %w", err)
		}

		if pr.HeadSHA != headSHA {
			logger.Info(
				"pull request changed while listing files, aborting",
				logfields.Event("pull_request_changed_while_listing_files"),
				zap.String("github.pull_request.current_head", pr.HeadSHA),
				zap.Int("files_page", page),
			)

			return nil, &StaleDataError{
				PullRequest:     number,
				ExpectedHeadSHA: headSHA,
				CurrentHeadSHA:  pr.HeadSHA,
				Stage:           "listing changed files",
			}
		}

		for _, path := range files {
			if mv, ok := registry.ParseModuleVersionPath(path); ok {
				moduleVersions[mv] = struct{}{}
				result.Modules.Add(mv.Module)
				continue
			}

			if module, ok := registry.ParseMetadataPath(path); ok {
				result.MetadataChanged.Add(module)
			}
		}

		if len(files) < FilesPageSize {
			break
		}
	}

	result.ModuleVersions = make([]registry.ModuleVersion, 0, len(moduleVersions))
	for mv := range moduleVersions {
		result.ModuleVersions = append(result.ModuleVersions, mv)
	}
	slices.SortFunc(result.ModuleVersions, registry.ModuleVersion.Compare)

	logger.Debug(
		"resolved changed modules",
		logfields.Event("pull_request_changes_resolved"),
		logfields.Modules(result.Modules.Sorted()),
		zap.Strings("metadata_changed", result.MetadataChanged.Sorted()),
	)

	return &result, nil
}
