package review

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/registry"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/set"
)

// MaintainerMap maps GitHub handles of maintainers to the modules they
// maintain.
type MaintainerMap map[string]set.Set[string]

func (m MaintainerMap) add(handle, module string) {
	modules, exists := m[handle]
	if !exists {
		modules = set.New[string]()
		m[handle] = modules
	}

	modules.Add(module)
}

// Maintains returns true if handle is a maintainer of module.
func (m MaintainerMap) Maintains(handle, module string) bool {
	return m[handle].Contains(module)
}

// IsMaintainer returns true if handle maintains at least one module.
func (m MaintainerMap) IsMaintainer(handle string) bool {
	return m[handle].Len() > 0
}

// MaintainersOf returns the maintainers of module in ascending order.
func (m MaintainerMap) MaintainersOf(module string) []string {
	var result []string

	for handle, modules := range m {
		if modules.Contains(module) {
			result = append(result, handle)
		}
	}

	slices.Sort(result)

	return result
}

// MaintainerGroup are maintainers that maintain exactly the same set of
// modules.
type MaintainerGroup struct {
	// Modules in ascending order.
	Modules []string
	// Maintainers in ascending order.
	Maintainers []string
}

// Groups groups maintainers by the set of modules they maintain.
// The groups are ordered by their module lists.
func (m MaintainerMap) Groups() []*MaintainerGroup {
	var result []*MaintainerGroup

	handles := make([]string, 0, len(m))
	for handle := range m {
		handles = append(handles, handle)
	}
	slices.Sort(handles)

	for _, handle := range handles {
		modules := m[handle].Sorted()

		idx := slices.IndexFunc(result, func(g *MaintainerGroup) bool {
			return slices.Equal(g.Modules, modules)
		})
		if idx == -1 {
			result = append(result, &MaintainerGroup{Modules: modules})
			idx = len(result) - 1
		}

		result[idx].Maintainers = append(result[idx].Maintainers, handle)
	}

	slices.SortFunc(result, func(a, b *MaintainerGroup) int {
		return slices.Compare(a.Modules, b.Modules)
	})

	return result
}

// Resolution is the result of MaintainerResolver.Resolve.
type Resolution struct {
	Maintainers MaintainerMap
	// Orphans are modules without a metadata file or without a maintainer
	// with a GitHub handle.
	Orphans set.Set[string]
}

// MaintainerResolver retrieves the maintainers of modules from the
// metadata files in the stable branch of the registry.
type MaintainerResolver struct {
	clt          GithubClient
	stableBranch string
	logger       *zap.Logger
}

func NewMaintainerResolver(clt GithubClient, stableBranch string) *MaintainerResolver {
	return &MaintainerResolver{
		clt:          clt,
		stableBranch: stableBranch,
		logger:       zap.L().Named(loggerName).Named("maintainers"),
	}
}

// Resolve returns the maintainers with a GitHub handle of the given modules.
// If excludeDoNotNotify is true, maintainers that opted out of
// notifications are omitted.
//
// The GitHub handle of every maintainer is verified to belong to the user
// id recorded in the metadata. If it does not or the user id can not be
// retrieved, an *IdentityVerificationError is returned.
func (r *MaintainerResolver) Resolve(ctx context.Context, owner, repo string, modules set.Set[string], excludeDoNotNotify bool) (*Resolution, error) {
	result := Resolution{
		Maintainers: MaintainerMap{},
		Orphans:     set.New[string](),
	}
	verified := map[string]int64{}

	for _, module := range modules.Sorted() {
		logger := r.logger.With(
			logfields.RepositoryOwner(owner),
			logfields.Repository(repo),
			logfields.Module(module),
		)

		data, err := r.clt.FileContent(ctx, owner, repo, registry.MetadataPath(module), r.stableBranch)
		if err != nil {
			if errors.Is(err, githubclt.ErrNotFound) {
				logger.Info(
					"module has no metadata file in the stable branch",
					logfields.Event("module_metadata_not_found"),
					logfields.Branch(r.stableBranch),
				)
				result.Orphans.Add(module)
				continue
			}

			return nil, fmt.Errorf("retrieving metadata of module %s failed: %w", module, err)
		}

		md, err := registry.ParseMetadata(data)
		if err != nil {
			return nil, fmt.Errorf("parsing metadata of module %s failed: %w", module, err)
		}

		hasMaintainer := false
		for _, m := range md.Maintainers {
			if m.GitHub == "" {
				continue
			}

			if excludeDoNotNotify && m.DoNotNotify {
				continue
			}

			if err := r.verify(ctx, verified, module, m); err != nil {
				return nil, err
			}

			result.Maintainers.add(m.GitHub, module)
			hasMaintainer = true
		}

		if !hasMaintainer {
			logger.Info(
				"module has no maintainers with a github handle",
				logfields.Event("module_has_no_maintainers"),
			)
			result.Orphans.Add(module)
		}
	}

	return &result, nil
}

func (r *MaintainerResolver) verify(ctx context.Context, verified map[string]int64, module string, m *registry.Maintainer) error {
	id, exists := verified[m.GitHub]
	if !exists {
		var err error

		id, err = r.clt.UserID(ctx, m.GitHub)
		if err != nil {
			return &IdentityVerificationError{
				Module:     module,
				Handle:     m.GitHub,
				ExpectedID: m.GitHubUserID,
				Err:        err,
			}
		}

		verified[m.GitHub] = id
	}

	if id != m.GitHubUserID {
		r.logger.Warn(
			"maintainer github handle does not match the recorded user id",
			logfields.Event("maintainer_identity_mismatch"),
			logfields.Module(module),
			logfields.Maintainer(m.GitHub),
			zap.Int64("expected_user_id", m.GitHubUserID),
			zap.Int64("actual_user_id", id),
		)

		return &IdentityVerificationError{
			Module:     module,
			Handle:     m.GitHub,
			ExpectedID: m.GitHubUserID,
			ActualID:   id,
		}
	}

	return nil
}
