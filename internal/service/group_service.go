package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/Gorstka/Yatube/internal/audit"
	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/repository"
	"github.com/Gorstka/Yatube/internal/slug"
	"github.com/Gorstka/Yatube/pkg/log"
)

// defaultGroupSlug is used when a title has no slug-safe characters.
const defaultGroupSlug = "group"

// groupServiceImpl implements GroupService interface.
type groupServiceImpl struct {
	repo repository.GroupRepository
}

// NewGroupService creates a new group service.
func NewGroupService(repo repository.GroupRepository) GroupService {
	return &groupServiceImpl{repo: repo}
}

// CreateGroup creates a group. An empty slug is derived from the title and
// suffixed with -2, -3, ... until it is free; an explicit slug that is taken
// fails with ErrSlugExists.
func (s *groupServiceImpl) CreateGroup(ctx context.Context, req *domain.CreateGroupRequest) (*domain.Group, error) {
	l := log.Ctx(ctx)

	if err := req.Validate(slug.Valid); err != nil {
		return nil, err
	}

	group := &domain.Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if group.Slug == "" {
		derived, err := s.freeSlug(ctx, req.Title)
		if err != nil {
			l.Error().Err(err).Msg("failed to derive group slug")
			return nil, err
		}
		group.Slug = derived
	}

	if err := s.repo.Create(ctx, group); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugExists
		}
		l.Error().Err(err).Str(log.FieldGroupSlug, group.Slug).Msg("failed to create group")
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionCreateGroup, 0, group.Slug, "group created")
	return group, nil
}

func (s *groupServiceImpl) freeSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = defaultGroupSlug
	}

	candidate := base
	for n := 2; ; n++ {
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := "-" + strconv.Itoa(n)
		candidate = slug.Truncate(base, slug.MaxLength-len(suffix)) + suffix
	}
}

// GetGroup retrieves a group by slug.
func (s *groupServiceImpl) GetGroup(ctx context.Context, groupSlug string) (*domain.Group, error) {
	group, err := s.repo.GetBySlug(ctx, groupSlug)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldGroupSlug, groupSlug).Msg("failed to get group")
		return nil, err
	}
	return group, nil
}

// ListGroups returns every group ordered by title.
func (s *groupServiceImpl) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list groups")
		return nil, err
	}
	return groups, nil
}

// DeleteGroup removes a group. Its posts stay, ungrouped.
func (s *groupServiceImpl) DeleteGroup(ctx context.Context, groupSlug string) error {
	if err := s.repo.Delete(ctx, groupSlug); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldGroupSlug, groupSlug).Msg("failed to delete group")
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteGroup, 0, groupSlug, "group deleted")
	return nil
}

var _ GroupService = (*groupServiceImpl)(nil)
