package teams

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rosterhub/rosterhub/internal/cache"
	"github.com/rosterhub/rosterhub/internal/domain/team"
)

// maxJoinCodeAttempts bounds the collision retry loop. 32^6 codes make a
// collision streak this long effectively impossible; hitting the bound means
// the store is lying to us.
const maxJoinCodeAttempts = 5

var ErrJoinCodeSpaceExhausted = errors.New("could not generate a unique join code")

type TeamStore interface {
	Create(ctx context.Context, t team.Team) (team.Team, error)
	GetByID(ctx context.Context, id string) (team.Team, error)
	GetByJoinCode(ctx context.Context, code string) (team.Team, error)
	UpdateJoinCode(ctx context.Context, teamID, code string) error
}

type MembershipStore interface {
	Create(ctx context.Context, m team.Membership) (team.Membership, error)
}

// Registry owns teams, memberships and join codes.
type Registry struct {
	teams       TeamStore
	memberships MembershipStore
	log         *slog.Logger
	codeCache   *cache.Cache

	// injected so tests can force collisions
	genCode func() (string, error)
}

func NewRegistry(teams TeamStore, memberships MembershipStore, log *slog.Logger, codeCache *cache.Cache) *Registry {
	return &Registry{
		teams:       teams,
		memberships: memberships,
		log:         log,
		codeCache:   codeCache,
		genCode:     GenerateJoinCode,
	}
}

// CreateTeam creates a team with a fresh unique join code, then makes the
// creator its admin. The two writes are separate store calls with no
// transaction; if the second fails the team is left without members and the
// error surfaces to the caller.
func (r *Registry) CreateTeam(ctx context.Context, name, logoURL, creatorID string) (team.Team, error) {
	var created team.Team

	for attempt := 0; ; attempt++ {
		if attempt == maxJoinCodeAttempts {
			return team.Team{}, ErrJoinCodeSpaceExhausted
		}

		code, err := r.genCode()

		if err != nil {
			return team.Team{}, err
		}

		created, err = r.teams.Create(ctx, team.Team{
			Name:        name,
			LogoURL:     logoURL,
			CreatedByID: creatorID,
			JoinCode:    code,
		})

		if err != nil {
			if errors.Is(err, team.ErrJoinCodeTaken) {
				continue
			}
			return team.Team{}, err
		}

		break
	}

	_, err := r.memberships.Create(ctx, team.Membership{
		TeamID: created.ID,
		UserID: creatorID,
		Role:   team.RoleAdmin,
	})

	if err != nil {
		// no transaction spans the two writes; the team exists without members
		r.log.Warn("team created but admin membership insert failed",
			"team_id", created.ID, "user_id", creatorID, "err", err)
		return team.Team{}, err
	}

	return created, nil
}

// ValidateJoinCode is the public, unauthenticated lookup. It returns only the
// team fields safe to show before joining. Results are briefly cached since
// this endpoint is hammered by share links.
func (r *Registry) ValidateJoinCode(ctx context.Context, code string) (team.PublicInfo, bool, error) {
	code = NormalizeJoinCode(code)

	if len(code) != JoinCodeLength {
		return team.PublicInfo{}, false, nil
	}

	if r.codeCache != nil {
		if v, ok := r.codeCache.Get(codeCacheKey(code)); ok {
			info, ok := v.(team.PublicInfo)
			if ok {
				return info, true, nil
			}
		}
	}

	t, err := r.teams.GetByJoinCode(ctx, code)

	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			return team.PublicInfo{}, false, nil
		}
		return team.PublicInfo{}, false, err
	}

	info := t.Public()

	if r.codeCache != nil {
		r.codeCache.Set(codeCacheKey(code), info)
	}

	return info, true, nil
}

// RegenerateJoinCode replaces the team's code with a fresh unique one and
// drops the stale cache entry so the old code stops validating immediately.
func (r *Registry) RegenerateJoinCode(ctx context.Context, teamID string) (string, error) {
	t, err := r.teams.GetByID(ctx, teamID)

	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code, err := r.genCode()

		if err != nil {
			return "", err
		}

		err = r.teams.UpdateJoinCode(ctx, teamID, code)

		if err != nil {
			if errors.Is(err, team.ErrJoinCodeTaken) {
				continue
			}
			return "", err
		}

		if r.codeCache != nil {
			r.codeCache.Delete(codeCacheKey(t.JoinCode))
		}

		return code, nil
	}

	return "", ErrJoinCodeSpaceExhausted
}

// CreateMembership is the single enforcement point for the
// one-membership-per-(team,user) invariant; the store returns
// team.ErrAlreadyMember on a duplicate.
func (r *Registry) CreateMembership(ctx context.Context, teamID, userID, role string) (team.Membership, error) {
	if !team.ValidRole(role) {
		role = team.RolePlayer
	}

	return r.memberships.Create(ctx, team.Membership{
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	})
}

// JoinByCode self-enrolls a user as a player on the team behind the code.
func (r *Registry) JoinByCode(ctx context.Context, userID, code string) (team.Team, team.Membership, error) {
	code = NormalizeJoinCode(code)

	t, err := r.teams.GetByJoinCode(ctx, code)

	if err != nil {
		return team.Team{}, team.Membership{}, err
	}

	m, err := r.CreateMembership(ctx, t.ID, userID, team.RolePlayer)

	if err != nil {
		return team.Team{}, team.Membership{}, err
	}

	return t, m, nil
}

func codeCacheKey(code string) string {
	return "joincode:" + code
}
