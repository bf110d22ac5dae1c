package discovery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gorm.io/gorm"

	"github.com/hobbycircles/hobby-circles/internal/app"
	"github.com/hobbycircles/hobby-circles/internal/db"
	svcErr "github.com/hobbycircles/hobby-circles/internal/errors"
	"github.com/hobbycircles/hobby-circles/internal/geo"
	"github.com/hobbycircles/hobby-circles/internal/repository"
)

// DefaultRadiusKm is the search radius used when the caller does not pick one.
const DefaultRadiusKm = 5.0

// Service implements the hobby-matching business logic on top of the
// repository and cache layers: registration, the match engine, and the
// activity board.
type Service struct {
	appCtx       *app.AppContext
	userRepo     *repository.UserRepository
	activityRepo *repository.ActivityRepository
}

// NewService creates a new discovery service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via UserRepository and ActivityRepository)
//   - RedisCache for counters from AppContext
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		userRepo:     repository.NewUserRepository(appCtx.DB),
		activityRepo: repository.NewActivityRepository(appCtx.DB),
	}
}

// RegisterInput is a registration request. The core performs no field
// validation; required-field checks belong to the presentation layer.
type RegisterInput struct {
	Username  string
	Lat       float64
	Lon       float64
	Interests []string
	Bio       string
}

// Match is one entry of a ranked match list. Matches are recomputed on
// every request and never stored.
type Match struct {
	Username        string   `json:"username"`
	DistanceKm      float64  `json:"distance_km"`
	SharedInterests []string `json:"shared_interests"`
	AllInterests    []string `json:"all_interests"`
	Bio             string   `json:"bio"`
}

// Stats summarizes the size of the roster and the board.
type Stats struct {
	Users      int64 `json:"users"`
	Activities int64 `json:"activities"`
}

// Register adds a new profile to the roster and returns the confirmation
// message the presentation layer shows.
//
// Behavior:
//   - Duplicate usernames are accepted; the earlier registration stays the
//     one lookups resolve to.
//   - Bumps the cached roster counter.
//
// Example:
//
//	svc.Register(ctx, RegisterInput{Username: "SportyPal", Lat: 17.39, Lon: 78.48, Interests: []string{"Badminton"}})
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	s.appCtx.Logger.Debug("Register called", "username", in.Username)

	user := &db.User{
		Username:  in.Username,
		Lat:       in.Lat,
		Lon:       in.Lon,
		Interests: in.Interests,
		Bio:       in.Bio,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.appCtx.Logger.Error("Register failed", "username", in.Username, "err", err)
		return "", svcErr.Map(err)
	}

	_, _ = s.appCtx.RedisCache.Incr(ctx, s.appCtx.RedisCache.KeyUserCount())

	return fmt.Sprintf("Welcome %s! Your profile is ready.", in.Username), nil
}

// FindMatches scans the roster for compatible users within radiusKm of the
// querying user and returns them ranked by distance.
//
// Behavior:
//   - Unknown username → empty list, nil error. The caller cannot tell
//     "no such user" from "no matches"; GetUser exists for clients that
//     need the distinction up front.
//   - The querying user (and any same-named duplicate) is never a candidate.
//   - A candidate at exactly radiusKm is included; only strictly farther
//     ones are cut.
//   - Interests intersect by exact string equality, no case folding.
//   - specificInterest, when non-empty, must be among the shared interests.
//   - A match needs at least one shared interest even when unfiltered.
//   - Distances are rounded to two decimals; ranking is ascending by the
//     rounded distance with ties kept in registry order.
//
// Example:
//
//	svc.FindMatches(ctx, "HyderabadBuddy", 5, "")
func (s *Service) FindMatches(ctx context.Context, username string, radiusKm float64, specificInterest string) ([]Match, error) {
	s.appCtx.Logger.Debug("FindMatches called", "username", username, "radius_km", radiusKm, "interest", specificInterest)

	current, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.appCtx.Logger.Debug("FindMatches for unknown user", "username", username)
			return []Match{}, nil
		}
		return nil, svcErr.Map(err)
	}

	candidates, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Username == username {
			continue
		}

		distance := geo.Distance(current.Lat, current.Lon, candidate.Lat, candidate.Lon)
		if distance > radiusKm {
			continue
		}

		shared := sharedInterests(current.Interests, candidate.Interests)

		if specificInterest != "" && !contains(shared, specificInterest) {
			continue
		}
		if len(shared) == 0 {
			continue
		}

		matches = append(matches, Match{
			Username:        candidate.Username,
			DistanceKm:      math.Round(distance*100) / 100,
			SharedInterests: shared,
			AllInterests:    candidate.Interests,
			Bio:             candidate.Bio,
		})
	}

	// closest first; stable keeps registry order on ties
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})

	s.appCtx.Logger.Debug("FindMatches result", "username", username, "match_count", len(matches))

	return matches, nil
}

// CountMatches returns how many matches a query would yield.
// Cache-first strategy:
//  1. Attempts to read from Redis (matches:count:user:radius:interest).
//  2. On cache miss, runs the match engine and counts the result.
//  3. Updates Redis with a 1h TTL.
//
// Example:
//
//	svc.CountMatches(ctx, "HyderabadBuddy", 5, "Badminton")
func (s *Service) CountMatches(ctx context.Context, username string, radiusKm float64, specificInterest string) (int64, error) {
	key := s.appCtx.RedisCache.KeyMatchCount(username, radiusKm, specificInterest)

	// try cache first
	if cached, ok, _ := s.appCtx.RedisCache.GetCount(ctx, key); ok {
		return cached, nil
	}

	// fallback: run the engine
	matches, err := s.FindMatches(ctx, username, radiusKm, specificInterest)
	if err != nil {
		return 0, err
	}

	count := int64(len(matches))
	_ = s.appCtx.RedisCache.SetCount(ctx, key, count)

	return count, nil
}

// GetUser returns the earliest-registered profile for a username.
// Unlike FindMatches this is strict: a missing user maps to a 404.
func (s *Service) GetUser(ctx context.Context, username string) (*db.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// ListUsers returns one roster page in registration order.
func (s *Service) ListUsers(ctx context.Context, pageToken *string, limit int) ([]db.User, *string, error) {
	users, nextToken, err := s.userRepo.ListPage(ctx, pageToken, limit)
	if err != nil {
		return nil, nil, svcErr.InvalidArgument("invalid page token")
	}
	return users, nextToken, nil
}

// PostActivityInput is an activity-board posting request. As with
// registration, the core accepts whatever it is handed: option-list and
// required-field enforcement live in the presentation layer.
type PostActivityInput struct {
	Username     string
	ActivityType string
	Description  string
	TimeSlot     string
	Location     string
}

// PostActivity appends a posting to the board and returns its assigned id.
//
// Behavior:
//   - Ids are 1-based, strictly increasing and gap-free.
//   - Username is not checked against the roster (soft reference).
//   - Bumps the cached board counter.
func (s *Service) PostActivity(ctx context.Context, in PostActivityInput) (uint64, error) {
	s.appCtx.Logger.Debug("PostActivity called", "username", in.Username, "type", in.ActivityType)

	activity := &db.Activity{
		Username:     in.Username,
		ActivityType: in.ActivityType,
		Description:  in.Description,
		TimeSlot:     in.TimeSlot,
		Location:     in.Location,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.appCtx.Logger.Error("PostActivity failed", "username", in.Username, "err", err)
		return 0, svcErr.Map(err)
	}

	_, _ = s.appCtx.RedisCache.Incr(ctx, s.appCtx.RedisCache.KeyActivityCount())

	return activity.ID, nil
}

// RecentActivities returns the last n postings in posting order.
func (s *Service) RecentActivities(ctx context.Context, n int) ([]db.Activity, error) {
	activities, err := s.activityRepo.Recent(ctx, n)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return activities, nil
}

// GetStats returns roster and board sizes.
// Cache-first with DB fallback, same strategy as CountMatches.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{}

	userKey := s.appCtx.RedisCache.KeyUserCount()
	if cached, ok, _ := s.appCtx.RedisCache.GetCount(ctx, userKey); ok {
		stats.Users = cached
	} else {
		count, err := s.userRepo.Count(ctx)
		if err != nil {
			return Stats{}, svcErr.Map(err)
		}
		stats.Users = count
		_ = s.appCtx.RedisCache.SetCount(ctx, userKey, count)
	}

	activityKey := s.appCtx.RedisCache.KeyActivityCount()
	if cached, ok, _ := s.appCtx.RedisCache.GetCount(ctx, activityKey); ok {
		stats.Activities = cached
	} else {
		count, err := s.activityRepo.Count(ctx)
		if err != nil {
			return Stats{}, svcErr.Map(err)
		}
		stats.Activities = count
		_ = s.appCtx.RedisCache.SetCount(ctx, activityKey, count)
	}

	return stats, nil
}

// sharedInterests intersects two interest lists by exact string equality,
// keeping the querying user's ordering so results are deterministic.
func sharedInterests(mine, theirs []string) []string {
	theirSet := make(map[string]struct{}, len(theirs))
	for _, interest := range theirs {
		theirSet[interest] = struct{}{}
	}

	var shared []string
	seen := make(map[string]struct{}, len(mine))
	for _, interest := range mine {
		if _, dup := seen[interest]; dup {
			continue
		}
		seen[interest] = struct{}{}
		if _, ok := theirSet[interest]; ok {
			shared = append(shared, interest)
		}
	}
	return shared
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
