package services

import (
	"context"
	"io"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
	"skywatch/crewdeck/internal/storage"
)

type ProfileService struct {
	cache    *cache.Client
	store    ProfileStore
	objects  storage.ObjectStore
	realtime *realtime.Manager
}

func NewProfileService(c *cache.Client, store ProfileStore, objects storage.ObjectStore, rt *realtime.Manager) *ProfileService {
	return &ProfileService{cache: c, store: store, objects: objects, realtime: rt}
}

func profileKey(id string) cache.Key {
	return cache.NewKey(constants.KeyProfile, id)
}

// Get returns one profile
func (s *ProfileService) Get(ctx context.Context, id string) (gormModels.Profile, error) {
	if id == "" {
		return gormModels.Profile{}, apperrors.Validation("user id required")
	}
	return cache.Fetch(ctx, s.cache, profileKey(id), staleProfile, func(ctx context.Context) (gormModels.Profile, error) {
		p, err := s.store.GetByID(ctx, id)
		if err != nil {
			return gormModels.Profile{}, err
		}
		return *p, nil
	})
}

// Team lists every member
func (s *ProfileService) Team(ctx context.Context) ([]gormModels.Profile, error) {
	return cache.Fetch(ctx, s.cache, cache.NewKey(constants.KeyProfiles), staleProfile, s.store.List)
}

// Update changes the caller's profile optimistically: readers of the
// profile key see the patched value while the write is in flight, and the
// previous value comes back if the write fails.
func (s *ProfileService) Update(ctx context.Context, id string, patch dtos.ProfilePatch) (gormModels.Profile, error) {
	if id == "" {
		return gormModels.Profile{}, apperrors.Validation("user id required")
	}
	if patch.Empty() {
		return gormModels.Profile{}, apperrors.Validation("nothing to update")
	}

	return cache.Optimistic(ctx, s.cache, cache.Mutation[gormModels.Profile, dtos.ProfilePatch]{
		Key:   profileKey(id),
		Patch: patch,
		Apply: applyProfilePatch,
		Commit: func(ctx context.Context, p dtos.ProfilePatch) (gormModels.Profile, error) {
			updated, err := s.store.Update(ctx, id, p)
			if err != nil {
				return gormModels.Profile{}, err
			}
			return *updated, nil
		},
		Settle: []cache.Key{cache.NewKey(constants.KeyProfiles)},
	})
}

func applyProfilePatch(prev gormModels.Profile, patch dtos.ProfilePatch) gormModels.Profile {
	next := prev
	if patch.FullName != nil {
		next.FullName = patch.FullName
	}
	if patch.Phone != nil {
		next.Phone = patch.Phone
	}
	if patch.AvatarURL != nil {
		next.AvatarURL = patch.AvatarURL
	}
	return next
}

// UploadAvatar replaces the user's avatar object and points avatar_url at it
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, r io.Reader, size int64) (dtos.UploadResult, error) {
	claims := auth.GetUserClaims(ctx)
	if claims == nil {
		return dtos.UploadResult{}, apperrors.New(constants.ErrCodeUnauthenticated, nil)
	}
	if claims.UserID() != userID {
		return dtos.UploadResult{}, apperrors.PermissionDenied("avatars can only be changed by their owner")
	}

	existing, err := s.objects.List(ctx, constants.BucketAvatars, userID+"/")
	if err != nil {
		return dtos.UploadResult{}, apperrors.New(constants.ErrCodeStorageFailed, err)
	}
	for _, key := range existing {
		if err := s.objects.Delete(ctx, constants.BucketAvatars, key); err != nil {
			logging.Warn("Failed to remove previous avatar", "user_id", userID, "key", key, "error", err.Error())
		}
	}

	path := userID + "/avatar.jpg"
	if err := s.objects.Put(ctx, constants.BucketAvatars, path, r, size, "image/jpeg"); err != nil {
		return dtos.UploadResult{}, apperrors.New(constants.ErrCodeStorageFailed, err)
	}

	url := s.objects.PublicURL(constants.BucketAvatars, path)
	if _, err := s.Update(ctx, userID, dtos.ProfilePatch{AvatarURL: &url}); err != nil {
		return dtos.UploadResult{}, err
	}

	return dtos.UploadResult{Path: path, PublicURL: url}, nil
}

// Watch keeps the user's profile keys in sync with the change feed
func (s *ProfileService) Watch(ctx context.Context, userID string) *realtime.Subscription {
	if s.realtime == nil || userID == "" {
		return nil
	}
	return s.realtime.Subscribe(ctx, realtime.ProfileForUser(userID))
}
