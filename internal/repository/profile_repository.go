package repository

import (
	"context"

	"github.com/iliyamo/day-booking/internal/model"
)

// ProfileRepo persists the single user profile under ProfileKey.
type ProfileRepo struct {
	store *RecordStore
}

// NewProfileRepo returns a ProfileRepo bound to store.
func NewProfileRepo(store *RecordStore) *ProfileRepo { return &ProfileRepo{store: store} }

// Get returns the saved profile, or the empty profile with found=false.
func (r *ProfileRepo) Get(ctx context.Context) (model.Profile, bool, error) {
	var p model.Profile
	found, err := r.store.Load(ctx, ProfileKey, &p)
	if err != nil {
		return model.Profile{}, false, err
	}
	if !found {
		return model.Profile{}, false, nil
	}
	return p, true, nil
}

// Save overwrites the stored profile.
func (r *ProfileRepo) Save(ctx context.Context, p model.Profile) error {
	return r.store.Save(ctx, ProfileKey, p)
}
