package services

import (
	"context"
	"fmt"

	"github.com/terraincognita07/calm/internal/models"
)

const maxPictureLength = 100

type ProfileInput struct {
	User            *Reference `json:"user"`
	Bio             *string    `json:"bio"`
	Location        *string    `json:"location"`
	ProfilePicture  *string    `json:"profile_picture"`
	PrivacySettings *string    `json:"privacy_settings"`
}

func (input ProfileInput) ClaimedUser() uint { return input.User.Claimed() }

type profileRules struct {
	profiles Store[models.Profile]
	users    Store[models.User]
}

func NewProfileService(profiles Store[models.Profile], users Store[models.User]) *Service[models.Profile, ProfileInput] {
	return NewService[models.Profile, ProfileInput](profiles, profileRules{profiles: profiles, users: users}).
		withUnique("user", MessageProfileExists)
}

func (rules profileRules) Build(ctx context.Context, requesterID uint, input ProfileInput) (models.Profile, error) {
	fields := newFieldSet(false)
	profile := models.Profile{}

	userID, ok, err := fields.owner(ctx, input.User, requesterID, rules.users.Exists)
	if err != nil {
		return models.Profile{}, err
	}
	if ok {
		if err := rules.claimUser(ctx, fields, &profile, userID); err != nil {
			return models.Profile{}, err
		}
	}

	rules.applyText(fields, &profile, input)
	if err := fields.errs.Err(); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (rules profileRules) Apply(ctx context.Context, current *models.Profile, input ProfileInput, partial bool) error {
	fields := newFieldSet(partial)

	userID, ok, err := fields.reference(ctx, "user", input.User, rules.users.Exists)
	if err != nil {
		return err
	}
	if ok && userID != current.UserID {
		if err := rules.claimUser(ctx, fields, current, userID); err != nil {
			return err
		}
	}

	rules.applyText(fields, current, input)
	return fields.errs.Err()
}

func (rules profileRules) claimUser(ctx context.Context, fields fieldSet, profile *models.Profile, userID uint) error {
	taken, err := rules.profiles.ExistsWhere(ctx, "user_id", userID, profile.ID)
	if err != nil {
		return fmt.Errorf("check profile uniqueness: %w", err)
	}
	if taken {
		fields.errs.Add("user", MessageProfileExists)
		return nil
	}
	profile.UserID = userID
	return nil
}

func (profileRules) applyText(fields fieldSet, profile *models.Profile, input ProfileInput) {
	if bio, ok := fields.text("bio", input.Bio, 0); ok {
		profile.Bio = bio
	}
	if location, ok := fields.text("location", input.Location, maxCharLength); ok {
		profile.Location = location
	}
	if picture, ok := fields.optionalText("profile_picture", input.ProfilePicture, maxPictureLength); ok {
		profile.ProfilePicture = picture
	}
	if privacy, ok := fields.text("privacy_settings", input.PrivacySettings, maxCharLength); ok {
		profile.PrivacySettings = privacy
	}
}
