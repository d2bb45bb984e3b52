package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns every persisted model in dependency order, used for AutoMigrate
// in development and tests.
func All() []any {
	return []any{
		&Role{},
		&Tag{},
		&Protocol{},
		&User{},
		&ExternalIdentity{},
		&Wallet{},
		&SocialHandle{},
		&OnBoardingFunnel{},
		&CreatorFollower{},
		&VideoContent{},
		&Text{},
		&Vote{},
	}
}

