// Package votes records user reactions to videos.
package votes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/enums"
	pkgerrors "github.com/HarshArya1405/typescriptDemo/pkg/errors"
	"github.com/HarshArya1405/typescriptDemo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CastInput is one user's vote on a video.
type CastInput struct {
	UserID   uuid.UUID `json:"userId" validate:"required"`
	VoteType string    `json:"voteType" validate:"required,oneof=UpVote DownVote"`
}

type VoteDTO struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"userId"`
	ContentID uuid.UUID      `json:"contentId"`
	VoteType  enums.VoteType `json:"voteType"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// CastResult carries the stored vote and the video's refreshed counters.
type CastResult struct {
	VoteDTO
	UpVote   int `json:"upVote"`
	DownVote int `json:"downVote"`
}

// Service exposes vote operations.
type Service interface {
	Cast(ctx context.Context, contentID uuid.UUID, input CastInput) (*CastResult, error)
	List(ctx context.Context, contentID uuid.UUID, params pagination.Params) (pagination.Page[VoteDTO], error)
}

type service struct {
	repo  Repository
	users userChecker
	tx    txRunner
}

func NewService(repo Repository, users userChecker, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, errors.New("votes repository required")
	}
	if users == nil {
		return nil, errors.New("user checker required")
	}
	if tx == nil {
		return nil, errors.New("transaction runner required")
	}
	return &service{repo: repo, users: users, tx: tx}, nil
}

// Cast upserts the vote by (user, content) and recomputes the video's counters
// in the same transaction.
func (s *service) Cast(ctx context.Context, contentID uuid.UUID, input CastInput) (*CastResult, error) {
	voteType, err := enums.ParseVoteType(strings.TrimSpace(input.VoteType))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vote type")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	if err := s.ensureContent(ctx, contentID); err != nil {
		return nil, err
	}
	exists, err := s.users.Exists(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !exists {
		return nil, pkgerrors.NotFound("user")
	}

	var (
		stored *models.Vote
		counts Counts
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		votes := s.repo.WithTx(tx)
		var err error
		stored, err = votes.Upsert(ctx, &models.Vote{UserID: input.UserID, ContentID: contentID, VoteType: voteType})
		if err != nil {
			return err
		}
		counts, err = votes.RecountVideo(ctx, contentID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store vote")
	}
	return &CastResult{VoteDTO: fromModel(*stored), UpVote: counts.Up, DownVote: counts.Down}, nil
}

func (s *service) List(ctx context.Context, contentID uuid.UUID, params pagination.Params) (pagination.Page[VoteDTO], error) {
	if err := s.ensureContent(ctx, contentID); err != nil {
		return pagination.Page[VoteDTO]{}, err
	}
	page, err := s.repo.List(ctx, Filter{ContentID: &contentID}, params)
	if err != nil {
		return pagination.Page[VoteDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list votes")
	}
	return pagination.Map(page, fromModel), nil
}

func (s *service) ensureContent(ctx context.Context, contentID uuid.UUID) error {
	exists, err := s.repo.ContentExists(ctx, contentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content")
	}
	if !exists {
		return pkgerrors.NotFound("content")
	}
	return nil
}

func fromModel(v models.Vote) VoteDTO {
	return VoteDTO{
		ID:        v.ID,
		UserID:    v.UserID,
		ContentID: v.ContentID,
		VoteType:  v.VoteType,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
