package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/mentorhub/internal/entity"
	forumDto "anoa.com/mentorhub/internal/modules/forum/dto"
	"anoa.com/mentorhub/internal/modules/forum/voting"
	"anoa.com/mentorhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *forumService) VoteOn(ctx context.Context, userID uuid.UUID, votableType string, votableID uuid.UUID, voteType string) (*forumDto.VoteResult, error) {
	if !voting.Valid(voteType) {
		return nil, apperror.New(400, fmt.Sprintf("invalid vote type %q", voteType), apperror.ErrBadRequest)
	}

	if err := s.checkVotableExists(ctx, votableType, votableID); err != nil {
		return nil, err
	}

	userVote, err := s.repo.ToggleVote(ctx, votableType, votableID, userID, voteType)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(409, "vote already in flight, retry", apperror.ErrConflict)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "votable not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	return s.voteResult(ctx, votableType, votableID, userVote)
}

func (s *forumService) GetVote(ctx context.Context, userID *uuid.UUID, votableType string, votableID uuid.UUID) (*forumDto.VoteResult, error) {
	if err := s.checkVotableExists(ctx, votableType, votableID); err != nil {
		return nil, err
	}

	// Anonymous callers simply have no vote; that is never an error.
	userVote := voting.None
	if userID != nil {
		vote, err := s.repo.GetVote(ctx, votableType, votableID, *userID)
		if err != nil {
			return nil, err
		}
		if vote != nil {
			userVote = vote.VoteType
		}
	}

	return s.voteResult(ctx, votableType, votableID, userVote)
}

func (s *forumService) voteResult(ctx context.Context, votableType string, votableID uuid.UUID, userVote string) (*forumDto.VoteResult, error) {
	up, down, err := s.repo.VoteCounts(ctx, votableType, votableID)
	if err != nil {
		return nil, err
	}

	result := &forumDto.VoteResult{
		UpvoteCount:   up,
		DownvoteCount: down,
	}
	if userVote != voting.None {
		result.UserVote = &userVote
	}
	return result, nil
}

func (s *forumService) checkVotableExists(ctx context.Context, votableType string, votableID uuid.UUID) error {
	var err error
	switch votableType {
	case entity.VotableThread:
		_, err = s.repo.FindThreadByID(ctx, votableID)
	case entity.VotableReply:
		_, err = s.repo.FindReplyByID(ctx, votableID)
	default:
		return apperror.New(400, fmt.Sprintf("invalid votable type %q", votableType), apperror.ErrBadRequest)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(404, fmt.Sprintf("%s not found", votableType), apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *forumService) RecordView(ctx context.Context, threadID uuid.UUID, userID *uuid.UUID, remoteAddr string) (*forumDto.ViewResult, error) {
	if _, err := s.findThread(ctx, threadID); err != nil {
		return nil, err
	}

	viewerKey := ViewerKey(userID, remoteAddr)

	newView, err := s.repo.RecordView(ctx, threadID, viewerKey)
	if err != nil {
		return nil, err
	}

	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	return &forumDto.ViewResult{
		ViewCount: thread.ViewCount,
		NewView:   newView,
	}, nil
}

// ViewerKey derives the view-dedup identity: the user id when authenticated,
// the network address otherwise.
func ViewerKey(userID *uuid.UUID, remoteAddr string) string {
	if userID != nil {
		return "u:" + userID.String()
	}
	return "ip:" + remoteAddr
}

func (s *forumService) CalculateHotScore(ctx context.Context, threadID uuid.UUID) (float64, error) {
	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return 0, err
	}

	score := HotScore(
		thread.UpvoteCount,
		thread.DownvoteCount,
		thread.ReplyCount,
		thread.ViewCount,
		s.now().Sub(thread.CreatedAt),
	)

	if err := s.repo.UpdateHotScore(ctx, threadID, score); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.New(404, "thread not found", apperror.ErrNotFound)
		}
		return 0, err
	}

	return score, nil
}
