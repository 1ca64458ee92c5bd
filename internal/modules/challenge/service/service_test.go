package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/mentorhub/internal/entity"
	challengeDto "anoa.com/mentorhub/internal/modules/challenge/dto"
	pointsDto "anoa.com/mentorhub/internal/modules/points/dto"
	"anoa.com/mentorhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeChallengeRepo struct {
	challenges     map[uuid.UUID]*entity.Challenge
	participations map[uuid.UUID]*entity.ChallengeParticipation
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{
		challenges:     make(map[uuid.UUID]*entity.Challenge),
		participations: make(map[uuid.UUID]*entity.ChallengeParticipation),
	}
}

func (f *fakeChallengeRepo) Create(_ context.Context, challenge *entity.Challenge) error {
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	stored := *challenge
	f.challenges[challenge.ID] = &stored
	return nil
}

func (f *fakeChallengeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *c
	return &found, nil
}

func (f *fakeChallengeRepo) FindAll(_ context.Context, _, _ int) ([]entity.Challenge, int64, error) {
	var out []entity.Challenge
	for _, c := range f.challenges {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeChallengeRepo) CreateParticipation(_ context.Context, p *entity.ChallengeParticipation) error {
	for _, existing := range f.participations {
		if existing.ChallengeID == p.ChallengeID && existing.UserID == p.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	f.participations[p.ID] = &stored
	return nil
}

func (f *fakeChallengeRepo) FindParticipation(_ context.Context, challengeID, userID uuid.UUID) (*entity.ChallengeParticipation, error) {
	for _, p := range f.participations {
		if p.ChallengeID == challengeID && p.UserID == userID {
			found := *p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeChallengeRepo) FindParticipationByID(_ context.Context, id uuid.UUID) (*entity.ChallengeParticipation, error) {
	p, ok := f.participations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *p
	if c, ok := f.challenges[p.ChallengeID]; ok {
		found.Challenge = *c
	}
	return &found, nil
}

func (f *fakeChallengeRepo) UpdateParticipation(_ context.Context, p *entity.ChallengeParticipation) error {
	if _, ok := f.participations[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *p
	f.participations[p.ID] = &stored
	return nil
}

func (f *fakeChallengeRepo) FindParticipantsByChallenge(_ context.Context, challengeID uuid.UUID, _, _ int) ([]entity.ChallengeParticipation, int64, error) {
	var out []entity.ChallengeParticipation
	for _, p := range f.participations {
		if p.ChallengeID == challengeID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeChallengeRepo) FindParticipationsByUser(_ context.Context, userID uuid.UUID) ([]entity.ChallengeParticipation, error) {
	var out []entity.ChallengeParticipation
	for _, p := range f.participations {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// fakeAwarder records award calls; AwardForAction echoes a fixed amount to
// verify plumbing without reimplementing the window guard (the points
// service has its own tests for that).
type fakeAwarder struct {
	actionAwards []string
	fixedAwards  []int
	perAction    int
}

func (f *fakeAwarder) AwardForAction(_ context.Context, _ uuid.UUID, actionType, _ string) (int, error) {
	f.actionAwards = append(f.actionAwards, actionType)
	return f.perAction, nil
}

func (f *fakeAwarder) AwardFixed(_ context.Context, _ uuid.UUID, _, _ string, points int) error {
	f.fixedAwards = append(f.fixedAwards, points)
	return nil
}

func (f *fakeAwarder) GetBalance(_ context.Context, userID uuid.UUID) (*entity.PointsBalance, error) {
	return &entity.PointsBalance{UserID: userID}, nil
}

func (f *fakeAwarder) GetHistory(_ context.Context, _ uuid.UUID, _, _ int) ([]entity.PointActionLog, int64, error) {
	return nil, 0, nil
}

func (f *fakeAwarder) RecomputeBalance(_ context.Context, userID uuid.UUID) (*entity.PointsBalance, error) {
	return &entity.PointsBalance{UserID: userID}, nil
}

func (f *fakeAwarder) GetLeaderboard(_ context.Context, _ int) ([]pointsDto.LeaderboardEntry, error) {
	return nil, nil
}

type challengeFixture struct {
	svc         *challengeService
	repo        *fakeChallengeRepo
	awarder     *fakeAwarder
	adminID     uuid.UUID
	challengeID uuid.UUID
}

func newChallengeFixture(t *testing.T) *challengeFixture {
	t.Helper()

	repo := newFakeChallengeRepo()
	awarder := &fakeAwarder{perAction: 5}
	svc := NewChallengeService(repo, awarder, nil).(*challengeService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	adminID := uuid.New()
	created, err := svc.Create(context.Background(), adminID, challengeDto.CreateChallengeRequest{
		Title:       "Build a CLI tool",
		Description: "Ship something useful",
		PointReward: 100,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	return &challengeFixture{svc: svc, repo: repo, awarder: awarder, adminID: adminID, challengeID: created.ID}
}

func challengeErrCode(t *testing.T, err error, want int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an AppError", err)
	}
	if appErr.Code != want {
		t.Fatalf("error code = %d, want %d (%v)", appErr.Code, want, err)
	}
}

func TestCreateChallengePastDeadline(t *testing.T) {
	fx := newChallengeFixture(t)

	past := fx.svc.now().Add(-time.Hour)
	_, err := fx.svc.Create(context.Background(), fx.adminID, challengeDto.CreateChallengeRequest{
		Title:       "Too late",
		PointReward: 10,
		Deadline:    &past,
	})
	challengeErrCode(t, err, 400)
}

func TestJoinAwardsPoints(t *testing.T) {
	fx := newChallengeFixture(t)
	userID := uuid.New()

	result, err := fx.svc.Join(context.Background(), fx.challengeID, userID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if result.Status != string(entity.ParticipationJoined) {
		t.Errorf("status = %s, want joined", result.Status)
	}
	if result.PointsAwarded != 5 {
		t.Errorf("points awarded = %d, want 5", result.PointsAwarded)
	}
	if len(fx.awarder.actionAwards) != 1 || fx.awarder.actionAwards[0] != entity.ActionChallengeJoined {
		t.Errorf("award calls = %v, want one challenge_joined", fx.awarder.actionAwards)
	}
}

func TestJoinTwiceConflicts(t *testing.T) {
	fx := newChallengeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := fx.svc.Join(ctx, fx.challengeID, userID); err != nil {
		t.Fatalf("first join: %v", err)
	}

	_, err := fx.svc.Join(ctx, fx.challengeID, userID)
	challengeErrCode(t, err, 409)

	// The conflicting join must not reach the points layer again.
	if len(fx.awarder.actionAwards) != 1 {
		t.Errorf("award calls = %d, want 1", len(fx.awarder.actionAwards))
	}
}

func TestJoinMissingChallenge(t *testing.T) {
	fx := newChallengeFixture(t)

	_, err := fx.svc.Join(context.Background(), uuid.New(), uuid.New())
	challengeErrCode(t, err, 404)
}

func TestJoinAfterDeadline(t *testing.T) {
	fx := newChallengeFixture(t)

	deadline := fx.svc.now().Add(time.Hour)
	created, err := fx.svc.Create(context.Background(), fx.adminID, challengeDto.CreateChallengeRequest{
		Title:       "Short window",
		PointReward: 20,
		Deadline:    &deadline,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fx.svc.now = func() time.Time { return deadline.Add(time.Minute) }
	_, joinErr := fx.svc.Join(context.Background(), created.ID, uuid.New())
	challengeErrCode(t, joinErr, 400)
}

func TestSubmitFlow(t *testing.T) {
	fx := newChallengeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := fx.svc.Join(ctx, fx.challengeID, userID); err != nil {
		t.Fatalf("join: %v", err)
	}

	result, err := fx.svc.Submit(ctx, fx.challengeID, userID, challengeDto.SubmitChallengeRequest{
		SubmissionURL: "https://github.com/user/tool",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != string(entity.ParticipationSubmitted) {
		t.Errorf("status = %s, want submitted", result.Status)
	}
	if result.SubmittedAt == nil {
		t.Error("SubmittedAt not set")
	}

	// Submitting again from the submitted state is rejected.
	_, err = fx.svc.Submit(ctx, fx.challengeID, userID, challengeDto.SubmitChallengeRequest{
		SubmissionURL: "https://github.com/user/tool-v2",
	})
	challengeErrCode(t, err, 400)
}

func TestSubmitWithoutJoin(t *testing.T) {
	fx := newChallengeFixture(t)

	_, err := fx.svc.Submit(context.Background(), fx.challengeID, uuid.New(), challengeDto.SubmitChallengeRequest{
		SubmissionURL: "https://github.com/user/tool",
	})
	challengeErrCode(t, err, 404)
}

func TestApprovePaysFullReward(t *testing.T) {
	fx := newChallengeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	fx.svc.Join(ctx, fx.challengeID, userID)
	submitted, err := fx.svc.Submit(ctx, fx.challengeID, userID, challengeDto.SubmitChallengeRequest{
		SubmissionURL: "https://github.com/user/tool",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, err := fx.svc.Approve(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if result.Status != string(entity.ParticipationApproved) {
		t.Errorf("status = %s, want approved", result.Status)
	}
	if result.PointsAwarded != 100 {
		t.Errorf("points awarded = %d, want full reward 100", result.PointsAwarded)
	}
	if len(fx.awarder.fixedAwards) != 1 || fx.awarder.fixedAwards[0] != 100 {
		t.Errorf("fixed awards = %v, want [100]", fx.awarder.fixedAwards)
	}

	// A second approval of the same participation is rejected.
	_, err = fx.svc.Approve(ctx, submitted.ID)
	challengeErrCode(t, err, 400)
}

func TestRejectPaysNothing(t *testing.T) {
	fx := newChallengeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	fx.svc.Join(ctx, fx.challengeID, userID)
	submitted, err := fx.svc.Submit(ctx, fx.challengeID, userID, challengeDto.SubmitChallengeRequest{
		SubmissionURL: "https://github.com/user/tool",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	result, err := fx.svc.Reject(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if result.Status != string(entity.ParticipationRejected) {
		t.Errorf("status = %s, want rejected", result.Status)
	}
	if len(fx.awarder.fixedAwards) != 0 {
		t.Errorf("fixed awards = %v, want none", fx.awarder.fixedAwards)
	}
}

func TestApproveRequiresSubmission(t *testing.T) {
	fx := newChallengeFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	joined, err := fx.svc.Join(ctx, fx.challengeID, userID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = fx.svc.Approve(ctx, joined.ID)
	challengeErrCode(t, err, 400)
}
