package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/mentorhub/internal/entity"
	"github.com/google/uuid"
)

type fakePointsRepo struct {
	log      []entity.PointActionLog
	balances map[uuid.UUID]int
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{balances: make(map[uuid.UUID]int)}
}

func (f *fakePointsRepo) CountActionsSince(_ context.Context, userID uuid.UUID, actionType string, since time.Time) (int64, error) {
	var count int64
	for _, e := range f.log {
		if e.UserID == userID && e.ActionType == actionType && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakePointsRepo) Award(_ context.Context, entry *entity.PointActionLog) error {
	f.log = append(f.log, *entry)
	if entry.PointsAwarded != 0 {
		f.balances[entry.UserID] += entry.PointsAwarded
	}
	return nil
}

func (f *fakePointsRepo) GetBalance(_ context.Context, userID uuid.UUID) (*entity.PointsBalance, error) {
	return &entity.PointsBalance{UserID: userID, Points: f.balances[userID]}, nil
}

func (f *fakePointsRepo) GetHistory(_ context.Context, userID uuid.UUID, offset, limit int) ([]entity.PointActionLog, int64, error) {
	var entries []entity.PointActionLog
	for _, e := range f.log {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	total := int64(len(entries))
	if offset > len(entries) {
		offset = len(entries)
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end], total, nil
}

func (f *fakePointsRepo) SumAwarded(_ context.Context, userID uuid.UUID) (int, error) {
	sum := 0
	for _, e := range f.log {
		if e.UserID == userID {
			sum += e.PointsAwarded
		}
	}
	return sum, nil
}

func (f *fakePointsRepo) SetBalance(_ context.Context, userID uuid.UUID, points int) error {
	f.balances[userID] = points
	return nil
}

func (f *fakePointsRepo) TopBalances(_ context.Context, limit int) ([]entity.PointsBalance, error) {
	var balances []entity.PointsBalance
	for id, pts := range f.balances {
		balances = append(balances, entity.PointsBalance{UserID: id, Points: pts})
	}
	if len(balances) > limit {
		balances = balances[:limit]
	}
	return balances, nil
}

func newTestPointsService(repo *fakePointsRepo, now time.Time) (*pointsService, *time.Time) {
	clock := now
	svc := NewPointsService(repo, nil).(*pointsService)
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestAwardForActionJoinCap(t *testing.T) {
	repo := newFakePointsRepo()
	svc, clock := newTestPointsService(repo, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	userID := uuid.New()
	ctx := context.Background()

	// First five joins inside the window each earn 5 points.
	for i := 0; i < 5; i++ {
		awarded, err := svc.AwardForAction(ctx, userID, entity.ActionChallengeJoined, uuid.NewString())
		if err != nil {
			t.Fatalf("join %d: %v", i+1, err)
		}
		if awarded != 5 {
			t.Fatalf("join %d awarded %d points, want 5", i+1, awarded)
		}
		*clock = clock.Add(time.Minute)
	}

	// The sixth join within 24h is still recorded but earns nothing.
	awarded, err := svc.AwardForAction(ctx, userID, entity.ActionChallengeJoined, uuid.NewString())
	if err != nil {
		t.Fatalf("capped join: %v", err)
	}
	if awarded != 0 {
		t.Errorf("capped join awarded %d points, want 0", awarded)
	}

	balance, err := svc.GetBalance(ctx, userID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance.Points != 25 {
		t.Errorf("balance = %d, want 25", balance.Points)
	}
	if len(repo.log) != 6 {
		t.Errorf("log has %d entries, want 6 (capped action still logged)", len(repo.log))
	}
}

func TestAwardForActionWindowSlides(t *testing.T) {
	repo := newFakePointsRepo()
	svc, clock := newTestPointsService(repo, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	userID := uuid.New()
	ctx := context.Background()

	// Exhaust the submission cap of 3.
	for i := 0; i < 3; i++ {
		if awarded, _ := svc.AwardForAction(ctx, userID, entity.ActionChallengeSubmitted, uuid.NewString()); awarded != 10 {
			t.Fatalf("submission %d awarded %d, want 10", i+1, awarded)
		}
	}
	if awarded, _ := svc.AwardForAction(ctx, userID, entity.ActionChallengeSubmitted, uuid.NewString()); awarded != 0 {
		t.Fatalf("capped submission awarded %d, want 0", awarded)
	}

	// Once the earlier actions fall out of the 24h window, awards resume.
	*clock = clock.Add(25 * time.Hour)
	if awarded, _ := svc.AwardForAction(ctx, userID, entity.ActionChallengeSubmitted, uuid.NewString()); awarded != 10 {
		t.Errorf("submission after window slid awarded %d, want 10", awarded)
	}
}

func TestAwardForActionCapsAreIndependent(t *testing.T) {
	repo := newFakePointsRepo()
	svc, _ := newTestPointsService(repo, time.Now())
	userID := uuid.New()
	ctx := context.Background()

	// Exhausting the join cap must not touch the submission cap.
	for i := 0; i < 5; i++ {
		svc.AwardForAction(ctx, userID, entity.ActionChallengeJoined, uuid.NewString())
	}
	if awarded, _ := svc.AwardForAction(ctx, userID, entity.ActionChallengeJoined, uuid.NewString()); awarded != 0 {
		t.Fatalf("join cap not reached as expected, awarded %d", awarded)
	}

	awarded, err := svc.AwardForAction(ctx, userID, entity.ActionChallengeSubmitted, uuid.NewString())
	if err != nil {
		t.Fatalf("submission: %v", err)
	}
	if awarded != 10 {
		t.Errorf("submission awarded %d, want 10", awarded)
	}
}

func TestAwardFixedBypassesCap(t *testing.T) {
	repo := newFakePointsRepo()
	svc, _ := newTestPointsService(repo, time.Now())
	userID := uuid.New()
	ctx := context.Background()

	// Approval rewards are admin-gated and never capped.
	for i := 0; i < 10; i++ {
		if err := svc.AwardFixed(ctx, userID, entity.ActionChallengeApproved, uuid.NewString(), 50); err != nil {
			t.Fatalf("AwardFixed %d: %v", i+1, err)
		}
	}

	balance, _ := svc.GetBalance(ctx, userID)
	if balance.Points != 500 {
		t.Errorf("balance = %d, want 500", balance.Points)
	}
}

func TestRecomputeBalanceRepairsDrift(t *testing.T) {
	repo := newFakePointsRepo()
	svc, _ := newTestPointsService(repo, time.Now())
	userID := uuid.New()
	ctx := context.Background()

	svc.AwardFixed(ctx, userID, entity.ActionChallengeApproved, uuid.NewString(), 30)
	svc.AwardForAction(ctx, userID, entity.ActionChallengeJoined, uuid.NewString())

	// Simulate a drifted stored balance.
	repo.balances[userID] = 9999

	balance, err := svc.RecomputeBalance(ctx, userID)
	if err != nil {
		t.Fatalf("RecomputeBalance: %v", err)
	}
	if balance.Points != 35 {
		t.Errorf("recomputed balance = %d, want 35", balance.Points)
	}
	if repo.balances[userID] != 35 {
		t.Errorf("stored balance = %d, want 35", repo.balances[userID])
	}
}
