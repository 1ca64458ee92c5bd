package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/mentorhub/internal/entity"
	"anoa.com/mentorhub/internal/modules/forum/voting"
	"anoa.com/mentorhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type voteKey struct {
	votableType string
	votableID   uuid.UUID
	userID      uuid.UUID
}

type fakeForumRepo struct {
	threads map[uuid.UUID]*entity.ForumThread
	replies map[uuid.UUID]*entity.ForumReply
	votes   map[voteKey]string
	views   map[string]bool
}

func newFakeForumRepo() *fakeForumRepo {
	return &fakeForumRepo{
		threads: make(map[uuid.UUID]*entity.ForumThread),
		replies: make(map[uuid.UUID]*entity.ForumReply),
		votes:   make(map[voteKey]string),
		views:   make(map[string]bool),
	}
}

func (f *fakeForumRepo) CreateThread(_ context.Context, thread *entity.ForumThread) error {
	if thread.ID == uuid.Nil {
		thread.ID = uuid.New()
	}
	stored := *thread
	f.threads[thread.ID] = &stored
	return nil
}

func (f *fakeForumRepo) FindThreadByID(_ context.Context, id uuid.UUID) (*entity.ForumThread, error) {
	t, ok := f.threads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *t
	return &found, nil
}

func (f *fakeForumRepo) FindAllThreads(_ context.Context, _ *uuid.UUID, _, _ string, _, _ int) ([]entity.ForumThread, int64, error) {
	var out []entity.ForumThread
	for _, t := range f.threads {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeForumRepo) CreateReply(_ context.Context, reply *entity.ForumReply) error {
	if _, ok := f.threads[reply.ThreadID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if reply.ID == uuid.Nil {
		reply.ID = uuid.New()
	}
	stored := *reply
	f.replies[reply.ID] = &stored
	f.threads[reply.ThreadID].ReplyCount++
	return nil
}

func (f *fakeForumRepo) DeleteThread(_ context.Context, id uuid.UUID) error {
	if _, ok := f.threads[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.threads, id)
	for replyID, r := range f.replies {
		if r.ThreadID == id {
			delete(f.replies, replyID)
		}
	}
	return nil
}

func (f *fakeForumRepo) DeleteReply(_ context.Context, id uuid.UUID) error {
	r, ok := f.replies[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.replies, id)
	if t, ok := f.threads[r.ThreadID]; ok && t.ReplyCount > 0 {
		t.ReplyCount--
	}
	return nil
}

func (f *fakeForumRepo) FindReplyByID(_ context.Context, id uuid.UUID) (*entity.ForumReply, error) {
	r, ok := f.replies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *r
	return &found, nil
}

func (f *fakeForumRepo) FindRepliesByThread(_ context.Context, threadID uuid.UUID, _, _ int) ([]entity.ForumReply, int64, error) {
	var out []entity.ForumReply
	for _, r := range f.replies {
		if r.ThreadID == threadID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeForumRepo) UpdateHotScore(_ context.Context, threadID uuid.UUID, score float64) error {
	t, ok := f.threads[threadID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.HotScore = score
	return nil
}

func (f *fakeForumRepo) FindCategoryByID(_ context.Context, _ uuid.UUID) (*entity.Category, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeForumRepo) ToggleVote(_ context.Context, votableType string, votableID, userID uuid.UUID, voteType string) (string, error) {
	key := voteKey{votableType, votableID, userID}
	out := voting.Apply(f.votes[key], voteType)

	if out.Next == voting.None {
		delete(f.votes, key)
	} else {
		f.votes[key] = out.Next
	}

	switch votableType {
	case entity.VotableReply:
		r, ok := f.replies[votableID]
		if !ok {
			return "", gorm.ErrRecordNotFound
		}
		r.UpvoteCount += out.UpDelta
		r.DownvoteCount += out.DownDelta
	default:
		t, ok := f.threads[votableID]
		if !ok {
			return "", gorm.ErrRecordNotFound
		}
		t.UpvoteCount += out.UpDelta
		t.DownvoteCount += out.DownDelta
	}

	return out.Next, nil
}

func (f *fakeForumRepo) GetVote(_ context.Context, votableType string, votableID, userID uuid.UUID) (*entity.ForumVote, error) {
	v, ok := f.votes[voteKey{votableType, votableID, userID}]
	if !ok {
		return nil, nil
	}
	return &entity.ForumVote{VotableType: votableType, VotableID: votableID, UserID: userID, VoteType: v}, nil
}

func (f *fakeForumRepo) VoteCounts(_ context.Context, votableType string, votableID uuid.UUID) (int, int, error) {
	if votableType == entity.VotableReply {
		r, ok := f.replies[votableID]
		if !ok {
			return 0, 0, gorm.ErrRecordNotFound
		}
		return r.UpvoteCount, r.DownvoteCount, nil
	}
	t, ok := f.threads[votableID]
	if !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	return t.UpvoteCount, t.DownvoteCount, nil
}

func (f *fakeForumRepo) RecordView(_ context.Context, threadID uuid.UUID, viewerKey string) (bool, error) {
	t, ok := f.threads[threadID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	key := threadID.String() + "/" + viewerKey
	if f.views[key] {
		return false, nil
	}
	f.views[key] = true
	t.ViewCount++
	return true, nil
}

func newEngagementFixture(t *testing.T) (*forumService, *fakeForumRepo, uuid.UUID) {
	t.Helper()

	repo := newFakeForumRepo()
	svc := NewForumService(repo, nil, nil, nil, time.Minute).(*forumService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	thread := &entity.ForumThread{
		UserID:    uuid.New(),
		Title:     "How to prepare for a systems interview",
		Content:   "Looking for advice",
		Status:    entity.ThreadOpen,
		CreatedAt: svc.now().Add(-2 * time.Hour),
	}
	if err := repo.CreateThread(context.Background(), thread); err != nil {
		t.Fatalf("seed thread: %v", err)
	}
	return svc, repo, thread.ID
}

func wantAppErrorCode(t *testing.T, err error, want int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an AppError", err)
	}
	if appErr.Code != want {
		t.Fatalf("error code = %d, want %d (%v)", appErr.Code, want, err)
	}
}

func TestVoteToggleCycle(t *testing.T) {
	svc, _, threadID := newEngagementFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	// Upvote.
	res, err := svc.VoteOn(ctx, userID, entity.VotableThread, threadID, voting.Up)
	if err != nil {
		t.Fatalf("upvote: %v", err)
	}
	if res.UpvoteCount != 1 || res.DownvoteCount != 0 {
		t.Errorf("after upvote: %d/%d, want 1/0", res.UpvoteCount, res.DownvoteCount)
	}
	if res.UserVote == nil || *res.UserVote != voting.Up {
		t.Errorf("user_vote = %v, want upvote", res.UserVote)
	}

	// Switch to downvote.
	res, err = svc.VoteOn(ctx, userID, entity.VotableThread, threadID, voting.Down)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if res.UpvoteCount != 0 || res.DownvoteCount != 1 {
		t.Errorf("after switch: %d/%d, want 0/1", res.UpvoteCount, res.DownvoteCount)
	}

	// Repeat downvote removes it.
	res, err = svc.VoteOn(ctx, userID, entity.VotableThread, threadID, voting.Down)
	if err != nil {
		t.Fatalf("unvote: %v", err)
	}
	if res.UpvoteCount != 0 || res.DownvoteCount != 0 {
		t.Errorf("after unvote: %d/%d, want 0/0", res.UpvoteCount, res.DownvoteCount)
	}
	if res.UserVote != nil {
		t.Errorf("user_vote = %q, want null", *res.UserVote)
	}
}

func TestVoteOnInvalidType(t *testing.T) {
	svc, _, threadID := newEngagementFixture(t)

	_, err := svc.VoteOn(context.Background(), uuid.New(), entity.VotableThread, threadID, "like")
	wantAppErrorCode(t, err, 400)
}

func TestVoteOnMissingVotable(t *testing.T) {
	svc, _, _ := newEngagementFixture(t)

	_, err := svc.VoteOn(context.Background(), uuid.New(), entity.VotableThread, uuid.New(), voting.Up)
	wantAppErrorCode(t, err, 404)

	_, err = svc.VoteOn(context.Background(), uuid.New(), entity.VotableReply, uuid.New(), voting.Up)
	wantAppErrorCode(t, err, 404)
}

func TestVoteOnReply(t *testing.T) {
	svc, repo, threadID := newEngagementFixture(t)
	ctx := context.Background()

	reply := &entity.ForumReply{ThreadID: threadID, UserID: uuid.New(), Content: "try mock interviews"}
	if err := repo.CreateReply(ctx, reply); err != nil {
		t.Fatalf("seed reply: %v", err)
	}

	res, err := svc.VoteOn(ctx, uuid.New(), entity.VotableReply, reply.ID, voting.Up)
	if err != nil {
		t.Fatalf("vote on reply: %v", err)
	}
	if res.UpvoteCount != 1 {
		t.Errorf("reply upvotes = %d, want 1", res.UpvoteCount)
	}

	// The thread's own counters are untouched.
	thread, _ := repo.FindThreadByID(ctx, threadID)
	if thread.UpvoteCount != 0 {
		t.Errorf("thread upvotes = %d, want 0", thread.UpvoteCount)
	}
}

func TestGetVoteAnonymous(t *testing.T) {
	svc, _, threadID := newEngagementFixture(t)

	res, err := svc.GetVote(context.Background(), nil, entity.VotableThread, threadID)
	if err != nil {
		t.Fatalf("anonymous GetVote: %v", err)
	}
	if res.UserVote != nil {
		t.Errorf("anonymous user_vote = %q, want null", *res.UserVote)
	}
}

func TestGetVoteAuthenticated(t *testing.T) {
	svc, _, threadID := newEngagementFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.VoteOn(ctx, userID, entity.VotableThread, threadID, voting.Up); err != nil {
		t.Fatalf("vote: %v", err)
	}

	res, err := svc.GetVote(ctx, &userID, entity.VotableThread, threadID)
	if err != nil {
		t.Fatalf("GetVote: %v", err)
	}
	if res.UserVote == nil || *res.UserVote != voting.Up {
		t.Errorf("user_vote = %v, want upvote", res.UserVote)
	}

	// A different user sees the counts but no personal vote.
	otherID := uuid.New()
	res, err = svc.GetVote(ctx, &otherID, entity.VotableThread, threadID)
	if err != nil {
		t.Fatalf("GetVote other: %v", err)
	}
	if res.UserVote != nil {
		t.Errorf("other user_vote = %q, want null", *res.UserVote)
	}
	if res.UpvoteCount != 1 {
		t.Errorf("other sees %d upvotes, want 1", res.UpvoteCount)
	}
}

func TestRecordViewDedup(t *testing.T) {
	svc, _, threadID := newEngagementFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.RecordView(ctx, threadID, &userID, "203.0.113.7")
	if err != nil {
		t.Fatalf("first view: %v", err)
	}
	if !first.NewView || first.ViewCount != 1 {
		t.Errorf("first view: new=%v count=%d, want true/1", first.NewView, first.ViewCount)
	}

	// Same user again, even from a different address.
	second, err := svc.RecordView(ctx, threadID, &userID, "198.51.100.9")
	if err != nil {
		t.Fatalf("second view: %v", err)
	}
	if second.NewView || second.ViewCount != 1 {
		t.Errorf("repeat view: new=%v count=%d, want false/1", second.NewView, second.ViewCount)
	}

	// An anonymous viewer from a fresh address counts once.
	anon, err := svc.RecordView(ctx, threadID, nil, "203.0.113.7")
	if err != nil {
		t.Fatalf("anon view: %v", err)
	}
	if !anon.NewView || anon.ViewCount != 2 {
		t.Errorf("anon view: new=%v count=%d, want true/2", anon.NewView, anon.ViewCount)
	}

	anonAgain, err := svc.RecordView(ctx, threadID, nil, "203.0.113.7")
	if err != nil {
		t.Fatalf("anon repeat: %v", err)
	}
	if anonAgain.NewView || anonAgain.ViewCount != 2 {
		t.Errorf("anon repeat: new=%v count=%d, want false/2", anonAgain.NewView, anonAgain.ViewCount)
	}
}

func TestRecordViewMissingThread(t *testing.T) {
	svc, _, _ := newEngagementFixture(t)

	_, err := svc.RecordView(context.Background(), uuid.New(), nil, "203.0.113.7")
	wantAppErrorCode(t, err, 404)
}

func TestViewerKey(t *testing.T) {
	userID := uuid.New()
	if got := ViewerKey(&userID, "203.0.113.7"); got != "u:"+userID.String() {
		t.Errorf("ViewerKey with user = %q", got)
	}
	if got := ViewerKey(nil, "203.0.113.7"); got != "ip:203.0.113.7" {
		t.Errorf("ViewerKey anonymous = %q", got)
	}
}

func TestCalculateHotScorePersists(t *testing.T) {
	svc, repo, threadID := newEngagementFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.VoteOn(ctx, userID, entity.VotableThread, threadID, voting.Up); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := svc.RecordView(ctx, threadID, &userID, ""); err != nil {
		t.Fatalf("view: %v", err)
	}

	score, err := svc.CalculateHotScore(ctx, threadID)
	if err != nil {
		t.Fatalf("CalculateHotScore: %v", err)
	}
	if score <= 0 {
		t.Errorf("score = %v, want > 0", score)
	}

	thread, _ := repo.FindThreadByID(ctx, threadID)
	if thread.HotScore != score {
		t.Errorf("stored score %v != returned %v", thread.HotScore, score)
	}

	// More engagement strictly raises the recomputed score.
	otherID := uuid.New()
	if _, err := svc.VoteOn(ctx, otherID, entity.VotableThread, threadID, voting.Up); err != nil {
		t.Fatalf("second vote: %v", err)
	}
	higher, err := svc.CalculateHotScore(ctx, threadID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if higher <= score {
		t.Errorf("score after more votes = %v, want > %v", higher, score)
	}
}

func TestCalculateHotScoreMissingThread(t *testing.T) {
	svc, _, _ := newEngagementFixture(t)

	_, err := svc.CalculateHotScore(context.Background(), uuid.New())
	wantAppErrorCode(t, err, 404)
}
