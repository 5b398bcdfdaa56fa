package services

import (
	"context"
	"testing"
	"time"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/config"
	"github.com/arnold/couples-api/internal/database"
	"github.com/arnold/couples-api/internal/models"
	"github.com/arnold/couples-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type testEnv struct {
	store       *store.Store
	couples     *CoupleService
	challenges  *ChallengeService
	tasks       *TaskService
	completions *CompletionService
	activity    *ActivityService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Connect(&config.Config{DatabaseURL: ":memory:", LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	st := store.New(db)
	log := zap.NewNop()
	activity := NewActivityService(st, log)
	return &testEnv{
		store:       st,
		couples:     NewCoupleService(st, activity, log),
		challenges:  NewChallengeService(st, activity, log),
		tasks:       NewTaskService(st, activity, log),
		completions: NewCompletionService(st, activity, log),
		activity:    activity,
	}
}

func (e *testEnv) user(t *testing.T, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name}
	p := &models.UserAuthProvider{Provider: models.ProviderLocal, Email: email}
	if err := e.store.CreateUser(context.Background(), u, p); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// pair invites b from a and accepts it, returning the active couple.
func (e *testEnv) pair(t *testing.T, a *models.User, b *models.User, bEmail string) *models.CoupleView {
	t.Helper()
	ctx := context.Background()
	invite, err := e.couples.CreateInvite(ctx, a.ID, bEmail)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	view, err := e.couples.AcceptInvite(ctx, b.ID, invite.ID)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	return view
}

func (e *testEnv) challenge(t *testing.T, userID uuid.UUID) *models.Challenge {
	t.Helper()
	start := time.Now().UTC().Add(-time.Hour)
	c, err := e.challenges.CreateChallenge(context.Background(), userID, models.CreateChallengeInput{
		Name:       "March",
		StartDate:  start,
		EndDate:    start.Add(30 * 24 * time.Hour),
		PeriodType: models.PeriodMonthly,
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return c
}

func (e *testEnv) task(t *testing.T, userID, challengeID uuid.UUID, points int, maxCompletions *int) *models.Task {
	t.Helper()
	task, err := e.tasks.CreateTask(context.Background(), userID, models.CreateTaskInput{
		ChallengeID:    challengeID,
		Name:           "Cook dinner",
		Points:         points,
		MaxCompletions: maxCompletions,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func (e *testEnv) complete(t *testing.T, userID, taskID uuid.UUID) *models.TaskCompletion {
	t.Helper()
	c, err := e.completions.CompleteTask(context.Background(), userID, models.CompleteTaskInput{TaskID: taskID})
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	return c
}

func wantKind(t *testing.T, err error, kind apperrors.Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error %q, got nil", kind, msg)
	}
	if got := apperrors.KindOf(err); got != kind {
		t.Fatalf("kind = %s, want %s (err: %v)", got, kind, err)
	}
	if msg != "" && err.Error() != msg {
		t.Errorf("message = %q, want %q", err.Error(), msg)
	}
}

func intPtr(v int) *int { return &v }
