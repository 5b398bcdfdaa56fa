package services

import (
	"context"
	"sync"
	"testing"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/google/uuid"
)

func TestCompleteTaskMaxCompletions(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")
	ch := e.challenge(t, a.ID)
	task := e.task(t, a.ID, ch.ID, 10, intPtr(1))

	e.complete(t, a.ID, task.ID)
	_, err := e.completions.CompleteTask(ctx, a.ID, models.CompleteTaskInput{TaskID: task.ID})
	wantKind(t, err, apperrors.KindBadRequest, "Task has reached max completions")
}

func TestConcurrentCompletionsRespectCap(t *testing.T) {
	e := setupTestEnv(t)
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")
	ch := e.challenge(t, a.ID)
	task := e.task(t, a.ID, ch.ID, 10, intPtr(3))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.completions.CompleteTask(context.Background(), a.ID, models.CompleteTaskInput{TaskID: task.ID})
		}()
	}
	wg.Wait()

	n, err := e.store.CountCompletions(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("completions = %d, want 3", n)
	}
}

func TestCompleteTaskOnlyOwner(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")
	ch := e.challenge(t, a.ID)
	task := e.task(t, a.ID, ch.ID, 10, nil)

	_, err := e.completions.CompleteTask(ctx, b.ID, models.CompleteTaskInput{TaskID: task.ID})
	wantKind(t, err, apperrors.KindBadRequest, "You can only complete your own tasks")

	_, err = e.completions.CompleteTask(ctx, a.ID, models.CompleteTaskInput{TaskID: uuid.New()})
	wantKind(t, err, apperrors.KindNotFound, "Task not found")
}

func TestCompletionSnapshotsPoints(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")
	ch := e.challenge(t, a.ID)
	task := e.task(t, a.ID, ch.ID, 10, nil)

	photo := "photos/run.jpg"
	done, err := e.completions.CompleteTask(ctx, a.ID, models.CompleteTaskInput{TaskID: task.ID, PhotoRef: &photo})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.PointsEarned != 10 || done.CompletedAt.IsZero() || *done.PhotoURL != photo {
		t.Errorf("completion = %+v", done)
	}

	points := 99
	if _, err := e.tasks.UpdateTask(ctx, a.ID, task.ID, models.TaskPatch{Points: &points}); err != nil {
		t.Fatalf("update: %v", err)
	}
	later := e.complete(t, a.ID, task.ID)

	board, _ := e.challenges.Scoreboard(ctx, a.ID, ch.ID)
	if board.First.Points != 109 {
		t.Errorf("points = %d, want 109", board.First.Points)
	}
	if later.PointsEarned != 99 {
		t.Errorf("later PointsEarned = %d, want 99", later.PointsEarned)
	}

	history, err := e.completions.ListCompletions(ctx, b.ID, ch.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 2 || history[0].ID != later.ID {
		t.Errorf("history = %+v, want newest first", history)
	}
}

func TestCompleteTaskOnFinishedChallenge(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")
	ch := e.challenge(t, a.ID)
	task := e.task(t, a.ID, ch.ID, 10, nil)
	e.complete(t, a.ID, task.ID)
	if _, err := e.challenges.FinishChallenge(ctx, a.ID, ch.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	_, err := e.completions.CompleteTask(ctx, a.ID, models.CompleteTaskInput{TaskID: task.ID})
	wantKind(t, err, apperrors.KindBadRequest, "Only tasks from active challenges can be completed")
}

func TestUndoCompletion(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")
	ch := e.challenge(t, a.ID)
	task := e.task(t, a.ID, ch.ID, 10, intPtr(1))
	done := e.complete(t, a.ID, task.ID)

	err := e.completions.UndoCompletion(ctx, b.ID, done.ID)
	wantKind(t, err, apperrors.KindBadRequest, "You can only undo your own completions")

	if err := e.completions.UndoCompletion(ctx, a.ID, done.ID); err != nil {
		t.Fatalf("undo: %v", err)
	}
	// The cap frees up again.
	e.complete(t, a.ID, task.ID)

	err = e.completions.UndoCompletion(ctx, a.ID, done.ID)
	wantKind(t, err, apperrors.KindNotFound, "Completion not found")
}

func TestActivityFeed(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")
	ch := e.challenge(t, a.ID)
	e.complete(t, a.ID, e.task(t, a.ID, ch.ID, 10, nil).ID)

	page, err := e.activity.List(ctx, b.ID, 0, 100)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if page.Page != 1 || page.Limit != defaultActivityLimit {
		t.Errorf("page/limit = %d/%d, want defaults", page.Page, page.Limit)
	}
	// invite accepted, challenge created, task created, task completed
	if page.Total != 4 {
		t.Errorf("total = %d, want 4", page.Total)
	}
	if len(page.Activities) > 0 && page.Activities[0].ActionType != models.ActionTaskCompleted {
		t.Errorf("newest action = %s, want %s", page.Activities[0].ActionType, models.ActionTaskCompleted)
	}
}

func TestCompleteTaskAfterLeavingCouple(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")
	ch := e.challenge(t, a.ID)
	task := e.task(t, a.ID, ch.ID, 10, nil)

	if err := e.couples.LeaveCouple(ctx, b.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	_, err := e.completions.CompleteTask(ctx, a.ID, models.CompleteTaskInput{TaskID: task.ID})
	wantKind(t, err, apperrors.KindBadRequest, "You don't have an active couple")

	n, err := e.store.CountCompletions(ctx, task.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("completions = %d, want 0", n)
	}
}
