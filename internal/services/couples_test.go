package services

import (
	"context"
	"testing"

	"github.com/arnold/couples-api/internal/apperrors"
	"github.com/arnold/couples-api/internal/models"
	"github.com/google/uuid"
)

func TestAcceptInvitePairsUsersAndCancelsOthers(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	c := e.user(t, "Carla", "carla@x.com")

	invite, err := e.couples.CreateInvite(ctx, a.ID, "B@X.com ")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if invite.Status != models.CouplePending || invite.InvitedAt == nil || *invite.InvitedEmail != "b@x.com" {
		t.Fatalf("invite = %+v", invite)
	}
	competing, err := e.couples.CreateInvite(ctx, c.ID, "b@x.com")
	if err != nil {
		t.Fatalf("create competing invite: %v", err)
	}

	view, err := e.couples.AcceptInvite(ctx, b.ID, invite.ID)
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	if view.Status != models.CoupleActive {
		t.Errorf("status = %s, want active", view.Status)
	}
	if view.Partner == nil || view.Partner.ID != b.ID || view.Initiator == nil || view.Initiator.ID != a.ID {
		t.Errorf("view partners = %+v / %+v", view.Initiator, view.Partner)
	}

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		u, _ := e.store.GetUser(ctx, id)
		if u.CoupleID == nil || *u.CoupleID != invite.ID {
			t.Errorf("user %s couple = %v, want %s", u.Name, u.CoupleID, invite.ID)
		}
	}

	other, _ := e.store.GetCouple(ctx, competing.ID)
	if other.Status != models.CoupleCancelled {
		t.Errorf("competing invite status = %s, want cancelled", other.Status)
	}
}

func TestCreateInviteValidation(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")

	_, err := e.couples.CreateInvite(ctx, a.ID, "ANA@x.com")
	wantKind(t, err, apperrors.KindBadRequest, "You cannot invite yourself")

	_, err = e.couples.CreateInvite(ctx, a.ID, "not-an-email")
	wantKind(t, err, apperrors.KindBadRequest, "Invalid email format")

	if _, err := e.couples.CreateInvite(ctx, a.ID, "b@x.com"); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	_, err = e.couples.CreateInvite(ctx, a.ID, "c@x.com")
	wantKind(t, err, apperrors.KindConflict, "You already have a couple or pending invitation")
}

func TestAtMostOneOpenCouplePerUser(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")

	_, err := e.couples.CreateInvite(ctx, b.ID, "someone@x.com")
	wantKind(t, err, apperrors.KindConflict, "")
}

func TestCancelInvite(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")

	invite, _ := e.couples.CreateInvite(ctx, a.ID, "b@x.com")

	err := e.couples.CancelInvite(ctx, b.ID, invite.ID)
	wantKind(t, err, apperrors.KindBadRequest, "You don't have permission to cancel this invitation")

	if err := e.couples.CancelInvite(ctx, a.ID, invite.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := e.store.GetCouple(ctx, invite.ID)
	if got.Status != models.CoupleCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}

	err = e.couples.CancelInvite(ctx, a.ID, invite.ID)
	wantKind(t, err, apperrors.KindBadRequest, "Only pending invitations can be cancelled")

	err = e.couples.CancelInvite(ctx, a.ID, uuid.New())
	wantKind(t, err, apperrors.KindNotFound, "Couple not found")
}

func TestAcceptInviteRejections(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	c := e.user(t, "Carla", "carla@x.com")

	_, err := e.couples.AcceptInvite(ctx, b.ID, uuid.New())
	wantKind(t, err, apperrors.KindNotFound, "Couple not found")

	invite, _ := e.couples.CreateInvite(ctx, a.ID, "b@x.com")
	_, err = e.couples.AcceptInvite(ctx, c.ID, invite.ID)
	wantKind(t, err, apperrors.KindBadRequest, "This invitation was not sent to you")

	// Bruno has an outgoing invitation of his own.
	if _, err := e.couples.CreateInvite(ctx, b.ID, "dora@x.com"); err != nil {
		t.Fatalf("create invite: %v", err)
	}
	_, err = e.couples.AcceptInvite(ctx, b.ID, invite.ID)
	wantKind(t, err, apperrors.KindConflict, "")

	got, _ := e.store.GetCouple(ctx, invite.ID)
	if got.Status != models.CouplePending || got.PartnerID != nil {
		t.Errorf("rejected accept changed the couple: %+v", got)
	}
}

func TestAcceptInviteTwice(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	view := e.pair(t, a, b, "b@x.com")

	_, err := e.couples.AcceptInvite(ctx, b.ID, view.ID)
	wantKind(t, err, apperrors.KindBadRequest, "Only pending invitations can be answered")
}

func TestDeclineInvite(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	d := e.user(t, "Davi", "davi@x.com")

	invite, _ := e.couples.CreateInvite(ctx, a.ID, "b@x.com")
	other, _ := e.couples.CreateInvite(ctx, d.ID, "b@x.com")

	if err := e.couples.DeclineInvite(ctx, b.ID, invite.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}
	got, _ := e.store.GetCouple(ctx, invite.ID)
	if got.Status != models.CoupleCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	untouched, _ := e.store.GetCouple(ctx, other.ID)
	if untouched.Status != models.CouplePending {
		t.Errorf("decline touched another invite: %s", untouched.Status)
	}
	if u, _ := e.store.GetUser(ctx, b.ID); u.CoupleID != nil {
		t.Error("decline set the couple reference")
	}
}

func TestLeaveCouple(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")

	err := e.couples.LeaveCouple(ctx, a.ID)
	wantKind(t, err, apperrors.KindNotFound, "You don't have a couple")

	invite, _ := e.couples.CreateInvite(ctx, a.ID, "b@x.com")
	err = e.couples.LeaveCouple(ctx, a.ID)
	wantKind(t, err, apperrors.KindBadRequest, "You don't have an active couple")

	if _, err := e.couples.AcceptInvite(ctx, b.ID, invite.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := e.couples.LeaveCouple(ctx, b.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	got, _ := e.store.GetCouple(ctx, invite.ID)
	if got.Status != models.CoupleInactive {
		t.Errorf("status = %s, want inactive", got.Status)
	}
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		if u, _ := e.store.GetUser(ctx, id); u.CoupleID != nil {
			t.Errorf("user %s still references couple", u.Name)
		}
	}

	// Both are free to pair again.
	if _, err := e.couples.CreateInvite(ctx, a.ID, "b@x.com"); err != nil {
		t.Errorf("invite after leaving: %v", err)
	}
}

func TestListPendingInvitesForUser(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")

	if _, err := e.couples.CreateInvite(ctx, a.ID, "b@x.com"); err != nil {
		t.Fatalf("create invite: %v", err)
	}
	invites, err := e.couples.ListPendingInvitesForUser(ctx, b.ID)
	if err != nil {
		t.Fatalf("list invites: %v", err)
	}
	if len(invites) != 1 || invites[0].Initiator == nil || invites[0].Initiator.Name != "Ana" {
		t.Errorf("invites = %+v", invites)
	}

	_, err = e.couples.ListPendingInvitesForUser(ctx, uuid.New())
	wantKind(t, err, apperrors.KindInternal, "User has no email registered")
}

func TestGetActiveCoupleAndPhoto(t *testing.T) {
	e := setupTestEnv(t)
	ctx := context.Background()
	a := e.user(t, "Ana", "ana@x.com")
	b := e.user(t, "Bruno", "b@x.com")
	e.pair(t, a, b, "b@x.com")

	photo := "uploads/us.jpg"
	view, err := e.couples.UpdateCouplePhoto(ctx, a.ID, models.CouplePatch{PhotoURL: &photo})
	if err != nil {
		t.Fatalf("update photo: %v", err)
	}
	if view.PhotoURL == nil || *view.PhotoURL != photo {
		t.Errorf("photo = %v, want %s", view.PhotoURL, photo)
	}

	got, err := e.couples.GetActiveCouple(ctx, b.ID)
	if err != nil {
		t.Fatalf("get couple: %v", err)
	}
	if got.ID != view.ID || got.Partner == nil || got.Partner.Name != "Bruno" {
		t.Errorf("couple = %+v", got)
	}

	all, err := e.couples.ListAll(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("list all = %d couples, err %v", len(all), err)
	}
}
