package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/alecgard/fiveplanner/internal/roster"
	"github.com/alecgard/fiveplanner/internal/session"
	"github.com/alecgard/fiveplanner/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	gw := storage.NewMemory()
	r, err := roster.Open(ctx, gw, roster.Options{})
	if err != nil {
		t.Fatalf("roster.Open: %v", err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC))
	s, err := session.Open(ctx, gw, session.Options{Clock: clock})
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	return NewService(r, s, Options{Location: time.UTC})
}

func TestCreateSessionSnapshotsPitch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	sess, err := svc.CreateSession(ctx, CreateSessionInput{Date: "2025-07-26", Time: "19:30", PitchID: "2"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.Pitch == nil || sess.Pitch.ID != "2" || sess.Location != sess.Pitch.Name {
		t.Fatalf("unexpected session %+v", sess)
	}

	if _, err := svc.Roster().UpdatePitch(ctx, "2", roster.PitchUpdate{}); err != nil {
		t.Fatalf("UpdatePitch: %v", err)
	}
	got, _ := svc.Sessions().Get(sess.ID)
	if got.Pitch.Name != sess.Pitch.Name {
		t.Errorf("session pitch changed with roster")
	}

	if _, err := svc.CreateSession(ctx, CreateSessionInput{Date: "2025-07-26", Time: "19:30", PitchID: "nope"}); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("expected roster.ErrNotFound, got %v", err)
	}
}

func TestCreateSessionFromEmailMatchesPitch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	before := len(svc.Roster().Pitches())

	out, err := svc.CreateSessionFromEmail(ctx, "Réservation le samedi 26 juillet 2025 entre 19:30 et 21:00 dans le centre LE FIVE Créteil.")
	if err != nil {
		t.Fatalf("CreateSessionFromEmail: %v", err)
	}
	if out.AddedPitch != nil {
		t.Errorf("expected existing pitch to be matched, added %+v", out.AddedPitch)
	}
	if out.Session.Pitch == nil || out.Session.Pitch.ID != "4" {
		t.Errorf("expected pitch 4, got %+v", out.Session.Pitch)
	}
	if out.Session.SessionType != session.TypeIndoor || out.Session.Duration != 90 || out.Session.MaxPlayers != 10 {
		t.Errorf("unexpected session %+v", out.Session)
	}
	if got := len(svc.Roster().Pitches()); got != before {
		t.Errorf("pitch count changed: %d -> %d", before, got)
	}
}

func TestCreateSessionFromEmailAddsPitch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	out, err := svc.CreateSessionFromEmail(ctx, "Le 02/08/2025 de 18:00 à 19:00, centre Urban Soccer Ivry. https://pay.example.com/42")
	if err != nil {
		t.Fatalf("CreateSessionFromEmail: %v", err)
	}
	if out.AddedPitch == nil || out.AddedPitch.Name != "Urban Soccer Ivry" || out.AddedPitch.SurfaceType != roster.SurfaceSynthetic {
		t.Fatalf("expected pitch to be added, got %+v", out.AddedPitch)
	}
	if out.Session.Pitch == nil || out.Session.Pitch.ID != out.AddedPitch.ID {
		t.Errorf("session not linked to added pitch")
	}
	if out.Session.PaymentLink != "https://pay.example.com/42" || out.Session.Duration != 60 {
		t.Errorf("unexpected session %+v", out.Session)
	}
}

func TestCreateSessionFromEmailFailure(t *testing.T) {
	svc := newTestService(t)
	out, err := svc.CreateSessionFromEmail(context.Background(), "rien à voir")
	if !errors.Is(err, ErrEmailUnparsed) {
		t.Fatalf("expected ErrEmailUnparsed, got %v", err)
	}
	if out.Parsed.Success || out.Parsed.Error == "" {
		t.Errorf("expected structured failure, got %+v", out.Parsed)
	}
	if len(svc.Sessions().Active()) != 0 {
		t.Errorf("no session should be created")
	}
}

func TestRespondRequiresKnownPlayer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	sess, _ := svc.CreateSession(ctx, CreateSessionInput{Date: "2025-07-26", Time: "19:30", Location: "Pitch A"})

	if _, err := svc.Respond(ctx, sess.ID, "ghost", session.ResponseComing); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("expected roster.ErrNotFound, got %v", err)
	}
	p, _ := svc.Roster().AddPlayer(ctx, roster.CreatePlayerInput{Name: "Ana"})
	if _, err := svc.Respond(ctx, "", p.ID, session.ResponseComing); err != nil {
		t.Errorf("Respond: %v", err)
	}
}

func TestStatsAndSummaryAfterPlayerRemoval(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	ana, _ := svc.Roster().AddPlayer(ctx, roster.CreatePlayerInput{Name: "Ana"})
	bob, _ := svc.Roster().AddPlayer(ctx, roster.CreatePlayerInput{Name: "Bob"})

	for i, status := range []session.ResponseStatus{session.ResponseComing, session.ResponseNotComing} {
		sess, err := svc.CreateSession(ctx, CreateSessionInput{Date: "2025-07-26", Time: "19:30", Location: "Pitch A"})
		if err != nil {
			t.Fatalf("CreateSession %d: %v", i, err)
		}
		if _, err := svc.Respond(ctx, sess.ID, ana.ID, status); err != nil {
			t.Fatalf("Respond: %v", err)
		}
		if _, err := svc.Respond(ctx, sess.ID, bob.ID, session.ResponseComing); err != nil {
			t.Fatalf("Respond: %v", err)
		}
		if _, err := svc.Complete(ctx, sess.ID, &session.Score{Team1: 2, Team2: i}); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}

	board := svc.Leaderboard()
	if len(board) != 2 || board[0].Name != "Bob" || board[1].AttendanceRate != 50 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}

	if err := svc.RemovePlayer(ctx, bob.ID); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	latest := svc.Sessions().History()[0]
	_, text, err := svc.Summary(latest.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(text, "• Joueur inconnu") {
		t.Errorf("removed player should render as unknown:\n%s", text)
	}
	if _, err := svc.PlayerStats(bob.ID); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("expected roster.ErrNotFound, got %v", err)
	}
}

func TestCompleteRejectsNegativeScore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	sess, _ := svc.CreateSession(ctx, CreateSessionInput{Date: "2025-07-26", Time: "19:30", Location: "Pitch A"})

	if _, err := svc.Complete(ctx, sess.ID, &session.Score{Team1: 1, Team2: -3}); !errors.Is(err, session.ErrScoreInvalid) {
		t.Errorf("expected ErrScoreInvalid, got %v", err)
	}
}

func TestCalendarAndEndTime(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	sess, _ := svc.CreateSession(ctx, CreateSessionInput{Date: "2025-07-26", Time: "23:30", Location: "Pitch A"})

	end, err := svc.EndTime(sess)
	if err != nil || end != "01:00" {
		t.Errorf("EndTime = %q, %v", end, err)
	}
	link, err := svc.CalendarURL(sess.ID, true)
	if err != nil {
		t.Fatalf("CalendarURL: %v", err)
	}
	if !strings.Contains(link, "20250726T233000Z%2F20250727T010000Z") {
		t.Errorf("unexpected link %s", link)
	}
	if _, err := svc.CalendarURL("missing", false); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected session.ErrNotFound, got %v", err)
	}
}

func TestAvatarColors(t *testing.T) {
	svc := newTestService(t)
	colors := svc.AvatarColors([]string{"a", "b", "c"})
	if len(colors) != 3 {
		t.Fatalf("expected 3 colours, got %d", len(colors))
	}
	seen := map[string]bool{}
	for _, c := range colors {
		if seen[c] {
			t.Errorf("colour %s assigned twice", c)
		}
		seen[c] = true
	}
	svc.ResetAvatars()
}
