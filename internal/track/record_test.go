package track

import (
	"context"
	"errors"
	"testing"
	"time"

	"timetrack.org/internal/auth"
)

func newRecordFixture(t *testing.T) (*RecordService, *memProjects, *memUsers) {
	t.Helper()
	projects := newMemProjects()
	tasks := newMemTasks(projects)
	records := newMemRecords(tasks)
	users := newMemUsers()
	svc, err := NewRecordService(records, tasks, users)
	if err != nil {
		t.Fatalf("NewRecordService: %v", err)
	}
	ctx := context.Background()
	if err := projects.Create(ctx, &Project{ID: "p1", Name: "site"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if err := tasks.Create(ctx, &Task{ID: "t1", ProjectID: "p1", Name: "deploy", Status: StatusOpen}); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	if err := users.Create(ctx, &auth.User{ID: "u-alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return svc, projects, users
}

func workday(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return start, start.Add(8 * time.Hour)
}

func TestCreateRecordValidation(t *testing.T) {
	svc, _, _ := newRecordFixture(t)
	start, end := workday(t)
	cases := []RecordInput{
		{StartTime: start, EndTime: end},                            // missing task
		{TaskID: "t1", EndTime: end},                                // missing start
		{TaskID: "t1", StartTime: start},                            // missing end
		{TaskID: "t1", StartTime: end, EndTime: start},              // inverted interval
		{TaskID: "t1", StartTime: start, EndTime: start},            // empty interval
	}
	for i, in := range cases {
		if _, err := svc.CreateRecord(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestCreateRecordAttributesToCaller(t *testing.T) {
	svc, _, _ := newRecordFixture(t)
	start, end := workday(t)

	record, err := svc.CreateRecord(ctxAs("u-alice", "alice@example.com", auth.RoleUser), RecordInput{
		TaskID:    "t1",
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if record.UserID != "u-alice" {
		t.Fatalf("record must default to the caller, got %s", record.UserID)
	}
}

func TestCreateRecordRequiresTaskAndUser(t *testing.T) {
	svc, _, _ := newRecordFixture(t)
	start, end := workday(t)
	ctx := context.Background()

	_, err := svc.CreateRecord(ctx, RecordInput{UserID: "u-alice", TaskID: "t-ghost", StartTime: start, EndTime: end})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing task, got %v", err)
	}
	_, err = svc.CreateRecord(ctx, RecordInput{UserID: "u-ghost", TaskID: "t1", StartTime: start, EndTime: end})
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected auth.ErrNotFound for missing user, got %v", err)
	}
}

func TestListRecordsFiltersByMembership(t *testing.T) {
	svc, projects, users := newRecordFixture(t)
	start, end := workday(t)
	ctx := context.Background()

	if err := users.Create(ctx, &auth.User{ID: "u-bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := projects.AddMember(ctx, "p1", "u-alice"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, err := svc.CreateRecord(ctx, RecordInput{UserID: "u-alice", TaskID: "t1", StartTime: start, EndTime: end}); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	mine, err := svc.ListRecords(ctxAs("u-alice", "alice@example.com", auth.RoleUser))
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("member must see the project's records, got %d", len(mine))
	}

	other, err := svc.ListRecords(ctxAs("u-bob", "bob@example.com", auth.RoleUser))
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("non-member must see nothing, got %d", len(other))
	}

	all, err := svc.ListRecords(ctxAs("u-root", "root@example.com", auth.RoleAdmin))
	if err != nil {
		t.Fatalf("ListRecords admin: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("admin must see everything, got %d", len(all))
	}
}

func TestUpdateRecordRewritesInterval(t *testing.T) {
	svc, _, _ := newRecordFixture(t)
	start, end := workday(t)
	ctx := ctxAs("u-alice", "alice@example.com", auth.RoleUser)

	record, err := svc.CreateRecord(ctx, RecordInput{TaskID: "t1", StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	updated, err := svc.UpdateRecord(ctx, record.ID, RecordInput{
		TaskID:    "t1",
		StartTime: start.Add(time.Hour),
		EndTime:   end.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if !updated.StartTime.Equal(start.Add(time.Hour)) {
		t.Fatalf("interval not updated: %v", updated.StartTime)
	}
	if updated.UserID != "u-alice" {
		t.Fatalf("owner must survive an update without user_id, got %s", updated.UserID)
	}
}
