package service

import (
	"testing"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/model"
)

func TestSessionUpdateReplacesSnapshot(t *testing.T) {
	sess := NewSession("s1")
	sess.AddDraft(model.TaskDraft{Title: "A"})

	before := sess.Tasks()
	sess.Update(func(ts []model.TaskDraft) []model.TaskDraft {
		ts[0].Title = "changed"
		return append(ts, model.TaskDraft{Title: "B"})
	})

	if before[0].Title != "A" || len(before) != 1 {
		t.Errorf("earlier snapshot mutated: %+v", before)
	}
	after := sess.Tasks()
	if len(after) != 2 || after[0].Title != "changed" || after[1].Dependencies == nil {
		t.Errorf("after = %+v", after)
	}

	sess.Update(func([]model.TaskDraft) []model.TaskDraft { return nil })
	if got := sess.Tasks(); got == nil || len(got) != 0 {
		t.Errorf("cleared list = %#v", got)
	}
}

func TestSnapshotConsumesFlashMessages(t *testing.T) {
	sess := NewSession("s1")
	sess.SetNotice("Task added!")
	sess.SetAlert("Failed to send feedback.")
	sess.SetError("No tasks provided!")

	first := sess.Snapshot(true)
	if first.Notice != "Task added!" || first.Alert == "" || first.Error == "" {
		t.Errorf("first = %+v", first)
	}

	second := sess.Snapshot(true)
	if second.Notice != "" || second.Alert != "" {
		t.Errorf("flash messages shown twice: %+v", second)
	}
	if second.Error != "No tasks provided!" {
		t.Errorf("inline error dropped: %q", second.Error)
	}
}

func TestSessionStoreGetOrCreate(t *testing.T) {
	store := NewSessionStore(time.Hour)
	defer store.Stop()

	a := store.GetOrCreate("id-1")
	b := store.GetOrCreate("id-1")
	if a != b {
		t.Error("same id returned different sessions")
	}
	if store.Size() != 1 {
		t.Errorf("size = %d", store.Size())
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("missing session found")
	}

	store.Delete("id-1")
	if _, ok := store.Get("id-1"); ok {
		t.Error("deleted session still present")
	}
}
