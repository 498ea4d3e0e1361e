package migration

import "testing"

func TestHistoryMigrationsHaveUniqueVersions(t *testing.T) {
	seen := make(map[int]bool)
	for _, m := range historyMigrations() {
		if seen[m.Version] {
			t.Errorf("duplicate version %d", m.Version)
		}
		seen[m.Version] = true
		if m.Name == "" || m.Up == "" {
			t.Errorf("migration %d is incomplete", m.Version)
		}
	}
}

func TestPendingOrdersAndSkipsApplied(t *testing.T) {
	all := []Migration{{Version: 3, Name: "c"}, {Version: 1, Name: "a"}, {Version: 2, Name: "b"}}

	pending := Pending(all, 1)
	if len(pending) != 2 || pending[0].Version != 2 || pending[1].Version != 3 {
		t.Errorf("pending = %+v", pending)
	}
	if all[0].Version != 3 {
		t.Error("input slice was reordered")
	}
	if got := Pending(all, 3); len(got) != 0 {
		t.Errorf("nothing should be pending, got %+v", got)
	}
}
