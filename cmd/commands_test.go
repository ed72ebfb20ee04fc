package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "week.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReadWeeklySchedule(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, `
Lunedì:
  - {start: "06:00", end: "08:00", power: 2, fan: 2}
  - start: "18:00"
    end: "22:00"
    power: 4
    fan: 3
Domenica: []
`)
	week, err := readWeeklySchedule(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(week) != 2 {
		t.Fatalf("days: got %d, want 2", len(week))
	}
	mon := week["Lunedì"]
	if len(mon) != 2 || mon[1].Start != "18:00" || mon[1].Power != 4 || mon[1].Fan != 3 {
		t.Fatalf("unexpected monday: %+v", mon)
	}
}

func TestReadWeeklySchedule_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":     "",
		"malformed": "Lunedì: [",
		"not a map": "- 1\n- 2\n",
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := readWeeklySchedule(writeTemp(t, body)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}

	if _, err := readWeeklySchedule(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
