package repository

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStateSQLite_Get_MissingReturnsNil(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewStateSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE path = ?`)).
		WithArgs("schedules-v2/mode").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	got, err := repo.Get(testCtx(t), "schedules-v2/mode")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestStateSQLite_Get_DecodesJSON(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewStateSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE path = ?`)).
		WithArgs("schedules-v2/mode").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"enabled":true,"semiManual":false}`))

	got, err := repo.Get(testCtx(t), "schedules-v2/mode")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok || m["enabled"] != true {
		t.Fatalf("unexpected value: %#v", got)
	}
}

func TestStateSQLite_InvalidPathNeverHitsDB(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewStateSQLite(db)

	for _, p := range []string{"", "/abs", "trailing/", "a//b", "a/../b"} {
		if _, err := repo.Get(testCtx(t), p); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Get(%q): expected ErrInvalidPath, got %v", p, err)
		}
		if err := repo.Set(testCtx(t), p, 1); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Set(%q): expected ErrInvalidPath, got %v", p, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db calls: %v", err)
	}
}

func TestStateSQLite_Set_Upserts(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewStateSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store (path, value, updated_at)`)).
		WithArgs("cronHealth/lastCall", `"2025-01-06T18:00:00Z"`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(testCtx(t), "cronHealth/lastCall", "2025-01-06T18:00:00Z"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStateSQLite_Update_MergesIntoExistingObject(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewStateSQLite(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE path = ?`)).
		WithArgs("schedules-v2/mode").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).
			AddRow(`{"enabled":true,"semiManual":true,"returnToAutoAt":"2025-01-06T18:00:00Z"}`))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store (path, value, updated_at)`)).
		WithArgs("schedules-v2/mode", `{"enabled":true,"semiManual":false}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(testCtx(t), "schedules-v2/mode", map[string]any{
		"semiManual":     false,
		"returnToAutoAt": nil,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStateSQLite_Update_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewStateSQLite(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store WHERE path = ?`)).
		WithArgs("stove/state").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store`)).
		WithArgs("stove/state", `{"source":"scheduler","status":"START"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(testCtx(t), "stove/state", map[string]any{"status": "START", "source": "scheduler"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStateSQLite_Update_RollsBackOnWriteError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewStateSQLite(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_store`)).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_store`)).WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	if err := repo.Update(testCtx(t), "stove/state", map[string]any{"status": "START"}); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStateSQLite_ListAndDelete_UseEscapedPrefix(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewStateSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT path, value FROM kv_store WHERE path LIKE ? ESCAPE '\'`)).
		WithArgs(`users/u\_1/fcmTokens/%`).
		WillReturnRows(sqlmock.NewRows([]string{"path", "value"}).
			AddRow("users/u_1/fcmTokens/a", `{"token":"t","lastUsed":1}`))

	got, err := repo.List(testCtx(t), "users/u_1/fcmTokens")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, ok := got["users/u_1/fcmTokens/a"]; !ok || len(got) != 1 {
		t.Fatalf("unexpected list: %#v", got)
	}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_store WHERE path = ? OR path LIKE ? ESCAPE '\'`)).
		WithArgs("users/u_1/fcmTokens/a", `users/u\_1/fcmTokens/a/%`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Delete(testCtx(t), "users/u_1/fcmTokens/a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestDecode_UsesTagsAndWeakTyping(t *testing.T) {
	t.Parallel()

	type marker struct {
		Interval  string `mapstructure:"interval"`
		Timestamp int64  `mapstructure:"timestamp"`
	}
	var m marker
	ok, err := Decode(map[string]any{"interval": "18:00-22:00", "timestamp": float64(1736186400000)}, &m)
	if err != nil || !ok {
		t.Fatalf("Decode: ok=%v err=%v", ok, err)
	}
	if m.Interval != "18:00-22:00" || m.Timestamp != 1736186400000 {
		t.Fatalf("unexpected decode: %+v", m)
	}

	ok, err = Decode(nil, &m)
	if ok || err != nil {
		t.Fatalf("nil value: ok=%v err=%v", ok, err)
	}
}
