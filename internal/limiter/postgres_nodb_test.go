package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/************ fake pgx ************/
type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakePool struct {
	qrErr         error
	qrCount       int
	qrWindowStart time.Time

	lastQuerySQL string
}

func (f *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastQuerySQL = sql
	return fakeRow{scan: func(dest ...any) error {
		if f.qrErr != nil {
			return f.qrErr
		}
		*(dest[0].(*int)) = f.qrCount
		*(dest[1].(*time.Time)) = f.qrWindowStart
		return nil
	}}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestAllow_UnderCap(t *testing.T) {
	fp := &fakePool{qrCount: 1, qrWindowStart: time.Now()}
	l := NewPGWithQuerier(fp, time.Hour, 100)

	ok, dur, err := l.Allow(context.Background(), "1.2.3.4")
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow under cap: ok=%v dur=%v err=%v", ok, dur, err)
	}
	if !contains(fp.lastQuerySQL, "INSERT INTO request_limiter") {
		t.Fatalf("unexpected query: %s", fp.lastQuerySQL)
	}
}

func TestAllow_AtCap_StillAllowed(t *testing.T) {
	fp := &fakePool{qrCount: 100, qrWindowStart: time.Now()}
	l := NewPGWithQuerier(fp, time.Hour, 100)

	ok, dur, err := l.Allow(context.Background(), "1.2.3.4")
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow at cap: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_OverCap_RetryAfter(t *testing.T) {
	fp := &fakePool{qrCount: 101, qrWindowStart: time.Now().Add(-10 * time.Minute)}
	l := NewPGWithQuerier(fp, time.Hour, 100)

	ok, dur, err := l.Allow(context.Background(), "1.2.3.4")
	if err != nil || ok {
		t.Fatalf("Allow over cap: ok=%v err=%v", ok, err)
	}
	if dur <= 0 || dur > 50*time.Minute+time.Second {
		t.Fatalf("retry-after out of range: %v", dur)
	}
}

func TestAllow_OverCap_ElapsedWindow_ZeroRetry(t *testing.T) {
	// The window expired between the upsert and the clock read; retry-after
	// must clamp at zero instead of going negative.
	fp := &fakePool{qrCount: 101, qrWindowStart: time.Now().Add(-2 * time.Hour)}
	l := NewPGWithQuerier(fp, time.Hour, 100)

	ok, dur, err := l.Allow(context.Background(), "1.2.3.4")
	if err != nil || ok || dur != 0 {
		t.Fatalf("Allow elapsed window: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestAllow_DBError_Propagates(t *testing.T) {
	fp := &fakePool{qrErr: errors.New("db boom")}
	l := NewPGWithQuerier(fp, time.Hour, 100)

	ok, _, err := l.Allow(context.Background(), "1.2.3.4")
	if err == nil || ok {
		t.Fatalf("want error propagate, got ok=%v err=%v", ok, err)
	}
}

func TestHashAddr_Determinism(t *testing.T) {
	a := HashAddr("1.2.3.4")
	b := HashAddr("1.2.3.4")
	c := HashAddr("5.6.7.8")
	if string(a) != string(b) || string(a) == string(c) || len(a) != 32 {
		t.Fatalf("hash mismatch/len: %d", len(a))
	}
}
