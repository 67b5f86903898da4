package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestLoadJSONMissingKey(t *testing.T) {
	gw := NewMemory()
	v, found, err := LoadJSON[[]item](context.Background(), gw, KeyPlayers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected found=false for a missing key")
	}
	if v != nil {
		t.Errorf("expected nil slice, got %v", v)
	}
}

func TestLoadJSONNullIsMissing(t *testing.T) {
	gw := NewMemory()
	ctx := context.Background()
	if err := gw.Save(ctx, KeyPlayers, []byte("null")); err != nil {
		t.Fatal(err)
	}
	_, found, err := LoadJSON[[]item](ctx, gw, KeyPlayers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("null document should count as missing")
	}
}

func TestLoadJSONInvalidDocument(t *testing.T) {
	gw := NewMemory()
	ctx := context.Background()
	if err := gw.Save(ctx, KeyPlayers, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadJSON[[]item](ctx, gw, KeyPlayers); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSaveJSONWrapsWriteError(t *testing.T) {
	gw := NewMemory()
	quota := errors.New("quota exceeded")
	gw.FailWrites(quota)

	err := SaveJSON(context.Background(), gw, KeyGroups, []item{{ID: "1"}})
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
	if !errors.Is(err, quota) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
	var we *WriteError
	if !errors.As(err, &we) || we.Key != KeyGroups {
		t.Errorf("expected *WriteError for %s, got %#v", KeyGroups, err)
	}
}

func TestCollectionReplace(t *testing.T) {
	ctx := context.Background()
	gw := NewMemory()

	c, err := OpenCollection[item](ctx, gw, KeyPlayers, PolicyRollback)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.Found() {
		t.Error("new collection should not be found")
	}

	if err := c.Replace(ctx, []item{{ID: "a", Name: "Ana"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !c.Found() || c.Len() != 1 {
		t.Fatalf("expected one item after replace, got %d", c.Len())
	}

	reopened, err := OpenCollection[item](ctx, gw, KeyPlayers, PolicyRollback)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Items(); len(got) != 1 || got[0].Name != "Ana" {
		t.Errorf("reopened items = %+v", got)
	}
}

func TestCollectionWritePolicies(t *testing.T) {
	tests := []struct {
		name    string
		policy  WritePolicy
		wantLen int
	}{
		{name: "rollback restores previous state", policy: PolicyRollback, wantLen: 1},
		{name: "keep retains unpersisted state", policy: PolicyKeep, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			gw := NewMemory()
			c, err := OpenCollection[item](ctx, gw, KeyPlayers, tt.policy)
			if err != nil {
				t.Fatal(err)
			}
			if err := c.Replace(ctx, []item{{ID: "a"}}); err != nil {
				t.Fatal(err)
			}

			gw.FailWrites(errors.New("disk full"))
			err = c.Replace(ctx, []item{{ID: "a"}, {ID: "b"}})
			if !errors.Is(err, ErrWrite) {
				t.Fatalf("expected ErrWrite, got %v", err)
			}
			if c.Len() != tt.wantLen {
				t.Errorf("len = %d, want %d", c.Len(), tt.wantLen)
			}
		})
	}
}

func TestCollectionSetUnsaved(t *testing.T) {
	ctx := context.Background()
	gw := NewMemory()
	c, err := OpenCollection[item](ctx, gw, KeyPlayers, PolicyRollback)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Replace(ctx, []item{{ID: "a"}, {ID: "b"}}); err != nil {
		t.Fatal(err)
	}

	c.SetUnsaved([]item{{ID: "b"}})
	if c.Len() != 1 || c.Items()[0].ID != "b" {
		t.Errorf("mirror = %v, want [b]", c.Items())
	}
	stored, _, err := LoadJSON[[]item](ctx, gw, KeyPlayers)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("stored = %v, SetUnsaved must not write", stored)
	}

	c.SetUnsaved(nil)
	if c.Items() == nil || c.Len() != 0 {
		t.Errorf("nil should become an empty mirror, got %#v", c.Items())
	}
}

func TestCollectionItemsIsCopy(t *testing.T) {
	ctx := context.Background()
	c, err := OpenCollection[item](ctx, NewMemory(), KeyPlayers, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Replace(ctx, []item{{ID: "a", Name: "Ana"}}); err != nil {
		t.Fatal(err)
	}
	items := c.Items()
	items[0].Name = "changed"
	if c.Items()[0].Name != "Ana" {
		t.Error("mutating Items() result must not change the mirror")
	}
}

func TestParseWritePolicy(t *testing.T) {
	for in, want := range map[string]WritePolicy{"": PolicyRollback, "rollback": PolicyRollback, "keep": PolicyKeep} {
		got, err := ParseWritePolicy(in)
		if err != nil {
			t.Errorf("ParseWritePolicy(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseWritePolicy(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseWritePolicy("transactional"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestFileGateway(t *testing.T) {
	ctx := context.Background()
	gw, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("new file gateway: %v", err)
	}

	if _, err := gw.Load(ctx, KeyPitches); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := gw.Save(ctx, KeyPitches, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := gw.Load(ctx, KeyPitches)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `[{"id":"1"}]` {
		t.Errorf("loaded %s", data)
	}
	if err := gw.Remove(ctx, KeyPitches); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := gw.Remove(ctx, KeyPitches); err != nil {
		t.Errorf("removing a missing key should succeed: %v", err)
	}
	if _, err := gw.Load(ctx, KeyPitches); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after remove, got %v", err)
	}
}

func TestFileGatewayRejectsPathKeys(t *testing.T) {
	gw, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := gw.Save(context.Background(), "../escape", []byte("{}")); err == nil {
		t.Fatal("expected error for key with path separators")
	}
}

type recordingObserver struct {
	ops  []string
	errs int
}

func (r *recordingObserver) ObserveStorageOp(op, key string, _ time.Duration, err error) {
	r.ops = append(r.ops, op+":"+key)
	if err != nil {
		r.errs++
	}
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	mem := NewMemory()
	gw := Instrument(mem, obs)

	_, _ = gw.Load(ctx, KeyGroups)
	_ = gw.Save(ctx, KeyGroups, []byte("[]"))
	mem.FailWrites(errors.New("boom"))
	_ = gw.Remove(ctx, KeyGroups)

	want := []string{"load:" + KeyGroups, "save:" + KeyGroups, "remove:" + KeyGroups}
	if len(obs.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", obs.ops, want)
	}
	for i := range want {
		if obs.ops[i] != want[i] {
			t.Errorf("op %d = %q, want %q", i, obs.ops[i], want[i])
		}
	}
	if obs.errs != 1 {
		t.Errorf("expected only the failed remove to report an error, got %d", obs.errs)
	}

	if Instrument(mem, nil) != Gateway(mem) {
		t.Error("nil observer should return the gateway unchanged")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewMemory()
	dump := Dump{
		KeyPlayers:           `[{"id":"p1","name":"Jean Dupont"}]`,
		KeySelectedSessionID: "1753550000000",
		"five-planner-theme": "dark",
	}

	written, err := Import(ctx, src, dump)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(written) != 2 {
		t.Errorf("expected 2 keys written, got %v", written)
	}

	raw, err := src.Load(ctx, KeySelectedSessionID)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"1753550000000"` {
		t.Errorf("selected id stored as %s", raw)
	}

	out, err := Export(ctx, src)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out[KeySelectedSessionID] != "1753550000000" {
		t.Errorf("exported selected id = %q", out[KeySelectedSessionID])
	}
	if out[KeyPlayers] != dump[KeyPlayers] {
		t.Errorf("exported players = %q", out[KeyPlayers])
	}
	if _, ok := out["five-planner-theme"]; ok {
		t.Error("non-core keys must not be exported")
	}
}

func TestImportRejectsInvalidJSON(t *testing.T) {
	_, err := Import(context.Background(), NewMemory(), Dump{KeyGroups: "[{"})
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
