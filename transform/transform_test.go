package transform

import (
	"context"
	"errors"
	"testing"

	action "github.com/goliatone/go-action"
	"github.com/goliatone/go-action/mapper"
)

func TestPassthrough(t *testing.T) {
	got, err := Passthrough[int64]().Transform(context.Background(), action.NewContext[int64](42))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestToString(t *testing.T) {
	got, err := ToString[int64]().Transform(context.Background(), action.NewContext[int64](42))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "42" {
		t.Errorf("expected %q, got %q", "42", got)
	}
}

func TestMapValue(t *testing.T) {
	ctx := context.Background()

	t.Run("present key", func(t *testing.T) {
		ac := action.NewContext(map[string]int64{"group_id": 7})
		got, err := MapValue[string, int64]("group_id").Transform(ctx, ac)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
	})

	t.Run("missing key is an execution error", func(t *testing.T) {
		ac := action.NewContext(map[string]int64{})
		_, err := MapValue[string, int64]("group_id").Transform(ctx, ac)
		var execErr *action.ExecutionError
		if !errors.As(err, &execErr) {
			t.Fatalf("expected an execution error, got %v", err)
		}
	})
}

func TestSingleElementList(t *testing.T) {
	got, err := SingleElementList[int64, int64](Passthrough[int64]()).Transform(context.Background(), action.NewContext[int64](9))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0] != 9 {
		t.Errorf("expected [9], got %v", got)
	}

	boom := errors.New("bad inner")
	failing := TransformerFunc[int64, int64](func(context.Context, *action.ActionContext[int64]) (int64, error) {
		return 0, boom
	})
	if _, err := SingleElementList[int64, int64](failing).Transform(context.Background(), action.NewContext[int64](9)); !errors.Is(err, boom) {
		t.Fatalf("expected inner error, got %v", err)
	}
}

type activityParams struct {
	ActivityID int64
}

func TestNestedID(t *testing.T) {
	ctx := context.Background()
	ac := action.NewContext(activityParams{ActivityID: 123})

	t.Run("as int64", func(t *testing.T) {
		tr := NestedID[activityParams]{Get: func(p activityParams) int64 { return p.ActivityID }}
		got, err := tr.Transform(ctx, ac)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != int64(123) {
			t.Errorf("expected int64 123, got %T %v", got, got)
		}
	})

	t.Run("as string", func(t *testing.T) {
		tr := NestedID[activityParams]{Get: func(p activityParams) int64 { return p.ActivityID }, AsString: true}
		got, err := tr.Transform(ctx, ac)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "123" {
			t.Errorf("expected %q, got %T %v", "123", got, got)
		}
	})

	t.Run("missing accessor", func(t *testing.T) {
		_, err := NestedID[activityParams]{}.Transform(ctx, ac)
		var execErr *action.ExecutionError
		if !errors.As(err, &execErr) {
			t.Fatalf("expected an execution error, got %v", err)
		}
	})
}

type groupParams struct {
	ShortName string
}

func TestShortNameToID(t *testing.T) {
	ctx := context.Background()
	key := action.NewStateKey[int64]("group_id")

	lookups := 0
	tr := ShortNameToID[groupParams]{
		ShortName: func(p groupParams) string { return p.ShortName },
		Lookup: mapper.Func[string, int64](func(_ context.Context, shortName string) (int64, error) {
			lookups++
			if shortName != "engineering" {
				t.Errorf("expected lookup of %q, got %q", "engineering", shortName)
			}
			return 55, nil
		}),
		StateKey: key,
	}

	ac := action.NewContext(groupParams{ShortName: "engineering"})

	got, err := tr.Transform(ctx, ac)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 55 {
		t.Errorf("expected 55, got %d", got)
	}

	// second call on the same context must hit the state, not the mapper
	if _, err := tr.Transform(ctx, ac); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if lookups != 1 {
		t.Errorf("expected exactly one lookup, got %d", lookups)
	}

	if cached, ok := action.GetState(ac.State(), key); !ok || cached != 55 {
		t.Errorf("expected the resolved id in state, got %v (%v)", cached, ok)
	}
}

func TestShortNameToIDLookupError(t *testing.T) {
	boom := errors.New("directory unavailable")
	tr := ShortNameToID[groupParams]{
		ShortName: func(p groupParams) string { return p.ShortName },
		Lookup: mapper.Func[string, int64](func(context.Context, string) (int64, error) {
			return 0, boom
		}),
		StateKey: action.NewStateKey[int64]("group_id"),
	}

	if _, err := tr.Transform(context.Background(), action.NewContext(groupParams{ShortName: "x"})); !errors.Is(err, boom) {
		t.Fatalf("expected the lookup error, got %v", err)
	}
}

func TestPrincipalID(t *testing.T) {
	t.Run("returns principal id", func(t *testing.T) {
		ac := action.NewPrincipalContext(struct{}{}, action.Principal{ID: 6, AccountID: "testaccount"})
		got, err := PrincipalID[struct{}]().Transform(context.Background(), ac)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != 6 {
			t.Errorf("expected 6, got %d", got)
		}
	})

	t.Run("no principal is an execution error", func(t *testing.T) {
		_, err := PrincipalID[struct{}]().Transform(context.Background(), action.NewContext(struct{}{}))
		var execErr *action.ExecutionError
		if !errors.As(err, &execErr) {
			t.Fatalf("expected an execution error, got %v", err)
		}
	})
}
