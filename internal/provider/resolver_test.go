package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snapetech/vidpicker/internal/pick"
)

type fakeItem struct {
	ids       []string
	path      string
	err       error
	requested []string
	async     bool
	never     bool
	twice     bool
}

func (f *fakeItem) RegisteredTypeIdentifiers() []string { return f.ids }

func (f *fakeItem) LoadFileRepresentation(ctx context.Context, typeID string, fn func(string, error)) {
	f.requested = append(f.requested, typeID)
	if f.never {
		return
	}
	call := func() {
		fn(f.path, f.err)
		if f.twice {
			fn("/other", nil)
		}
	}
	if f.async {
		go call()
		return
	}
	call()
}

func selection(item pick.ItemProvider) pick.Selection {
	return pick.Selection{AssetID: "a1", Name: "clip.mov", Provider: item}
}

func TestResolve_noTypeIdentifiers(t *testing.T) {
	item := &fakeItem{}
	consumed := false
	out := (&Resolver{}).Resolve(context.Background(), selection(item), func(context.Context, pick.TransientFile) pick.Outcome {
		consumed = true
		return pick.Outcome{}
	})
	if out.Kind != pick.Cancelled || out.Err != nil {
		t.Fatalf("outcome = %+v, want cancelled without error", out)
	}
	if out.Note != pick.RepresentationUnavailable {
		t.Errorf("note = %v", out.Note)
	}
	if consumed || len(item.requested) != 0 {
		t.Error("provider and consumer must not be called")
	}
}

func TestResolve_nilProvider(t *testing.T) {
	out := (&Resolver{}).Resolve(context.Background(), pick.Selection{AssetID: "x"}, nil)
	if out.Kind != pick.Cancelled {
		t.Fatalf("kind = %v", out.Kind)
	}
}

func TestResolve_requestsFirstIdentifier(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mov")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	item := &fakeItem{ids: []string{"com.apple.quicktime-movie", "public.movie"}, path: src}
	var got pick.TransientFile
	out := (&Resolver{}).Resolve(context.Background(), selection(item), func(_ context.Context, f pick.TransientFile) pick.Outcome {
		got = f
		return pick.Succeeded("/stage/clip.mov")
	})
	if len(item.requested) != 1 || item.requested[0] != "com.apple.quicktime-movie" {
		t.Errorf("requested = %v", item.requested)
	}
	if string(got) != src {
		t.Errorf("consumer got %q", got)
	}
	if out.Kind != pick.Success || out.Path != "/stage/clip.mov" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestResolve_providerError(t *testing.T) {
	cause := errors.New("icloud unavailable")
	item := &fakeItem{ids: []string{"public.movie"}, err: cause, async: true}
	out := (&Resolver{}).Resolve(context.Background(), selection(item), func(context.Context, pick.TransientFile) pick.Outcome {
		t.Error("consumer called on provider error")
		return pick.Outcome{}
	})
	if out.Kind != pick.Failure {
		t.Fatalf("kind = %v", out.Kind)
	}
	if pick.KindOf(out.Err) != pick.ProviderLoadFailure || !errors.Is(out.Err, cause) {
		t.Errorf("err = %v", out.Err)
	}
	if out.Path != "" {
		t.Error("failure must not carry a path")
	}
}

func TestResolve_emptyPathIsBenign(t *testing.T) {
	item := &fakeItem{ids: []string{"public.movie"}}
	out := (&Resolver{}).Resolve(context.Background(), selection(item), func(context.Context, pick.TransientFile) pick.Outcome {
		t.Error("consumer called without a path")
		return pick.Outcome{}
	})
	if out.Kind != pick.Cancelled || out.Err != nil {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestResolve_missingFileStillConsumed(t *testing.T) {
	item := &fakeItem{ids: []string{"public.movie"}, path: filepath.Join(t.TempDir(), "not-yet.mov"), async: true}
	called := false
	out := (&Resolver{}).Resolve(context.Background(), selection(item), func(context.Context, pick.TransientFile) pick.Outcome {
		called = true
		return pick.Fail(&pick.Error{Kind: pick.CopyFailure})
	})
	if !called {
		t.Fatal("copy must be attempted even when the existence check fails")
	}
	if out.Kind != pick.Failure || pick.KindOf(out.Err) != pick.CopyFailure {
		t.Errorf("outcome = %+v", out)
	}
}

func TestResolve_repeatedCallbackIgnored(t *testing.T) {
	item := &fakeItem{ids: []string{"public.movie"}, path: "/tmp/first.mov", twice: true}
	calls := 0
	out := (&Resolver{}).Resolve(context.Background(), selection(item), func(_ context.Context, f pick.TransientFile) pick.Outcome {
		calls++
		return pick.Succeeded(pick.DurableFile(f))
	})
	if calls != 1 {
		t.Errorf("consumer calls = %d", calls)
	}
	if out.Path != "/tmp/first.mov" {
		t.Errorf("path = %s", out.Path)
	}
}

func TestResolve_providerNeverCallsBack(t *testing.T) {
	item := &fakeItem{ids: []string{"public.movie"}, never: true}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	out := (&Resolver{}).Resolve(ctx, selection(item), nil)
	if out.Kind != pick.Failure || pick.KindOf(out.Err) != pick.ProviderLoadFailure {
		t.Fatalf("outcome = %+v", out)
	}
	if !errors.Is(out.Err, context.DeadlineExceeded) {
		t.Errorf("err = %v", out.Err)
	}
}

func TestResolve_consumerPanicOnProviderGoroutine(t *testing.T) {
	item := &fakeItem{ids: []string{"public.movie"}, path: "/tmp/clip.mov", async: true}
	out := (&Resolver{}).Resolve(context.Background(), selection(item), func(context.Context, pick.TransientFile) pick.Outcome {
		panic("copier bug")
	})
	if out.Kind != pick.Failure || pick.KindOf(out.Err) != pick.CopyFailure {
		t.Fatalf("outcome = %+v, want CopyFailure", out)
	}
	if out.Path != "" {
		t.Errorf("path = %s, want none on failure", out.Path)
	}
}
