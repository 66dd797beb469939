package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "single key", raw: "sk-one", want: []string{"sk-one"}},
		{name: "comma separated", raw: "sk-one, sk-two ,sk-three", want: []string{"sk-one", "sk-two", "sk-three"}},
		{name: "duplicates removed", raw: "a,b,a,b", want: []string{"a", "b"}},
		{name: "blanks skipped", raw: " , a, ,", want: []string{"a"}},
		{name: "empty", raw: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseKeys(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKeys(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestKeyRing_RoundRobin(t *testing.T) {
	r := NewKeyRing([]string{"k1", "k2", "k3"}, 0)

	want := []string{"k1", "k2", "k3", "k1", "k2", "k3"}
	for i, w := range want {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next() #%d error = %v", i, err)
		}
		if got != w {
			t.Errorf("Next() #%d = %s, want %s", i, got, w)
		}
	}
}

func TestKeyRing_Empty(t *testing.T) {
	r := NewKeyRing(nil, time.Minute)
	if _, err := r.Next(); !errors.Is(err, ErrNoKeysAvailable) {
		t.Errorf("Next() error = %v, want ErrNoKeysAvailable", err)
	}
}

func TestKeyRing_Bench(t *testing.T) {
	r := NewKeyRing([]string{"k1", "k2"}, 0)

	if !r.Bench("k1") {
		t.Fatal("Bench(k1) = false, want true")
	}
	if got := r.Active(); got != 1 {
		t.Errorf("Active() = %d, want 1", got)
	}
	for i := 0; i < 3; i++ {
		if got, _ := r.Next(); got != "k2" {
			t.Errorf("Next() = %s, want k2 while k1 is benched", got)
		}
	}

	if r.Bench("k2") {
		t.Error("Bench(k2) = true, want false for the last active key")
	}
	if r.Bench("unknown") {
		t.Error("Bench(unknown) = true, want false")
	}

	r.Restore()
	if got := r.Active(); got != 2 {
		t.Errorf("Active() after Restore = %d, want 2", got)
	}
}

func TestKeyRing_CooldownRevives(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewKeyRing([]string{"k1", "k2"}, time.Minute)
	r.now = func() time.Time { return now }

	r.Bench("k1")
	if got := r.Active(); got != 1 {
		t.Fatalf("Active() = %d, want 1", got)
	}

	now = now.Add(2 * time.Minute)
	if got := r.Active(); got != 2 {
		t.Errorf("Active() after cooldown = %d, want 2", got)
	}
}
