package transform

import (
	"context"
	"testing"
)

func TestDefaults_StockTransforms(t *testing.T) {
	r := Defaults()
	ctx := context.Background()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lower", "AbC", "abc"},
		{"upper", "AbC", "ABC"},
		{"reverse", "abc", "cba"},
		{"double", "ab", "abab"},
	}
	for _, tc := range cases {
		f, ok := r.Get(tc.name)
		if !ok {
			t.Fatalf("transform %q not registered", tc.name)
		}
		got, err := f(ctx, tc.in)
		if err != nil {
			t.Fatalf("%s(%q): %v", tc.name, tc.in, err)
		}
		if got != tc.want {
			t.Errorf("%s(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestGet_UnknownTransform(t *testing.T) {
	r := Defaults()
	if _, ok := r.Get("nope"); ok {
		t.Error("expected unknown transform to be absent")
	}
}

func TestNames_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("b", func(_ context.Context, v string) (string, error) { return v, nil })
	r.Register("a", func(_ context.Context, v string) (string, error) { return v, nil })
	r.Register("b", func(_ context.Context, v string) (string, error) { return v, nil })

	names := r.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Names() = %v, want [b a]", names)
	}
}

// Registered transforms are wrapped so they can never hand the board an
// invalid value.
func TestRegister_RejectsInvalidOutput(t *testing.T) {
	r := NewRegistry()
	r.Register("blank", func(_ context.Context, v string) (string, error) { return "", nil })
	r.Register("spaced", func(_ context.Context, v string) (string, error) { return "a b", nil })

	for _, name := range []string{"blank", "spaced"} {
		f, _ := r.Get(name)
		if _, err := f(context.Background(), "x"); err == nil {
			t.Errorf("transform %q: expected error for invalid output", name)
		}
	}
}
