// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package value_test

import (
	"math"
	"strings"
	"testing"

	"github.com/creachadair/jcomb"
	"github.com/creachadair/jcomb/internal/testutil"
	"github.com/creachadair/jcomb/value"
	"github.com/google/go-cmp/cmp"
)

func TestZero(t *testing.T) {
	var v value.Value
	if !v.IsNull() || v.Kind() != jcomb.Null {
		t.Errorf("Zero value: got kind %v, want null", v.Kind())
	}
	if got := v.String(); got != "null" {
		t.Errorf("String: got %q, want null", got)
	}
}

func TestViews(t *testing.T) {
	v := value.Number(3)
	if got := *v.Number(); got != 3 {
		t.Errorf("Number: got %v, want 3", got)
	}

	// Asking for a different view replaces the contents.
	if got := *v.Text(); got != "" {
		t.Errorf("Text of number: got %q, want empty", got)
	}
	if v.Kind() != jcomb.String {
		t.Errorf("Kind after Text: got %v, want string", v.Kind())
	}
	*v.Text() = "hello"
	if got := v.String(); got != `"hello"` {
		t.Errorf("String: got %q, want %q", got, `"hello"`)
	}

	if *v.Boolean() {
		t.Error("Boolean of string: got true, want false")
	}
	*v.Boolean() = true

	arr := v.Array()
	if len(*arr) != 0 {
		t.Errorf("Array of bool: got %d elements, want 0", len(*arr))
	}
	*arr = append(*arr, value.Number(1), value.Number(2))
	if v.Len() != 2 {
		t.Errorf("Len: got %d, want 2", v.Len())
	}

	obj := v.Object()
	obj["k"] = value.String("v")
	if got := v.Get("k"); !got.Equal(value.String("v")) {
		t.Errorf("Get(k): got %v, want %q", got, "v")
	}

	v.SetNull()
	if !v.IsNull() {
		t.Errorf("SetNull: got kind %v", v.Kind())
	}
}

func TestAccessors(t *testing.T) {
	v := value.Object(map[string]value.Value{
		"list": value.Array(value.Bool(true), value.Null(), value.String("x")),
		"num":  value.Number(2.5),
	})

	tests := []struct {
		name string
		got  value.Value
		want value.Value
	}{
		{"Get(num)", v.Get("num"), value.Number(2.5)},
		{"Get(missing)", v.Get("missing"), value.Null()},
		{"Index(2)", v.Get("list").Index(2), value.String("x")},
		{"Index(-1)", v.Get("list").Index(-1), value.Null()},
		{"Index(3)", v.Get("list").Index(3), value.Null()},
		{"Index of object", v.Index(0), value.Null()},
		{"Get of array", v.Get("list").Get("num"), value.Null()},
		{"Get of scalar", v.Get("num").Get("x"), value.Null()},
	}
	for _, tc := range tests {
		if !tc.got.Equal(tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, tc.got, tc.want)
		}
	}

	if !v.HasKey("num") || v.HasKey("nope") || v.Get("list").HasKey("num") {
		t.Error("HasKey: wrong result")
	}
	if got := v.Len(); got != 2 {
		t.Errorf("Len(object): got %d, want 2", got)
	}
	if got := v.Get("num").Len(); got != 0 {
		t.Errorf("Len(number): got %d, want 0", got)
	}
	if diff := cmp.Diff([]string{"list", "num"}, v.Keys()); diff != "" {
		t.Errorf("Keys (-want, +got):\n%s", diff)
	}
	if keys := v.Get("num").Keys(); keys != nil {
		t.Errorf("Keys(number): got %q, want nil", keys)
	}
}

func TestSetAppend(t *testing.T) {
	var v value.Value
	v.Set("a", value.Number(1))
	v.Set("b", value.Null())
	if got, want := v.String(), `{"a" : 1, "b" : null}`; got != want {
		t.Errorf("After Set: got %q, want %q", got, want)
	}

	v.Append(value.Bool(false), value.String("s"))
	if got, want := v.String(), `[false, "s"]`; got != want {
		t.Errorf("After Append: got %q, want %q", got, want)
	}
}

func TestEqual(t *testing.T) {
	a := value.Object(map[string]value.Value{
		"x": value.Array(value.Number(1), value.String("y")),
	})
	b := value.Object(map[string]value.Value{
		"x": value.Array(value.Number(1), value.String("y")),
	})
	c := value.Object(map[string]value.Value{
		"x": value.Array(value.Number(1), value.String("z")),
	})
	if !a.Equal(b) {
		t.Error("Equal(a, b): got false, want true")
	}
	if a.Equal(c) {
		t.Error("Equal(a, c): got true, want false")
	}
	if value.Number(0).Equal(value.Bool(false)) {
		t.Error("Equal(0, false): got true, want false")
	}
	if !value.Array().Equal(value.Array()) {
		t.Error("Equal([], []): got false, want true")
	}
	if value.Number(math.NaN()).Equal(value.Number(math.NaN())) {
		t.Error("Equal(NaN, NaN): got true, want false")
	}
}

func TestEmit(t *testing.T) {
	v := value.Object(map[string]value.Value{
		"b": value.Array(value.Number(1), value.Bool(true), value.Object(nil)),
		"a": value.String("x"),
	})
	var rec testutil.Recorder
	if err := v.Emit(&rec); err != nil {
		t.Fatalf("Emit: unexpected error: %v", err)
	}
	if got, want := rec.String(), `{ .a "x" .b [ 1 true { } ] }`; got != want {
		t.Errorf("Emit: got %q, want %q", got, want)
	}
	if got, want := v.String(), `{"a" : "x", "b" : [1, true, {}]}`; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}

	stop := &testutil.Recorder{StopAt: 4}
	if err := v.Emit(stop); err != testutil.ErrStop {
		t.Errorf("Emit: got %v, want %v", err, testutil.ErrStop)
	}

	bad := value.Array(value.Number(math.Inf(1)))
	if got := bad.String(); !strings.HasPrefix(got, "<invalid value:") {
		t.Errorf("String of Inf: got %q", got)
	}
}

func TestInterface(t *testing.T) {
	v := value.Object(map[string]value.Value{
		"list": value.Array(value.Bool(true), value.Null(), value.Number(-1)),
		"str":  value.String("s"),
	})
	want := map[string]any{
		"list": []any{true, nil, float64(-1)},
		"str":  "s",
	}
	got := v.Interface()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Interface (-want, +got):\n%s", diff)
	}

	back, err := value.FromInterface(got)
	if err != nil {
		t.Fatalf("FromInterface: unexpected error: %v", err)
	}
	if !back.Equal(v) {
		t.Errorf("FromInterface: got %v, want %v", back, v)
	}

	if n, err := value.FromInterface(5); err != nil || !n.Equal(value.Number(5)) {
		t.Errorf("FromInterface(5): got %v, %v", n, err)
	}
	if _, err := value.FromInterface([]any{struct{}{}}); err == nil {
		t.Error("FromInterface(struct): got nil, want error")
	}
}
