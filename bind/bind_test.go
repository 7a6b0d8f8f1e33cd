// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package bind_test

import (
	"errors"
	"io"
	"math"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/creachadair/jcomb"
	"github.com/creachadair/jcomb/bind"
	"github.com/creachadair/jcomb/peg"
	"github.com/creachadair/jcomb/value"
	"github.com/google/go-cmp/cmp"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type inventory struct {
	Owner string             `json:"owner"`
	Items []int              `json:"items"`
	Extra map[string]float64 `json:"extra"`
	Meta  value.Value        `json:"meta"`
	Where *point             `json:"where,omitempty"`
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	out, err := bind.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal %v: unexpected error: %v", v, err)
	}
	return string(out)
}

func TestScenarios(t *testing.T) {
	t.Run("Struct", func(t *testing.T) {
		var p point
		if err := bind.Parse(&p, `{"x":1,"y":2}`); err != nil {
			t.Fatalf("Parse: unexpected error: %v", err)
		}
		if diff := cmp.Diff(point{X: 1, Y: 2}, p); diff != "" {
			t.Errorf("Result (-want, +got):\n%s", diff)
		}
	})

	t.Run("DynamicArray", func(t *testing.T) {
		var v value.Value
		if err := bind.Parse(&v, "[1, 2, 3]"); err != nil {
			t.Fatalf("Parse: unexpected error: %v", err)
		}
		want := value.Array(value.Number(1), value.Number(2), value.Number(3))
		if !v.Equal(want) {
			t.Errorf("Result: got %v, want %v", v, want)
		}
	})

	t.Run("DynamicObject", func(t *testing.T) {
		var v value.Value
		if err := bind.Parse(&v, `{ "a" : [1,2,3] }`); err != nil {
			t.Fatalf("Parse: unexpected error: %v", err)
		}
		want := value.Object(map[string]value.Value{
			"a": value.Array(value.Number(1), value.Number(2), value.Number(3)),
		})
		if !v.Equal(want) {
			t.Errorf("Result: got %v, want %v", v, want)
		}
	})

	t.Run("WriteNull", func(t *testing.T) {
		v := value.Number(5)
		if err := bind.Parse(&v, "null"); err != nil {
			t.Fatalf("Parse: unexpected error: %v", err)
		}
		if got := mustMarshal(t, v); got != "null" {
			t.Errorf("Write: got %q, want null", got)
		}
	})

	t.Run("IntSlice", func(t *testing.T) {
		var xs []int
		if err := bind.Parse(&xs, "[1, 2, 3]"); err != nil {
			t.Fatalf("Parse: unexpected error: %v", err)
		}
		if got := mustMarshal(t, xs); got != "[1, 2, 3]" {
			t.Errorf("Write: got %q, want %q", got, "[1, 2, 3]")
		}
	})
}

func TestParseKinds(t *testing.T) {
	var inv inventory
	const input = `{
  // comments are fine
  "owner": "kim",
  "items": [3, 1, 2],
  "extra": {"w": 1.5, "h": -2},
  "meta": {"tags": ["a", "b"], "ok": true}
}`
	if err := bind.Parse(&inv, input); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := inventory{
		Owner: "kim",
		Items: []int{3, 1, 2},
		Extra: map[string]float64{"w": 1.5, "h": -2},
		Meta: value.Object(map[string]value.Value{
			"tags": value.Array(value.String("a"), value.String("b")),
			"ok":   value.Bool(true),
		}),
	}
	opt := cmp.Comparer(value.Value.Equal)
	if diff := cmp.Diff(want, inv, opt); diff != "" {
		t.Errorf("Result (-want, +got):\n%s", diff)
	}
}

func TestNumbers(t *testing.T) {
	var s struct {
		I8  int8    `json:"i8"`
		I64 int64   `json:"i64"`
		U   uint    `json:"u"`
		F32 float32 `json:"f32"`
		F64 float64 `json:"f64"`
	}
	if err := bind.Parse(&s, `{"i8": -2.9, "i64": 9007199254740993, "u": 1e2, "f32": 0.5, "f64": 2.9}`); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if s.I8 != -2 || s.I64 != 9007199254740993 || s.U != 100 || s.F32 != 0.5 || s.F64 != 2.9 {
		t.Errorf("Result: got %+v", s)
	}

	tests := []struct {
		dst   any
		input string
	}{
		{new(int8), "300"},
		{new(int8), "-129"},
		{new(uint), "-1"},
		{new(uint8), "256"},
		{new(int64), "1e19"},
		{new(float32), "1e39"},
		{new(float32), "1e400"},
		{new(float64), "1e400"},
		{new(float64), "-1e400"},
		{new(value.Value), "[1e400]"},
	}
	for _, tc := range tests {
		err := bind.Parse(tc.dst, tc.input)
		if !errors.Is(err, bind.ErrRange) {
			t.Errorf("Parse %q into %T: got %v, want %v", tc.input, tc.dst, err, bind.ErrRange)
		}
	}
}

func TestStrictness(t *testing.T) {
	tests := []struct {
		name  string
		dst   any
		input string
		want  error
		path  string
	}{
		{"UnknownMember", new(point), `{"x": 1, "z": 2}`, bind.ErrUnknownMember, "$.z"},
		{"StringToInt", new(point), `{"x": "one"}`, bind.ErrUnsupported, "$.x"},
		{"ArrayToStruct", new(point), `[1, 2]`, bind.ErrUnsupported, "$"},
		{"ObjectToSlice", new([]int), `{}`, bind.ErrUnsupported, "$"},
		{"NullToInt", new(int), `null`, bind.ErrUnsupported, "$"},
		{"NestedElement", new(inventory), `{"items": [1, "x"]}`, bind.ErrUnsupported, "$.items[1]"},
		{"NestedMap", new(inventory), `{"extra": {"odd key": true}}`, bind.ErrUnsupported, `$.extra["odd key"]`},
		{"Pointer", new(inventory), `{"where": {"x": 1}}`, bind.ErrUnsupported, "$.where"},
		{"BadMapKey", new(map[int]string), `{"1": "a"}`, bind.ErrUnsupported, "$"},
		{"Channel", new(chan int), `[]`, bind.ErrUnsupported, "$"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := bind.Parse(tc.dst, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Parse %q: got %v, want %v", tc.input, err, tc.want)
			}
			var berr *bind.Error
			if !errors.As(err, &berr) {
				t.Fatalf("Parse %q: got %T, want *bind.Error", tc.input, err)
			}
			if berr.Path != tc.path {
				t.Errorf("Path: got %q, want %q", berr.Path, tc.path)
			}
			if !strings.Contains(err.Error(), tc.path) {
				t.Errorf("Error %q does not mention path %q", err, tc.path)
			}
		})
	}
}

func TestLazyArray(t *testing.T) {
	xs := []int{9, 9}
	if err := bind.Parse(&xs, "[]"); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if xs == nil || len(xs) != 0 {
		t.Errorf("Result: got %#v, want empty non-nil slice", xs)
	}

	var nested [][]string
	if err := bind.Parse(&nested, `[[], ["a"], []]`); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if diff := cmp.Diff([][]string{{}, {"a"}, {}}, nested); diff != "" {
		t.Errorf("Result (-want, +got):\n%s", diff)
	}

	var v value.Value
	if err := bind.Parse(&v, `[[], {}]`); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if v.Len() != 2 || v.Index(0).Len() != 0 || v.Index(1).Kind() != jcomb.Object {
		t.Errorf("Result: got %v, want [[], {}]", v)
	}

	// An empty array never resolves its element capability.
	var chans []chan int
	if err := bind.Parse(&chans, `[]`); err != nil {
		t.Errorf("Parse: unexpected error: %v", err)
	}
}

func TestMaps(t *testing.T) {
	type name string
	m := map[name]int{"stale": 1}
	if err := bind.Parse(&m, `{"a": 1, "b": 2, "a": 3}`); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[name]int{"a": 3, "b": 2}, m); diff != "" {
		t.Errorf("Result (-want, +got):\n%s", diff)
	}

	var deep map[string]map[string][]int
	if err := bind.Parse(&deep, `{"x": {"y": [1, 2], "z": []}, "w": {}}`); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := map[string]map[string][]int{
		"x": {"y": {1, 2}, "z": {}},
		"w": {},
	}
	if diff := cmp.Diff(want, deep); diff != "" {
		t.Errorf("Result (-want, +got):\n%s", diff)
	}

	var pts map[string]point
	if err := bind.Parse(&pts, `{"p": {"x": 1, "y": 2}}`); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[string]point{"p": {1, 2}}, pts); diff != "" {
		t.Errorf("Result (-want, +got):\n%s", diff)
	}
}

func TestTransactionalBinding(t *testing.T) {
	const input = `{"a": 1, "b": oops}`

	m := map[string]int{"keep": 1}
	err := bind.Parse(&m, input)
	var serr *jcomb.SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("Parse: got %v, want *SyntaxError", err)
	}
	if diff := cmp.Diff(map[string]int{"keep": 1}, m); diff != "" {
		t.Errorf("Destination changed (-want, +got):\n%s", diff)
	}

	// In incremental mode the destination sees the prefix before the error.
	p := jcomb.NewParser(peg.NewString(input))
	p.Incremental(true)
	if err := bind.ParseWith(p, &m); err == nil {
		t.Fatal("ParseWith: got nil, want error")
	}
	if diff := cmp.Diff(map[string]int{"a": 1}, m); diff != "" {
		t.Errorf("Destination (-want, +got):\n%s", diff)
	}
}

func TestDestinationErrors(t *testing.T) {
	var p point
	for _, dst := range []any{p, (*point)(nil), nil} {
		if err := bind.Parse(dst, "{}"); err == nil {
			t.Errorf("Parse into %#v: got nil, want error", dst)
		}
	}

	b, err := bind.NewBuilder(&p)
	if err != nil {
		t.Fatalf("NewBuilder: unexpected error: %v", err)
	}
	if err := b.Done(); err != nil {
		t.Errorf("Done before events: unexpected error: %v", err)
	}
	b.BeginObject()
	b.Member("x")
	if err := b.Done(); err == nil {
		t.Error("Done with open object: got nil, want error")
	}
}

func TestParseReaderBytes(t *testing.T) {
	var a, b point
	if err := bind.ParseReader(&a, strings.NewReader(`{"x": 5}`)); err != nil {
		t.Fatalf("ParseReader: unexpected error: %v", err)
	}
	if err := bind.ParseBytes(&b, []byte(`{"y": 6}`)); err != nil {
		t.Fatalf("ParseBytes: unexpected error: %v", err)
	}
	if a != (point{X: 5}) || b != (point{Y: 6}) {
		t.Errorf("Results: got %+v, %+v", a, b)
	}

	// A pipe has a Seek method, but cannot seek.
	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer pr.Close()
	go func() {
		defer pw.Close()
		io.WriteString(pw, `{"a": [1, 2]}`)
	}()
	var v value.Value
	if err := bind.ParseReader(&v, pr); err != nil {
		t.Fatalf("ParseReader pipe: unexpected error: %v", err)
	}
	want := value.Object(map[string]value.Value{
		"a": value.Array(value.Number(1), value.Number(2)),
	})
	if !v.Equal(want) {
		t.Errorf("ParseReader pipe: got %v, want %v", v, want)
	}
}

func TestWrite(t *testing.T) {
	inv := inventory{
		Owner: "kim",
		Items: []int{1, 2},
		Extra: map[string]float64{"b": 0.25, "a": 1e21},
		Meta:  value.Array(value.Null()),
	}
	const compact = `{"owner" : "kim", "items" : [1, 2], "extra" : {"a" : 1e+21, "b" : 0.25}, "meta" : [null]}`
	if got := mustMarshal(t, inv); got != compact {
		t.Errorf("Marshal:\ngot  %s\nwant %s", got, compact)
	}
	if got := mustMarshal(t, &inv); got != compact {
		t.Errorf("Marshal pointer:\ngot  %s\nwant %s", got, compact)
	}

	out, err := bind.MarshalIndent(point{X: 1, Y: -2})
	if err != nil {
		t.Fatalf("MarshalIndent: unexpected error: %v", err)
	}
	if diff := cmp.Diff("{\n  \"x\" : 1,\n  \"y\" : -2\n}", string(out)); diff != "" {
		t.Errorf("MarshalIndent (-want, +got):\n%s", diff)
	}

	// Nil slices and maps are written empty, so they parse back.
	if got := mustMarshal(t, inventory{}); got != `{"owner" : "", "items" : [], "extra" : {}, "meta" : null}` {
		t.Errorf("Marshal zero: got %s", got)
	}
	if got := mustMarshal(t, nil); got != "null" {
		t.Errorf("Marshal nil: got %s", got)
	}
	if got := mustMarshal(t, []float32{0.1}); got != "[0.1]" {
		t.Errorf("Marshal float32: got %s", got)
	}
	if got := mustMarshal(t, []uint64{math.MaxUint64}); got != "[18446744073709551615]" {
		t.Errorf("Marshal uint64: got %s", got)
	}
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name string
		src  any
		path string
	}{
		{"BadMap", map[int]string{1: "a"}, "$"},
		{"NestedChannel", struct {
			C chan int `json:"c"`
		}{}, "$.c"},
		{"SliceElement", []any{1}, "$[0]"},
		{"Pointer", inventory{Where: &point{}}, "$.where"},
	}
	for _, tc := range tests {
		_, err := bind.Marshal(tc.src)
		var berr *bind.Error
		if !errors.As(err, &berr) || !errors.Is(err, bind.ErrUnsupported) {
			t.Errorf("%s: got %v, want *bind.Error with ErrUnsupported", tc.name, err)
			continue
		}
		if berr.Path != tc.path {
			t.Errorf("%s: path %q, want %q", tc.name, berr.Path, tc.path)
		}
	}

	if _, err := bind.Marshal(math.NaN()); err == nil {
		t.Error("Marshal NaN: got nil, want error")
	}
}

func TestConvert(t *testing.T) {
	src := inventory{
		Owner: "lee",
		Items: []int{4, 5},
		Extra: map[string]float64{"k": 0.5},
		Meta:  value.String("m"),
	}
	var v value.Value
	if err := bind.Convert(&v, src); err != nil {
		t.Fatalf("Convert to value: unexpected error: %v", err)
	}
	if got := v.Get("items").Index(1); !got.Equal(value.Number(5)) {
		t.Errorf("items[1]: got %v, want 5", got)
	}

	var back inventory
	if err := bind.Convert(&back, v); err != nil {
		t.Fatalf("Convert from value: unexpected error: %v", err)
	}
	if diff := cmp.Diff(src, back, cmp.Comparer(value.Value.Equal)); diff != "" {
		t.Errorf("Round trip (-want, +got):\n%s", diff)
	}

	var fs []float64
	if err := bind.Convert(&fs, []int64{1 << 40, -3}); err != nil {
		t.Fatalf("Convert ints: unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{1 << 40, -3}, fs); diff != "" {
		t.Errorf("Convert ints (-want, +got):\n%s", diff)
	}

	var pt point
	if err := bind.Convert(&pt, map[string]int{"x": 1, "q": 2}); !errors.Is(err, bind.ErrUnknownMember) {
		t.Errorf("Convert unknown member: got %v, want %v", err, bind.ErrUnknownMember)
	}
}

func TestSchemaLookup(t *testing.T) {
	s, ok := bind.Default.Schema(reflect.TypeFor[point]())
	if !ok {
		t.Fatal("Schema(point): not found")
	}
	var names []string
	for _, f := range s.Fields {
		names = append(names, f.Member)
	}
	if diff := cmp.Diff([]string{"x", "y"}, names); diff != "" {
		t.Errorf("Members (-want, +got):\n%s", diff)
	}
	if _, ok := bind.Default.Schema(reflect.TypeFor[int]()); ok {
		t.Error("Schema(int): unexpectedly found")
	}
}
