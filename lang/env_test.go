package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestNewEnvironment(t *testing.T) {
	outer := &Environment{}
	outer.Define("z", Integer(3))

	env, err := NewEnvironment(
		[]Symbol{"x", "y"},
		[]Expr{Integer(1), Integer(2)},
		outer,
	)
	if err != nil {
		t.Fatalf("NewEnvironment error: %v", err)
	}

	if env.Outer() != outer {
		t.Error("Outer should return the enclosing frame")
	}

	for name, want := range map[Symbol]Expr{
		"x": Integer(1),
		"y": Integer(2),
		"z": Integer(3),
	} {
		got, err := env.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%s) error: %v", name, err)
		}

		if !Equal(got, want) {
			t.Errorf("Lookup(%s) = %s, want %s", name, Format(got), Format(want))
		}
	}

	_, err = NewEnvironment([]Symbol{"x"}, nil, outer)
	if !errors.Is(err, ErrArity) {
		t.Errorf("mismatched bind error = %v, want %v", err, ErrArity)
	}
}

func TestEnvironment_Lookup(t *testing.T) {
	root := &Environment{}
	root.Define("x", Integer(1))

	inner, err := NewEnvironment([]Symbol{"x"}, []Expr{Integer(2)}, root)
	if err != nil {
		t.Fatalf("NewEnvironment error: %v", err)
	}

	if got, _ := inner.Lookup("x"); !Equal(got, Integer(2)) {
		t.Errorf("inner x = %s, want 2 (shadowed)", Format(got))
	}

	if got, _ := root.Lookup("x"); !Equal(got, Integer(1)) {
		t.Errorf("root x = %s, want 1", Format(got))
	}

	_, err = inner.Lookup("missing")
	if !errors.Is(err, ErrUnbound) || !errors.Is(err, ErrEval) {
		t.Fatalf("Lookup(missing) error = %v, want %v", err, ErrUnbound)
	}

	if got, want := err.Error(), "unbound symbol: missing"; got != want {
		t.Errorf("error text = %q, want %q", got, want)
	}
}

func TestEnvironment_Find(t *testing.T) {
	root := &Environment{}
	root.Define("a", Integer(1))

	mid, _ := NewEnvironment([]Symbol{"b"}, []Expr{Integer(2)}, root)
	leaf, _ := NewEnvironment(nil, nil, mid)

	if leaf.Find("a") != root {
		t.Error("Find(a) should return the root frame")
	}

	if leaf.Find("b") != mid {
		t.Error("Find(b) should return the middle frame")
	}

	if leaf.Find("c") != nil {
		t.Error("Find(c) should return nil")
	}
}

func TestEnvironment_DefineShadows(t *testing.T) {
	root := &Environment{}
	root.Define("x", Integer(1))

	inner, _ := NewEnvironment(nil, nil, root)
	inner.Define("x", Integer(10))

	if got, _ := root.Lookup("x"); !Equal(got, Integer(1)) {
		t.Errorf("define in inner frame leaked outward: root x = %s", Format(got))
	}

	inner.Define("x", Integer(11))

	if got, _ := inner.Lookup("x"); !Equal(got, Integer(11)) {
		t.Errorf("redefine: inner x = %s, want 11", Format(got))
	}
}

func TestEnvironment_Set(t *testing.T) {
	root := &Environment{}
	root.Define("x", Integer(1))

	inner, _ := NewEnvironment(nil, nil, root)

	if err := inner.Set("x", Integer(5)); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if got, _ := root.Lookup("x"); !Equal(got, Integer(5)) {
		t.Errorf("Set should update the defining frame: root x = %s", Format(got))
	}

	if inner.Find("x") != root {
		t.Error("Set must not create a binding in the inner frame")
	}

	err := inner.Set("y", Integer(1))
	if !errors.Is(err, ErrSetUnbound) {
		t.Errorf("Set(unbound) error = %v, want %v", err, ErrSetUnbound)
	}

	if root.Find("y") != nil {
		t.Error("failed Set must not create a binding")
	}
}

func TestEnvironment_Names(t *testing.T) {
	root := &Environment{}
	root.Define("b", Integer(1))
	root.Define("a", Integer(1))

	inner, _ := NewEnvironment([]Symbol{"c", "a"}, []Expr{Nil, Nil}, root)

	if got, want := inner.Names(), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %q, want %q", got, want)
	}
}

func TestNewRootEnvironment_Independent(t *testing.T) {
	a := NewRootEnvironment()
	b := NewRootEnvironment()

	a.Define("car", Integer(0))

	got, err := b.Lookup("car")
	if err != nil {
		t.Fatalf("Lookup(car) error: %v", err)
	}

	if _, ok := got.(*Primitive); !ok {
		t.Errorf("redefinition leaked across roots: car = %s", Format(got))
	}
}
