package feature

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/duplicheck/internal/domain"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Fatal("zero Value must be NULL")
	}
	if v.String() != "" {
		t.Fatalf("NULL renders empty, got %q", v.String())
	}
}

func TestValue_Equal(t *testing.T) {
	if !Text("a").Equal(Text("a")) {
		t.Fatal("equal text")
	}
	if Text("a").Equal(Text("b")) {
		t.Fatal("unequal text")
	}
	if !Null().Equal(Null()) {
		t.Fatal("NULL equals NULL")
	}
	if Null().Equal(Text("")) {
		t.Fatal("NULL is not empty text")
	}
	if !Int(3).Equal(Real(3.0)) {
		t.Fatal("integer 3 equals real 3.0 numerically")
	}
	if Int(3).Equal(Text("3")) {
		t.Fatal("numeric and text never equal")
	}
}

func TestValue_Compare(t *testing.T) {
	if c, err := Int(1).Compare(Real(2)); err != nil || c != -1 {
		t.Fatalf("want -1, got %d err=%v", c, err)
	}
	if c, err := Text("b").Compare(Text("a")); err != nil || c != 1 {
		t.Fatalf("want 1, got %d err=%v", c, err)
	}
	d1 := Date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	d2 := Date(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	if c, err := d1.Compare(d2); err != nil || c != -1 {
		t.Fatalf("want -1 for earlier date, got %d err=%v", c, err)
	}

	if _, err := Text("a").Compare(Int(1)); !errors.Is(err, domain.ErrValuesNotComparable) {
		t.Fatalf("want ErrValuesNotComparable, got %v", err)
	}
	if _, err := Null().Compare(Int(1)); !errors.Is(err, domain.ErrValuesNotComparable) {
		t.Fatalf("want ErrValuesNotComparable for null operand, got %v", err)
	}
}
