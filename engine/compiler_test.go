package engine

import (
	"strings"
	"testing"

	"github.com/jacklang/jackc/token"
	"github.com/jacklang/jackc/vm"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	tk, err := token.New(strings.NewReader(src))
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	var out strings.Builder
	w := vm.New(&out)
	if err := New(w).Compile(tk); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return out.String()
}

// line mirrors vm.Writer's own "verb p1 p2\n" contract (spec.md §4.4):
// absent parameters are empty, but both separating spaces always appear.
func line(verb string, params ...string) string {
	var p [2]string
	copy(p[:], params)
	return verb + " " + p[0] + " " + p[1] + "\n"
}

func TestVoidFunctionWithArithmetic(t *testing.T) {
	src := `
	class Main {
		function void main() {
			do Output.printInt(1 + 2);
			return;
		}
	}`
	want := line("function", "Main.main", "0") +
		line("push", "constant", "1") +
		line("push", "constant", "2") +
		line("add") +
		line("call", "Output.printInt", "1") +
		line("pop", "temp", "0") +
		line("push", "constant", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestConstructorAllocatesFields(t *testing.T) {
	src := `
	class Point {
		field int x, y;
		constructor Point new(int ax, int ay) {
			let x = ax;
			let y = ay;
			return this;
		}
	}`
	want := line("function", "Point.new", "0") +
		line("push", "constant", "2") +
		line("call", "Memory.alloc", "1") +
		line("pop", "pointer", "0") +
		line("push", "argument", "0") +
		line("pop", "this", "0") +
		line("push", "argument", "1") +
		line("pop", "this", "1") +
		line("push", "pointer", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestMethodUsesPointerZeroForThis(t *testing.T) {
	src := `
	class Point {
		field int x;
		method int getX() {
			return x;
		}
	}`
	want := line("function", "Point.getX", "0") +
		line("push", "argument", "0") +
		line("pop", "pointer", "0") +
		line("push", "this", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWhileLoopLabelOrder(t *testing.T) {
	src := `
	class Main {
		static int x;
		function void main() {
			while (true) {
				let x = 1;
			}
			return;
		}
	}`
	want := line("function", "Main.main", "0") +
		line("label", "LABEL_1") +
		line("push", "constant", "0") +
		line("not") +
		line("not") +
		line("if-goto", "LABEL_0") +
		line("push", "constant", "1") +
		line("pop", "static", "0") +
		line("goto", "LABEL_1") +
		line("label", "LABEL_0") +
		line("push", "constant", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestIfElseLabelOrder(t *testing.T) {
	src := `
	class Main {
		function void main() {
			if (false) {
				return;
			} else {
				return;
			}
		}
	}`
	want := line("function", "Main.main", "0") +
		line("push", "constant", "0") +
		line("not") +
		line("if-goto", "LABEL_0") +
		line("push", "constant", "0") +
		line("return") +
		line("goto", "LABEL_1") +
		line("label", "LABEL_0") +
		line("push", "constant", "0") +
		line("return") +
		line("label", "LABEL_1")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestArrayLValueRoundTrip(t *testing.T) {
	src := `
	class Main {
		function void main() {
			var Array a;
			let a[0] = 5;
			return;
		}
	}`
	want := line("function", "Main.main", "1") +
		line("push", "local", "0") +
		line("push", "constant", "0") +
		line("add") +
		line("push", "constant", "5") +
		line("pop", "temp", "0") +
		line("pop", "pointer", "1") +
		line("push", "temp", "0") +
		line("pop", "that", "0") +
		line("push", "constant", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestArrayRValue(t *testing.T) {
	src := `
	class Main {
		function void main() {
			var Array a;
			var int x;
			let x = a[1];
			return;
		}
	}`
	want := line("function", "Main.main", "2") +
		line("push", "local", "0") +
		line("push", "constant", "1") +
		line("add") +
		line("pop", "pointer", "1") +
		line("push", "that", "0") +
		line("pop", "local", "1") +
		line("push", "constant", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBareFunctionVsInstanceMethodCallDispatch(t *testing.T) {
	src := `
	class Main {
		function void main() {
			var Point p;
			do Math.abs(-1);
			do p.getX();
			return;
		}
	}`
	want := line("function", "Main.main", "1") +
		line("push", "constant", "1") +
		line("neg") +
		line("call", "Math.abs", "1") +
		line("pop", "temp", "0") +
		line("push", "local", "0") +
		line("call", "Point.getX", "1") +
		line("pop", "temp", "0") +
		line("push", "constant", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestStringLiteralConstruction(t *testing.T) {
	src := `
	class Main {
		function void main() {
			do Output.printString("ab");
			return;
		}
	}`
	want := line("function", "Main.main", "0") +
		line("push", "constant", "2") +
		line("call", "String.new", "1") +
		line("push", "constant", "97") +
		line("call", "String.appendChar", "2") +
		line("push", "constant", "98") +
		line("call", "String.appendChar", "2") +
		line("call", "Output.printString", "1") +
		line("pop", "temp", "0") +
		line("push", "constant", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestMethodCallOnThisPushesPointerZero(t *testing.T) {
	src := `
	class Main {
		method void helper() {
			return;
		}
		method void main() {
			do helper();
			return;
		}
	}`
	want := line("function", "Main.helper", "0") +
		line("push", "argument", "0") +
		line("pop", "pointer", "0") +
		line("push", "constant", "0") +
		line("return") +
		line("function", "Main.main", "0") +
		line("push", "argument", "0") +
		line("pop", "pointer", "0") +
		line("push", "pointer", "0") +
		line("call", "Main.helper", "1") +
		line("pop", "temp", "0") +
		line("push", "constant", "0") +
		line("return")

	if got := compile(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestUnexpectedTokenPropagatesAsError(t *testing.T) {
	src := `class Main { function void main() { let ; } }`
	tk, err := token.New(strings.NewReader(src))
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	var out strings.Builder
	w := vm.New(&out)
	if err := New(w).Compile(tk); err == nil {
		t.Fatal("expected an error for malformed let statement")
	}
}

func TestStrayInputAfterClosingBraceIsAnError(t *testing.T) {
	src := `class Main { } class Other { }`
	tk, err := token.New(strings.NewReader(src))
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	var out strings.Builder
	w := vm.New(&out)
	if err := New(w).Compile(tk); err == nil {
		t.Fatal("expected an error for stray input after the class body")
	}
}
