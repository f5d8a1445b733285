package pox

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSource(t *testing.T, source string) (string, []error) {
	t.Helper()
	var stdout bytes.Buffer
	interp := NewInterpreter(&stdout, strings.NewReader(""))
	errs := interp.Run(source, nil)
	return stdout.String(), errs
}

func runOk(t *testing.T, source string) string {
	t.Helper()
	output, errs := runSource(t, source)
	require.Empty(t, errs)
	return output
}

func runError(t *testing.T, source string) (string, *Error) {
	t.Helper()
	output, errs := runSource(t, source)
	require.Len(t, errs, 1)
	err, ok := errs[0].(*Error)
	require.True(t, ok, "expected a runtime error, got %v", errs[0])
	return output, err
}

func TestBlockShadowingDoesNotLeak(t *testing.T) {
	assert.Equal(t, "1\n", runOk(t, "var a = 1; { var a = 2; } print a;"))
	assert.Equal(t, "2\n1\n", runOk(t, "var a = 1; { var a = 2; print a; } print a;"))
}

func TestClosureCounter(t *testing.T) {
	source := `
		fun counter() {
			var i = 0;
			fun inc() { i = i + 1; return i; }
			return inc;
		}
		var c = counter();
		print c();
		print c();
	`
	assert.Equal(t, "1\n2\n", runOk(t, source))
}

func TestClosuresShareCapturedScope(t *testing.T) {
	source := `
		var get;
		var set;
		fun make() {
			var x = "before";
			fun g() { return x; }
			fun s(v) { x = v; }
			get = g;
			set = s;
		}
		make();
		print get();
		set("after");
		print get();
	`
	assert.Equal(t, "before\nafter\n", runOk(t, source))
}

func TestClosureCapturesStaticScope(t *testing.T) {
	source := `
		var a = "global";
		{
			fun show() { print a; }
			show();
			var a = "block";
			show();
		}
	`
	assert.Equal(t, "global\nglobal\n", runOk(t, source))
}

func TestInheritedMethod(t *testing.T) {
	source := `class A { greet() { return "hi"; } } class B < A {} print B().greet();`
	assert.Equal(t, "hi\n", runOk(t, source))
}

func TestSuperCallsAncestorWithReceiver(t *testing.T) {
	source := `
		class A {
			name() { return "A:" + this.tag; }
		}
		class B < A {
			name() { return "B>" + super.name(); }
		}
		class C < B {}
		var c = C();
		c.tag = "c";
		print c.name();
	`
	assert.Equal(t, "B>A:c\n", runOk(t, source))
}

func TestInitializer(t *testing.T) {
	source := `
		class Point {
			init(x, y) { this.x = x; this.y = y; }
			sum() { return this.x + this.y; }
		}
		var p = Point(1, 2);
		print p.sum();
		print p;
		print Point;
	`
	assert.Equal(t, "3\nPoint instance\nPoint\n", runOk(t, source))
}

func TestInitializerReturnsInstance(t *testing.T) {
	source := `
		class A {
			init() { this.n = 1; return; }
		}
		var a = A();
		a.n = 2;
		var b = a.init();
		print b == a;
		print a.n;
	`
	assert.Equal(t, "true\n1\n", runOk(t, source))
}

func TestBoundMethodKeepsReceiver(t *testing.T) {
	source := `
		class Box { init(v) { this.v = v; } get() { return this.v; } }
		var m = Box("inside").get;
		print m();
		print m;
	`
	assert.Equal(t, "inside\n<fn get>\n", runOk(t, source))
}

func TestFieldsShadowMethods(t *testing.T) {
	source := `
		class A { f() { return "method"; } }
		var a = A();
		a.f = "field";
		print a.f;
	`
	assert.Equal(t, "field\n", runOk(t, source))
}

func TestRecursion(t *testing.T) {
	source := `
		fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
		print fib(15);
	`
	assert.Equal(t, "610\n", runOk(t, source))
}

func TestControlFlow(t *testing.T) {
	source := `
		for (var i = 0; i < 3; i = i + 1) print i;
		var n = 0;
		while (n < 2) { n = n + 1; }
		print n;
		if (n == 2) print "yes"; else print "no";
		if (nil) print "yes"; else print "no";
	`
	assert.Equal(t, "0\n1\n2\n2\nyes\nno\n", runOk(t, source))
}

func TestReturnFromNestedLoop(t *testing.T) {
	source := `
		fun first() {
			for (var i = 0; i < 10; i = i + 1) {
				while (true) { return i + 5; }
			}
		}
		print first();
	`
	assert.Equal(t, "5\n", runOk(t, source))
}

func TestLogicalOperatorsUseTruthiness(t *testing.T) {
	source := `
		print !nil;
		print !false;
		print !0;
		print !"";
		print nil or "default";
		print 0 and "zero is truthy";
		print false and unknown;
		print true or unknown;
	`
	assert.Equal(t, "true\ntrue\nfalse\nfalse\ndefault\nzero is truthy\nfalse\ntrue\n", runOk(t, source))
}

func TestArithmeticAndComparison(t *testing.T) {
	source := `
		print 1 + 2 * 3;
		print (1 + 2) * 3;
		print 7 / 2;
		print -(3 - 5);
		print 1 < 2;
		print 2 <= 1;
		print 1 == 1.0;
		print "a" != "a";
		print nil == false;
	`
	assert.Equal(t, "7\n9\n3.5\n2\ntrue\nfalse\ntrue\nfalse\nfalse\n", runOk(t, source))
}

func TestStringConcatenation(t *testing.T) {
	source := `
		print "foo" + "bar";
		print "n=" + 1;
		print 2.5 + "!";
		print "is " + nil;
	`
	assert.Equal(t, "foobar\nn=1\n2.5!\nis nil\n", runOk(t, source))
}

func TestDivisionByZeroHalts(t *testing.T) {
	output, err := runError(t, "print 1 / 0; print 2;")
	assert.Equal(t, "", output)
	assert.Equal(t, ERROR_DIVISION_BY_ZERO, err.Kind)
	assert.Equal(t, "division by zero\n[line 1]", err.Error())

	_, err = runError(t, "var z = 0; print -1 / z;")
	assert.Equal(t, ERROR_DIVISION_BY_ZERO, err.Kind)
}

func TestStatementsBeforeRuntimeErrorRun(t *testing.T) {
	output, err := runError(t, "print 1;\nprint nil + 1;\nprint 3;")
	assert.Equal(t, "1\n", output)
	assert.Equal(t, ERROR_TYPE, err.Kind)
	assert.Equal(t, "operands must be numbers or strings\n[line 2]", err.Error())
}

func TestSelfReferenceInBlockDoesNotRun(t *testing.T) {
	output, errs := runSource(t, "print \"before\";\n{ var a = a; }")
	assert.Equal(t, "", output)
	require.Len(t, errs, 1)
	serr, ok := errs[0].(SyntaxError)
	require.True(t, ok)
	assert.Equal(t, STAGE_RESOLVE, serr.Stage)
	assert.Equal(t, "  2 | { var a = a; }\nSyntaxError: can't read local variable `a` in its own initializer",
		RenderError("print \"before\";\n{ var a = a; }", serr))
}

func TestParseErrorsPreventExecution(t *testing.T) {
	output, errs := runSource(t, "print 1;\nprint ;\nvar = 2;")
	assert.Equal(t, "", output)
	assert.Len(t, errs, 2)
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		source string
		why    string
	}{
		{`print -"a";`, "operand must be a number"},
		{`print "a" < 1;`, "operands must be numbers"},
		{`print true * 2;`, "operands must be numbers"},
		{`"not a function"();`, "can only call functions and classes"},
		{`var x = 1; print x.y;`, "only instances have properties, found number"},
		{`var x = "s"; x.y = 1;`, "only instances have fields, found string"},
		{`var NotClass = 1; class A < NotClass {}`, "superclass must be a class"},
	}
	for _, test := range tests {
		t.Run(test.source, func(t *testing.T) {
			_, err := runError(t, test.source)
			assert.Equal(t, ERROR_TYPE, err.Kind)
			assert.Equal(t, test.why, err.Message())
		})
	}
}

func TestArityError(t *testing.T) {
	_, err := runError(t, "fun f(a, b) {}\nf(1);")
	assert.Equal(t, ERROR_ARITY, err.Kind)
	assert.Equal(t, "expected 2 arguments but got 1\n[line 2]", err.Error())

	_, err = runError(t, "class A { init(x) {} } A();")
	assert.Equal(t, ERROR_ARITY, err.Kind)

	_, err = runError(t, "class A {} A(1);")
	assert.Equal(t, "expected 0 arguments but got 1", err.Message())
}

func TestUndefinedVariable(t *testing.T) {
	_, err := runError(t, "print missing;")
	assert.Equal(t, ERROR_UNDEFINED_VARIABLE, err.Kind)
	assert.Equal(t, "undefined variable `missing`", err.Message())

	_, err = runError(t, "missing = 1;")
	assert.Equal(t, ERROR_UNDEFINED_VARIABLE, err.Kind)
}

func TestUndefinedVariableHint(t *testing.T) {
	_, err := runError(t, "var count = 1;\nprint cout;")
	assert.Equal(t, "undefined variable `cout`, did you mean `count`?\n[line 2]", err.Error())
}

func TestUndefinedVariableWithoutCloseName(t *testing.T) {
	_, err := runError(t, "print a;")
	assert.Equal(t, "undefined variable `a`\n[line 1]", err.Error())

	_, err = runError(t, "var flag = 1; print f;")
	assert.Equal(t, "undefined variable `f`", err.Message())
}

func TestUndefinedPropertyHint(t *testing.T) {
	source := `
		class Greeter { greeting() { return "hi"; } }
		print Greeter().greting();
	`
	_, err := runError(t, source)
	assert.Equal(t, ERROR_UNDEFINED_PROPERTY, err.Kind)
	assert.Equal(t, "undefined property `greting`, did you mean `greeting`?", err.Message())
	assert.Equal(t, 3, err.Location.Line)

	_, err = runError(t, "class A {} print A().zzz;")
	assert.Equal(t, "undefined property `zzz`", err.Message())
}

func TestUndefinedSuperMethod(t *testing.T) {
	_, err := runError(t, "class A {} class B < A { f() { return super.f(); } } B().f();")
	assert.Equal(t, ERROR_UNDEFINED_PROPERTY, err.Kind)
}

func TestCallableDisplay(t *testing.T) {
	source := `
		fun f() {}
		print f;
		print clock;
		print f();
	`
	assert.Equal(t, "<fn f>\n<native fn clock>\nnil\n", runOk(t, source))
}

func TestGlobalsUsedBeforeDefinition(t *testing.T) {
	source := `
		fun f() { return g(); }
		fun g() { return 1; }
		print f();
	`
	assert.Equal(t, "1\n", runOk(t, source))

	source = `
		fun show() { print later; }
		var later = "defined";
		show();
	`
	assert.Equal(t, "defined\n", runOk(t, source))
}

func TestGlobalsPersistAcrossRuns(t *testing.T) {
	var stdout bytes.Buffer
	interp := NewInterpreter(&stdout, strings.NewReader(""))
	require.Empty(t, interp.Run("var a = 1; fun inc() { a = a + 1; }", nil))
	require.Empty(t, interp.Run("inc(); print a;", nil))
	assert.Equal(t, "2\n", stdout.String())

	value, err := interp.Globals().Get("a")
	require.NoError(t, err)
	assert.Equal(t, "2", value.String())
}

func TestRuntimeErrorLocationUsesFile(t *testing.T) {
	var stdout bytes.Buffer
	interp := NewInterpreter(&stdout, strings.NewReader(""))
	errs := interp.Run("\n\nprint 1 / 0;", &SourceLocation{"main.pox", 1})
	require.Len(t, errs, 1)
	err := errs[0].(*Error)
	assert.Equal(t, "main.pox", err.Location.File)
	assert.Equal(t, 3, err.Location.Line)
}
