package evaluator

import (
	"math"
	"testing"

	"github.com/sambeau/golox/pkg/lox/lexer"
	"github.com/sambeau/golox/pkg/lox/parser"
)

// testLogger collects print output for assertions
type testLogger struct {
	lines []string
}

func (l *testLogger) Log(values ...any)     {}
func (l *testLogger) LogLine(values ...any) { l.lines = append(l.lines, values[0].(string)) }

func testEval(t *testing.T, input string) Object {
	t.Helper()
	return testEvalWithLogger(t, input, nil)
}

func testEvalWithLogger(t *testing.T, input string, logger Logger) Object {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	env := NewEnvironment()
	env.Logger = logger
	return Eval(program, env)
}

func TestEvalNumberExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"5;", 5},
		{"10.25;", 10.25},
		{"-5;", -5},
		{"--5;", 5},
		{"2 + 3 * 4;", 14},
		{"(2 + 3) * 4;", 20},
		{"10 - 2 - 3;", 5},
		{"10 / 4;", 2.5},
		{"2 * 2 * 2 * 2;", 16},
		{"-4 + 6;", 2},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	result := testEval(t, "1 / 0;")
	num, ok := result.(*Number)
	if !ok {
		t.Fatalf("result is not *Number. got=%T (%+v)", result, result)
	}
	if !math.IsInf(num.Value, 1) {
		t.Errorf("1 / 0 is not +inf. got=%v", num.Value)
	}

	result = testEval(t, "0 / 0;")
	num, ok = result.(*Number)
	if !ok {
		t.Fatalf("result is not *Number. got=%T (%+v)", result, result)
	}
	if !math.IsNaN(num.Value) {
		t.Errorf("0 / 0 is not NaN. got=%v", num.Value)
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true;", true},
		{"false;", false},
		{"1 < 2;", true},
		{"1 > 2;", false},
		{"2 <= 2;", true},
		{"3 >= 4;", false},
		{"1 == 1;", true},
		{"1 != 1;", false},
		{"1 == 2;", false},
		{"1 != 2;", true},
		{`"a" == "a";`, true},
		{`"a" == "b";`, false},
		{`"a" != "b";`, true},
		{"true == true;", true},
		{"true != false;", true},
		{"nil == nil;", true},
		// No implicit conversions: different types are never equal.
		{"1 == true;", false},
		{"0 == false;", false},
		{`"1" == 1;`, false},
		{"nil == false;", false},
		{"nil != 0;", true},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testBooleanObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestNaNIsNotEqualToItself(t *testing.T) {
	result := testEval(t, "var n = 0 / 0; n == n;")
	if !testBooleanObject(t, result, false) {
		t.Fatalf("NaN == NaN should be false")
	}
}

func TestBangOperator(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"!true;", false},
		{"!false;", true},
		{"!nil;", true},
		{"!0;", false},
		{`!"";`, false},
		{"!5;", false},
		{"!!true;", true},
		{"!!nil;", false},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testBooleanObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestStringConcatenation(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"foo" + "bar";`, "foobar"},
		{`"a" + 1;`, "a1"},
		{`1 + "a";`, "1a"},
		{`"n=" + 75.00;`, "n=75"},
		{`"b=" + true;`, "b=true"},
		{`"" + nil;`, "nil"},
		{`"a" + "b" + "c";`, "abc"},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testStringObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestVarStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"var a = 5; a;", 5},
		{"var a = 5 * 5; a;", 25},
		{"var a = 5; var b = a; b;", 5},
		{"var a = 5; var b = a; var c = a + b + 5; c;", 15},
		{"var a = 1; var a = 2; a;", 2},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestVarWithoutInitializer(t *testing.T) {
	result := testEval(t, "var a; a;")
	testNilObject(t, result)
}

func TestAssignExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"var a = 1; a = 2; a;", 2},
		{"var a = 1; a = a + 1; a;", 2},
		{"var a = 1; var b = a = 5; b;", 5},
		{"var a; var b; a = b = 3; a + b;", 6},
		{"var a = 1; { a = 2; } a;", 2},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestBlockScoping(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		// Shadowing: the inner var disappears with its block.
		{"var a = 1; { var a = 2; } a;", 1},
		{"var a = 1; { var a = a + 1; a; }", 2},
		// Inner blocks read and write enclosing scopes.
		{"var a = 1; { var b = a + 1; a = b; } a;", 2},
		{"var a = 1; { { { a = 9; } } } a;", 9},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestIfElseStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"var x; if (true) x = 1; else x = 2; x;", 1},
		{"var x; if (false) x = 1; else x = 2; x;", 2},
		{"var x = 0; if (false) x = 1; x;", 0},
		{"var x; if (1 < 2) x = 1; else x = 2; x;", 1},
		// 0 and "" are truthy; only nil and false are falsy.
		{"var x; if (0) x = 1; else x = 2; x;", 1},
		{`var x; if ("") x = 1; else x = 2; x;`, 1},
		{"var x; if (nil) x = 1; else x = 2; x;", 2},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestWhileStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"var i = 0; var s = 0; while (i < 5) { s = s + i; i = i + 1; } s;", 10},
		{"var i = 0; while (false) i = 99; i;", 0},
		{"var i = 10; while (i > 0) i = i - 3; i;", -2},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestForStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"var s = 0; for (var i = 0; i < 5; i = i + 1) s = s + i; s;", 10},
		{"var i = 0; var n = 0; for (; i < 3; i = i + 1) n = n + 1; n;", 3},
		{"var n = 1; for (var i = 0; i < 10;) { i = i + 1; n = n * 2; } n;", 1024},
		// The loop variable is scoped to the loop.
		{"var i = 99; for (var i = 0; i < 3; i = i + 1) {} i;", 99},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestFunctionCalls(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"fun add(a, b) { return a + b; } add(2, 3);", 5},
		{"fun one() { return 1; } one() + one();", 2},
		{"fun f() { return 1; return 2; } f();", 1},
		{"fun double(x) { return x * 2; } double(double(3));", 12},
		{"fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } fib(10);", 55},
		{"fun f(n) { while (true) { n = n + 1; if (n == 3) return n; } } f(0);", 3},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}
}

func TestFunctionWithoutReturnYieldsNil(t *testing.T) {
	tests := []string{
		"fun f() {} f();",
		"fun f() { 1 + 2; } f();",
		"fun f() { return; } f();",
		"fun f() { if (false) return 1; } f();",
	}

	for i, input := range tests {
		result := testEval(t, input)
		if result != NIL {
			t.Fatalf("tests[%d] - expected nil. got=%T (%+v)", i, result, result)
		}
	}
}

func TestFunctionInspect(t *testing.T) {
	result := testEval(t, "fun greet(name) {} greet;")
	fn, ok := result.(*Function)
	if !ok {
		t.Fatalf("result is not *Function. got=%T (%+v)", result, result)
	}
	if fn.Inspect() != "<fn greet>" {
		t.Errorf("Inspect wrong. expected=%q, got=%q", "<fn greet>", fn.Inspect())
	}

	result = testEval(t, "clock;")
	if result.Inspect() != "<native fn>" {
		t.Errorf("Inspect wrong. expected=%q, got=%q", "<native fn>", result.Inspect())
	}
}

func TestClosures(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{
			`fun makeAdder(x) {
				fun add(y) { return x + y; }
				return add;
			}
			var addTwo = makeAdder(2);
			addTwo(3);`,
			5,
		},
		{
			// The closure keeps its own mutable copy of i alive.
			`fun makeCounter() {
				var i = 0;
				fun count() { i = i + 1; return i; }
				return count;
			}
			var c = makeCounter();
			c(); c(); c();`,
			3,
		},
		{
			// Two counters do not share state.
			`fun makeCounter() {
				var i = 0;
				fun count() { i = i + 1; return i; }
				return count;
			}
			var a = makeCounter();
			var b = makeCounter();
			a(); a();
			b();`,
			1,
		},
		{
			// Functions close over the declaration scope, not the call
			// site.
			`var x = 1;
			fun f() { return x; }
			fun g() { var x = 99; return f(); }
			g();`,
			1,
		},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testNumberObject(t, result, tt.expected) {
			t.Fatalf("tests[%d]", i)
		}
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		// and/or return an operand's value, not a coerced boolean.
		{"1 or 2;", 1.0},
		{"nil or 2;", 2.0},
		{`"a" or "b";`, "a"},
		{"false or false;", false},
		{"1 and 2;", 2.0},
		{"nil and 2;", nil},
		{"false and 2;", false},
		{`"a" and "b";`, "b"},
		{"nil or false;", false},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)

		switch expected := tt.expected.(type) {
		case float64:
			if !testNumberObject(t, result, expected) {
				t.Fatalf("tests[%d] - input %q", i, tt.input)
			}
		case string:
			if !testStringObject(t, result, expected) {
				t.Fatalf("tests[%d] - input %q", i, tt.input)
			}
		case bool:
			if !testBooleanObject(t, result, expected) {
				t.Fatalf("tests[%d] - input %q", i, tt.input)
			}
		case nil:
			testNilObject(t, result)
		}
	}
}

func TestLogicalShortCircuit(t *testing.T) {
	// The right side must not run when the left side decides. An
	// undefined variable on the right would error if evaluated.
	tests := []struct {
		input    string
		expected bool
	}{
		{"false and missing;", false},
		{"true or missing;", true},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)
		if !testBooleanObject(t, result, tt.expected) {
			t.Fatalf("tests[%d] - input %q", i, tt.input)
		}
	}

	// Side effects on the right only happen when reached.
	result := testEval(t, "var x = 0; true or (x = 1); x;")
	if !testNumberObject(t, result, 0) {
		t.Fatalf("or evaluated its right side")
	}

	result = testEval(t, "var x = 0; false or (x = 1); x;")
	if !testNumberObject(t, result, 1) {
		t.Fatalf("or skipped its right side")
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`-"a";`, "Operand must be a number.\n[line 1]"},
		{"-nil;", "Operand must be a number.\n[line 1]"},
		{`"a" - 1;`, "Operands must be numbers.\n[line 1]"},
		{`"a" * "b";`, "Operands must be numbers.\n[line 1]"},
		{"1 + nil;", "Operands must be numbers.\n[line 1]"},
		{"true + false;", "Operands must be numbers.\n[line 1]"},
		{`1 < "a";`, "Operands must be numbers.\n[line 1]"},
		{"nil >= nil;", "Operands must be numbers.\n[line 1]"},
		{"foo;", "Undefined variable 'foo'.\n[line 1]"},
		{"foo = 1;", "Undefined variable 'foo'.\n[line 1]"},
		{"var a = 1; { b = 2; }", "Undefined variable 'b'.\n[line 1]"},
		{`"not a function"();`, "Can only call functions.\n[line 1]"},
		{"nil();", "Can only call functions.\n[line 1]"},
		{"true();", "Can only call functions.\n[line 1]"},
		{"fun f(a, b) { return a + b; } f(1);", "Expected 2 arguments but got 1.\n[line 1]"},
		{"fun f() {} f(1, 2);", "Expected 0 arguments but got 2.\n[line 1]"},
		{"clock(1);", "Expected 0 arguments but got 1.\n[line 1]"},
		{"\n\nfoo;", "Undefined variable 'foo'.\n[line 3]"},
		{"print 1 + nil;", "Operands must be numbers.\n[line 1]"},
		{"var x = foo + 1;", "Undefined variable 'foo'.\n[line 1]"},
	}

	for i, tt := range tests {
		result := testEval(t, tt.input)

		errObj, ok := result.(*Error)
		if !ok {
			t.Fatalf("tests[%d] - no error returned for %q. got=%T (%+v)",
				i, tt.input, result, result)
		}

		if errObj.Inspect() != tt.expected {
			t.Errorf("tests[%d] - wrong error. expected=%q, got=%q",
				i, tt.expected, errObj.Inspect())
		}
	}
}

func TestRuntimeErrorStopsExecution(t *testing.T) {
	logger := &testLogger{}
	result := testEvalWithLogger(t, `print "before"; missing; print "after";`, logger)

	if _, ok := result.(*Error); !ok {
		t.Fatalf("expected error. got=%T (%+v)", result, result)
	}

	if len(logger.lines) != 1 || logger.lines[0] != "before" {
		t.Errorf("side effects before the error should stay, after should not. got=%v",
			logger.lines)
	}
}

func TestUndefinedVariableSuggestion(t *testing.T) {
	result := testEval(t, "var counter = 1; countr;")

	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected error. got=%T (%+v)", result, result)
	}

	if len(errObj.Err.Hints) == 0 {
		t.Fatalf("expected a suggestion hint, got none")
	}
	if errObj.Err.Hints[0] != "Did you mean 'counter'?" {
		t.Errorf("hint wrong. got=%q", errObj.Err.Hints[0])
	}
}

func TestStackOverflow(t *testing.T) {
	result := testEval(t, "fun f() { return f(); } f();")

	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected error. got=%T (%+v)", result, result)
	}

	if errObj.Err.Message != "Stack overflow." {
		t.Errorf("message wrong. expected=%q, got=%q", "Stack overflow.", errObj.Err.Message)
	}
}

func TestCallDepthIsConfigurable(t *testing.T) {
	input := "fun f(n) { if (n == 0) return 0; return f(n - 1); } f(%s);"

	l := lexer.New("fun f(n) { if (n == 0) return 0; return f(n - 1); } f(7);")
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	env := NewEnvironment()
	env.Logger = nil
	env.MaxCallDepth = 8
	result := Eval(program, env)
	if !testNumberObject(t, result, 0) {
		t.Fatalf("depth 8 should fit in a limit of 8: %s", input)
	}

	l = lexer.New("fun f(n) { if (n == 0) return 0; return f(n - 1); } f(8);")
	p = parser.New(l)
	program = p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	env = NewEnvironment()
	env.Logger = nil
	env.MaxCallDepth = 8
	result = Eval(program, env)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected stack overflow. got=%T (%+v)", result, result)
	}
	if errObj.Err.Message != "Stack overflow." {
		t.Errorf("message wrong. got=%q", errObj.Err.Message)
	}
}

func TestDepthCounterResetsAfterCalls(t *testing.T) {
	// Completed calls release their depth; sequential calls never
	// accumulate.
	input := `fun f(n) { if (n == 0) return 0; return f(n - 1); }
	f(5); f(5); f(5);`

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	env := NewEnvironment()
	env.Logger = nil
	env.MaxCallDepth = 6
	result := Eval(program, env)
	if !testNumberObject(t, result, 0) {
		t.Fatalf("sequential calls should not accumulate depth")
	}
}

func TestPrintStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"print 1 + 2;", []string{"3"}},
		{`print "hello";`, []string{"hello"}},
		{"print true;", []string{"true"}},
		{"print nil;", []string{"nil"}},
		{"print 75.00;", []string{"75"}},
		{"print 0.5;", []string{"0.5"}},
		{"print 1; print 2; print 3;", []string{"1", "2", "3"}},
		{`var name = "world"; print "hello " + name;`, []string{"hello world"}},
		{"fun f() {} print f;", []string{"<fn f>"}},
		{"print clock;", []string{"<native fn>"}},
		{"for (var i = 0; i < 3; i = i + 1) print i;", []string{"0", "1", "2"}},
	}

	for i, tt := range tests {
		logger := &testLogger{}
		testEvalWithLogger(t, tt.input, logger)

		if len(logger.lines) != len(tt.expected) {
			t.Fatalf("tests[%d] - wrong number of lines. expected=%d, got=%d (%v)",
				i, len(tt.expected), len(logger.lines), logger.lines)
		}
		for j, line := range tt.expected {
			if logger.lines[j] != line {
				t.Errorf("tests[%d] - line %d wrong. expected=%q, got=%q",
					i, j, line, logger.lines[j])
			}
		}
	}
}

func TestClockBuiltin(t *testing.T) {
	result := testEval(t, "clock();")

	num, ok := result.(*Number)
	if !ok {
		t.Fatalf("clock() did not return a number. got=%T (%+v)", result, result)
	}

	// Seconds since the Unix epoch; anything modern is past 10^9.
	if num.Value < 1_000_000_000 {
		t.Errorf("clock() value implausible. got=%v", num.Value)
	}
}

func TestTopLevelReturnStopsProgram(t *testing.T) {
	logger := &testLogger{}
	result := testEvalWithLogger(t, `print "a"; return 42; print "b";`, logger)

	if !testNumberObject(t, result, 42) {
		t.Fatalf("top-level return should yield its value")
	}
	if len(logger.lines) != 1 || logger.lines[0] != "a" {
		t.Errorf("statements after return should not run. got=%v", logger.lines)
	}
}

func testNumberObject(t *testing.T, obj Object, expected float64) bool {
	t.Helper()
	result, ok := obj.(*Number)
	if !ok {
		t.Errorf("object is not Number. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. expected=%v, got=%v", expected, result.Value)
		return false
	}
	return true
}

func testBooleanObject(t *testing.T, obj Object, expected bool) bool {
	t.Helper()
	result, ok := obj.(*Boolean)
	if !ok {
		t.Errorf("object is not Boolean. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. expected=%t, got=%t", expected, result.Value)
		return false
	}
	return true
}

func testStringObject(t *testing.T, obj Object, expected string) bool {
	t.Helper()
	result, ok := obj.(*String)
	if !ok {
		t.Errorf("object is not String. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. expected=%q, got=%q", expected, result.Value)
		return false
	}
	return true
}

func testNilObject(t *testing.T, obj Object) bool {
	t.Helper()
	if obj != NIL {
		t.Errorf("object is not NIL. got=%T (%+v)", obj, obj)
		return false
	}
	return true
}
