package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestErrorCodeString(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{ErrorCodeUnknown, "unknown"},
		{ErrorCodeForbidden, "forbidden"},
		{ErrorCodeDomainUnresolved, "domain_unresolved"},
		{ErrorCodeUpstream, "upstream"},
		{9999, "code(9999)"},
	}
	for _, c := range cases {
		if got := c.code.String(); got != c.want {
			t.Fatalf("String(%d) = %q, want %q", c.code, got, c.want)
		}
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := New(ErrorCodeValidation, "bad sheet")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeJSON, "bad json %d", 12)
	if got := e2.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrapf(src, ErrorCodeForbidden, "nope %s", "here")
	if want := "nope here: root"; e3.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e3.Error(), want)
	}
	if !stderrs.Is(e3, src) {
		t.Fatalf("Wrapf lost the cause")
	}
	if got, ok := As(e3); !ok || got.Code() != ErrorCodeForbidden || got.Message() != "nope here" {
		t.Fatalf("As() = %+v, %v", got, ok)
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	e4 := WithOp(WithField(e3, "Finance"), "create_term")
	got, _ := As(e4)
	if got.Field() != "Finance" || got.Op() != "create_term" {
		t.Fatalf("field/op = %q/%q", got.Field(), got.Op())
	}
	if orig, _ := As(e3); orig.Field() != "" {
		t.Fatalf("WithField mutated the original")
	}
	if WithField(src, "x") != src || WithOp(src, "x") != src {
		t.Fatalf("mutators must pass foreign errors through")
	}
}

func TestCodeOf_OutermostWins(t *testing.T) {
	inner := Unavailablef("dial tcp")
	outer := Wrap(inner, ErrorCodeUnauthorized, "token")
	if CodeOf(outer) != ErrorCodeUnauthorized {
		t.Fatalf("CodeOf = %v, want unauthorized", CodeOf(outer))
	}
	wrapped := fmt.Errorf("ctx: %w", inner)
	if !IsCode(wrapped, ErrorCodeUnavailable) {
		t.Fatalf("IsCode through fmt wrap failed")
	}
	if IsCode(nil, ErrorCodeUnknown) {
		t.Fatalf("IsCode(nil) must be false")
	}
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatalf("foreign errors are unknown")
	}
}

func TestWrapIfAndSugar(t *testing.T) {
	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatalf("WrapIf(nil) must be nil")
	}
	if !IsCode(WrapIf(stderrs.New("x"), ErrorCodeDB, "db"), ErrorCodeDB) {
		t.Fatalf("WrapIf lost code")
	}
	sugar := []struct {
		err  error
		code ErrorCode
	}{
		{NotFoundf("a"), ErrorCodeNotFound},
		{InvalidArgf("a"), ErrorCodeInvalidArgument},
		{Validationf("a"), ErrorCodeValidation},
		{Unauthorizedf("a"), ErrorCodeUnauthorized},
		{Forbiddenf("a"), ErrorCodeForbidden},
		{Unresolvedf("a"), ErrorCodeDomainUnresolved},
		{Upstreamf("a"), ErrorCodeUpstream},
		{Unavailablef("a"), ErrorCodeUnavailable},
		{JSONErrf("a"), ErrorCodeJSON},
		{DBf("a"), ErrorCodeDB},
		{Internalf("a"), ErrorCodeUnknown},
	}
	for i, s := range sugar {
		if CodeOf(s.err) != s.code {
			t.Fatalf("sugar[%d] code = %v, want %v", i, CodeOf(s.err), s.code)
		}
	}
}

func TestRoot(t *testing.T) {
	src := stderrs.New("bottom")
	err := Wrap(fmt.Errorf("mid: %w", src), ErrorCodeDB, "top")
	if Root(err) != src {
		t.Fatalf("Root = %v", Root(err))
	}
	if Root(nil) != nil {
		t.Fatalf("Root(nil) != nil")
	}
}

func TestPostgresHelpers(t *testing.T) {
	dup := &pgconn.PgError{Code: pgErrUniqueViolation}
	if !IsDuplicateKey(Wrap(dup, ErrorCodeDB, "insert")) {
		t.Fatalf("IsDuplicateKey failed")
	}
	if !IsUndefinedTable(&pgconn.PgError{Code: pgErrUndefinedTable}) {
		t.Fatalf("IsUndefinedTable failed")
	}
	if code, ok := DBErrorCode(dup); !ok || code != ErrorCodeDuplicateKey {
		t.Fatalf("DBErrorCode(dup) = %v,%v", code, ok)
	}
	if code, ok := DBErrorCode(&pgconn.PgError{Code: pgErrCannotConnectNow}); !ok || code != ErrorCodeUnavailable {
		t.Fatalf("DBErrorCode(57P03) = %v,%v", code, ok)
	}
	if _, ok := DBErrorCode(stderrs.New("x")); ok {
		t.Fatalf("DBErrorCode must reject foreign errors")
	}
	if FromPostgresf(nil, "x") != nil {
		t.Fatalf("FromPostgresf(nil) must be nil")
	}
	if got := FromPostgresf(stderrs.New("boom"), "insert run %s", "r1"); CodeOf(got) != ErrorCodeDB {
		t.Fatalf("FromPostgresf foreign code = %v", CodeOf(got))
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"serialization", &pgconn.PgError{Code: pgErrSerializationFailure}, true},
		{"deadlock", Wrap(&pgconn.PgError{Code: pgErrDeadlockDetected}, ErrorCodeDB, "x"), true},
		{"unique", &pgconn.PgError{Code: pgErrUniqueViolation}, false},
		{"text", stderrs.New("commit unexpectedly resulted in rollback"), true},
		{"other", stderrs.New("syntax"), false},
	}
	for _, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Fatalf("%s: Retryable = %v, want %v", c.name, got, c.want)
		}
	}
}
