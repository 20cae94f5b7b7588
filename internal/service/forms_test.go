package service

import (
	"strings"
	"testing"
	"time"

	"todo_webapp/internal/domain"
)

func validSignup() SignupForm {
	return SignupForm{
		Username:  "alice",
		Email:     "alice@example.com",
		Password1: "Password123",
		Password2: "Password123",
	}
}

func TestValidateSignup(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(f *SignupForm)
		wantField string
	}{
		{"valid", func(f *SignupForm) {}, ""},
		{"missing username", func(f *SignupForm) { f.Username = "  " }, "username"},
		{"long username", func(f *SignupForm) { f.Username = strings.Repeat("a", 21) }, "username"},
		{"max username", func(f *SignupForm) { f.Username = strings.Repeat("a", 20) }, ""},
		{"bad username chars", func(f *SignupForm) { f.Username = "al ice" }, "username"},
		{"unicode username", func(f *SignupForm) { f.Username = "José_ß.2" }, ""},
		{"username symbols", func(f *SignupForm) { f.Username = "a.b@c+d-e_f" }, ""},
		{"username slash", func(f *SignupForm) { f.Username = "a/b" }, "username"},
		{"bad email", func(f *SignupForm) { f.Email = "not-an-email" }, "email"},
		{"short password", func(f *SignupForm) { f.Password1, f.Password2 = "Pass12", "Pass12" }, "password1"},
		{"numeric password", func(f *SignupForm) { f.Password1, f.Password2 = "12345678", "12345678" }, "password1"},
		{"mismatch", func(f *SignupForm) { f.Password2 = "Password124" }, "password2"},
	}

	for _, tc := range cases {
		f := validSignup()
		tc.mutate(&f)
		errs := ValidateSignup(&f)
		if tc.wantField == "" {
			if len(errs) != 0 {
				t.Fatalf("%s: unexpected errors %v", tc.name, errs)
			}
			continue
		}
		if len(errs) == 0 || errs[0].Field != tc.wantField {
			t.Fatalf("%s: expected first error on %s, got %v", tc.name, tc.wantField, errs)
		}
	}
}

func TestValidateSignup_MismatchMessage(t *testing.T) {
	f := validSignup()
	f.Password2 = "different1"
	errs := ValidateSignup(&f)
	if errs.First() != "Passwords didn't match" {
		t.Fatalf("unexpected message %q", errs.First())
	}
}

func TestValidateSignup_FirstErrorFollowsFieldOrder(t *testing.T) {
	f := SignupForm{Username: "", Email: "bad", Password1: "x", Password2: "y"}
	errs := ValidateSignup(&f)
	if len(errs) < 4 {
		t.Fatalf("expected an error per field, got %v", errs)
	}
	if errs[0].Field != "username" {
		t.Fatalf("expected username error first, got %s", errs[0].Field)
	}
	if _, ok := errs.ByField()["email"]; !ok {
		t.Fatalf("expected email error in map")
	}
}

func TestValidateTask(t *testing.T) {
	in, errs := ValidateTask(TaskForm{
		Title:            "  Buy milk  ",
		Description:      "2 litres",
		DeadlineDatetime: "2025-01-01T10:00",
		Important:        "on",
	}, time.UTC)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if in.Title != "Buy milk" || !in.Important || in.Description != "2 litres" {
		t.Fatalf("unexpected input %+v", in)
	}
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if in.DeadlineDatetime == nil || !in.DeadlineDatetime.Equal(want) {
		t.Fatalf("unexpected deadline %v", in.DeadlineDatetime)
	}
}

func TestValidateTask_Errors(t *testing.T) {
	cases := []struct {
		name      string
		form      TaskForm
		wantField string
	}{
		{"missing title", TaskForm{Title: "   "}, "title"},
		{"long title", TaskForm{Title: strings.Repeat("x", 101)}, "title"},
		{"bad deadline", TaskForm{Title: "ok", DeadlineDatetime: "01/01/2025"}, "deadline_datetime"},
		{"deadline with seconds", TaskForm{Title: "ok", DeadlineDatetime: "2025-01-01T10:00:00"}, "deadline_datetime"},
	}
	for _, tc := range cases {
		_, errs := ValidateTask(tc.form, time.UTC)
		if len(errs) == 0 || errs[0].Field != tc.wantField {
			t.Fatalf("%s: expected error on %s, got %v", tc.name, tc.wantField, errs)
		}
	}
}

func TestValidateTask_Optional(t *testing.T) {
	in, errs := ValidateTask(TaskForm{Title: strings.Repeat("é", 100), Important: "false"}, time.UTC)
	if len(errs) != 0 {
		t.Fatalf("100 characters must be accepted: %v", errs)
	}
	if in.DeadlineDatetime != nil || in.Important || in.Description != "" {
		t.Fatalf("expected optional fields empty, got %+v", in)
	}
}

func TestTaskFormFrom(t *testing.T) {
	in, _ := ValidateTask(TaskForm{Title: "a", DeadlineDatetime: "2025-01-01T10:00", Important: "on"}, time.UTC)
	task := &domain.Task{}
	in.Apply(task)
	f := TaskFormFrom(task, time.UTC)
	if f.DeadlineDatetime != "2025-01-01T10:00" || f.Important != "on" || f.Title != "a" {
		t.Fatalf("unexpected form %+v", f)
	}
}
