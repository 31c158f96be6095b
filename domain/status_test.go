package domain

import "testing"

func TestCanTransition(t *testing.T) {
	t.Parallel()

	all := []Status{StatusPending, StatusConfirmed, StatusCancelled}
	legal := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCancelled}: true,
	}

	for _, current := range all {
		for _, requested := range all {
			want := legal[[2]Status{current, requested}]
			if got := CanTransition(current, requested); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, expected %v", current, requested, got, want)
			}
		}
	}
}

func TestCanTransition_RejectsUnknownStatuses(t *testing.T) {
	t.Parallel()

	cases := [][2]Status{
		{"", StatusConfirmed},
		{StatusPending, ""},
		{StatusPending, "DONE"},
		{"DONE", StatusCancelled},
	}
	for _, c := range cases {
		if CanTransition(c[0], c[1]) {
			t.Fatalf("expected %s -> %s to be rejected", c[0], c[1])
		}
	}
}

func TestCheckTransition(t *testing.T) {
	t.Parallel()

	if err := CheckTransition(StatusPending, StatusConfirmed); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := CheckTransition(StatusCancelled, StatusConfirmed)
	if !IsDomainError(err, ErrCodeInvalidTransition) {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"CONFIRMED", StatusConfirmed, true},
		{" cancelled ", StatusCancelled, true},
		{"pending", StatusPending, true},
		{"archived", "ARCHIVED", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseStatus(%q) = (%s, %v), expected (%s, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
