package signup

import (
	"errors"
	"testing"
	"time"

	"github.com/neiist-dev/activities-backend/internal/activity"
)

func intPtr(v int) *int              { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluateSignup(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	open := &activity.Properties{SignupEnabled: true}

	tests := []struct {
		name    string
		props   *activity.Properties
		count   int
		already bool
		want    bool
		wantDec Decision
		wantErr error
	}{
		{
			name:    "signup when open",
			props:   open,
			want:    true,
			wantDec: DecisionCreate,
		},
		{
			name:    "repeat signup is a noop",
			props:   open,
			already: true,
			want:    true,
			wantDec: DecisionNoop,
		},
		{
			name:    "cancel removes the signup",
			props:   open,
			already: true,
			want:    false,
			wantDec: DecisionDelete,
		},
		{
			name:    "repeat cancel is a noop",
			props:   open,
			want:    false,
			wantDec: DecisionNoop,
		},
		{
			name:    "no properties row means signups never opened",
			want:    true,
			wantErr: ErrSignupClosed,
		},
		{
			name:    "signups disabled",
			props:   &activity.Properties{SignupEnabled: false},
			want:    true,
			wantErr: ErrSignupClosed,
		},
		{
			name: "deadline passed",
			props: &activity.Properties{
				SignupEnabled:  true,
				SignupDeadline: timePtr(now.Add(-time.Minute)),
			},
			want:    true,
			wantErr: ErrDeadlinePassed,
		},
		{
			name: "deadline still open",
			props: &activity.Properties{
				SignupEnabled:  true,
				SignupDeadline: timePtr(now.Add(time.Minute)),
			},
			want:    true,
			wantDec: DecisionCreate,
		},
		{
			name: "capacity full",
			props: &activity.Properties{
				SignupEnabled: true,
				MaxAttendees:  intPtr(10),
			},
			count:   10,
			want:    true,
			wantErr: ErrCapacityFull,
		},
		{
			name: "last slot still available",
			props: &activity.Properties{
				SignupEnabled: true,
				MaxAttendees:  intPtr(10),
			},
			count:   9,
			want:    true,
			wantDec: DecisionCreate,
		},
		{
			name: "cancel allowed even when closed and full",
			props: &activity.Properties{
				SignupEnabled:  false,
				SignupDeadline: timePtr(now.Add(-time.Hour)),
				MaxAttendees:   intPtr(1),
			},
			count:   1,
			already: true,
			want:    false,
			wantDec: DecisionDelete,
		},
		{
			name: "member already in keeps state even when full",
			props: &activity.Properties{
				SignupEnabled: true,
				MaxAttendees:  intPtr(1),
			},
			count:   1,
			already: true,
			want:    true,
			wantDec: DecisionNoop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := evaluateSignup(tt.props, tt.count, tt.already, tt.want, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dec != tt.wantDec {
				t.Errorf("decision = %v, want %v", dec, tt.wantDec)
			}
		})
	}
}
