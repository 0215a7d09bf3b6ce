package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/constants"
)

func TestBuildPasswordResetContent(t *testing.T) {
	subject, body := buildPasswordResetContent("https://portal.example/reset?token=abc&email=a%40x.com", 60, constants.LocaleEN)
	if subject != "Password reset request" {
		t.Fatalf("unexpected subject: %q", subject)
	}
	for _, want := range []string{"60 minutes", "https://portal.example/reset?token=abc&email=a%40x.com"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body should contain %q, got %q", want, body)
		}
	}
}

func TestBuildIssueStatusContent(t *testing.T) {
	tests := []struct {
		name        string
		locale      string
		wantSubject string
		wantBody    []string
	}{
		{
			name:        "en",
			locale:      constants.LocaleEN,
			wantSubject: "Update on your report REF-1",
			wantBody:    []string{"REF-1", "responded", "We are looking into it"},
		},
		{
			name:        "sw_falls_back_to_en",
			locale:      "sw-KE",
			wantSubject: "Update on your report REF-1",
			wantBody:    []string{"REF-1", "responded"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := buildIssueStatusContent(IssueStatusEmailInput{
				Ref:     "REF-1",
				Status:  constants.IssueStatusResponded,
				Message: "We are looking into it",
			}, tt.locale)
			if subject != tt.wantSubject {
				t.Fatalf("subject want %q got %q", tt.wantSubject, subject)
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Fatalf("body should contain %q, got %q", want, body)
				}
			}
		})
	}
}

func TestSendTextEmailConfigErrors(t *testing.T) {
	disabled := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := disabled.SendPasswordReset("a@x.com", "u", 60, "en"); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("want ErrEmailServiceDisabled, got %v", err)
	}
	incomplete := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example"})
	if err := incomplete.SendPasswordReset("a@x.com", "u", 60, "en"); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("want ErrEmailServiceNotConfigured, got %v", err)
	}
	if incomplete.Configured() {
		t.Fatalf("incomplete config should not report configured")
	}
	full := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example", Port: 25, From: "noreply@example.com"})
	if err := full.SendPasswordReset("not-an-email", "u", 60, "en"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want ErrInvalidEmail, got %v", err)
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{err: errors.New("550 5.1.1 <x@y>: Recipient address rejected"), want: ErrEmailRecipientRejected},
		{err: errors.New("550 mailbox unavailable"), want: ErrEmailRecipientRejected},
		{err: errors.New("dial tcp: connection refused"), want: nil},
	}
	for _, tc := range cases {
		got := normalizeEmailSendError(tc.err)
		if tc.want == nil {
			if errors.Is(got, ErrEmailRecipientRejected) {
				t.Fatalf("%q should not map to recipient rejected", tc.err)
			}
			continue
		}
		if !errors.Is(got, tc.want) {
			t.Fatalf("%q want %v got %v", tc.err, tc.want, got)
		}
	}
}
