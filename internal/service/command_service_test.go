package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
	"github.com/mmynk/odemetakip/internal/command"
)

func apply(t *testing.T, c *api.Client, req *api.ApplyCommandRequest) *api.ApplyCommandResponse {
	t.Helper()
	resp, err := c.Apply.CallUnary(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("Apply(%q) failed: %v", req.Text, err)
	}
	return resp.Msg
}

func listAthletes(t *testing.T, c *api.Client, listID string) map[string]api.Athlete {
	t.Helper()
	resp, err := c.ListAthletes.CallUnary(context.Background(), connect.NewRequest(&api.ListAthletesRequest{ListID: listID}))
	if err != nil {
		t.Fatalf("ListAthletes failed: %v", err)
	}
	out := make(map[string]api.Athlete, len(resp.Msg.Athletes))
	for _, a := range resp.Msg.Athletes {
		out[a.Name] = a
	}
	return out
}

func TestInterpretIsPublic(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.anon.Interpret.CallUnary(context.Background(), connect.NewRequest(&api.InterpretRequest{Text: "Ali ekim ve kasım ödendi"}))
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}
	in := resp.Msg.Intent
	if !in.IsPaid || in.IsUnpaid {
		t.Errorf("expected paid intent, got %+v", in)
	}
	if len(in.Months) != 2 || in.Months[0] != "2025-10" || in.Months[1] != "2025-11" {
		t.Errorf("expected October and November, got %v", in.Months)
	}
	if in.NameFragment != "ali" {
		t.Errorf("expected fragment ali, got %q", in.NameFragment)
	}
	if resp.Msg.Message != "" {
		t.Errorf("expected no message, got %q", resp.Msg.Message)
	}

	resp, err = env.anon.Interpret.CallUnary(context.Background(), connect.NewRequest(&api.InterpretRequest{Text: "Ali ekim"}))
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}
	if resp.Msg.Message != command.MsgNoActionKeyword {
		t.Errorf("expected no-action message, got %q", resp.Msg.Message)
	}
}

func TestApplyPaidForOneAthlete(t *testing.T) {
	env := setupTestServer(t)
	client := env.signUp(t, "coach@example.com")
	listID := defaultList(t, client)
	addAthlete(t, client, listID, "Ali Veli")
	addAthlete(t, client, listID, "Ayşe Yılmaz")

	resp := apply(t, client, &api.ApplyCommandRequest{ListID: listID, Text: "ayse yilmaz ekim ödendi"})
	if resp.Outcome != api.OutcomeApplied {
		t.Fatalf("expected applied, got %s (%s)", resp.Outcome, resp.Message)
	}
	if resp.Message != "1 sporcu, 1 ay: ödendi" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if len(resp.Athletes) != 1 || resp.Athletes[0].Name != "Ayşe Yılmaz" {
		t.Fatalf("expected Ayşe updated, got %+v", resp.Athletes)
	}

	rows := listAthletes(t, client, listID)
	if !rows["Ayşe Yılmaz"].Payments["2025-10"] {
		t.Error("expected Ayşe October paid")
	}
	if rows["Ali Veli"].Payments["2025-10"] {
		t.Error("Ali must not change")
	}
}

func TestApplyBroadWithinSearch(t *testing.T) {
	env := setupTestServer(t)
	client := env.signUp(t, "coach@example.com")
	listID := defaultList(t, client)
	addAthlete(t, client, listID, "Ali Veli")
	addAthlete(t, client, listID, "Ali Can")
	addAthlete(t, client, listID, "Zeynep")

	resp := apply(t, client, &api.ApplyCommandRequest{ListID: listID, Text: "tüm ödendi", Search: "ali"})
	if resp.Outcome != api.OutcomeApplied || len(resp.Athletes) != 2 {
		t.Fatalf("expected 2 athletes updated, got %s %+v", resp.Outcome, resp.Athletes)
	}
	if resp.Message != "2 sporcu, 13 ay: ödendi" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	rows := listAthletes(t, client, listID)
	for _, name := range []string{"Ali Veli", "Ali Can"} {
		for key, paid := range rows[name].Payments {
			if !paid {
				t.Errorf("%s %s should be paid", name, key)
			}
		}
	}
	for key, paid := range rows["Zeynep"].Payments {
		if paid {
			t.Errorf("Zeynep %s is outside the search and must stay unpaid", key)
		}
	}

	resp = apply(t, client, &api.ApplyCommandRequest{ListID: listID, Text: "Ali Can şubat ödenmedi"})
	if resp.Outcome != api.OutcomeApplied {
		t.Fatalf("expected applied, got %s", resp.Outcome)
	}
	rows = listAthletes(t, client, listID)
	if rows["Ali Can"].Payments["2026-02"] {
		t.Error("expected February unpaid")
	}
	if !rows["Ali Can"].Payments["2026-03"] {
		t.Error("other months must keep their state")
	}
}

func TestApplyRejected(t *testing.T) {
	env := setupTestServer(t)
	client := env.signUp(t, "coach@example.com")
	listID := defaultList(t, client)
	addAthlete(t, client, listID, "Ali Veli")

	tests := []struct {
		text    string
		outcome string
		message string
	}{
		{"Ali ekim", api.OutcomeNoAction, command.MsgNoActionKeyword},
		{"Ali ödendi", api.OutcomeNoMonth, command.MsgNoMonth},
		{"Mehmet ekim ödendi", api.OutcomeNoMatch, command.MsgNoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			resp := apply(t, client, &api.ApplyCommandRequest{ListID: listID, Text: tt.text})
			if resp.Outcome != tt.outcome {
				t.Errorf("expected %s, got %s", tt.outcome, resp.Outcome)
			}
			if resp.Message != tt.message {
				t.Errorf("expected %q, got %q", tt.message, resp.Message)
			}
			if len(resp.Athletes) != 0 {
				t.Errorf("expected no updates, got %d", len(resp.Athletes))
			}
		})
	}

	for key, paid := range listAthletes(t, client, listID)["Ali Veli"].Payments {
		if paid {
			t.Errorf("rejected commands must not write, %s is paid", key)
		}
	}
}

func TestApplyDryRun(t *testing.T) {
	env := setupTestServer(t)
	client := env.signUp(t, "coach@example.com")
	listID := defaultList(t, client)
	addAthlete(t, client, listID, "Ali Veli")

	resp := apply(t, client, &api.ApplyCommandRequest{ListID: listID, Text: "ali ocak ödendi", DryRun: true})
	if resp.Outcome != api.OutcomePreview {
		t.Fatalf("expected preview, got %s", resp.Outcome)
	}
	if len(resp.Athletes) != 1 || !resp.Athletes[0].Payments["2026-01"] {
		t.Fatalf("expected preview of January paid, got %+v", resp.Athletes)
	}
	if listAthletes(t, client, listID)["Ali Veli"].Payments["2026-01"] {
		t.Error("dry run must not write")
	}
}

func TestApplyOtherUsersList(t *testing.T) {
	env := setupTestServer(t)
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")
	listID := defaultList(t, alice)

	_, err := bob.Apply.CallUnary(context.Background(), connect.NewRequest(&api.ApplyCommandRequest{ListID: listID, Text: "tüm ödendi"}))
	assertCode(t, err, connect.CodeNotFound)
}
