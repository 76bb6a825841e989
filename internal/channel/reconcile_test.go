package channel

import "testing"

func TestReconcileScenario(t *testing.T) {
	oldCfg := []Channel{&SMS{core: core{Enabled: true}, Phones: []string{"+1555", "+1666"}}}
	newCfg := []Channel{&SMS{core: core{Enabled: true}, Phones: []string{"+1666", "+1777"}}}

	res, err := Reconcile(oldCfg, newCfg)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := touchpointsOf(t, res.Deletions); len(got) != 1 || got[0] != "+1555" {
		t.Fatalf("expected deletions [+1555], got %v", got)
	}
	if got := touchpointsOf(t, res.Additions); len(got) != 1 || got[0] != "+1777" {
		t.Fatalf("expected additions [+1777], got %v", got)
	}
	for _, ch := range res.Additions {
		if ch.Type() != TypeSMS || !ch.RequiresSetup() {
			t.Fatalf("expected setup-requiring sms addition, got %s", ch.Type())
		}
	}
}

func TestReconcileAbsentSides(t *testing.T) {
	email := &Email{core: core{Enabled: true}, Addresses: []string{"a@x.com", "b@x.com"}}

	// type only in the new config: everything is an addition
	res, err := Reconcile(nil, []Channel{email})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Deletions) != 0 || len(res.Additions) != 2 {
		t.Fatalf("expected 0 deletions / 2 additions, got %d/%d", len(res.Deletions), len(res.Additions))
	}

	// type dropped from the new config: everything is a deletion
	res, err = Reconcile([]Channel{email}, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Deletions) != 2 || len(res.Additions) != 0 {
		t.Fatalf("expected 2 deletions / 0 additions, got %d/%d", len(res.Deletions), len(res.Additions))
	}
}

func TestReconcileMixedTypes(t *testing.T) {
	oldCfg := []Channel{
		&SMS{core: core{Enabled: true}, Phones: []string{"+1555"}},
		&Portal{core: core{Enabled: true}, Topics: []string{"vehicle/1"}},
	}
	newCfg := []Channel{
		&SMS{core: core{Enabled: true}, Phones: []string{"+1555"}},
		&Portal{core: core{Enabled: true}, Topics: []string{"vehicle/2"}},
		&IVM{core: core{Enabled: true}},
	}

	res, err := Reconcile(oldCfg, newCfg)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	// identical sms, non-diffing portal and ivm: nothing to provision
	if len(res.Deletions) != 0 || len(res.Additions) != 0 {
		t.Fatalf("expected empty reconciliation, got %d/%d", len(res.Deletions), len(res.Additions))
	}
	if res.Deletions == nil || res.Additions == nil {
		t.Fatalf("reconciliation lists must not be nil")
	}
}

func TestReconcileDuplicateType(t *testing.T) {
	cfg := []Channel{
		&SMS{Phones: []string{"+1555"}},
		&SMS{Phones: []string{"+1666"}},
	}
	if _, err := Reconcile(cfg, nil); err == nil {
		t.Fatalf("expected error for duplicate channel type")
	}
	if _, err := Reconcile(nil, cfg); err == nil {
		t.Fatalf("expected error for duplicate channel type on new side")
	}
}

func TestReconcileNilChannel(t *testing.T) {
	if _, err := Reconcile([]Channel{nil}, nil); err == nil {
		t.Fatalf("expected error for nil channel in configuration")
	}
}
