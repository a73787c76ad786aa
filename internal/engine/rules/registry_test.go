package rules

import (
	"testing"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

type stubRule struct {
	Meta
	registered *bool
}

func (s stubRule) RegisterCallbacks(*visitor.Visitor) {
	if s.registered != nil {
		*s.registered = true
	}
}

func newStub(id string, sev findings.Severity) stubRule {
	return stubRule{Meta: Meta{RuleID: id, RuleName: id, RuleSeverity: sev}}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(findings.SeverityNC)
	if err := r.Register(newStub("high-1", findings.SeverityHigh)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(newStub("gas-1", findings.SeverityGas)); err != nil {
		t.Fatal(err)
	}

	if _, ok := r.Get("high-1"); !ok {
		t.Error("high-1 not found by id")
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("unknown id resolved")
	}
	if got := len(r.BySeverity(findings.SeverityGas)); got != 1 {
		t.Errorf("gas bucket size = %d, want 1", got)
	}
}

func TestRegistryDuplicateID(t *testing.T) {
	r := NewRegistry(findings.SeverityNC)
	if err := r.Register(newStub("dup", findings.SeverityLow)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(newStub("dup", findings.SeverityHigh)); err == nil {
		t.Error("duplicate id accepted")
	}
}

func TestRegistrySeverityFloor(t *testing.T) {
	r := NewRegistry(findings.SeverityMedium)
	for _, stub := range []stubRule{
		newStub("high-1", findings.SeverityHigh),
		newStub("med-1", findings.SeverityMedium),
		newStub("low-1", findings.SeverityLow),
		newStub("gas-1", findings.SeverityGas),
	} {
		if err := r.Register(stub); err != nil {
			t.Fatal(err)
		}
	}

	if r.Len() != 2 {
		t.Errorf("registry size = %d, want 2", r.Len())
	}
	if _, ok := r.Get("low-1"); ok {
		t.Error("rule below floor was registered")
	}
}

func TestRegistryAllOrder(t *testing.T) {
	r := NewRegistry(findings.SeverityNC)
	for _, stub := range []stubRule{
		newStub("b-low", findings.SeverityLow),
		newStub("a-low", findings.SeverityLow),
		newStub("z-high", findings.SeverityHigh),
	} {
		if err := r.Register(stub); err != nil {
			t.Fatal(err)
		}
	}

	all := r.All()
	var ids []string
	for _, rule := range all {
		ids = append(ids, rule.ID())
	}
	want := []string{"z-high", "a-low", "b-low"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestRegisterAllCallbacks(t *testing.T) {
	r := NewRegistry(findings.SeverityNC)
	hit := false
	stub := newStub("cb", findings.SeverityLow)
	stub.registered = &hit
	if err := r.Register(stub); err != nil {
		t.Fatal(err)
	}

	r.RegisterAllCallbacks(visitor.New())
	if !hit {
		t.Error("RegisterCallbacks was not invoked")
	}
}
