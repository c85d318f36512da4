package adapter

import (
	"testing"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// passthrough returns a conversion function that forwards the input value
// unchanged under the out port.
func passthrough() card.ProcessFunc {
	return func(in card.Signal, _ *card.Context) (card.Signal, error) {
		v, _ := in.Value(card.PortIn)
		return card.Signal{card.PortOut: v}, nil
	}
}

func mkAdapter(id, source, target string, cost float64, lossless bool) *Adapter {
	return &Adapter{
		ID:         id,
		SourceType: source,
		TargetType: target,
		Cost:       cost,
		Lossless:   lossless,
		Fn:         passthrough(),
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		adapter *Adapter
		wantErr errors.Code
	}{
		{"missing ID", &Adapter{SourceType: "a", TargetType: "b", Fn: passthrough()}, errors.ErrCodeInvalidInput},
		{"missing types", &Adapter{ID: "x", Fn: passthrough()}, errors.ErrCodeInvalidInput},
		{"missing fn", &Adapter{ID: "x", SourceType: "a", TargetType: "b"}, errors.ErrCodeInvalidInput},
		{"valid", mkAdapter("x", "a", "b", 1, true), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.adapter)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Register error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register error = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestFindDirect(t *testing.T) {
	reg := NewRegistry()
	first := mkAdapter("first", "a", "b", 5, true)
	second := mkAdapter("second", "a", "b", 1, true)
	_ = reg.Register(first)
	_ = reg.Register(second)

	// Find returns the earliest registered direct adapter, not the cheapest.
	if got := reg.Find("a", "b"); got != first {
		t.Errorf("Find = %v, want first", got)
	}
	if got := reg.Find("a", "z"); got != nil {
		t.Errorf("Find for unknown target = %v, want nil", got)
	}
}

func TestAdapterIsCard(t *testing.T) {
	a := mkAdapter("conv", "midi", "freq", 1, true)
	sig := a.Signature()
	if len(sig.Inputs) != 1 || sig.Inputs[0].Type != "midi" {
		t.Errorf("inputs = %v", sig.Inputs)
	}
	if len(sig.Outputs) != 1 || sig.Outputs[0].Type != "freq" {
		t.Errorf("outputs = %v", sig.Outputs)
	}

	out, err := a.Process(card.Mono(60), card.NewContext())
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if v, _ := out.Single(); v != 60 {
		t.Errorf("Process output = %v, want 60", v)
	}
}

func TestDefaultRegistryReset(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	if err := Default().Register(mkAdapter("x", "a", "b", 1, true)); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if Default().Len() != 1 {
		t.Errorf("Len = %d, want 1", Default().Len())
	}

	ResetDefault()
	if Default().Len() != 0 {
		t.Errorf("Len after reset = %d, want 0", Default().Len())
	}
}
