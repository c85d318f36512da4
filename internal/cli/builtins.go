package cli

import (
	"strconv"
	"strings"

	"github.com/thehalleyyoung/cardplay-sub002/pkg/adapter"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/card"
	"github.com/thehalleyyoung/cardplay-sub002/pkg/errors"
)

// Builtin port types.
const (
	typeNumber = "number"
	typeText   = "text"
)

// monoCard builds a single-in/single-out card from a value function.
func monoCard(id, name, inType, outType string, fn func(v any) (any, error)) card.Card {
	return card.NewFunc(
		card.Meta{ID: id, Name: name, Category: "builtin"},
		card.Signature{
			Inputs:  []card.Port{{ID: card.PortIn, Type: inType}},
			Outputs: []card.Port{{ID: card.PortOut, Type: outType}},
		},
		func(in card.Signal, _ *card.Context) (card.Signal, error) {
			v, ok := in.Value(card.PortIn)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "card %s: missing input value", id)
			}
			out, err := fn(v)
			if err != nil {
				return nil, err
			}
			return card.Signal{card.PortOut: out}, nil
		},
	)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func numberCard(id, name string, fn func(x float64) float64) card.Card {
	return monoCard(id, name, typeNumber, typeNumber, func(v any) (any, error) {
		x, ok := asFloat(v)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "card %s: input %v is not a number", id, v)
		}
		return fn(x), nil
	})
}

// builtinLibrary registers the cards shipped with the CLI, so patch files
// work out of the box.
func builtinLibrary() *card.Library {
	lib := card.NewLibrary()

	builtins := []card.Card{
		card.Identity("identity"),
		numberCard("gain", "gain", func(x float64) float64 { return x * 2 }),
		numberCard("offset", "offset", func(x float64) float64 { return x + 1 }),
		numberCard("negate", "negate", func(x float64) float64 { return -x }),
		monoCard("upper", "uppercase", typeText, typeText, func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "card upper: input %v is not text", v)
			}
			return strings.ToUpper(s), nil
		}),
		monoCard("length", "text length", typeText, typeNumber, func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "card length: input %v is not text", v)
			}
			return float64(len(s)), nil
		}),
	}
	for _, c := range builtins {
		if err := lib.Register(c); err != nil {
			panic(err)
		}
	}
	return lib
}

// builtinRegistry registers the stock type adapters.
func builtinRegistry() *adapter.Registry {
	reg := adapter.NewRegistry()

	stock := []*adapter.Adapter{
		{
			ID:         "num-to-text",
			Name:       "format number",
			SourceType: typeNumber,
			TargetType: typeText,
			Cost:       1,
			Lossless:   true,
			Fn: func(in card.Signal, _ *card.Context) (card.Signal, error) {
				v, _ := in.Value(card.PortIn)
				x, ok := asFloat(v)
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidInput, "adapter num-to-text: input %v is not a number", v)
				}
				return card.Signal{card.PortOut: strconv.FormatFloat(x, 'g', -1, 64)}, nil
			},
		},
		{
			ID:         "text-to-num",
			Name:       "parse number",
			SourceType: typeText,
			TargetType: typeNumber,
			Cost:       2,
			Lossless:   false,
			Fn: func(in card.Signal, _ *card.Context) (card.Signal, error) {
				v, _ := in.Value(card.PortIn)
				s, ok := v.(string)
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidInput, "adapter text-to-num: input %v is not text", v)
				}
				x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "adapter text-to-num: parse %q", s)
				}
				return card.Signal{card.PortOut: x}, nil
			},
		},
	}
	for _, a := range stock {
		if err := reg.Register(a); err != nil {
			panic(err)
		}
	}
	return reg
}
