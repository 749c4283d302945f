package filterchain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"lintang/transitx/pkg/server"
)

// CostLimitFunction maps the cost of a reference itinerary to the highest cost another
// itinerary may have before it is considered excessive. Must be monotonic.
type CostLimitFunction interface {
	Calculate(cost float64) float64
}

// LinearFunction is f(x) = Constant + Coefficient * x.
type LinearFunction struct {
	Constant    float64
	Coefficient float64
}

func NewLinearFunction(constant, coefficient float64) (LinearFunction, error) {
	f := LinearFunction{Constant: constant, Coefficient: coefficient}
	if err := f.Validate(); err != nil {
		return LinearFunction{}, err
	}
	return f, nil
}

func (f LinearFunction) Calculate(cost float64) float64 {
	return f.Constant + f.Coefficient*cost
}

// Validate requires f(c) >= c for every cost, so the cheapest itinerary is never dominated.
func (f LinearFunction) Validate() error {
	if f.Constant < 0 {
		return server.WrapErrorf(nil, server.ErrBadParamInput, "cost limit constant must be >= 0, got %v", f.Constant)
	}
	if f.Coefficient < 1 {
		return server.WrapErrorf(nil, server.ErrBadParamInput, "cost limit coefficient must be >= 1, got %v", f.Coefficient)
	}
	return nil
}

func (f LinearFunction) String() string {
	return strconv.FormatFloat(f.Constant, 'f', -1, 64) + " + " + strconv.FormatFloat(f.Coefficient, 'f', -1, 64) + " x"
}

var linearPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)(?:\s*\+\s*([0-9]+(?:\.[0-9]+)?)\s*\*?\s*[xX])?$`)

// ParseLinearFunction parses "600 + 1.5 x", "600 + 1.5x", "600+1.5*x" or a bare constant
// "600" (coefficient 1).
func ParseLinearFunction(s string) (LinearFunction, error) {
	m := linearPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return LinearFunction{}, server.WrapErrorf(nil, server.ErrBadParamInput, "malformed cost limit function %q, expected \"a + b x\"", s)
	}
	constant, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return LinearFunction{}, server.WrapErrorf(err, server.ErrBadParamInput, "malformed cost limit constant in %q", s)
	}
	coefficient := 1.0
	if m[2] != "" {
		coefficient, err = strconv.ParseFloat(m[2], 64)
		if err != nil {
			return LinearFunction{}, server.WrapErrorf(err, server.ErrBadParamInput, "malformed cost limit coefficient in %q", s)
		}
	}
	return NewLinearFunction(constant, coefficient)
}

func (f LinearFunction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *LinearFunction) UnmarshalText(b []byte) error {
	v, err := ParseLinearFunction(string(b))
	if err != nil {
		return fmt.Errorf("unmarshal cost limit function: %w", err)
	}
	*f = v
	return nil
}
