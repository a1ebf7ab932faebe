package idl

import (
	"regexp"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/errors"
)

var (
	interfacePattern = regexp.MustCompile(`interface\s+([a-zA-Z_][a-zA-Z0-9_./:@-]*)\s*\{([^}]*)\}`)
	methodPattern    = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?;`)
	commentPattern   = regexp.MustCompile(`//[^\n]*`)
)

// Parse extracts every interface block from IDL text and returns one
// descriptor per block, in declaration order.
// Pattern: interface name { method: func(params) -> result; ... }
func Parse(text string) ([]*abi.Descriptor, error) {
	text = commentPattern.ReplaceAllString(text, "")

	blocks := interfacePattern.FindAllStringSubmatch(text, -1)
	if len(blocks) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no interface blocks found")
	}

	descs := make([]*abi.Descriptor, 0, len(blocks))
	for _, block := range blocks {
		desc, err := parseBlock(abi.InterfaceID(block[1]), block[2])
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// ParseInterface parses text containing exactly one interface block.
func ParseInterface(text string) (*abi.Descriptor, error) {
	descs, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if len(descs) != 1 {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("want exactly one interface block, got %d", len(descs)).
			Build()
	}
	return descs[0], nil
}

func parseBlock(id abi.InterfaceID, body string) (*abi.Descriptor, error) {
	desc := &abi.Descriptor{ID: id}

	matches := methodPattern.FindAllStringSubmatch(body, -1)
	for _, match := range matches {
		m := abi.Method{Name: match[1]}

		paramsStr := strings.TrimSpace(match[2])
		if paramsStr != "" {
			for _, p := range splitParams(paramsStr) {
				typStr := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					typStr = strings.TrimSpace(p[idx+1:])
				}
				t, err := parseType(id, m.Name, typStr)
				if err != nil {
					return nil, err
				}
				m.Params = append(m.Params, t)
			}
		}

		resultStr := ""
		if len(match) > 3 {
			resultStr = strings.TrimSpace(match[3])
		}
		if resultStr != "" && resultStr != "()" {
			if strings.HasPrefix(resultStr, "(") && strings.HasSuffix(resultStr, ")") {
				inner := strings.TrimPrefix(strings.TrimSuffix(resultStr, ")"), "(")
				for _, part := range splitParams(inner) {
					typStr := part
					if idx := strings.LastIndex(part, ":"); idx != -1 {
						typStr = strings.TrimSpace(part[idx+1:])
					}
					t, err := parseType(id, m.Name, typStr)
					if err != nil {
						return nil, err
					}
					m.Results = append(m.Results, t)
				}
			} else {
				t, err := parseType(id, m.Name, resultStr)
				if err != nil {
					return nil, err
				}
				m.Results = []wit.Type{t}
			}
		}

		desc.Methods = append(desc.Methods, m)
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

func parseType(id abi.InterfaceID, method, s string) (wit.Type, error) {
	s = strings.TrimSpace(s)
	t, err := wit.ParseType(s)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err,
			"parse type "+s+" in "+string(id)+"."+method)
	}
	if !abi.Marshallable(t) {
		return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
			Path(string(id), method).
			Detail("type %s does not cross the boundary", s).
			Build()
	}
	return t, nil
}

// splitParams splits a parameter list, handling nested parens.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}

	return result
}
