package engine

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/porous/pkg/config"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: max-attempts -> max_attempts
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number from a Sexp. Floats are accepted when they
// are integral.
func toInt(s zygo.Sexp) (int64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int64(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp. A bare trailing keyword counts
// as true.
func toBool(s zygo.Sexp) (bool, error) {
	if s == zygo.SexpNull {
		return true, nil
	}
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// setter stores one keyword value into a patch.
type setter func(p *config.Patch, v zygo.Sexp) error

func floatSetter(field func(p *config.Patch) **float64) setter {
	return func(p *config.Patch, v zygo.Sexp) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		*field(p) = &f
		return nil
	}
}

func intSetter(field func(p *config.Patch) **int) setter {
	return func(p *config.Patch, v zygo.Sexp) error {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		i := int(n)
		*field(p) = &i
		return nil
	}
}

func boolSetter(field func(p *config.Patch) **bool) setter {
	return func(p *config.Patch, v zygo.Sexp) error {
		b, err := toBool(v)
		if err != nil {
			return err
		}
		*field(p) = &b
		return nil
	}
}

// domainKeys are the keywords accepted by (domain ...).
var domainKeys = map[string]setter{
	"lx":        floatSetter(func(p *config.Patch) **float64 { return &p.Lx }),
	"ly":        floatSetter(func(p *config.Patch) **float64 { return &p.Ly }),
	"obstacles": intSetter(func(p *config.Patch) **int { return &p.NumObstacles }),
	"rad":       floatSetter(func(p *config.Patch) **float64 { return &p.Rad }),
	"exclusion": floatSetter(func(p *config.Patch) **float64 { return &p.R }),
	"dx":        floatSetter(func(p *config.Patch) **float64 { return &p.Dx }),
	"seed": func(p *config.Patch, v zygo.Sexp) error {
		n, err := toInt(v)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("seed must not be negative, got %d", n)
		}
		seed := uint64(n)
		p.Seed = &seed
		return nil
	},
	"max_attempts": intSetter(func(p *config.Patch) **int { return &p.MaxAttempts }),
	"min_angle":    floatSetter(func(p *config.Patch) **float64 { return &p.MinAngle }),
}

// outputKeys are the keywords accepted by (output ...).
var outputKeys = map[string]setter{
	"show":    boolSetter(func(p *config.Patch) **bool { return &p.Show }),
	"verbose": boolSetter(func(p *config.Patch) **bool { return &p.Verbose }),
	"workers": intSetter(func(p *config.Patch) **int { return &p.Workers }),
	"plot": func(p *config.Patch, v zygo.Sexp) error {
		s, err := toString(v)
		if err != nil {
			return err
		}
		p.PlotPath = &s
		return nil
	},
}

// applyKeywords stores every keyword argument of a builtin call into p.
// Keywords are applied in sorted order so the first error reported is
// stable.
func applyKeywords(name string, args []zygo.Sexp, keys map[string]setter, p *config.Patch) error {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return fmt.Errorf("%s: unexpected positional argument %s", name, pa.positional[0].SexpString(nil))
	}
	for _, kw := range slices.Sorted(maps.Keys(pa.kw)) {
		v := pa.kw[kw]
		set, ok := keys[strings.ReplaceAll(kw, "-", "_")]
		if !ok {
			return fmt.Errorf("%s: unknown keyword :%s", name, kw)
		}
		if err := set(p, v); err != nil {
			return fmt.Errorf("%s: %s: %w", name, kw, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the parameter builtins into a zygomys
// environment. Later calls override earlier ones field by field.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *config.Patch) {
	// (domain :lx 4 :ly 4 :obstacles 25 :rad 0.25 :exclusion 0.3 :dx 0.05 :seed 123)
	env.AddFunction("domain", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return zygo.SexpNull, applyKeywords(name, args, domainKeys, p)
	})

	// (output :show true :plot "porous.svg" :verbose true :workers 4)
	env.AddFunction("output", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return zygo.SexpNull, applyKeywords(name, args, outputKeys, p)
	})
}
