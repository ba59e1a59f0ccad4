// Package flagx picks this program's own flags out of a command line
// shared with other parsers (the cobra command tree).
package flagx

import (
	"flag"
	"strings"
)

// Spec names the flags a parser owns. Bool flags never consume the
// following argument as their value.
type Spec struct {
	Flags     []string
	BoolFlags []string
}

// Filter returns the arguments belonging to flags in s, with their values.
//
// Supported forms:
//
//	-d dsn         value as the next argument
//	-d=dsn         value joined with '='
//	-o             bool flag, next argument left alone
func (s Spec) Filter(args []string) []string {
	own, _ := s.Split(args)
	return own
}

// Split partitions args into the flags owned by s (with their values) and
// everything else, both in their original order.
func (s Spec) Split(args []string) (own, rest []string) {
	allowed := make(map[string]bool, len(s.Flags)+len(s.BoolFlags))
	for _, f := range s.Flags {
		allowed[f] = false
	}
	for _, f := range s.BoolFlags {
		allowed[f] = true
	}

	own = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				own = append(own, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		isBool, ok := allowed[arg]
		if !ok {
			rest = append(rest, arg)
			continue
		}
		own = append(own, arg)
		if !isBool && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			own = append(own, args[i+1])
			i++
		}
	}

	return own, rest
}

// FilterArgs keeps only allowedFlags and their values from args.
func FilterArgs(args []string, allowedFlags []string) []string {
	return Spec{Flags: allowedFlags}.Filter(args)
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" when neither is present.
func ConfigPath(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}
