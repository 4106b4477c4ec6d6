package xmain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"oss.terrastruct.com/xos"
)

// Opts declares flags whose defaults can be set persistently through environment
// variables. A flag given on the command line always wins.
type Opts struct {
	Args  []string
	Flags *pflag.FlagSet
	env   *xos.Env

	registeredEnvs []string
}

func NewOpts(env *xos.Env, args []string) *Opts {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)
	return &Opts{
		Args:  args,
		Flags: flags,
		env:   env,
	}
}

// Help lists the flags followed by the environment variables they read.
func (o *Opts) Help() string {
	b := &strings.Builder{}
	o.Flags.SetOutput(b)
	o.Flags.PrintDefaults()

	if len(o.registeredEnvs) > 0 {
		b.WriteString("\nYou may persistently set the following as environment variables (flags take precedent):\n")
		for i, e := range o.registeredEnvs {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(b, "- $%s", e)
		}
	}
	return b.String()
}

// envDefault replaces def with the parsed value of envKey when it is set.
func envDefault[T any](o *Opts, envKey, kind string, def T, parse func(string) (T, error)) (T, error) {
	if envKey == "" {
		return def, nil
	}
	o.registeredEnvs = append(o.registeredEnvs, envKey)
	s := o.env.Getenv(envKey)
	if s == "" {
		return def, nil
	}
	v, err := parse(s)
	if err != nil {
		return def, fmt.Errorf(`invalid environment variable %s. Expected %s. Found "%s".`, envKey, kind, s)
	}
	return v, nil
}

func (o *Opts) Float64(envKey, flag, shortFlag string, defaultVal float64, usage string) (*float64, error) {
	defaultVal, err := envDefault(o, envKey, "float64", defaultVal, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
	if err != nil {
		return nil, err
	}
	return o.Flags.Float64P(flag, shortFlag, defaultVal, usage), nil
}

func (o *Opts) String(envKey, flag, shortFlag string, defaultVal, usage string) *string {
	defaultVal, _ = envDefault(o, envKey, "string", defaultVal, func(s string) (string, error) {
		return s, nil
	})
	return o.Flags.StringP(flag, shortFlag, defaultVal, usage)
}

func (o *Opts) Bool(envKey, flag, shortFlag string, defaultVal bool, usage string) (*bool, error) {
	defaultVal, err := envDefault(o, envKey, "bool", defaultVal, parseBoolEnv)
	if err != nil {
		return nil, err
	}
	return o.Flags.BoolP(flag, shortFlag, defaultVal, usage), nil
}

func parseBoolEnv(s string) (bool, error) {
	switch s {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("not a bool: %q", s)
}
