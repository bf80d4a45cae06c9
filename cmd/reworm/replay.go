package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pedronauck/reworm/internal/config"
	"github.com/pedronauck/reworm/internal/errors"
	"github.com/pedronauck/reworm/pkg/reworm"
	"github.com/pedronauck/reworm/pkg/value"
)

// Script is a replay file.
type Script struct {
	// Stores are created before the first step, after the config seeds.
	Stores map[string]json.RawMessage `json:"stores,omitempty"`

	Steps []Step `json:"steps"`
}

// Step is one replayed operation.
//
//	create  registers Store with Value as its initial value
//	set     writes Value through Store.Set
//	expect  fails unless the projection at Path equals Value
//	print   prints the projection at Path
//
// A step with Error set must fail with that error code.
type Step struct {
	Op    string          `json:"op"`
	Store string          `json:"store"`
	Value json.RawMessage `json:"value,omitempty"`
	Path  string          `json:"path,omitempty"`
	Error string          `json:"error,omitempty"`
}

func replayCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "replay <script.json>",
		Short: "Replay a script of store writes",
		Long: `Replay a JSON script against stores seeded from reworm.json and
print every broadcast.

Use "-" to read the script from stdin.

Examples:
  reworm replay session.json
  reworm replay --config ./fixtures/reworm.json session.json
  cat session.json | reworm replay -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			script, err := readScript(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runReplay(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, script)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to reworm.json (default: search from working dir)")

	return cmd
}

// loadConfig loads path, or searches from the working directory when path
// is empty. A missing project file falls back to defaults.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		var re *errors.ReworkError
		if stderrors.As(err, &re) && re.Code == "R121" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readScript(stdin io.Reader, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.FromError(err, "R140").WithDetail("cannot read script " + path)
	}
	return data, nil
}

// replayObserver reports writes that produce no broadcast.
type replayObserver struct {
	reworm.NopObserver
	out io.Writer
}

func (o replayObserver) Suppressed(id string) {
	fmt.Fprintf(o.out, "= %s unchanged\n", id)
}

func runReplay(out, logOut io.Writer, cfg *config.Config, data []byte) error {
	var script Script
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&script); err != nil {
		return errors.New("R140").WithDetail("script is not valid JSON").Wrap(err)
	}

	c, err := cfg.NewContainer(
		reworm.WithLogger(cfg.Logger(logOut)),
		reworm.WithObserver(replayObserver{out: out}),
	)
	if err != nil {
		return err
	}

	c.Emitter().Subscribe(reworm.ListenerFunc(func(id string, next value.Value) {
		fmt.Fprintf(out, "→ %s %s\n", id, value.Format(next))
	}))

	for _, id := range sortedRaw(script.Stores) {
		v, err := value.Parse(script.Stores[id])
		if err != nil {
			return errors.New("R140").WithStore(id).WithDetail("invalid store seed").Wrap(err)
		}
		c.Create(id, v)
	}

	for i, step := range script.Steps {
		err := runStep(out, c, step)
		if step.Error != "" {
			var re *errors.ReworkError
			if !stderrors.As(err, &re) || re.Code != step.Error {
				return errors.New("R140").
					WithStore(step.Store).
					WithDetailf("step %d (%s): expected error %s, got %v", i+1, step.Op, step.Error, err)
			}
			fmt.Fprintf(out, "! %s\n", re.FormatCompact())
			continue
		}
		if err != nil {
			return errors.New("R140").
				WithStore(step.Store).
				WithDetailf("step %d (%s)", i+1, step.Op).
				Wrap(err)
		}
	}

	return nil
}

func runStep(out io.Writer, c *reworm.Container, step Step) error {
	switch step.Op {
	case "create":
		v, err := stepValue(step)
		if err != nil {
			return err
		}
		c.Create(step.Store, v)
		return nil

	case "set":
		v, err := stepValue(step)
		if err != nil {
			return err
		}
		return c.Use(step.Store).Set(v)

	case "expect":
		want, err := stepValue(step)
		if err != nil {
			return err
		}
		got, err := project(c, step)
		if err != nil {
			return err
		}
		if !value.Equal(got, want) {
			return fmt.Errorf("got %s, want %s", value.Format(got), value.Format(want))
		}
		return nil

	case "print":
		got, err := project(c, step)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", step.Store, value.Format(got))
		return nil
	}
	return errors.Newf(errors.CategoryCLI, "unknown op %q", step.Op)
}

func stepValue(step Step) (value.Value, error) {
	if len(step.Value) == 0 {
		return nil, fmt.Errorf("%s requires a value", step.Op)
	}
	return value.Parse(step.Value)
}

func project(c *reworm.Container, step Step) (value.Value, error) {
	sel := reworm.Identity()
	if step.Path != "" {
		var err error
		if sel, err = reworm.Path(step.Path); err != nil {
			return nil, err
		}
	}
	v, _ := c.Use(step.Store).Select(sel)(func(v value.Value) any { return v }).(value.Value)
	return v, nil
}

func sortedRaw(m map[string]json.RawMessage) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
