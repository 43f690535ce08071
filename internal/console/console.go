// Package console interprets console commands typed into the host, such as
// "sdn.DayLength 20" or "time 12", and applies them to the parameter store
// and the day/night clock.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-daynight/internal/params"
)

var tracer = otel.Tracer("github.com/Faultbox/midgard-daynight/internal/console")

// ErrUnknownCommand is returned for input that is neither a command nor a
// console variable.
var ErrUnknownCommand = errors.New("unknown command")

// Variables is the console variable backend, normally a *params.Store.
type Variables interface {
	Set(name, value string) error
	Get(name string) (string, error)
}

// Clock is the simulated clock, normally a *daynight.Controller.
type Clock interface {
	TimeOfDay() float64
	SetTimeOfDay(hours float64)
	Mode() params.UpdateMode
}

// Console executes commands and writes replies to an output stream.
type Console struct {
	vars  Variables
	clock Clock
	out   io.Writer
	log   *zap.Logger

	// lower-case name -> canonical name
	names map[string]string
}

// New creates a console. out receives command replies.
func New(vars Variables, clock Clock, out io.Writer, log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Console{
		vars:  vars,
		clock: clock,
		out:   out,
		log:   log,
		names: make(map[string]string),
	}
	for _, name := range params.Variables() {
		c.names[strings.ToLower(name)] = name
	}
	return c
}

// Run executes lines from r until EOF or ctx is cancelled. Command errors are
// reported to the output and do not stop the loop. On cancellation Run returns
// at once; the reader goroutine exits after its pending read returns.
func (c *Console) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return c.readError(readErr)
			}
			if ctx.Err() != nil {
				return nil
			}
			if err := c.Exec(ctx, line); err != nil {
				c.log.Debug("console command failed", zap.String("line", line), zap.Error(err))
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
	}
}

func (c *Console) readError(ch <-chan error) error {
	select {
	case err := <-ch:
		if err != nil {
			return fmt.Errorf("reading console input: %w", err)
		}
	default:
	}
	return nil
}

// Exec runs a single command line. Blank lines and lines starting with '#'
// are ignored.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	_, span := tracer.Start(ctx, "console.exec", trace.WithAttributes(
		attribute.String("console.command", fields[0]),
		attribute.Int("console.args", len(fields)-1),
	))
	defer span.End()

	err := c.exec(fields[0], fields[1:])
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Console) exec(cmd string, args []string) error {
	switch strings.ToLower(cmd) {
	case "help", "?":
		c.help()
		return nil
	case "status":
		c.status()
		return nil
	case "time":
		return c.time(args)
	}

	name, ok := c.names[strings.ToLower(cmd)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	if len(args) == 0 {
		v, err := c.vars.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s = %s\n", name, v)
		return nil
	}

	value := strings.Join(args, " ")
	if err := c.vars.Set(name, value); err != nil {
		return err
	}
	c.log.Info("console variable set", zap.String("name", name), zap.String("value", value))
	v, _ := c.vars.Get(name)
	fmt.Fprintf(c.out, "%s = %s\n", name, v)
	return nil
}

func (c *Console) time(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(c.out, "time = %s\n", strconv.FormatFloat(c.clock.TimeOfDay(), 'f', 3, 64))
		return nil
	}
	hours, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if hours < 0 {
		return fmt.Errorf("time: hours must not be negative, got %v", hours)
	}
	c.clock.SetTimeOfDay(hours)
	fmt.Fprintf(c.out, "time = %s\n", strconv.FormatFloat(hours, 'f', 3, 64))
	return nil
}

func (c *Console) status() {
	fmt.Fprintf(c.out, "time = %s (%s)\n",
		strconv.FormatFloat(c.clock.TimeOfDay(), 'f', 3, 64), c.clock.Mode())
	names := params.Variables()
	sort.Strings(names)
	for _, name := range names {
		v, err := c.vars.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.out, "  %s = %s\n", name, v)
	}
}

func (c *Console) help() {
	fmt.Fprint(c.out, `commands:
  help                 show this text
  status               print the clock and every variable
  time [hours]         print or set the time of day
  <variable> [value]   print or set a console variable
variables:
`)
	for _, name := range params.Variables() {
		fmt.Fprintf(c.out, "  %s\n", name)
	}
}
