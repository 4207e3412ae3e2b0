// cmd/derivative/main.go: interactive differentiation loop.
//
// Every line read from stdin is differentiated and the result printed.
// Lines starting with ':' are commands:
//
//	:var y        differentiate with respect to y
//	:at x=1 y=2   evaluate derivatives at a point
//	:clear        forget the point
//
// "stop" exits.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
)

const (
	prompt   = "Enter a function (or 'stop' to exit): "
	sentinel = "stop"
	farewell = "Bye!"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so that the logger is flushed before
// the process exits.
func run() int {
	configPath := flag.String("config", "", "YAML config file")
	variable := flag.String("var", "", "Differentiation variable (overrides config)")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *variable != "" {
		cfg.Engine.Variable = *variable
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	s := &session{
		engine:   symdiff.New(cfg.EngineOptions(logger.Logger)...),
		variable: cfg.Engine.Variable,
		logger:   logger.Logger,
	}
	if err := s.run(os.Stdin, os.Stdout); err != nil {
		logger.Error("reading input", zap.Error(err))
		return 1
	}
	return 0
}

// session is the state of one interactive loop.
type session struct {
	engine   *symdiff.Engine
	variable string
	point    symdiff.Bindings
	logger   *zap.Logger
}

func (s *session) run(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(line), sentinel) {
			fmt.Fprintln(out, farewell)
			return nil
		}
		if reply := s.handle(line); reply != "" {
			fmt.Fprintln(out, reply)
		}
	}
}

// handle answers one input line.
func (s *session) handle(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, ":") {
		reply, err := s.command(trimmed)
		if err != nil {
			return "error: " + err.Error()
		}
		return reply
	}

	result, err := s.engine.Differentiate(line, s.variable, s.point)
	if err != nil {
		s.logger.Debug("differentiate failed", zap.String("expr", line), zap.Error(err))
		if symdiff.IsParseError(err) {
			return err.Error()
		}
		return "error: " + err.Error()
	}
	return result
}

func (s *session) command(line string) (string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return "", err
	}
	switch args[0] {
	case ":var":
		if len(args) != 2 {
			return "", errors.New("usage: :var <name>")
		}
		s.variable = args[1]
		return "variable: " + s.variable, nil
	case ":at":
		if len(args) < 2 {
			return "", errors.New("usage: :at name=value ...")
		}
		point, err := parsePoint(args[1:])
		if err != nil {
			return "", err
		}
		s.point = point
		return "point: " + formatPoint(point), nil
	case ":clear":
		s.point = nil
		return "point cleared", nil
	}
	return "", fmt.Errorf("unknown command %s", args[0])
}

func parsePoint(args []string) (symdiff.Bindings, error) {
	point := make(symdiff.Bindings, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q is not name=value", symdiff.ErrBadPoint, arg)
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", symdiff.ErrBadPoint, value)
		}
		point[name] = v
	}
	return point, nil
}

func formatPoint(point symdiff.Bindings) string {
	names := make([]string, 0, len(point))
	for name := range point {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + symdiff.FormatValue(point[name])
	}
	return strings.Join(parts, " ")
}
