package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// CommandRunner runs an external program and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec. Stderr is folded into the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// CLISigner submits transactions through the sui CLI, which owns the keystore
// and the active address.
type CLISigner struct {
	Binary    string
	GasBudget uint64
	Run       CommandRunner

	envMu sync.Mutex
	env   string
}

var _ Signer = (*CLISigner)(nil)

func (s *CLISigner) binary() string {
	if s.Binary == "" {
		return "sui"
	}
	return s.Binary
}

func (s *CLISigner) run(ctx context.Context, args ...string) ([]byte, error) {
	run := s.Run
	if run == nil {
		run = ExecRunner
	}
	return run(ctx, s.binary(), args...)
}

// ActiveAddress returns the CLI's active account.
func (s *CLISigner) ActiveAddress(ctx context.Context) (string, error) {
	out, err := s.run(ctx, "client", "active-address")
	if err != nil {
		return "", err
	}
	addr := strings.TrimSpace(string(out))
	if addr == "" {
		return "", errors.New("ledger: sui CLI has no active address")
	}
	return addr, nil
}

// activeEnv asks the CLI for its environment once it has answered
// successfully; failures are retried on the next call.
func (s *CLISigner) activeEnv(ctx context.Context) (string, error) {
	s.envMu.Lock()
	defer s.envMu.Unlock()
	if s.env != "" {
		return s.env, nil
	}
	out, err := s.run(ctx, "client", "active-env")
	if err != nil {
		return "", err
	}
	env := strings.TrimSpace(string(out))
	if env == "" {
		return "", errors.New("ledger: sui CLI has no active env")
	}
	s.env = env
	return env, nil
}

type cliResult struct {
	Digest  string `json:"digest"`
	Effects struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
	} `json:"effects"`
}

// SignAndExecute runs `sui client call` for tx. A chain tag such as
// "sui:testnet" must match the CLI's active environment.
func (s *CLISigner) SignAndExecute(ctx context.Context, tx Transaction) (Receipt, error) {
	pkg, module, function, err := tx.Split()
	if err != nil {
		return Receipt{}, err
	}
	if want := strings.TrimPrefix(tx.Chain, "sui:"); want != "" {
		env, err := s.activeEnv(ctx)
		if err != nil {
			return Receipt{}, fmt.Errorf("ledger: read active env: %w", err)
		}
		if env != want {
			return Receipt{}, fmt.Errorf("ledger: sui CLI is on %q, transaction targets %q", env, want)
		}
	}

	args := []string{"client", "call",
		"--package", pkg,
		"--module", module,
		"--function", function,
	}
	if len(tx.Arguments) > 0 {
		args = append(args, "--args")
		for _, a := range tx.Arguments {
			v, err := cliArg(a)
			if err != nil {
				return Receipt{}, err
			}
			args = append(args, v)
		}
	}
	if s.GasBudget > 0 {
		args = append(args, "--gas-budget", strconv.FormatUint(s.GasBudget, 10))
	}
	args = append(args, "--json")

	out, err := s.run(ctx, args...)
	if err != nil {
		return Receipt{}, err
	}
	return parseReceipt(out)
}

// cliArg renders a for --args. The CLI reads each value as JSON before
// falling back to a bare string, so text such as "42", "[1]", "0x2" or "-v"
// would otherwise reach the call as a number, a vector, an address or a flag.
// Pure strings are therefore always sent JSON-quoted.
func cliArg(a Argument) (string, error) {
	if a.Kind == ArgObject {
		return a.Value, nil
	}
	b, err := json.Marshal(a.Value)
	if err != nil {
		return "", fmt.Errorf("ledger: encode argument: %w", err)
	}
	return string(b), nil
}

func parseReceipt(out []byte) (Receipt, error) {
	start := bytes.IndexByte(out, '{')
	if start < 0 {
		return Receipt{}, fmt.Errorf("ledger: unexpected sui output: %q", strings.TrimSpace(string(out)))
	}
	var res cliResult
	if err := json.Unmarshal(out[start:], &res); err != nil {
		return Receipt{}, fmt.Errorf("ledger: decode sui output: %w", err)
	}
	receipt := Receipt{Digest: res.Digest, Status: res.Effects.Status.Status}
	if receipt.Status != "" && receipt.Status != "success" {
		msg := res.Effects.Status.Error
		if msg == "" {
			msg = receipt.Status
		}
		return receipt, fmt.Errorf("ledger: transaction %s failed: %s", receipt.Digest, msg)
	}
	return receipt, nil
}
