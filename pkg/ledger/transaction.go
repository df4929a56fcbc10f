package ledger

import (
	"context"
	"fmt"
	"strings"
)

// ArgKind distinguishes pure values from object references.
type ArgKind int

const (
	ArgPure ArgKind = iota
	ArgObject
)

// Argument is one positional Move call argument.
type Argument struct {
	Kind  ArgKind
	Value string
}

// Pure returns a pure string argument.
func Pure(s string) Argument {
	return Argument{Kind: ArgPure, Value: s}
}

// Object returns an object reference argument.
func Object(id string) Argument {
	return Argument{Kind: ArgObject, Value: id}
}

// Transaction is a single Move call to submit.
type Transaction struct {
	Target    string
	Arguments []Argument
	Chain     string
}

// Split breaks Target into package, module, and function.
func (t Transaction) Split() (pkg, module, function string, err error) {
	parts := strings.Split(t.Target, "::")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("ledger: malformed call target %q", t.Target)
	}
	return parts[0], parts[1], parts[2], nil
}

// Receipt is the execution result of a submitted transaction.
type Receipt struct {
	Digest string `json:"digest"`
	Status string `json:"status"`
}

// Signer signs and executes transactions on behalf of the active account.
type Signer interface {
	SignAndExecute(ctx context.Context, tx Transaction) (Receipt, error)
}

// CreateNote builds the create call with a single text argument.
func CreateNote(target, content, chain string) Transaction {
	return Transaction{
		Target:    target,
		Arguments: []Argument{Pure(content)},
		Chain:     chain,
	}
}

// UpdateNote builds the update call: the note object, then its new text.
func UpdateNote(target, id, content, chain string) Transaction {
	return Transaction{
		Target:    target,
		Arguments: []Argument{Object(id), Pure(content)},
		Chain:     chain,
	}
}
