// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package command turns a logical operation on a managed resource into the
// argument vector understood by the external client.
//
// Building is pure: the same connection, resource, operation and arguments
// always produce the same Command, and nothing is quoted or escaped. The
// vector is handed to the process layer as-is and never joined into a shell
// string, so argument values cannot break out of their token.
package command

import (
	"slices"
	"strings"

	"polarisdesk/cli/internal/config"
)

// Resource is the external client's resource keyword.
type Resource string

const (
	Catalogs       Resource = "catalogs"
	Principals     Resource = "principals"
	PrincipalRoles Resource = "principal-roles"
	CatalogRoles   Resource = "catalog-roles"
	Privileges     Resource = "privileges"
)

// Operation is the external client's operation keyword. It may span several
// tokens, e.g. "catalog grant" for privileges.
type Operation string

const (
	List              Operation = "list"
	Get               Operation = "get"
	Create            Operation = "create"
	Delete            Operation = "delete"
	Grant             Operation = "grant"
	Revoke            Operation = "revoke"
	RotateCredentials Operation = "rotate-credentials"
)

// Flag is one named argument, rendered as "--Key Value".
type Flag struct {
	Key   string
	Value string
}

// Connection flag names, always emitted first and in this order.
const (
	FlagHost         = "host"
	FlagPort         = "port"
	FlagClientID     = "client-id"
	FlagClientSecret = "client-secret"
)

// Command is an immutable executable invocation.
type Command struct {
	executable string
	args       []string
	resource   Resource
	operation  Operation
}

// Build assembles the argument vector:
//
//	--host H --port P --client-id ID --client-secret S <resource> <operation> <positional...> [--key value...]
func Build(conn config.Connection, resource Resource, op Operation, positional []string, named []Flag) Command {
	args := make([]string, 0, 10+len(positional)+2*len(named))
	args = append(args,
		"--"+FlagHost, conn.Host,
		"--"+FlagPort, conn.Port,
		"--"+FlagClientID, conn.ClientID,
		"--"+FlagClientSecret, conn.ClientSecret,
	)
	args = append(args, strings.Fields(string(resource))...)
	args = append(args, strings.Fields(string(op))...)
	args = append(args, positional...)
	for _, f := range named {
		args = append(args, "--"+f.Key, f.Value)
	}
	return Command{
		executable: conn.ExecutablePath,
		args:       args,
		resource:   resource,
		operation:  op,
	}
}

// Executable returns the program path or name.
func (c Command) Executable() string { return c.executable }

// Args returns a copy of the arguments following the executable.
func (c Command) Args() []string { return slices.Clone(c.args) }

// Tokens returns the executable followed by its arguments.
func (c Command) Tokens() []string {
	return append([]string{c.executable}, c.args...)
}

func (c Command) Resource() Resource   { return c.resource }
func (c Command) Operation() Operation { return c.operation }

// Redacted renders the invocation on one line with the client secret masked.
// It is meant for logs only; the process layer never sees this string.
func (c Command) Redacted() string {
	out := make([]string, 0, len(c.args)+1)
	out = append(out, c.executable)
	for i := 0; i < len(c.args); i++ {
		out = append(out, c.args[i])
		if c.args[i] == "--"+FlagClientSecret && i+1 < len(c.args) {
			out = append(out, "***")
			i++
		}
	}
	return strings.Join(out, " ")
}
