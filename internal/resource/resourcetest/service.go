// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package resourcetest provides an in-memory stand-in for the external
// client, for tests of code built on internal/resource.
package resourcetest

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"polarisdesk/cli/internal/command"
	"polarisdesk/cli/internal/errors"
	"polarisdesk/cli/internal/executor"
	"polarisdesk/cli/internal/response"
)

// Service emulates the external client's grammar and JSON-lines output over
// in-memory state. It implements resource.Executor and is safe for
// concurrent use.
type Service struct {
	mu sync.Mutex

	catalogs       []response.CatalogRecord
	principals     []response.PrincipalRecord
	principalRoles []string
	catalogRoles   map[string][]string
	assigned       map[string][]string // principal → principal-roles
	catalogGrants  map[string][]string // catalog/catalog-role → principal-roles
	privileges     map[string][]response.GrantRecord

	failures map[string]string
	calls    []string
	serial   int
}

// New returns an empty service.
func New() *Service {
	return &Service{
		catalogRoles:  make(map[string][]string),
		assigned:      make(map[string][]string),
		catalogGrants: make(map[string][]string),
		privileges:    make(map[string][]response.GrantRecord),
		failures:      make(map[string]string),
	}
}

// FailOn makes every command whose text (resource keyword onwards) starts
// with prefix fail with stderr.
func (s *Service) FailOn(prefix, stderr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[prefix] = stderr
}

// Calls returns the text of every command executed so far, connection flags
// stripped.
func (s *Service) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// ResetCalls clears the call log.
func (s *Service) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Seed helpers.

func (s *Service) AddCatalog(name string, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogs = append(s.catalogs, response.CatalogRecord{Name: name, Type: "INTERNAL", StorageConfigInfo: response.StorageConfigInfo{StorageType: "FILE"}})
	s.catalogRoles[name] = append(s.catalogRoles[name], roles...)
}

func (s *Service) AddPrincipal(name string, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals = append(s.principals, response.PrincipalRecord{Name: name, ClientID: "id-" + name})
	for _, r := range roles {
		if !slices.Contains(s.principalRoles, r) {
			s.principalRoles = append(s.principalRoles, r)
		}
	}
	s.assigned[name] = append(s.assigned[name], roles...)
}

func (s *Service) AddPrincipalRole(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principalRoles = append(s.principalRoles, name)
}

// Execute implements resource.Executor.
func (s *Service) Execute(_ context.Context, cmd command.Command) executor.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := cmd.Args()
	if len(args) < 8 {
		return executor.Failed(errors.New(errors.NonZeroExit, "usage: polaris [--host] [--port] [--client-id] [--client-secret] ..."))
	}
	args = args[8:]
	text := strings.Join(args, " ")
	s.calls = append(s.calls, text)

	for prefix, stderr := range s.failures {
		if strings.HasPrefix(text, prefix) {
			return executor.Failed(errors.New(errors.NonZeroExit, stderr))
		}
	}

	inv := parse(args)
	out, err := s.dispatch(inv)
	if err != nil {
		return executor.Failed(errors.New(errors.NonZeroExit, err.Error()))
	}
	return executor.Success(out)
}

type invocation struct {
	resource   string
	verbs      []string
	positional []string
	flags      map[string][]string
}

func (i invocation) flag(key string) string {
	if v := i.flags[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (i invocation) arg() string {
	if len(i.positional) > 0 {
		return i.positional[0]
	}
	return ""
}

func parse(args []string) invocation {
	inv := invocation{flags: make(map[string][]string)}
	if len(args) == 0 {
		return inv
	}
	inv.resource = args[0]
	rest := args[1:]
	verbs := 1
	if inv.resource == "privileges" && len(rest) > 0 && rest[0] != "list" {
		verbs = 2
	}
	for i := 0; i < verbs && len(rest) > 0; i++ {
		inv.verbs = append(inv.verbs, rest[0])
		rest = rest[1:]
	}
	for i := 0; i < len(rest); i++ {
		if strings.HasPrefix(rest[i], "--") && i+1 < len(rest) {
			key := strings.TrimPrefix(rest[i], "--")
			inv.flags[key] = append(inv.flags[key], rest[i+1])
			i++
			continue
		}
		inv.positional = append(inv.positional, rest[i])
	}
	return inv
}

func (s *Service) dispatch(inv invocation) (string, error) {
	op := strings.Join(inv.verbs, " ")
	switch inv.resource + " " + op {
	case "catalogs list":
		return lines(s.catalogs)
	case "catalogs get":
		for _, c := range s.catalogs {
			if c.Name == inv.arg() {
				return lines([]response.CatalogRecord{c})
			}
		}
		return "", notFound("Catalog", inv.arg())
	case "catalogs create":
		if s.hasCatalog(inv.arg()) {
			return "", conflict("Catalog", inv.arg())
		}
		s.catalogs = append(s.catalogs, response.CatalogRecord{
			Name:              inv.arg(),
			Type:              inv.flag("type"),
			Properties:        map[string]string{"default-base-location": inv.flag("default-base-location")},
			StorageConfigInfo: response.StorageConfigInfo{StorageType: inv.flag("storage-type"), AllowedLocations: inv.flags["allowed-location"]},
		})
		return "", nil
	case "catalogs delete":
		if !s.hasCatalog(inv.arg()) {
			return "", notFound("Catalog", inv.arg())
		}
		s.catalogs = slices.DeleteFunc(s.catalogs, func(c response.CatalogRecord) bool { return c.Name == inv.arg() })
		delete(s.catalogRoles, inv.arg())
		return "", nil

	case "principals list":
		return lines(s.principals)
	case "principals get":
		for _, p := range s.principals {
			if p.Name == inv.arg() {
				return lines([]response.PrincipalRecord{p})
			}
		}
		return "", notFound("Principal", inv.arg())
	case "principals create":
		if s.hasPrincipal(inv.arg()) {
			return "", conflict("Principal", inv.arg())
		}
		s.serial++
		p := response.PrincipalRecord{Name: inv.arg(), ClientID: fmt.Sprintf("client-%d", s.serial)}
		s.principals = append(s.principals, p)
		return lines([]response.CredentialsRecord{{ClientID: p.ClientID, ClientSecret: fmt.Sprintf("secret-%d", s.serial)}})
	case "principals delete":
		if !s.hasPrincipal(inv.arg()) {
			return "", notFound("Principal", inv.arg())
		}
		s.principals = slices.DeleteFunc(s.principals, func(p response.PrincipalRecord) bool { return p.Name == inv.arg() })
		delete(s.assigned, inv.arg())
		return "", nil
	case "principals rotate-credentials":
		for i, p := range s.principals {
			if p.Name == inv.arg() {
				s.serial++
				s.principals[i].ClientID = fmt.Sprintf("client-%d", s.serial)
				return lines([]response.CredentialsRecord{{ClientID: s.principals[i].ClientID, ClientSecret: fmt.Sprintf("secret-%d", s.serial)}})
			}
		}
		return "", notFound("Principal", inv.arg())

	case "principal-roles list":
		if p := inv.flag("principal"); p != "" {
			if !s.hasPrincipal(p) {
				return "", notFound("Principal", p)
			}
			return roleLines(s.assigned[p])
		}
		return roleLines(s.principalRoles)
	case "principal-roles get":
		if !slices.Contains(s.principalRoles, inv.arg()) {
			return "", notFound("PrincipalRole", inv.arg())
		}
		return roleLines([]string{inv.arg()})
	case "principal-roles create":
		if slices.Contains(s.principalRoles, inv.arg()) {
			return "", conflict("PrincipalRole", inv.arg())
		}
		s.principalRoles = append(s.principalRoles, inv.arg())
		return "", nil
	case "principal-roles delete":
		if !slices.Contains(s.principalRoles, inv.arg()) {
			return "", notFound("PrincipalRole", inv.arg())
		}
		s.principalRoles = remove(s.principalRoles, inv.arg())
		for p := range s.assigned {
			s.assigned[p] = remove(s.assigned[p], inv.arg())
		}
		return "", nil
	case "principal-roles grant":
		p := inv.flag("principal")
		if !s.hasPrincipal(p) {
			return "", notFound("Principal", p)
		}
		if !slices.Contains(s.principalRoles, inv.arg()) {
			return "", notFound("PrincipalRole", inv.arg())
		}
		if !slices.Contains(s.assigned[p], inv.arg()) {
			s.assigned[p] = append(s.assigned[p], inv.arg())
		}
		return "", nil
	case "principal-roles revoke":
		p := inv.flag("principal")
		s.assigned[p] = remove(s.assigned[p], inv.arg())
		return "", nil

	case "catalog-roles list":
		catalog := inv.arg()
		if !s.hasCatalog(catalog) {
			return "", notFound("Catalog", catalog)
		}
		return roleLines(s.catalogRoles[catalog])
	case "catalog-roles get":
		if !slices.Contains(s.catalogRoles[inv.flag("catalog")], inv.arg()) {
			return "", notFound("CatalogRole", inv.arg())
		}
		return roleLines([]string{inv.arg()})
	case "catalog-roles create":
		catalog := inv.flag("catalog")
		if !s.hasCatalog(catalog) {
			return "", notFound("Catalog", catalog)
		}
		if slices.Contains(s.catalogRoles[catalog], inv.arg()) {
			return "", conflict("CatalogRole", inv.arg())
		}
		s.catalogRoles[catalog] = append(s.catalogRoles[catalog], inv.arg())
		return "", nil
	case "catalog-roles delete":
		catalog := inv.flag("catalog")
		if !slices.Contains(s.catalogRoles[catalog], inv.arg()) {
			return "", notFound("CatalogRole", inv.arg())
		}
		s.catalogRoles[catalog] = remove(s.catalogRoles[catalog], inv.arg())
		delete(s.privileges, catalog+"/"+inv.arg())
		return "", nil
	case "catalog-roles grant", "catalog-roles revoke":
		catalog, pr := inv.flag("catalog"), inv.flag("principal-role")
		if !slices.Contains(s.catalogRoles[catalog], inv.arg()) {
			return "", notFound("CatalogRole", inv.arg())
		}
		key := catalog + "/" + inv.arg()
		if op == "grant" {
			if !slices.Contains(s.catalogGrants[key], pr) {
				s.catalogGrants[key] = append(s.catalogGrants[key], pr)
			}
		} else {
			s.catalogGrants[key] = remove(s.catalogGrants[key], pr)
		}
		return "", nil

	case "privileges list":
		return lines(s.privileges[inv.flag("catalog")+"/"+inv.flag("catalog-role")])
	}

	if inv.resource == "privileges" && len(inv.verbs) == 2 {
		key := inv.flag("catalog") + "/" + inv.flag("catalog-role")
		if !slices.Contains(s.catalogRoles[inv.flag("catalog")], inv.flag("catalog-role")) {
			return "", notFound("CatalogRole", inv.flag("catalog-role"))
		}
		g := response.GrantRecord{Type: inv.verbs[0], Privilege: inv.arg(), TableName: inv.flag("table"), ViewName: inv.flag("view")}
		if ns := inv.flag("namespace"); ns != "" {
			g.Namespace = strings.Split(ns, ".")
		}
		same := func(o response.GrantRecord) bool {
			return o.Type == g.Type && o.Privilege == g.Privilege && slices.Equal(o.Namespace, g.Namespace) && o.TableName == g.TableName && o.ViewName == g.ViewName
		}
		switch inv.verbs[1] {
		case "grant":
			if !slices.ContainsFunc(s.privileges[key], same) {
				s.privileges[key] = append(s.privileges[key], g)
			}
			return "", nil
		case "revoke":
			s.privileges[key] = slices.DeleteFunc(s.privileges[key], same)
			return "", nil
		}
	}
	return "", fmt.Errorf("usage: polaris %s: invalid choice: %q", inv.resource, op)
}

func (s *Service) hasCatalog(name string) bool {
	return slices.ContainsFunc(s.catalogs, func(c response.CatalogRecord) bool { return c.Name == name })
}

func (s *Service) hasPrincipal(name string) bool {
	return slices.ContainsFunc(s.principals, func(p response.PrincipalRecord) bool { return p.Name == name })
}

func remove(list []string, name string) []string {
	return slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == name })
}

func notFound(kind, name string) error {
	return fmt.Errorf("Exception when communicating with the Polaris server. NotFoundException: %s %s not found", kind, name)
}

func conflict(kind, name string) error {
	return fmt.Errorf("Exception when communicating with the Polaris server. 409 %s %s already exists", kind, name)
}

func roleLines(names []string) (string, error) {
	roles := make([]response.RoleRecord, len(names))
	for i, n := range names {
		roles[i] = response.RoleRecord{Name: n}
	}
	return lines(roles)
}

func lines[T any](items []T) (string, error) {
	var b strings.Builder
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return "", err
		}
		b.Write(raw)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
