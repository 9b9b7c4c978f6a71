// Package permx maps HTTP traffic onto permission names and evaluates them
// against a user's role-derived permission set.
package permx

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is the verb half of a permission name.
type Action string

const (
	ActionAll     Action = "all"
	ActionRead    Action = "read"
	ActionAdd     Action = "add"
	ActionEdit    Action = "edit"
	ActionDestroy Action = "destroy"
)

// Actions lists every grantable action, wildcard first.
var Actions = []Action{ActionAll, ActionRead, ActionAdd, ActionEdit, ActionDestroy}

// ActionForMethod derives the required action from an HTTP method. The map is
// total over the methods the API registers; anything else is a route
// configuration error, not a normal-traffic failure.
func ActionForMethod(method string) (Action, error) {
	switch method {
	case "GET", "HEAD":
		return ActionRead, nil
	case "POST":
		return ActionAdd, nil
	case "PUT", "PATCH":
		return ActionEdit, nil
	case "DELETE":
		return ActionDestroy, nil
	}
	return "", fmt.Errorf("permx: no action mapped for method %q", method)
}

// Name builds the canonical group permission name: {action}_{resource}.
func Name(action Action, resource string) string {
	return string(action) + "_" + resource
}

// ScopedName builds the per-object permission name: {action}_{resource}_{id}.
func ScopedName(action Action, resource string, objectID int64) string {
	return Name(action, resource) + "_" + strconv.FormatInt(objectID, 10)
}

// Set is a user's effective permission names.
type Set map[string]struct{}

// NewSet builds a Set from permission names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Add(name string) { s[name] = struct{}{} }

// Rule maps a route path onto a resource. Exactly one of Exact or IDPrefix is
// set: Exact matches the whole path, IDPrefix matches the prefix followed by a
// decimal object id.
type Rule struct {
	Resource string
	Exact    string
	IDPrefix string
}

func (r Rule) match(path string) (objectID *int64, ok bool) {
	if r.Exact != "" {
		return nil, path == r.Exact
	}
	rest, found := strings.CutPrefix(path, r.IDPrefix)
	if !found || rest == "" {
		return nil, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// Match is a resolved route: the resource a path touches and, when the rule
// captured one, the object id.
type Match struct {
	Resource string
	ObjectID *int64
}

// Resolver evaluates an ordered rule table, first match wins. Overlapping
// patterns are resolved by position, so order is part of the contract.
type Resolver struct {
	rules []Rule
}

func NewResolver(rules []Rule) *Resolver {
	return &Resolver{rules: rules}
}

// DefaultRules is the API's route-to-resource table.
func DefaultRules() []Rule {
	return []Rule{
		{Resource: "ChatTopic", Exact: "/chat-gpt/topic"},
		{Resource: "ChatTopic", IDPrefix: "/chat-gpt/topic/"},
		{Resource: "ChatMessage", Exact: "/chat-gpt/messages"},
		{Resource: "ChatTopic", IDPrefix: "/chat-gpt/messages/topic-"},
		{Resource: "Users", Exact: "/users"},
		{Resource: "Users", IDPrefix: "/users/"},
	}
}

// Match classifies a path. A false return means the path carries no resource
// requirement and passes through.
func (r *Resolver) Match(path string) (Match, bool) {
	for _, rule := range r.rules {
		if id, ok := rule.match(path); ok {
			return Match{Resource: rule.Resource, ObjectID: id}, true
		}
	}
	return Match{}, false
}

// Decision is the outcome of a permission check. Required names the
// permission whose absence caused a denial.
type Decision struct {
	Allowed  bool
	Required string
}

// DependencyFunc resolves a permission's depends_on by name at decision time.
// The second return reports whether the permission exists at all.
type DependencyFunc func(name string) (string, bool)

// Decide evaluates the two-tier check: wildcard or group permission first,
// then the scoped instance permission with dependency gating. Wildcard grants
// satisfy any dependency by construction.
func Decide(resource string, action Action, objectID *int64, perms Set, dependsOn DependencyFunc) Decision {
	group := Name(action, resource)
	if perms.Has(Name(ActionAll, resource)) || perms.Has(group) {
		return Decision{Allowed: true}
	}

	if objectID != nil {
		scoped := ScopedName(action, resource, *objectID)
		if perms.Has(scoped) {
			if dependsOn != nil {
				if dep, ok := dependsOn(scoped); ok && dep != "" && !perms.Has(dep) {
					return Decision{Allowed: false, Required: dep}
				}
			}
			return Decision{Allowed: true}
		}
	}

	return Decision{Allowed: false, Required: group}
}
