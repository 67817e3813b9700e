package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/edudash/edudash/internal/access"
)

// RulesCLI inspects the access rule table the server runs with.
type RulesCLI struct {
	policy *access.Policy
}

// NewRulesCLI wires the helper to policy.
func NewRulesCLI(policy *access.Policy) *RulesCLI {
	return &RulesCLI{policy: policy}
}

// RulesOptions defines flags for the rules command.
type RulesOptions struct {
	Role       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// RoleSummary is the JSON shape of one role's grants.
type RoleSummary struct {
	Role   access.Role         `json:"role"`
	Scopes []string            `json:"scopes"`
	Grants map[string][]string `json:"grants"`
}

// RulesCommand prints the grants of every role, or of opts.Role only.
func (c *RulesCLI) RulesCommand(opts RulesOptions) int {
	opts.Stdout, opts.Stderr = defaultWriters(opts.Stdout, opts.Stderr)
	roles := access.Roles()
	if strings.TrimSpace(opts.Role) != "" {
		role, err := access.ParseRole(opts.Role)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "rules: %v\n", err)
			return 1
		}
		roles = []access.Role{role}
	}

	summaries := make([]RoleSummary, 0, len(roles))
	for _, role := range roles {
		summaries = append(summaries, c.summarize(role))
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summaries); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "rules: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	renderRulesHuman(opts.Stdout, summaries)
	return 0
}

// CheckOptions defines flags for the check command.
type CheckOptions struct {
	Role        string
	PrincipalID string
	Kind        string
	Action      string
	OwnerID     string
	Stdout      io.Writer
	Stderr      io.Writer
}

// CheckCommand evaluates one decision. It exits 0 on allow and 10 on deny.
func (c *RulesCLI) CheckCommand(opts CheckOptions) int {
	opts.Stdout, opts.Stderr = defaultWriters(opts.Stdout, opts.Stderr)
	principal := access.Anonymous()
	if strings.TrimSpace(opts.Role) != "" {
		role, err := access.ParseRole(opts.Role)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "check: %v\n", err)
			return 1
		}
		principal = access.Principal{ID: opts.PrincipalID, Role: role}
	}
	action, err := access.ParseAction(opts.Action)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "check: %v\n", err)
		return 1
	}
	kind := access.ResourceKind(strings.TrimSpace(opts.Kind))
	if err := c.policy.Decide(principal, kind, action, opts.OwnerID); err != nil {
		_, _ = fmt.Fprintf(opts.Stdout, "deny %s %s: %v\n", principal.Role, access.Permission(kind, action), err)
		return 10
	}
	_, _ = fmt.Fprintf(opts.Stdout, "allow %s %s\n", principal.Role, access.Permission(kind, action))
	return 0
}

func (c *RulesCLI) summarize(role access.Role) RoleSummary {
	p := access.Principal{Role: role}
	grants := make(map[string][]string)
	for _, kind := range access.Kinds() {
		if names := c.policy.Capabilities(p, kind).Names(); len(names) > 0 {
			grants[string(kind)] = names
		}
	}
	return RoleSummary{Role: role, Scopes: c.policy.Scopes(p), Grants: grants}
}

func renderRulesHuman(out io.Writer, summaries []RoleSummary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROLE\tKIND\tACTIONS")
	for _, summary := range summaries {
		for _, kind := range access.Kinds() {
			actions, ok := summary.Grants[string(kind)]
			if !ok {
				actions = []string{"-"}
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", summary.Role, kind, strings.Join(actions, ","))
		}
	}
	_ = tw.Flush()
}

func defaultWriters(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
