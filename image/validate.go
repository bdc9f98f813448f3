package image

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"warehousenow/health"
)

// Expectations é o contrato que a imagem precisa cumprir.
type Expectations struct {
	Port   int
	Policy health.Policy
}

func DefaultExpectations() Expectations {
	return Expectations{Port: 8080, Policy: health.DefaultPolicy()}
}

// Violation é uma regra do contrato que o Dockerfile não cumpre.
type Violation struct {
	Rule   string
	Detail string
}

func (v Violation) Error() string { return v.Rule + ": " + v.Detail }

// Validate devolve todas as violações encontradas (vazio = ok).
func (c Contract) Validate(exp Expectations) []Violation {
	var out []Violation
	add := func(rule, format string, a ...any) {
		out = append(out, Violation{Rule: rule, Detail: fmt.Sprintf(format, a...)})
	}

	want := strconv.Itoa(exp.Port) + "/tcp"
	if !slices.Contains(c.ExposedPorts, want) {
		add("expose", "port %s not exposed (found %v)", want, c.ExposedPorts)
	}

	if IsRootUser(c.User) {
		user := c.User
		if user == "" {
			user = "<unset>"
		}
		add("user", "final stage runs as %s; a non-root account is required", user)
	}

	switch hc := c.Healthcheck; {
	case hc == nil:
		add("healthcheck", "missing HEALTHCHECK in final stage")
	case hc.Disabled:
		add("healthcheck", "HEALTHCHECK NONE disables the probe")
	default:
		p := exp.Policy.WithDefaults()
		if hc.Interval != p.Interval {
			add("healthcheck", "interval %s, want %s", hc.Interval, p.Interval)
		}
		if hc.Timeout != p.Timeout {
			add("healthcheck", "timeout %s, want %s", hc.Timeout, p.Timeout)
		}
		if hc.StartPeriod != p.StartPeriod {
			add("healthcheck", "start period %s, want %s", hc.StartPeriod, p.StartPeriod)
		}
		if hc.Retries != p.Retries {
			add("healthcheck", "retries %d, want %d", hc.Retries, p.Retries)
		}
		if len(hc.Command) == 0 {
			add("healthcheck", "empty probe command")
		}
	}

	if len(c.Entrypoint) == 0 && len(c.Cmd) == 0 {
		add("entrypoint", "no ENTRYPOINT or CMD in final stage")
	}

	if !c.ManifestBeforeSource {
		add("layers", "dependency manifest is not installed before the source copy; rebuilds will not reuse the cached layer")
	}
	return out
}

// IsRootUser informa se o valor de USER resolve para o superusuário.
// Usuário vazio conta como root (padrão do runtime).
func IsRootUser(user string) bool {
	name, _, _ := strings.Cut(strings.TrimSpace(user), ":")
	return name == "" || name == "root" || name == "0"
}
