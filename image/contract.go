package image

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

// Healthcheck reflete a instrução HEALTHCHECK do estágio final.
type Healthcheck struct {
	Interval    time.Duration
	Timeout     time.Duration
	StartPeriod time.Duration
	Retries     int
	Command     []string
	Disabled    bool
}

// Contract é o que a imagem final declara em tempo de execução.
type Contract struct {
	BaseImage    string
	ExposedPorts []string // normalizadas como "8080/tcp"
	User         string
	Healthcheck  *Healthcheck
	Entrypoint   []string
	Cmd          []string

	// ManifestBeforeSource indica que algum estágio copia go.mod/go.sum e
	// baixa dependências antes de copiar a árvore de código.
	ManifestBeforeSource bool
}

// ParseFile abre e lê um Dockerfile do disco.
func ParseFile(path string) (Contract, error) {
	f, err := os.Open(path)
	if err != nil {
		return Contract{}, fmt.Errorf("open dockerfile: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

func Parse(r io.Reader) (Contract, error) {
	res, err := parser.Parse(r)
	if err != nil {
		return Contract{}, fmt.Errorf("parse dockerfile: %w", err)
	}

	var (
		c        Contract
		stage    []*parser.Node
		stages   [][]*parser.Node
		sawStage bool
	)
	for _, n := range res.AST.Children {
		if instruction(n) == "from" {
			if sawStage {
				stages = append(stages, stage)
			}
			stage = []*parser.Node{n}
			sawStage = true
			continue
		}
		stage = append(stage, n)
	}
	if !sawStage {
		return Contract{}, fmt.Errorf("parse dockerfile: no FROM instruction")
	}
	stages = append(stages, stage)

	for _, st := range stages {
		if manifestBeforeSource(st) {
			c.ManifestBeforeSource = true
		}
	}

	final := stages[len(stages)-1]
	c.BaseImage = firstArg(final[0])
	for _, n := range final[1:] {
		switch instruction(n) {
		case "expose":
			for _, p := range args(n) {
				c.ExposedPorts = append(c.ExposedPorts, normalizePort(p))
			}
		case "user":
			c.User = firstArg(n)
		case "healthcheck":
			hc, err := parseHealthcheck(n)
			if err != nil {
				return Contract{}, err
			}
			c.Healthcheck = hc
		case "entrypoint":
			c.Entrypoint = args(n)
		case "cmd":
			c.Cmd = args(n)
		}
	}
	return c, nil
}

func parseHealthcheck(n *parser.Node) (*Healthcheck, error) {
	// padrões do Docker quando a flag é omitida
	hc := &Healthcheck{
		Interval: 30 * time.Second,
		Timeout:  30 * time.Second,
		Retries:  3,
	}

	if n.Next == nil {
		return nil, fmt.Errorf("line %d: HEALTHCHECK without CMD or NONE", n.StartLine)
	}
	if strings.EqualFold(n.Next.Value, "none") {
		hc.Disabled = true
		return hc, nil
	}

	for _, flag := range n.Flags {
		name, value, ok := strings.Cut(strings.TrimPrefix(flag, "--"), "=")
		if !ok {
			return nil, fmt.Errorf("line %d: malformed HEALTHCHECK flag %q", n.StartLine, flag)
		}
		var err error
		switch name {
		case "interval":
			hc.Interval, err = time.ParseDuration(value)
		case "timeout":
			hc.Timeout, err = time.ParseDuration(value)
		case "start-period":
			hc.StartPeriod, err = time.ParseDuration(value)
		case "retries":
			hc.Retries, err = strconv.Atoi(value)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: HEALTHCHECK --%s: %w", n.StartLine, name, err)
		}
	}

	for cur := n.Next.Next; cur != nil; cur = cur.Next {
		hc.Command = append(hc.Command, cur.Value)
	}
	return hc, nil
}

// manifestBeforeSource procura, dentro de um estágio, COPY do go.mod seguido
// de RUN go mod download, ambos antes do primeiro COPY da árvore inteira.
func manifestBeforeSource(stage []*parser.Node) bool {
	copiedManifest := false
	downloaded := false
	for _, n := range stage {
		switch instruction(n) {
		case "copy":
			a := args(n)
			if len(a) < 2 {
				continue
			}
			srcs := a[:len(a)-1]
			for _, s := range srcs {
				if s == "." || s == "./" {
					return copiedManifest && downloaded
				}
				if s == "go.mod" {
					copiedManifest = true
				}
			}
		case "run":
			if copiedManifest && strings.Contains(strings.Join(args(n), " "), "go mod download") {
				downloaded = true
			}
		}
	}
	return false
}

// instruction devolve o nome da instrução em minúsculas; o parser preserva
// a caixa original ("FROM", "from").
func instruction(n *parser.Node) string {
	return strings.ToLower(n.Value)
}

func args(n *parser.Node) []string {
	var out []string
	for cur := n.Next; cur != nil; cur = cur.Next {
		out = append(out, cur.Value)
	}
	return out
}

func firstArg(n *parser.Node) string {
	if n.Next == nil {
		return ""
	}
	return n.Next.Value
}

func normalizePort(p string) string {
	if strings.Contains(p, "/") {
		return strings.ToLower(p)
	}
	return p + "/tcp"
}
