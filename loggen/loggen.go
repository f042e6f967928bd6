// Package loggen fabricates server log lines for the remote shell
package loggen

import (
	"fmt"
	"math/rand"
	"time"
)

// TimeLayout is the timestamp prefix of every line
const TimeLayout = "2006-01-02 15:04:05"

// Kind tags a log line
type Kind uint8

const (
	KindNetwork Kind = iota
	KindFirewall
	KindAuth
	KindSystem
	KindCrypto
	KindExploit
	KindScan
	KindAccess
	KindDatabase
	KindMalware
	kindCount
)

var kindNames = [kindCount]string{
	"NETWORK", "FIREWALL", "AUTH", "SYSTEM", "CRYPTO",
	"EXPLOIT", "SCAN", "ACCESS", "DATABASE", "MALWARE",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "UNKNOWN"
}

var (
	subnets = []string{
		"192.168.1.", "10.0.0.", "172.16.0.", "8.8.8.",
		"1.1.1.", "176.32.98.", "205.251.242.", "52.216.100.",
	}
	usernames = []string{
		"root", "admin", "system", "user", "guest",
		"postgres", "apache", "nginx", "service",
	}
	processes = []string{
		"sshd", "httpd", "nginx", "mysql", "postgresql",
		"mongodb", "redis", "systemd", "cron",
	}
	ciphers = []string{"RSA", "AES", "ECC"}
)

// Generator produces log lines; not safe for concurrent use
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// New returns a generator seeded with seed, 0 seeds from the clock
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// WithClock pins the timestamp source
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Line returns one random log line
func (g *Generator) Line() string {
	return g.LineOf(Kind(g.rng.Intn(int(kindCount))))
}

// LineOf returns a line of the given kind
func (g *Generator) LineOf(k Kind) string {
	var msg string
	switch k {
	case KindNetwork:
		msg = fmt.Sprintf("Connection attempt from %s:%d", g.ip(), g.port())
	case KindFirewall:
		msg = fmt.Sprintf("Blocked suspicious traffic from %s", g.ip())
	case KindAuth:
		msg = fmt.Sprintf("Failed login attempt for user '%s'", g.pick(usernames))
	case KindSystem:
		msg = fmt.Sprintf("Process '%s' spawned with PID %d", g.pick(processes), g.between(1000, 9999))
	case KindCrypto:
		msg = fmt.Sprintf("Generating new %s key pair", g.pick(ciphers))
	case KindExploit:
		msg = fmt.Sprintf("Buffer overflow attempt detected in %s", g.pick(processes))
	case KindScan:
		msg = fmt.Sprintf("Port scan detected from %s", g.ip())
	case KindAccess:
		msg = fmt.Sprintf("Privilege escalation attempt detected for user '%s'", g.pick(usernames))
	case KindDatabase:
		msg = fmt.Sprintf("SQL injection attempt blocked from %s", g.ip())
	case KindMalware:
		msg = fmt.Sprintf("Suspicious file activity detected in /tmp/%d.exe", g.between(1000, 9999))
	default:
		msg = "Unclassified event"
	}
	return fmt.Sprintf("%s [%s] %s", g.now().Format(TimeLayout), k, msg)
}

// Lines returns n lines
func (g *Generator) Lines(n int) []string {
	out := make([]string, 0, max(n, 0))
	for range n {
		out = append(out, g.Line())
	}
	return out
}

func (g *Generator) ip() string {
	return fmt.Sprintf("%s%d", g.pick(subnets), g.between(1, 254))
}

func (g *Generator) port() int {
	return g.between(1024, 65535)
}

func (g *Generator) pick(from []string) string {
	return from[g.rng.Intn(len(from))]
}

// between is inclusive on both ends
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}
