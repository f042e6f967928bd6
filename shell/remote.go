package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/voidterm/vault"
)

const (
	defaultLogLines = 10
	maxLogLines     = 100
)

const remoteHelp = `Available commands:
list    - List directory contents
cd      - Change directory
cat     - Display file contents
pwd     - Print working directory
clear   - Clear screen
logs    - Tail the live server log (logs [count])
decrypt - Decrypt a file (decrypt <file> <password>)
hash    - Fingerprint text (hash <text>)
help    - Show this help message
exit    - Exit session`

const serverArt = `
        ===================
        |    VOIDBORN    |
        |  ============  |
        |  ||  ||  ||   |
        |  ||  ||  ||   |
        ===================
        `

// Remote is a session on the VOIDBORN server
type Remote struct {
	env     *Env
	fs      *FS
	cwd     string
	session string
	log     *logrus.Entry
}

// NewRemote builds a fresh server tree; every connection starts sealed
func NewRemote(env *Env) (*Remote, error) {
	env.defaults()
	fs, err := buildServerFS()
	if err != nil {
		return nil, err
	}
	session := uuid.NewString()
	return &Remote{
		env:     env,
		fs:      fs,
		cwd:     "/",
		session: session,
		log:     env.Log.WithFields(logrus.Fields{"component": "shell", "remote_session": session}),
	}, nil
}

// Cwd returns the current absolute path
func (r *Remote) Cwd() string {
	return r.cwd
}

// Banner plays the connection sequence
func (r *Remote) Banner() {
	fx := r.env.FX
	fx.Clear()
	fx.TypeText(fx.Paint(sgrRed, "=== CONNECTING TO REMOTE SERVER ==="))
	fx.ProgressBar(time.Second, "Establishing secure connection")
	fx.TypeText(serverArt)
	fx.TypeText("Session " + r.session)
	fx.TypeText(fx.Paint(sgrGreen, "Connection established. Type 'help' for available commands.") + "\n")
}

// Run serves commands until exit; the error is ctx.Err() or the input's read error
func (r *Remote) Run(ctx context.Context, in *LineReader) error {
	r.log.Info("remote session opened")
	defer r.log.Info("remote session closed")

	r.Banner()
	for {
		r.env.prompt(r.cwd + "> ")

		line, err := in.ReadLine(ctx)
		if err != nil {
			return err
		}

		cmd := ParseRemote(line)
		if cmd.Kind == KindExit {
			r.env.FX.TypeText("\n[!] Connection terminated")
			return nil
		}
		if out := r.Execute(cmd); out != "" {
			r.env.println(out)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Execute runs one command and returns its output
func (r *Remote) Execute(cmd Command) string {
	if cmd.Kind != KindEmpty {
		r.log.WithFields(logrus.Fields{"cmd": cmd.Name, "args": cmd.Args}).Debug("remote command")
	}

	switch cmd.Kind {
	case KindEmpty:
		return ""
	case KindList:
		return r.list(cmd.Args)
	case KindChdir:
		return r.chdir(cmd.Args)
	case KindCat:
		return r.cat(cmd.Args)
	case KindPwd:
		return r.cwd
	case KindClear:
		r.env.FX.Clear()
		return ""
	case KindHelp:
		return remoteHelp
	case KindLogs:
		return r.logs(cmd.Args)
	case KindDecrypt:
		return r.decrypt(cmd.Args)
	case KindHash:
		return r.hash(cmd.Args)
	case KindExit:
		return ""
	default:
		return "Unknown command: " + strings.ToLower(cmd.Name)
	}
}

func (r *Remote) list(args []string) string {
	p := r.cwd
	if len(args) > 0 {
		p = normalize(r.cwd, args[0])
	}
	if !r.fs.IsDir(p) {
		return fmt.Sprintf("list: cannot access '%s': No such file or directory", p)
	}

	var out []string
	for _, d := range r.fs.Subdirs(p) {
		out = append(out, "<DIR>    "+d)
	}
	for _, n := range r.fs.Files(p) {
		if n.Hidden {
			continue
		}
		marker := ""
		if n.Encrypted {
			marker = "[ENCRYPTED] "
		}
		out = append(out, "<FILE>   "+marker+n.Name)
	}

	if len(out) == 0 {
		return "Directory is empty"
	}
	return fmt.Sprintf("\nDirectory of %s\n\n%s\n\n%d item(s)\n", p, strings.Join(out, "\n"), len(out))
}

func (r *Remote) chdir(args []string) string {
	if len(args) == 0 {
		r.cwd = "/"
		return ""
	}
	p := normalize(r.cwd, args[0])
	if !r.fs.IsDir(p) {
		return fmt.Sprintf("cd: %s: No such file or directory", args[0])
	}
	r.cwd = p
	return ""
}

func (r *Remote) cat(args []string) string {
	if len(args) == 0 {
		return "Usage: cat <file>"
	}
	n, ok := r.fs.Lookup(normalize(r.cwd, args[0]))
	if !ok {
		return fmt.Sprintf("cat: %s: No such file or directory", args[0])
	}
	if n.Encrypted {
		return "Error: File is encrypted. Access denied."
	}
	return n.Content
}

func (r *Remote) logs(args []string) string {
	count := defaultLogLines
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return "Usage: logs [count]"
		}
		count = min(n, maxLogLines)
	}
	return strings.Join(r.env.Logs.Lines(count), "\n")
}

func (r *Remote) decrypt(args []string) string {
	if len(args) != 2 {
		return "Usage: decrypt <file> <password>"
	}
	p := normalize(r.cwd, args[0])
	n, ok := r.fs.Lookup(p)
	if !ok {
		return fmt.Sprintf("decrypt: %s: No such file or directory", args[0])
	}
	if !n.Encrypted {
		return fmt.Sprintf("decrypt: %s: File is not encrypted", args[0])
	}

	r.env.FX.ProgressBar(time.Second, "Decrypting")
	plain, err := vault.NewCipher(args[1], vault.DefaultSalt).Open(n.Content)
	if err != nil {
		r.log.WithField("file", p).WithError(err).Info("decrypt rejected")
		if errors.Is(err, vault.ErrDecrypt) {
			return r.env.FX.Paint(sgrRed, "[Decryption failed - Invalid data or key]")
		}
		return r.env.FX.Paint(sgrRed, "[Decryption failed - corrupted file]")
	}

	n.Content, n.Encrypted = plain, false
	r.log.WithField("file", p).Info("file decrypted")
	return plain
}

func (r *Remote) hash(args []string) string {
	if len(args) == 0 {
		return "Usage: hash <text>"
	}
	sums := vault.MultiHash(strings.Join(args, " "))
	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = fmt.Sprintf("%-7s %s", name, sums[name])
	}
	return strings.Join(out, "\n")
}
