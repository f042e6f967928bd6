package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const homeRoot = "C:"

var homeDirs = []string{"DOCUMENTS", "GAMES", "SYSTEM"}

var homeFiles = map[string]map[string]string{
	"DOCUMENTS": {
		"todo.txt": "1. Clean up old files\n2. Update security software\n3. Check that weird network glitch",
		"work.txt": "Just normal boring work stuff...\nDeadlines...\nMeetings...",
		"SECRETS.txt": `/////////////////////////////////////////////////
FOUND THIS WHILE DIGGING THROUGH OLD ARCHIVES
SOMETHING'S NOT RIGHT WITH THIS SERVER

IP: 192.168.13.666

STRANGE LOGS ABOUT SHADOWS AND VOID
MOST FILES ENCRYPTED

USE ip_connect TO ACCESS - NO PASSWORD NEEDED
WHOEVER FINDS THIS, BE CAREFUL
/////////////////////////////////////////////////`,
	},
	"GAMES": {
		"snake.exe":  "[ASCII Snake Game - Type 'run snake.exe' to play]",
		"tetris.exe": "[Coming soon...]",
	},
	"SYSTEM": {
		"config.sys":   "[SYSTEM FILE]",
		"autoexec.bat": "[SYSTEM FILE]",
	},
}

const homeHelp = `Available commands:
dir      - List directory contents
cd       - Change directory
type     - Display file contents
run      - Run a program (e.g., 'run snake.exe')
cls      - Clear screen
help     - Show this help message
ip_connect <ip> - Connect to remote server
exit     - Exit terminal`

// Home is the DOS-style shell of the local machine
type Home struct {
	env *Env
	cwd string
	log *logrus.Entry
}

// NewHome starts at C:
func NewHome(env *Env) *Home {
	env.defaults()
	return &Home{
		env: env,
		cwd: homeRoot,
		log: env.Log.WithField("component", "shell"),
	}
}

// Cwd returns the current directory, e.g. C:\GAMES
func (h *Home) Cwd() string {
	return h.cwd
}

func (h *Home) folder() string {
	if h.cwd == homeRoot {
		return ""
	}
	return strings.TrimPrefix(h.cwd, homeRoot+`\`)
}

// Run reads commands until exit, end of input or ctx cancellation
// Cancellation is returned as ctx.Err() so the caller can run the shutdown sequence
func (h *Home) Run(ctx context.Context, in *LineReader) error {
	for {
		h.env.prompt(h.cwd + "> ")
		line, err := in.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				h.env.println("")
				return nil
			}
			return err
		}

		if done := h.Execute(ctx, ParseHome(line), in); done {
			return ctx.Err()
		}
	}
}

// Execute runs one command and reports whether the shell should stop
func (h *Home) Execute(ctx context.Context, cmd Command, in *LineReader) bool {
	if cmd.Kind != KindEmpty {
		h.log.WithFields(logrus.Fields{"cmd": cmd.Name, "args": cmd.Args}).Debug("home command")
	}

	switch cmd.Kind {
	case KindEmpty:
	case KindDir:
		h.env.println(h.dir())
	case KindChdir:
		if out := h.chdir(cmd.Args); out != "" {
			h.env.println(out)
		}
	case KindType:
		h.env.println(h.typeFile(cmd.Args))
	case KindRun:
		h.env.println(h.run(ctx, cmd.Args))
	case KindCls:
		h.env.FX.Clear()
	case KindHelp:
		h.env.println(homeHelp)
	case KindConnect:
		h.connect(ctx, cmd.Args, in)
	case KindExit:
		h.env.FX.TypeText("\nTerminating session... Goodbye!")
		return true
	default:
		h.env.println("Bad command or file name: " + cmd.Name)
	}
	return ctx.Err() != nil
}

func (h *Home) dir() string {
	out := []string{
		" Volume in drive C is HOME_DISK",
		" Directory of " + h.cwd,
		"",
	}

	files := 0
	if folder := h.folder(); folder == "" {
		for _, d := range homeDirs {
			out = append(out, "<DIR>          "+d)
		}
	} else {
		names := make([]string, 0, len(homeFiles[folder]))
		for name := range homeFiles[folder] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, "         "+name)
		}
		files = len(names)
	}

	out = append(out,
		"",
		fmt.Sprintf("     %d File(s)", files),
		"     0 bytes free",
	)
	return strings.Join(out, "\n")
}

func (h *Home) chdir(args []string) string {
	if len(args) == 0 {
		h.cwd = homeRoot
		return ""
	}

	target := strings.ToUpper(args[0])
	switch target {
	case "..", `\`, "/":
		h.cwd = homeRoot
		return ""
	}
	for _, d := range homeDirs {
		if target == d {
			h.cwd = homeRoot + `\` + d
			return ""
		}
	}
	return "Invalid directory " + args[0]
}

func (h *Home) typeFile(args []string) string {
	if len(args) == 0 {
		return "Missing filename"
	}
	name := args[0]
	for f, content := range homeFiles[h.folder()] {
		if strings.EqualFold(f, name) {
			return content
		}
	}
	return "File not found - " + name
}

func (h *Home) run(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Missing program name"
	}
	if h.folder() != "GAMES" {
		return `Can only run programs from C:\GAMES`
	}

	program := strings.ToLower(args[0])
	switch program {
	case "snake.exe":
		if h.env.Game == nil {
			return "Cannot run " + program
		}
		res, err := h.env.Game(ctx)
		if err != nil {
			h.log.WithError(err).Warn("game failed to start")
			return "Error running game: " + err.Error()
		}
		h.log.WithFields(logrus.Fields{
			"session": res.Session,
			"score":   res.Score,
			"reason":  res.Reason,
		}).Info("game finished")
		h.env.FX.Clear()
		return fmt.Sprintf("Game session ended (score %d)", res.Score)
	case "tetris.exe":
		return "Tetris coming soon..."
	}
	return "Cannot run " + program
}

func (h *Home) connect(ctx context.Context, args []string, in *LineReader) {
	if len(args) != 1 {
		h.env.println("Syntax error. Usage: ip_connect <ip>")
		return
	}
	ip := args[0]
	if ip != ServerIP {
		h.env.println("Connection failed: Could not reach " + ip)
		return
	}

	h.log.WithField("ip", ip).Info("connecting to remote server")
	fx := h.env.FX
	fx.TypeText(fmt.Sprintf("\n\n[+] Attempting connection to %s...", ip))
	h.env.Noise.PlayStatic(2 * time.Second)
	fx.ProgressBar(time.Second, "Establishing connection")
	fx.Matrix(time.Second)

	remote, err := NewRemote(h.env)
	if err != nil {
		h.log.WithError(err).Error("remote server setup failed")
		h.env.println("Connection failed: " + err.Error())
		return
	}
	if err := remote.Run(ctx, in); err != nil && !errors.Is(err, io.EOF) {
		h.log.WithError(err).Debug("remote session ended")
	}
}
