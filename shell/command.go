package shell

import "strings"

// Kind identifies a shell command
type Kind uint8

const (
	KindEmpty Kind = iota
	KindUnknown

	// Home computer
	KindDir
	KindChdir
	KindType
	KindRun
	KindCls
	KindConnect

	// Remote server
	KindList
	KindCat
	KindPwd
	KindClear
	KindLogs
	KindDecrypt
	KindHash

	// Both
	KindHelp
	KindExit
)

// Command is one parsed input line
type Command struct {
	Kind Kind
	Name string // as typed, for error messages
	Args []string
}

var homeCommands = map[string]Kind{
	"dir":        KindDir,
	"cd":         KindChdir,
	"type":       KindType,
	"run":        KindRun,
	"cls":        KindCls,
	"help":       KindHelp,
	"ip_connect": KindConnect,
	"exit":       KindExit,
}

var remoteCommands = map[string]Kind{
	"list":    KindList,
	"cd":      KindChdir,
	"cat":     KindCat,
	"pwd":     KindPwd,
	"clear":   KindClear,
	"help":    KindHelp,
	"logs":    KindLogs,
	"decrypt": KindDecrypt,
	"hash":    KindHash,
	"exit":    KindExit,
}

// parse splits a line on whitespace and resolves the verb case-insensitively
func parse(line string, table map[string]Kind) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: KindEmpty}
	}

	cmd := Command{Kind: KindUnknown, Name: fields[0], Args: fields[1:]}
	if k, ok := table[strings.ToLower(fields[0])]; ok {
		cmd.Kind = k
	}
	return cmd
}

// ParseHome parses a line typed at the C:\ prompt
func ParseHome(line string) Command {
	return parse(line, homeCommands)
}

// ParseRemote parses a line typed on the remote server
func ParseRemote(line string) Command {
	return parse(line, remoteCommands)
}
