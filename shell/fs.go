package shell

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/lixenwraith/voidterm/vault"
)

// Node is one file on the remote server
// Encrypted files hold ciphertext in Content until decrypted
type Node struct {
	Name      string
	Content   string
	Encrypted bool
	Hidden    bool
	Perm      string
}

// FS is the remote server's in-memory tree keyed by absolute directory path
type FS struct {
	dirs map[string]map[string]*Node
}

func newFS() *FS {
	return &FS{dirs: map[string]map[string]*Node{"/": {}}}
}

// Mkdir creates dir and its parents
func (fs *FS) Mkdir(dir string) {
	dir = path.Clean("/" + dir)
	for d := dir; ; d = path.Dir(d) {
		if _, ok := fs.dirs[d]; !ok {
			fs.dirs[d] = map[string]*Node{}
		}
		if d == "/" {
			return
		}
	}
}

// Add stores a file, creating its directory; dot-files are hidden
func (fs *FS) Add(file, content string, encrypted bool) *Node {
	file = path.Clean("/" + file)
	dir, name := path.Split(file)
	dir = path.Clean(dir)
	fs.Mkdir(dir)

	n := &Node{
		Name:      name,
		Content:   content,
		Encrypted: encrypted,
		Hidden:    strings.HasPrefix(name, "."),
		Perm:      "rw-r--r--",
	}
	fs.dirs[dir][name] = n
	return n
}

// IsDir reports whether p is a directory
func (fs *FS) IsDir(p string) bool {
	_, ok := fs.dirs[p]
	return ok
}

// Lookup finds the file at absolute path p
func (fs *FS) Lookup(p string) (*Node, bool) {
	dir, name := path.Split(p)
	files, ok := fs.dirs[path.Clean(dir)]
	if !ok {
		return nil, false
	}
	n, ok := files[name]
	return n, ok
}

// Subdirs returns the immediate child directory names of dir, sorted
func (fs *FS) Subdirs(dir string) []string {
	var out []string
	for d := range fs.dirs {
		if d != dir && path.Dir(d) == dir {
			out = append(out, path.Base(d))
		}
	}
	sort.Strings(out)
	return out
}

// Files returns the files of dir sorted by name
func (fs *FS) Files(dir string) []*Node {
	files := fs.dirs[dir]
	out := make([]*Node, 0, len(files))
	for _, n := range files {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// normalize resolves p against cwd, folding . and .. without escaping /
func normalize(cwd, p string) string {
	if !strings.HasPrefix(p, "/") {
		p = strings.TrimRight(cwd, "/") + "/" + p
	}
	return path.Clean(p)
}

type sealedFile struct {
	path       string
	content    string
	passphrase string
}

// Passphrases for the sealed files; hints are planted in /home
const (
	passFacility = "voidborn"
	passSector   = "sector7"
	passOmega    = "omega"
)

var serverDirs = []string{
	"/home/admin",
	"/home/researcher",
	"/home/security",
	"/var/log",
	"/etc",
	"/secret",
	"/research/logs",
	"/research/classified",
	"/devices/terminals",
	"/blackbox",
}

var plainFiles = map[string]string{
	"/etc/passwd": `root:x:0:0:root:/root:/bin/bash
admin:x:1000:1000:System Administrator:/home/admin:/bin/bash
researcher:x:1001:1001:Lead Researcher:/home/researcher:/bin/bash
security:x:1002:1002:Security Officer:/home/security:/bin/bash
blackbox:x:1003:1003:BlackBox System:/blackbox:/sbin/nologin`,

	"/research/logs/experiment_001.log": `
VOIDBORN Research Log - Experiment 001
Date: 2024-12-03

Initial observations of the shadow anomaly detected in Sector 7.
The entity appears to be composed of non-baryonic matter, completely absorbing all incident light.
Team members report intense feelings of unease and disorientation when within 50 meters of the anomaly.

UPDATE: The shadow's behavior has become increasingly erratic.
We've lost contact with Dr. Chen's team after they attempted to collect samples.

WARNING: DO NOT ATTEMPT DIRECT CONTACT WITH THE ENTITY.`,

	"/var/log/auth.log": `
[WARNING] Multiple failed attempts to access /blackbox
[CRITICAL] Containment field fluctuation detected
[ALERT] Unauthorized access attempt to research/classified
[WARNING] Multiple login failures for user: admin
[CRITICAL] Security breach detected in Sector 7`,

	"/blackbox/README.txt": `
BLACK BOX SYSTEM - CLASSIFIED
Access Level: OMEGA

This system contains critical void containment data.
DO NOT ATTEMPT TO DECRYPT WITHOUT AUTHORIZATION.`,

	"/home/admin/notes.txt": `Rotated the research archive key again.
It's the project name now. Lowercase. Nobody will guess that, right?`,

	"/home/researcher/diary.txt": `Sarah keeps her classified logs under the name of the place it started.
Lowercase, no spaces. She says it helps her remember what we owe them.`,

	"/home/security/incident.txt": `Incident 0xA7: someone tried to open the black box again.
Reminder: the box only answers to its access level. Lowercase.`,
}

var sealedFiles = []sealedFile{
	{"/etc/shadow", `root:$6$xyz...encrypted...:19432:0:99999:7:::
admin:$6$saltstring$encrypted_hash:19432:0:99999:7:::
researcher:$6$another$different_hash:19432:0:99999:7:::`, passFacility},

	{"/research/logs/experiment_002.log", `
VOIDBORN Research Log - Experiment 002
Date: 2024-12-15

The void creatures are getting stronger. They're no longer confined to Sector 7.
Security footage shows them phasing through solid matter.
The containment protocols are failing.

Dr. Peterson's latest theory suggests they're not just shadows - they're tears in reality itself.
The void is bleeding through.

STATUS: CONTAINMENT BREACH IMMINENT`, passFacility},

	{"/research/classified/void_incursion.log", `
CLASSIFIED - LEVEL OMEGA
Date: 2024-12-20

They're not just studying us. They're hunting us.
The shadows have intelligence - maybe even consciousness.
Each incursion grows larger, and the entities are becoming more organized.

I've seen what lies beyond the tears they create.
There's a vast darkness out there, watching, waiting.
If anyone finds this log, SHUT DOWN THE FACILITY.
The barrier between our world and theirs is weakening.

The void hungers.

- Last transmission from Dr. Sarah Chen`, passSector},

	{"/research/classified/.final_warning", `
T̷h̷e̷y̷'̷r̷e̷ ̷h̷e̷r̷e̷.̷ ̷T̷h̷e̷y̷'̷r̷e̷ ̷i̷n̷s̷i̷d̷e̷ ̷t̷h̷e̷ ̷w̷a̷l̷l̷s̷.̷
D̷o̷n̷'̷t̷ ̷l̷o̷o̷k̷ ̷a̷t̷ ̷t̷h̷e̷ ̷s̷h̷a̷d̷o̷w̷s̷.̷
T̷h̷e̷y̷ ̷l̷o̷o̷k̷ ̷b̷a̷c̷k̷.̷`, passSector},

	{"/blackbox/data.bin", `
01010110 01001111 01001001 01000100 00100000
01000011 01001111 01001101 01001001 01001110
01000111 00100000 01010100 01001000 01010010
01001111 01010101 01000111 01001000`, passOmega},
}

// buildServerFS lays out the remote tree and seals the classified files
func buildServerFS() (*FS, error) {
	fs := newFS()
	for _, d := range serverDirs {
		fs.Mkdir(d)
	}
	for p, content := range plainFiles {
		fs.Add(p, content, false)
	}

	ciphers := map[string]*vault.Cipher{}
	for _, f := range sealedFiles {
		c, ok := ciphers[f.passphrase]
		if !ok {
			c = vault.NewCipher(f.passphrase, vault.DefaultSalt)
			ciphers[f.passphrase] = c
		}
		token, err := c.Seal(f.content)
		if err != nil {
			return nil, fmt.Errorf("seal %s: %w", f.path, err)
		}
		fs.Add(f.path, token, true)
	}
	return fs, nil
}
