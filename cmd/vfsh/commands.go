package main

import (
	"fmt"
	"strings"

	"github.com/coreblock/vfsimg/fsys"
	"github.com/coreblock/vfsimg/image"
	"github.com/coreblock/vfsimg/internal/fsck"
)

// commandFunc runs one shell command against sh's filesystem, given the
// tokens after the command name.
type commandFunc func(sh *shell, args []string) error

var commands = map[string]commandFunc{
	"cd":     cmdCd,
	"ls":     cmdLs,
	"mkdir":  cmdMkdir,
	"rmdir":  cmdRmdir,
	"touch":  cmdTouch,
	"rm":     cmdRm,
	"mv":     cmdMv,
	"mvdir":  cmdMvdir,
	"cat":    cmdCat,
	"echo":   cmdEcho,
	"cp":     cmdCp,
	"pwd":    cmdPwd,
	"fsck":   cmdFsck,
	"help":   cmdHelp,
}

func cmdCd(sh *shell, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	if len(args) > 1 {
		return fsys.ErrBadArguments
	}
	return sh.fs.Chdir(path)
}

func cmdLs(sh *shell, args []string) error {
	if len(args) != 0 {
		return fsys.ErrBadArguments
	}
	entries, err := sh.fs.Ls()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintln(sh.out, sh.formatEntry(e))
	}
	return nil
}

func (sh *shell) formatEntry(e fsys.Entry) string {
	if !sh.colour {
		return e.Name
	}
	if e.Type == image.TypeDir {
		return "\x1b[34m" + e.Name + "\x1b[0m"
	}
	return e.Name
}

func cmdMkdir(sh *shell, args []string) error {
	if len(args) != 1 {
		return fsys.ErrBadArguments
	}
	return sh.fs.Mkdir(args[0])
}

func cmdRmdir(sh *shell, args []string) error {
	if len(args) != 1 {
		return fsys.ErrBadArguments
	}
	return sh.fs.Rmdir(args[0])
}

func cmdTouch(sh *shell, args []string) error {
	if len(args) != 1 {
		return fsys.ErrBadArguments
	}
	return sh.fs.Touch(args[0])
}

func cmdRm(sh *shell, args []string) error {
	if len(args) != 1 {
		return fsys.ErrBadArguments
	}
	return sh.fs.Rm(args[0])
}

func cmdMv(sh *shell, args []string) error {
	if len(args) != 2 {
		return fsys.ErrBadArguments
	}
	return sh.fs.Mv(args[0], args[1])
}

func cmdMvdir(sh *shell, args []string) error {
	if len(args) != 2 {
		return fsys.ErrBadArguments
	}
	return sh.fs.Mvdir(args[0], args[1])
}

func cmdCat(sh *shell, args []string) error {
	if len(args) != 1 {
		return fsys.ErrBadArguments
	}
	content, err := sh.fs.Cat(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, content)
	return nil
}

// cmdEcho replaces a file's content. When the second-to-last token is ">>",
// the tokens before it are the content and the last one is the path:
// "echo \"hello world\" >> f" writes "hello world" to f. Otherwise it takes a
// path and the remaining tokens, joined with single spaces, as the content:
// "echo f hello world" writes "hello world". Quote a single token
// ("echo f \"  extra  spaces  \"") to preserve whitespace the tokenizer
// would otherwise collapse.
func cmdEcho(sh *shell, args []string) error {
	if n := len(args); n >= 2 && args[n-2] == ">>" {
		return sh.fs.Echo(args[n-1], strings.Join(args[:n-2], " "))
	}
	if len(args) < 1 {
		return fsys.ErrBadArguments
	}
	content := strings.Join(args[1:], " ")
	return sh.fs.Echo(args[0], content)
}

func cmdCp(sh *shell, args []string) error {
	if len(args) != 2 {
		return fsys.ErrBadArguments
	}
	return sh.fs.Cp(args[0], args[1])
}

func cmdPwd(sh *shell, args []string) error {
	if len(args) != 0 {
		return fsys.ErrBadArguments
	}
	path, err := sh.fs.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, path)
	return nil
}

func cmdFsck(sh *shell, args []string) error {
	if len(args) != 0 {
		return fsys.ErrBadArguments
	}
	report, err := fsck.Check(sh.fs)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "visited: %d\n", report.VisitedBlocks)
	if report.Clean() {
		fmt.Fprintln(sh.out, "clean")
		return nil
	}
	if len(report.Orphans) > 0 {
		fmt.Fprintf(sh.out, "orphan blocks: %v\n", report.Orphans)
	}
	if len(report.Duplicates) > 0 {
		fmt.Fprintf(sh.out, "duplicate references: %v\n", report.Duplicates)
	}
	if len(report.UnsortedDirectories) > 0 {
		fmt.Fprintf(sh.out, "unsorted directory tables at blocks: %v\n", report.UnsortedDirectories)
	}
	return nil
}

const helpText = `commands:
  cd [path]            change current directory (no argument: no-op)
  ls                   list the current directory
  mkdir path           create a directory
  rmdir name           remove an empty directory from the current directory
  touch path           create an empty file
  rm path              remove a file
  mv path new-name     rename a file or directory in place
  mvdir origin dest    move a file or directory under dest
  cat path             print a file's content
  echo "text" >> path  replace a file's content
  echo path text...    replace a file's content
  cp src dest          copy a file
  pwd                  print the current directory's path
  fsck                 check the image for orphaned or duplicate blocks
  exit                 leave the shell
`

func cmdHelp(sh *shell, args []string) error {
	fmt.Fprint(sh.out, helpText)
	return nil
}
