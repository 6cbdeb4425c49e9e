// Command vfsh is an interactive shell over a single vfsimg volume: a
// fixed-size, single-file, single-user educational filesystem image. It is
// the CLI front-end over packages image and fsys; the prompt, tokenizer and
// colour output below aren't part of those packages' public contract.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/coreblock/vfsimg/fsys"
)

func main() {
	userFlag := flag.StringP("user", "u", "system", "effective user recorded on inodes this session creates")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vfsh [-u user] <image-path>")
		os.Exit(2)
	}

	fs, err := fsys.Open(flag.Arg(0), *userFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vfsh: %s\n", err)
		os.Exit(1)
	}

	sh := newShell(fs, os.Stdin, os.Stdout)
	code := sh.run()

	if err := fs.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "vfsh: %s\n", err)
		code = 1
	}
	os.Exit(code)
}
