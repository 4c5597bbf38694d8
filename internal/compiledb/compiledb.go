// Package compiledb loads a Clang JSON compilation database and
// exposes its compile commands as plain Go values, isolating the rest
// of the pipeline from the go-clang binding's C-allocated types.
package compiledb

import (
	"github.com/go-clang/v3.9/clang"

	"github.com/summaryInfo/lxgraph/internal/errorsx"
)

// Command is one entry of a compilation database: the directory a
// compiler invocation ran from, the source file it compiled, and its
// argv — the three fields spec.md §6 requires ("commands expose
// directory, filename, and argv").
type Command struct {
	Directory string
	Filename  string
	Argv      []string
}

// Load opens the compilation database in dir (normally a build
// directory containing compile_commands.json) and returns every
// compile command it holds. A missing or unparseable database is
// fatal, per spec.md §7: "missing compilation database" is listed
// among the Fatal dispositions.
func Load(dir string) ([]Command, error) {
	db, errCode := clang.NewCompilationDatabaseFromDirectory(dir)
	if errCode != clang.CompilationDatabaseError(clang.CompilationDatabase_NoError) {
		return nil, errorsx.Fatal("compiledb.Load", nil,
			"no compilation database found in %q", dir)
	}
	defer db.Dispose()

	ccs := db.AllCompileCommands()
	defer ccs.Dispose()

	n := ccs.Size()
	commands := make([]Command, 0, n)
	for i := uint32(0); i < n; i++ {
		cc := ccs.Command(i)
		commands = append(commands, Command{
			Directory: cc.Directory(),
			Filename:  cc.Filename(),
			Argv:      commandArgs(cc),
		})
	}
	return commands, nil
}

func commandArgs(cc clang.CompileCommand) []string {
	n := cc.NumArgs()
	args := make([]string, n)
	for i := uint32(0); i < n; i++ {
		args[i] = cc.Arg(i)
	}
	return args
}

// Batches splits commands into groups of at most size, the unit of
// work spec.md §4.4 submits to the worker pool (B=16 by default).
func Batches(commands []Command, size int) [][]Command {
	if size <= 0 {
		size = 1
	}
	var batches [][]Command
	for len(commands) > 0 {
		n := size
		if n > len(commands) {
			n = len(commands)
		}
		batches = append(batches, commands[:n])
		commands = commands[n:]
	}
	return batches
}
