package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Session(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	Update(ctx context.Context) error
	Avatar(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Messages(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, session, profile <id>, search <q>, exit"
	helpLoggedIn  = "Available commands: session, profile [id], update, avatar <path>, search <q>, send <user-id> <text>, messages <user-id>, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the genzes CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands and command errors are reported back to the user. The
// loop exits on EOF, when ctx is done, or when the user types "exit" or
// "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("genzes %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "session":
			cmdErr = a.Session(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "profile":
			cmdErr = a.Profile(ctx, args)

		case "update":
			cmdErr = a.Update(ctx)

		case "avatar":
			cmdErr = a.Avatar(ctx, args)

		case "search":
			cmdErr = a.Search(ctx, args)

		case "send":
			cmdErr = a.Send(ctx, args)

		case "messages":
			cmdErr = a.Messages(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
