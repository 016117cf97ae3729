package hub

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mc-hub/database"
)

const serverTokenBytes = 32

// Console is the operator command loop: `register <serverID>` issues a
// new server identity with a random token, `exit` stops the loop.
type Console struct {
	store database.Store
	in    io.Reader
	out   io.Writer
}

// NewConsole NewConsole
func NewConsole(store database.Store, in io.Reader, out io.Writer) *Console {
	return &Console{store: store, in: in, out: out}
}

// Run reads commands until exit or EOF.
func (c *Console) Run() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		args := strings.Split(line, " ")
		cmd := strings.ToLower(args[0])
		args = args[1:]

		switch cmd {
		case "register":
			c.register(args)
		case "exit":
			return
		default:
			fmt.Fprintln(c.out, "Invalid command!")
		}
	}
}

func (c *Console) register(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "register <serverID>")
		return
	}
	serverID := args[0]

	token, err := newServerToken()
	if err != nil {
		fmt.Fprintf(c.out, "token generation failed: %v\n", err)
		return
	}
	err = c.store.RegisterServer(&database.Server{ServerID: serverID, Token: token})
	if errors.Is(err, database.ErrDuplicateServer) {
		fmt.Fprintln(c.out, "That server is already registered!")
		return
	}
	if err != nil {
		fmt.Fprintf(c.out, "registration failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "The token for server '%s' is '%s'\n", serverID, token)
}

func newServerToken() (string, error) {
	buf := make([]byte, serverTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
