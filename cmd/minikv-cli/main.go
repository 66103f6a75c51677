// Command minikv-cli is a small interactive client: it dials a running
// minikv server's RESP port directly and speaks the same wire protocol a
// real client would, rendering replies for a human at a terminal.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/sandia-minimega/minikv/pkg/resp"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6379", "minikv server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minikv-cli: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()
	reader := resp.NewReader(conn)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	prompt := fmt.Sprintf("%s> ", *addr)
	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		args := strings.Fields(input)
		if _, err := conn.Write(resp.EncodeCommand(args...)); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			return
		}

		frame, _, err := reader.ReadFrame()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			return
		}
		fmt.Println(render(frame))
	}
}

func render(f *resp.Frame) string {
	if f.IsNull() {
		return "(nil)"
	}
	switch f.Kind {
	case resp.SimpleString:
		return f.Str
	case resp.Error:
		return "(error) " + f.Str
	case resp.Integer:
		return fmt.Sprintf("(integer) %d", f.Int)
	case resp.BulkString:
		return fmt.Sprintf("%q", f.Str)
	case resp.Array:
		var sb strings.Builder
		for i, item := range f.Items {
			fmt.Fprintf(&sb, "%d) %s\n", i+1, render(item))
		}
		return strings.TrimRight(sb.String(), "\n")
	default:
		return ""
	}
}
